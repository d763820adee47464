package automaton

import (
	"slices"
	"strings"
)

// Row markers used by BuildTransitionTable.
const (
	StartMarker = "→"
	FinalMarker = "*"
)

// TransitionTable is a tabular view of the transition function.
type TransitionTable struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// BuildTransitionTable Builds the transition table of a. The header is "State" followed by one column per
// alphabet symbol in insertion order, plus a trailing Epsilon column when a has epsilon transitions. Rows
// follow state creation order, which for a determinized automaton is discovery order. The start state is
// prefixed with StartMarker and final states are suffixed with FinalMarker.
//
// Cells of a nondeterministic automaton render the target set as {q0, q1}, or {} when empty. Cells of a
// deterministic automaton hold the single target, or nothing.
func BuildTransitionTable(a *Automaton) *TransitionTable {
	labels := a.symbolIDList()
	if a.HasEpsilon() {
		labels = append(labels, epsilonID)
	}

	header := make([]string, 0, len(labels)+1)
	header = append(header, "State")
	for _, label := range labels {
		header = append(header, string(a.symbolNames[label]))
	}

	rows := make([][]string, 0, a.GetNumStates())
	for _, id := range a.stateIDList() {
		row := make([]string, 0, len(header))
		row = append(row, a.rowLabel(id))
		for _, label := range labels {
			row = append(row, a.cell(id, label))
		}
		rows = append(rows, row)
	}

	return &TransitionTable{Header: header, Rows: rows}
}

func (a *Automaton) rowLabel(id int) string {
	label := string(a.stateNames[id])
	if id == a.start {
		label = StartMarker + label
	}
	if a.isAccept.Test(uint(id)) {
		label += FinalMarker
	}
	return label
}

func (a *Automaton) cell(id, label int) string {
	targets := a.names(a.delta[id][label])
	if a.deterministic {
		if len(targets) == 0 {
			return ""
		}
		return string(targets[0])
	}

	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = string(t)
	}
	slices.Sort(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
