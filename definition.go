package automaton

import (
	"fmt"
	"slices"
	"strings"
)

// Definition is a plain snapshot of an automaton: the 5-tuple with every transition spelled out.
type Definition struct {
	Deterministic bool         `json:"deterministic,omitempty"`
	States        []State      `json:"states"`
	Symbols       []Symbol     `json:"symbols"`
	Start         State        `json:"start,omitempty"`
	Finals        []State      `json:"finals"`
	Transitions   []Transition `json:"transitions"`
}

// Definition Returns a snapshot of a.
func (a *Automaton) Definition() *Definition {
	def := &Definition{
		Deterministic: a.deterministic,
		States:        a.States(),
		Symbols:       a.Alphabet(),
		Finals:        a.Finals(),
		Transitions:   a.Transitions(),
	}
	if start, ok := a.Start(); ok {
		def.Start = start
	}
	return def
}

// FromDefinition Builds an automaton from def through the validating mutators, so a malformed definition
// fails with the same errors the mutators report. An empty Start leaves the start state unset.
func FromDefinition(def *Definition) (*Automaton, error) {
	a := NewAutomaton()
	if def.Deterministic {
		a = NewDeterministicAutomaton()
	}

	for _, s := range def.States {
		if err := a.AddState(s); err != nil {
			return nil, err
		}
	}
	for _, sym := range def.Symbols {
		if err := a.AddSymbol(sym); err != nil {
			return nil, err
		}
	}
	for _, t := range def.Transitions {
		if err := a.AddTransition(t.Source, t.Symbol, t.Target); err != nil {
			return nil, err
		}
	}
	if def.Start != "" {
		if err := a.SetStart(def.Start); err != nil {
			return nil, err
		}
	}
	for _, f := range def.Finals {
		if err := a.SetFinal(f, true); err != nil {
			return nil, err
		}
	}
	a.revision = 0
	return a, nil
}

// FormalDefinition Returns the textual 5-tuple of a:
//
//	Q = {q0, q1}
//	Σ = {a, b}
//	q0 = q0
//	F = {q1}
//	δ : Q × Σ → P(Q)
//
//	    δ(q0, a) = {q0, q1}
//
// followed by one δ line per non-empty cell. Epsilon moves are listed after the alphabet symbols, and a
// deterministic automaton uses the signature Q × Σ → Q with bare targets.
func FormalDefinition(a *Automaton) string {
	start := "None"
	if s, ok := a.Start(); ok {
		start = string(s)
	}

	finals := a.Finals()
	slices.Sort(finals)

	signature := "δ : Q × Σ → P(Q)"
	if a.deterministic {
		signature = "δ : Q × Σ → Q"
	}

	lines := []string{
		"Q = " + braced(a.States()),
		"Σ = " + braced(a.Alphabet()),
		"q0 = " + start,
		"F = " + braced(finals),
		signature,
		"",
	}

	labels := append(a.symbolIDList(), epsilonID)
	for _, id := range a.stateIDList() {
		for _, label := range labels {
			if targets := a.delta[id][label]; targets == nil || targets.None() {
				continue
			}
			dest := a.cell(id, label)
			lines = append(lines, fmt.Sprintf("    δ(%s, %s) = %s", a.stateNames[id], a.symbolNames[label], dest))
		}
	}
	return strings.Join(lines, "\n")
}

func braced[T ~string](items []T) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = string(item)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
