package automaton

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode selects which automaton variant a query targets.
type Mode int

const (
	ModeNFA Mode = iota
	ModeDFA
)

func (m Mode) String() string {
	if m == ModeDFA {
		return "DFA"
	}
	return "NFA"
}

// ParseMode Parses "NFA" or "DFA", case insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NFA":
		return ModeNFA, nil
	case "DFA":
		return ModeDFA, nil
	}
	return ModeNFA, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, s)
}

// Verdict messages.
const (
	MessageAccept  = "ACCEPT"
	MessageReject  = "REJECT"
	MessageDeadEnd = "REJECT (dead end)"
)

// SimulationResult is the verdict and trace of running an input through an automaton.
type SimulationResult struct {
	Accepted bool     `json:"accepted"`
	Message  string   `json:"message"`
	Steps    []string `json:"steps"`
}

// SplitInput Splits an input string into symbols. Input that contains whitespace is split on it;
// otherwise every rune is a symbol.
func SplitInput(input string) []Symbol {
	var parts []string
	if strings.IndexFunc(input, unicode.IsSpace) >= 0 {
		parts = strings.Fields(input)
	} else {
		parts = strings.Split(input, "")
	}
	symbols := make([]Symbol, len(parts))
	for i, p := range parts {
		symbols[i] = Symbol(p)
	}
	return symbols
}

// Simulate Runs input through a. In ModeNFA a set of active states is tracked; in ModeDFA a single state
// is tracked and a missing start state is an error. A symbol outside the alphabet behaves like a missing
// transition: the run rejects.
func Simulate(a *Automaton, mode Mode, input []Symbol) (*SimulationResult, error) {
	if mode == ModeDFA {
		return simulateDFA(a, input)
	}
	return simulateNFA(a, input), nil
}

// Run Returns true if a accepts s, simulating it as a DFA when a is deterministic.
func Run(a *Automaton, s string) bool {
	mode := ModeNFA
	if a.IsDeterministic() {
		mode = ModeDFA
	}
	result, err := Simulate(a, mode, SplitInput(s))
	if err != nil {
		return false
	}
	return result.Accepted
}

func (a *Automaton) inputLabel(sym Symbol) (int, bool) {
	if sym == Epsilon {
		return noState, false
	}
	id, ok := a.symbolIDs[sym]
	return id, ok
}

func deadEndNote(known bool, sym Symbol) string {
	if !known {
		return fmt.Sprintf("Dead end: '%s' is not in the alphabet", sym)
	}
	return fmt.Sprintf("Dead end: no transition on '%s'", sym)
}

func simulateNFA(a *Automaton, input []Symbol) *SimulationResult {
	current := NewStateSet()
	if a.start != noState {
		current = a.EpsilonClosureSet(NewStateSet(a.start))
	}

	steps := []string{"Starting at: " + a.formatSet(current)}
	if current.IsEmpty() {
		steps = append(steps, "Dead end: no start state")
		return &SimulationResult{Accepted: false, Message: MessageDeadEnd, Steps: steps}
	}

	for i, sym := range input {
		label, known := a.inputLabel(sym)
		if known {
			current = a.step(current, label)
		} else {
			current = NewStateSet()
		}
		steps = append(steps, fmt.Sprintf("%d) After input '%s' -> %s", i+1, sym, a.formatSet(current)))
		if current.IsEmpty() {
			steps = append(steps, deadEndNote(known, sym))
			return &SimulationResult{Accepted: false, Message: MessageDeadEnd, Steps: steps}
		}
	}

	accepted := current.Intersects(a.isAccept)
	steps = append(steps, "Final states reached: "+a.formatSet(current))
	return &SimulationResult{Accepted: accepted, Message: verdict(accepted), Steps: steps}
}

func simulateDFA(a *Automaton, input []Symbol) (*SimulationResult, error) {
	if a.start == noState {
		return nil, fmt.Errorf("%w: cannot simulate without a start state", ErrMissingStart)
	}

	current := a.start
	steps := []string{"Starting at: " + string(a.stateNames[current])}
	for i, sym := range input {
		next := noState
		label, known := a.inputLabel(sym)
		if known {
			next = a.next(current, label)
		}
		if next == noState {
			steps = append(steps, fmt.Sprintf("%d) Input '%s' -> %s", i+1, sym, EmptySetLabel))
			steps = append(steps, deadEndNote(known, sym))
			return &SimulationResult{Accepted: false, Message: MessageDeadEnd, Steps: steps}, nil
		}
		current = next
		steps = append(steps, fmt.Sprintf("%d) Input '%s' -> %s", i+1, sym, a.stateNames[current]))
	}

	accepted := a.isAccept.Test(uint(current))
	steps = append(steps, "Final state reached: "+string(a.stateNames[current]))
	return &SimulationResult{Accepted: accepted, Message: verdict(accepted), Steps: steps}, nil
}

func verdict(accepted bool) string {
	if accepted {
		return MessageAccept
	}
	return MessageReject
}
