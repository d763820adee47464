package automaton

import (
	"fmt"
)

// DerivedDFA is a DFA produced from a source NFA by Determinize.
type DerivedDFA struct {
	DFA *Automaton

	// Labeling maps every DFA state label to the NFA states it stands for, sorted by name.
	Labeling map[string][]State

	// Order lists the DFA state labels in discovery order.
	Order []string

	// Revision is the source NFA revision the conversion was computed from.
	Revision uint64
}

type determinizeOptions struct {
	workLimit int
	trapState bool
}

type DeterminizeOption func(*determinizeOptions)

// WithWorkLimit Bounds the powerset construction to workLimit (subset, symbol) expansions. Zero or a
// negative value means no limit.
func WithWorkLimit(workLimit int) DeterminizeOption {
	return func(o *determinizeOptions) {
		o.workLimit = workLimit
	}
}

// WithTrapState Materialises the empty subset as an explicit state labelled EmptySetLabel that loops on
// every symbol, making the DFA complete. Without it, a missing transition means reject.
func WithTrapState(enabled bool) DeterminizeOption {
	return func(o *determinizeOptions) {
		o.trapState = enabled
	}
}

// Determinize Converts nfa to an equivalent DFA with the powerset construction. Each DFA state is the
// epsilon closure of a set of NFA states and is named by its canonical Label. Subsets are discovered
// breadth first from the closure of the start state; every subset is expanded exactly once, so at most
// 2^n subsets are built for an NFA with n states.
//
// Fails with ErrMissingStart when nfa has no start state, and with ErrTooComplex when a work limit is set
// and exceeded.
func Determinize(nfa *Automaton, options ...DeterminizeOption) (*DerivedDFA, error) {
	opts := &determinizeOptions{}
	for _, fn := range options {
		fn(opts)
	}

	if nfa.start == noState {
		return nil, fmt.Errorf("%w: set a start state before converting", ErrMissingStart)
	}

	alphabet := nfa.symbolIDList()
	dfa := NewDeterministicAutomaton()
	dfaLabels := make([]int, len(alphabet))
	for i, label := range alphabet {
		if err := dfa.AddSymbol(nfa.symbolNames[label]); err != nil {
			return nil, err
		}
		dfaLabels[i] = dfa.symbolIDs[nfa.symbolNames[label]]
	}

	result := &DerivedDFA{
		DFA:      dfa,
		Labeling: make(map[string][]State),
		Order:    make([]string, 0),
		Revision: nfa.revision,
	}

	worklist := make([]*FrozenStateSet, 0)
	// powerset state -> DFA state id
	newState := NewHashMap[int](WithCapacity(16))

	// Labels use the reserved characters, so DFA states are created below the validating mutators.
	register := func(set *FrozenStateSet) int {
		id := dfa.createState(State(set.Label()))
		if set.Size() > 0 && NewStateSet(set.GetArray()...).Intersects(nfa.isAccept) {
			dfa.isAccept.Set(uint(id))
		}
		newState.Set(set, id)
		result.Labeling[set.Label()] = set.Names()
		result.Order = append(result.Order, set.Label())
		worklist = append(worklist, set)
		return id
	}

	initialSet := nfa.EpsilonClosureSet(NewStateSet(nfa.start)).Freeze(nfa)
	dfa.start = register(initialSet)

	work := 0
	for len(worklist) > 0 {
		set := worklist[0]
		worklist = worklist[1:]
		source, _ := newState.Get(set)

		for i, label := range alphabet {
			work++
			if opts.workLimit > 0 && work > opts.workLimit {
				return nil, fmt.Errorf("%w: more than %d expansions", ErrTooComplex, opts.workLimit)
			}

			target := nfa.step(set, label)
			if target.IsEmpty() && !opts.trapState {
				continue
			}

			dest, ok := newState.Get(target)
			if !ok {
				dest = register(target.Freeze(nfa))
			}
			dfa.addTransitionID(source, dfaLabels[i], dest)
		}
	}

	// The DFA's own mutation count is meaningless to callers.
	dfa.revision = 0
	return result, nil
}

// Labels Returns the NFA states behind a DFA state label.
func (d *DerivedDFA) Labels(label string) ([]State, bool) {
	states, ok := d.Labeling[label]
	return states, ok
}
