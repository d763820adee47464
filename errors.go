package automaton

import "errors"

var (
	// ErrNotFound A referenced state or symbol has not been declared.
	ErrNotFound = errors.New("not found")

	// ErrMissingStart The operation needs a start state and none is set.
	ErrMissingStart = errors.New("missing start state")

	// ErrConversionUnavailable A DFA was requested but there is no conversion for the current NFA revision.
	ErrConversionUnavailable = errors.New("conversion unavailable")

	// ErrInvalidInput A name passed to a mutator is empty or uses reserved characters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNondeterministic The mutation would give a deterministic automaton an epsilon transition or a
	// second target for the same (state, symbol) pair.
	ErrNondeterministic = errors.New("automaton must stay deterministic")

	// ErrTooComplex The powerset construction exceeded its work limit.
	ErrTooComplex = errors.New("automaton too complex to determinize")
)
