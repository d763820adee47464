package automaton

// Automata builds ready-made automata.
type Automata struct {
}

var defaultAutomata = &Automata{}

// MakeEmpty
// Returns a new automaton with no states. It accepts the empty language.
func (*Automata) MakeEmpty() *Automaton {
	return NewAutomaton()
}

// MakeEmptyString
// Returns a new automaton with a single final start state and no transitions. It accepts only the empty
// string.
func (*Automata) MakeEmptyString() *Automaton {
	a := NewAutomaton()
	s := a.createState("q0")
	a.start = s
	a.isAccept.Set(uint(s))
	return a
}

// MakeSample
// Returns the onboarding NFA over {a, b}: states q0 and q1, start q0, final q1, and transitions
//
//	q0 --a--> q0, q0 --a--> q1, q0 --b--> q0
//	q1 --a--> q1, q1 --b--> q0
//
// It accepts exactly the strings that end in a.
func (*Automata) MakeSample() *Automaton {
	a := NewAutomaton()
	q0 := a.createState("q0")
	q1 := a.createState("q1")
	symA := a.createSymbol("a")
	symB := a.createSymbol("b")

	a.start = q0
	a.isAccept.Set(uint(q1))

	a.addTransitionID(q0, symA, q0)
	a.addTransitionID(q0, symA, q1)
	a.addTransitionID(q0, symB, q0)
	a.addTransitionID(q1, symA, q1)
	a.addTransitionID(q1, symB, q0)
	return a
}

// MakeSample Returns the onboarding NFA, see Automata.MakeSample.
func MakeSample() *Automaton {
	return defaultAutomata.MakeSample()
}
