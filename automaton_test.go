package automaton

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// makeEndsInAB builds the NFA over {a, b} that accepts strings ending in ab.
func makeEndsInAB(t *testing.T) *Automaton {
	t.Helper()

	a := NewAutomaton()
	for _, s := range []State{"q0", "q1", "q2"} {
		assert.Nil(t, a.AddState(s))
	}
	assert.Nil(t, a.AddSymbol("a"))
	assert.Nil(t, a.AddSymbol("b"))
	assert.Nil(t, a.SetStart("q0"))
	assert.Nil(t, a.ToggleFinal("q2"))
	assert.Nil(t, a.AddTransition("q0", "a", "q0"))
	assert.Nil(t, a.AddTransition("q0", "b", "q0"))
	assert.Nil(t, a.AddTransition("q0", "a", "q1"))
	assert.Nil(t, a.AddTransition("q1", "b", "q2"))
	return a
}

func TestAutomaton_AddState(t *testing.T) {
	t.Run("testAddStateIdempotent", func(t *testing.T) {
		a := NewAutomaton()
		assert.Nil(t, a.AddState("q0"))
		assert.Nil(t, a.AddState("q0"))
		assert.Equal(t, []State{"q0"}, a.States())
		assert.Equal(t, uint64(2), a.Revision())
	})

	t.Run("testAddStateInvalid", func(t *testing.T) {
		a := NewAutomaton()
		for _, name := range []State{"", " ", "q 0", "q\t", "{q0}", "a,b", EmptySetLabel} {
			err := a.AddState(name)
			assert.True(t, errors.Is(err, ErrInvalidInput), "name %q", name)
		}
		assert.Equal(t, 0, a.GetNumStates())
		assert.Equal(t, uint64(0), a.Revision())
	})

	t.Run("testCreationOrderSurvivesDelete", func(t *testing.T) {
		a := NewAutomaton()
		assert.Nil(t, a.AddState("b"))
		assert.Nil(t, a.AddState("a"))
		assert.Nil(t, a.AddState("c"))
		assert.Nil(t, a.DeleteState("a"))
		assert.Nil(t, a.AddState("a"))
		assert.Equal(t, []State{"b", "c", "a"}, a.States())
	})
}

func TestAutomaton_DeleteState(t *testing.T) {
	t.Run("testCascade", func(t *testing.T) {
		a := makeEndsInAB(t)
		assert.Nil(t, a.SetStart("q1"))
		assert.Nil(t, a.ToggleFinal("q1"))

		assert.Nil(t, a.DeleteState("q1"))

		assert.False(t, a.HasState("q1"))
		for _, tr := range a.Transitions() {
			assert.NotEqual(t, State("q1"), tr.Source)
			assert.NotEqual(t, State("q1"), tr.Target)
		}
		assert.NotContains(t, a.Finals(), State("q1"))
		_, ok := a.Start()
		assert.False(t, ok)
		assert.Equal(t, 2, a.GetNumTransitions())
	})

	t.Run("testDeleteUnknown", func(t *testing.T) {
		a := makeEndsInAB(t)
		revision := a.Revision()
		err := a.DeleteState("nope")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, revision, a.Revision())
	})
}

func TestAutomaton_Symbols(t *testing.T) {
	t.Run("testEpsilonIsReserved", func(t *testing.T) {
		a := NewAutomaton()
		assert.True(t, errors.Is(a.AddSymbol(Epsilon), ErrInvalidInput))
		assert.True(t, errors.Is(a.AddSymbol(EmptySetLabel), ErrInvalidInput))
		assert.True(t, errors.Is(a.DeleteSymbol(Epsilon), ErrInvalidInput))
		assert.Empty(t, a.Alphabet())
	})

	t.Run("testDeleteSymbolCascade", func(t *testing.T) {
		a := makeEndsInAB(t)
		assert.Nil(t, a.DeleteSymbol("a"))
		assert.Equal(t, []Symbol{"b"}, a.Alphabet())
		assert.Equal(t, []Transition{{"q0", "b", "q0"}, {"q1", "b", "q2"}}, a.Transitions())

		// re-adding does not revive old transitions
		assert.Nil(t, a.AddSymbol("a"))
		assert.Empty(t, a.Targets("q0", "a"))
	})

	t.Run("testDeleteUnknownSymbol", func(t *testing.T) {
		a := NewAutomaton()
		assert.True(t, errors.Is(a.DeleteSymbol("x"), ErrNotFound))
	})
}

func TestAutomaton_Transitions(t *testing.T) {
	t.Run("testNotFound", func(t *testing.T) {
		a := makeEndsInAB(t)
		assert.True(t, errors.Is(a.AddTransition("x", "a", "q0"), ErrNotFound))
		assert.True(t, errors.Is(a.AddTransition("q0", "a", "x"), ErrNotFound))
		assert.True(t, errors.Is(a.AddTransition("q0", "c", "q0"), ErrNotFound))
		assert.Equal(t, 4, a.GetNumTransitions())
	})

	t.Run("testEpsilonAndDuplicates", func(t *testing.T) {
		a := makeEndsInAB(t)
		assert.False(t, a.HasEpsilon())
		assert.Nil(t, a.AddTransition("q1", Epsilon, "q2"))
		assert.Nil(t, a.AddTransition("q1", Epsilon, "q2"))
		assert.True(t, a.HasEpsilon())
		assert.Equal(t, 5, a.GetNumTransitions())
		assert.Equal(t, []State{"q2"}, a.Targets("q1", Epsilon))
	})

	t.Run("testDeleteAbsentIsNoop", func(t *testing.T) {
		a := makeEndsInAB(t)
		assert.Nil(t, a.DeleteTransition("q2", "a", "q0"))
		assert.Nil(t, a.DeleteTransition("zz", "zz", "zz"))
		assert.Equal(t, 4, a.GetNumTransitions())

		assert.Nil(t, a.DeleteTransition("q0", "a", "q1"))
		assert.Equal(t, []State{"q0"}, a.Targets("q0", "a"))
	})

	t.Run("testOrdering", func(t *testing.T) {
		a := makeEndsInAB(t)
		assert.Nil(t, a.AddTransition("q0", Epsilon, "q2"))
		assert.Equal(t, []Transition{
			{"q0", Epsilon, "q2"},
			{"q0", "a", "q0"},
			{"q0", "a", "q1"},
			{"q0", "b", "q0"},
			{"q1", "b", "q2"},
		}, a.Transitions())
	})
}

func TestAutomaton_StartAndFinal(t *testing.T) {
	a := makeEndsInAB(t)

	assert.True(t, errors.Is(a.SetStart("x"), ErrNotFound))
	start, ok := a.Start()
	assert.True(t, ok)
	assert.Equal(t, State("q0"), start)

	assert.True(t, errors.Is(a.ToggleFinal("x"), ErrNotFound))
	assert.Nil(t, a.ToggleFinal("q0"))
	assert.Equal(t, []State{"q0", "q2"}, a.Finals())
	assert.Nil(t, a.ToggleFinal("q0"))
	assert.Equal(t, []State{"q2"}, a.Finals())
	assert.True(t, a.IsFinal("q2"))
	assert.False(t, a.IsFinal("nope"))
}

func TestAutomaton_Deterministic(t *testing.T) {
	a := NewDeterministicAutomaton()
	assert.Nil(t, a.AddState("p"))
	assert.Nil(t, a.AddState("r"))
	assert.Nil(t, a.AddSymbol("a"))

	assert.Nil(t, a.AddTransition("p", "a", "r"))
	assert.Nil(t, a.AddTransition("p", "a", "r"))
	assert.True(t, errors.Is(a.AddTransition("p", "a", "p"), ErrNondeterministic))
	assert.True(t, errors.Is(a.AddTransition("p", Epsilon, "p"), ErrNondeterministic))
	assert.Equal(t, 1, a.GetNumTransitions())
}

func TestAutomaton_ResetAndSample(t *testing.T) {
	a := makeEndsInAB(t)
	revision := a.Revision()

	a.Reset()
	assert.Equal(t, 0, a.GetNumStates())
	assert.Empty(t, a.Alphabet())
	assert.Greater(t, a.Revision(), revision)

	revision = a.Revision()
	a.LoadSample()
	assert.Greater(t, a.Revision(), revision)
	assert.Equal(t, []State{"q0", "q1"}, a.States())
	assert.Equal(t, []Symbol{"a", "b"}, a.Alphabet())
	assert.Equal(t, []State{"q1"}, a.Finals())
	assert.Equal(t, 5, a.GetNumTransitions())
}

func TestAutomaton_Clone(t *testing.T) {
	a := makeEndsInAB(t)
	b := a.Clone()
	assert.Equal(t, a.Revision(), b.Revision())

	assert.Nil(t, b.DeleteState("q1"))
	assert.True(t, a.HasState("q1"))
	assert.Equal(t, 4, a.GetNumTransitions())
	assert.Equal(t, 2, b.GetNumTransitions())
}

func TestAutomata_MakeEmptyString(t *testing.T) {
	a := defaultAutomata.MakeEmptyString()
	assert.True(t, Run(a, ""))
	assert.False(t, IsEmptyAutomaton(a))
	assert.True(t, IsEmptyAutomaton(defaultAutomata.MakeEmpty()))
}
