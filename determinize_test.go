package automaton

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allStrings returns every string over symbols of length at most n.
func allStrings(symbols []Symbol, n int) []string {
	out := []string{""}
	frontier := []string{""}
	for i := 0; i < n; i++ {
		next := make([]string, 0, len(frontier)*len(symbols))
		for _, prefix := range frontier {
			for _, s := range symbols {
				next = append(next, prefix+string(s))
			}
		}
		out = append(out, next...)
		frontier = next
	}
	return out
}

func assertDeterministic(t *testing.T, dfa *Automaton) {
	t.Helper()
	assert.True(t, dfa.IsDeterministic())
	assert.False(t, dfa.HasEpsilon())
	for _, s := range dfa.States() {
		for _, sym := range dfa.Alphabet() {
			assert.LessOrEqual(t, len(dfa.Targets(s, sym)), 1, "δ(%s, %s)", s, sym)
		}
	}
}

func assertEquivalent(t *testing.T, nfa, dfa *Automaton, maxLen int) {
	t.Helper()
	for _, w := range allStrings(nfa.Alphabet(), maxLen) {
		want, err := Simulate(nfa, ModeNFA, SplitInput(w))
		require.Nil(t, err)
		got, err := Simulate(dfa, ModeDFA, SplitInput(w))
		require.Nil(t, err)
		assert.Equal(t, want.Accepted, got.Accepted, "input %q", w)
	}
}

func TestDeterminize(t *testing.T) {
	t.Run("testEndsInAB", func(t *testing.T) {
		nfa := makeEndsInAB(t)
		derived, err := Determinize(nfa)
		require.Nil(t, err)

		dfa := derived.DFA
		assertDeterministic(t, dfa)
		assertEquivalent(t, nfa, dfa, 6)

		assert.Equal(t, []string{"{q0}", "{q0,q1}", "{q0,q2}"}, derived.Order)
		assert.Equal(t, []State{"{q0}", "{q0,q1}", "{q0,q2}"}, dfa.States())
		assert.Equal(t, []State{"{q0,q2}"}, dfa.Finals())
		start, ok := dfa.Start()
		assert.True(t, ok)
		assert.Equal(t, State("{q0}"), start)
		assert.Equal(t, nfa.Revision(), derived.Revision)

		states, ok := derived.Labels("{q0,q1}")
		assert.True(t, ok)
		assert.Equal(t, []State{"q0", "q1"}, states)

		assert.True(t, Run(dfa, "aab"))
		assert.False(t, Run(dfa, "ba"))
	})

	t.Run("testSample", func(t *testing.T) {
		nfa := MakeSample()
		derived, err := Determinize(nfa)
		require.Nil(t, err)
		assertDeterministic(t, derived.DFA)
		assertEquivalent(t, nfa, derived.DFA, 6)
	})

	t.Run("testEpsilon", func(t *testing.T) {
		nfa := makeEpsilonChain(t)
		require.Nil(t, nfa.SetStart("p"))
		require.Nil(t, nfa.ToggleFinal("t"))

		derived, err := Determinize(nfa)
		require.Nil(t, err)
		assertDeterministic(t, derived.DFA)
		assertEquivalent(t, nfa, derived.DFA, 4)
		assert.Equal(t, []string{"{p,q,r}", "{s,t}"}, derived.Order)
	})

	t.Run("testMissingStart", func(t *testing.T) {
		nfa := makeEndsInAB(t)
		require.Nil(t, nfa.DeleteState("q0"))
		_, err := Determinize(nfa)
		assert.True(t, errors.Is(err, ErrMissingStart))
	})

	t.Run("testZeroAlphabet", func(t *testing.T) {
		nfa := NewAutomaton()
		require.Nil(t, nfa.AddState("a"))
		require.Nil(t, nfa.AddState("b"))
		require.Nil(t, nfa.AddTransition("a", Epsilon, "b"))
		require.Nil(t, nfa.SetStart("a"))
		require.Nil(t, nfa.ToggleFinal("b"))

		derived, err := Determinize(nfa)
		require.Nil(t, err)
		assert.Equal(t, []State{"{a,b}"}, derived.DFA.States())
		assert.Equal(t, []State{"{a,b}"}, derived.DFA.Finals())
		assert.True(t, Run(derived.DFA, ""))
	})

	t.Run("testTrapState", func(t *testing.T) {
		nfa := makeEndsInAB(t)
		require.Nil(t, nfa.DeleteTransition("q0", "b", "q0"))

		derived, err := Determinize(nfa, WithTrapState(true))
		require.Nil(t, err)
		dfa := derived.DFA
		assertDeterministic(t, dfa)
		assertEquivalent(t, nfa, dfa, 5)

		assert.Contains(t, derived.Order, EmptySetLabel)
		assert.Equal(t, []State{EmptySetLabel}, dfa.Targets(EmptySetLabel, "a"))
		assert.Equal(t, []State{EmptySetLabel}, dfa.Targets(EmptySetLabel, "b"))
		for _, s := range dfa.States() {
			for _, sym := range dfa.Alphabet() {
				assert.Len(t, dfa.Targets(s, sym), 1, "complete at δ(%s, %s)", s, sym)
			}
		}

		plain, err := Determinize(nfa)
		require.Nil(t, err)
		assert.NotContains(t, plain.Order, EmptySetLabel)
	})

	t.Run("testWorkLimit", func(t *testing.T) {
		nfa := makeEndsInAB(t)
		_, err := Determinize(nfa, WithWorkLimit(2))
		assert.True(t, errors.Is(err, ErrTooComplex))

		_, err = Determinize(nfa, WithWorkLimit(6))
		assert.Nil(t, err)
	})

	t.Run("testSourceUntouched", func(t *testing.T) {
		nfa := makeEndsInAB(t)
		revision := nfa.Revision()
		_, err := Determinize(nfa)
		require.Nil(t, err)
		assert.Equal(t, revision, nfa.Revision())
		assert.Equal(t, 4, nfa.GetNumTransitions())
	})
}

// makeNthFromEnd builds the classic NFA whose DFA needs 2^(n+1) states: the (n+1)th symbol from the end is a.
func makeNthFromEnd(t *testing.T, n int) *Automaton {
	t.Helper()
	a := NewAutomaton()
	require.Nil(t, a.AddSymbol("a"))
	require.Nil(t, a.AddSymbol("b"))
	names := make([]State, n+2)
	for i := range names {
		names[i] = State("s" + string(rune('0'+i)))
		require.Nil(t, a.AddState(names[i]))
	}
	require.Nil(t, a.SetStart(names[0]))
	require.Nil(t, a.ToggleFinal(names[n+1]))
	require.Nil(t, a.AddTransition(names[0], "a", names[0]))
	require.Nil(t, a.AddTransition(names[0], "b", names[0]))
	require.Nil(t, a.AddTransition(names[0], "a", names[1]))
	for i := 1; i <= n; i++ {
		require.Nil(t, a.AddTransition(names[i], "a", names[i+1]))
		require.Nil(t, a.AddTransition(names[i], "b", names[i+1]))
	}
	return a
}

func TestDeterminize_Blowup(t *testing.T) {
	nfa := makeNthFromEnd(t, 3)
	derived, err := Determinize(nfa)
	require.Nil(t, err)
	assert.Equal(t, 16, derived.DFA.GetNumStates())
	assertDeterministic(t, derived.DFA)
	assertEquivalent(t, nfa, derived.DFA, 7)
}
