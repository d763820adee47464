package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTransitionTable(t *testing.T) {
	t.Run("testNFA", func(t *testing.T) {
		table := BuildTransitionTable(makeEndsInAB(t))
		assert.Equal(t, []string{"State", "a", "b"}, table.Header)
		assert.Equal(t, [][]string{
			{"→q0", "{q0, q1}", "{q0}"},
			{"q1", "{}", "{q2}"},
			{"q2*", "{}", "{}"},
		}, table.Rows)
	})

	t.Run("testEpsilonColumn", func(t *testing.T) {
		a := makeEndsInAB(t)
		require.Nil(t, a.AddTransition("q2", Epsilon, "q0"))
		table := BuildTransitionTable(a)
		assert.Equal(t, []string{"State", "a", "b", "ε"}, table.Header)
		assert.Equal(t, []string{"q2*", "{}", "{}", "{q0}"}, table.Rows[2])
	})

	t.Run("testStartAndFinal", func(t *testing.T) {
		a := NewAutomaton()
		require.Nil(t, a.AddState("only"))
		require.Nil(t, a.SetStart("only"))
		require.Nil(t, a.ToggleFinal("only"))
		table := BuildTransitionTable(a)
		assert.Equal(t, []string{"State"}, table.Header)
		assert.Equal(t, [][]string{{"→only*"}}, table.Rows)
	})

	t.Run("testDFA", func(t *testing.T) {
		derived, err := Determinize(makeEndsInAB(t))
		require.Nil(t, err)
		table := BuildTransitionTable(derived.DFA)
		assert.Equal(t, []string{"State", "a", "b"}, table.Header)
		assert.Equal(t, [][]string{
			{"→{q0}", "{q0,q1}", "{q0}"},
			{"{q0,q1}", "{q0,q1}", "{q0,q2}"},
			{"{q0,q2}*", "{q0,q1}", "{q0}"},
		}, table.Rows)
	})

	t.Run("testDFAEmptyCell", func(t *testing.T) {
		a := makeEndsInAB(t)
		require.Nil(t, a.DeleteTransition("q0", "b", "q0"))
		derived, err := Determinize(a)
		require.Nil(t, err)
		table := BuildTransitionTable(derived.DFA)
		assert.Equal(t, []string{"→{q0}", "{q0,q1}", ""}, table.Rows[0])
	})

	t.Run("testEmpty", func(t *testing.T) {
		table := BuildTransitionTable(NewAutomaton())
		assert.Equal(t, []string{"State"}, table.Header)
		assert.Empty(t, table.Rows)
	})
}
