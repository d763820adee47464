package automaton

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitInput(t *testing.T) {
	testCases := []struct {
		input string
		want  []Symbol
	}{
		{"", []Symbol{}},
		{"aab", []Symbol{"a", "a", "b"}},
		{"x y  z", []Symbol{"x", "y", "z"}},
		{" tok ", []Symbol{"tok"}},
		{"αβ", []Symbol{"α", "β"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitInput(tc.input))
		})
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("dfa")
	assert.Nil(t, err)
	assert.Equal(t, ModeDFA, mode)

	mode, err = ParseMode(" NFA ")
	assert.Nil(t, err)
	assert.Equal(t, ModeNFA, mode)

	_, err = ParseMode("pda")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSimulate_NFA(t *testing.T) {
	a := makeEndsInAB(t)

	t.Run("testAccept", func(t *testing.T) {
		result, err := Simulate(a, ModeNFA, SplitInput("aab"))
		assert.Nil(t, err)
		assert.True(t, result.Accepted)
		assert.Equal(t, MessageAccept, result.Message)
		assert.Equal(t, []string{
			"Starting at: q0",
			"1) After input 'a' -> q0, q1",
			"2) After input 'a' -> q0, q1",
			"3) After input 'b' -> q0, q2",
			"Final states reached: q0, q2",
		}, result.Steps)
	})

	t.Run("testReject", func(t *testing.T) {
		result, err := Simulate(a, ModeNFA, SplitInput("ba"))
		assert.Nil(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, MessageReject, result.Message)
	})

	t.Run("testUnknownSymbol", func(t *testing.T) {
		result, err := Simulate(a, ModeNFA, SplitInput("acb"))
		assert.Nil(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, MessageDeadEnd, result.Message)
		assert.Equal(t, "Dead end: 'c' is not in the alphabet", result.Steps[len(result.Steps)-1])
		assert.Len(t, result.Steps, 4)
	})

	t.Run("testNoStart", func(t *testing.T) {
		b := a.Clone()
		assert.Nil(t, b.DeleteState("q0"))
		result, err := Simulate(b, ModeNFA, SplitInput("ab"))
		assert.Nil(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, []string{"Starting at: ∅", "Dead end: no start state"}, result.Steps)
	})

	t.Run("testEpsilonSymbolIsUnknown", func(t *testing.T) {
		result, err := Simulate(a, ModeNFA, []Symbol{Epsilon})
		assert.Nil(t, err)
		assert.False(t, result.Accepted)
	})
}

func TestSimulate_EpsilonNFA(t *testing.T) {
	a := makeEpsilonChain(t)
	assert.Nil(t, a.SetStart("p"))
	assert.Nil(t, a.ToggleFinal("t"))

	assert.True(t, Run(a, "a"))
	assert.False(t, Run(a, ""))
	assert.False(t, Run(a, "aa"))
}

func TestSimulate_DFA(t *testing.T) {
	a := NewDeterministicAutomaton()
	assert.Nil(t, a.AddState("even"))
	assert.Nil(t, a.AddState("odd"))
	assert.Nil(t, a.AddSymbol("1"))
	assert.Nil(t, a.AddSymbol("0"))
	assert.Nil(t, a.AddTransition("even", "1", "odd"))
	assert.Nil(t, a.AddTransition("odd", "1", "even"))
	assert.Nil(t, a.AddTransition("even", "0", "even"))

	t.Run("testMissingStart", func(t *testing.T) {
		_, err := Simulate(a, ModeDFA, SplitInput("1"))
		assert.True(t, errors.Is(err, ErrMissingStart))
		assert.False(t, Run(a, "1"))
	})

	assert.Nil(t, a.SetStart("even"))
	assert.Nil(t, a.ToggleFinal("odd"))

	t.Run("testTrace", func(t *testing.T) {
		result, err := Simulate(a, ModeDFA, SplitInput("101"))
		assert.Nil(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, []string{
			"Starting at: even",
			"1) Input '1' -> odd",
			"2) Input '0' -> ∅",
			"Dead end: no transition on '0'",
		}, result.Steps)
		assert.Equal(t, MessageDeadEnd, result.Message)
	})

	t.Run("testAccept", func(t *testing.T) {
		result, err := Simulate(a, ModeDFA, SplitInput("001"))
		assert.Nil(t, err)
		assert.True(t, result.Accepted)
		assert.Equal(t, "Final state reached: odd", result.Steps[len(result.Steps)-1])
	})

	t.Run("testUnknownSymbol", func(t *testing.T) {
		result, err := Simulate(a, ModeDFA, SplitInput("2"))
		assert.Nil(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, "Dead end: '2' is not in the alphabet", result.Steps[2])
	})
}
