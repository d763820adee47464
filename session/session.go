package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	u "github.com/araddon/gou"

	automaton "github.com/geange/automaton-editor"
	"github.com/geange/automaton-editor/diagram"
)

// Options tunes conversions run by a Session.
type Options struct {
	// WorkLimit bounds subset construction, see automaton.WithWorkLimit. Zero means unlimited.
	WorkLimit int
	// TrapState materialises the empty subset as an explicit DFA state.
	TrapState bool
}

// ConversionResult reports the outcome of Convert. A failed conversion is an expected outcome, not an error.
type ConversionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Selector picks the automaton a diagram is drawn from.
type Selector string

const (
	SelectCurrent Selector = "current"
	SelectNFA     Selector = "NFA"
	SelectDFA     Selector = "DFA"
)

// Session holds the one editable NFA, the DFA derived from it, and the active mode.
// Every exported method takes the session lock, so a query never observes a half-applied mutation or a
// DFA derived from a superseded NFA revision.
type Session struct {
	mu     sync.RWMutex
	nfa    *automaton.Automaton
	mode   automaton.Mode
	cached *automaton.DerivedDFA
	opts   Options
}

// New returns a session over an empty NFA in NFA mode.
func New(opts Options) *Session {
	return &Session{
		nfa:  automaton.NewAutomaton(),
		mode: automaton.ModeNFA,
		opts: opts,
	}
}

// mutate applies fn to the source NFA and returns the revision it committed. On success the derived DFA is
// dropped and DFA mode falls back to NFA. A failed fn leaves everything as it was and returns the current
// revision.
func (s *Session) mutate(op string, fn func(a *automaton.Automaton) error) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.nfa); err != nil {
		u.Warnf("session: %s rejected: %v", op, err)
		return s.nfa.Revision(), err
	}
	u.Debugf("session: %s applied, revision=%d", op, s.nfa.Revision())

	if s.cached != nil {
		u.Debugf("session: dropping DFA derived at revision %d", s.cached.Revision)
		s.cached = nil
	}
	if s.mode == automaton.ModeDFA {
		u.Infof("session: NFA changed, switching back to NFA mode")
		s.mode = automaton.ModeNFA
	}
	return s.nfa.Revision(), nil
}

func (s *Session) AddState(name string) (uint64, error) {
	return s.mutate("add_state "+name, func(a *automaton.Automaton) error {
		return a.AddState(automaton.State(name))
	})
}

func (s *Session) DeleteState(name string) (uint64, error) {
	return s.mutate("delete_state "+name, func(a *automaton.Automaton) error {
		return a.DeleteState(automaton.State(name))
	})
}

func (s *Session) AddSymbol(name string) (uint64, error) {
	return s.mutate("add_symbol "+name, func(a *automaton.Automaton) error {
		return a.AddSymbol(automaton.Symbol(name))
	})
}

func (s *Session) DeleteSymbol(name string) (uint64, error) {
	return s.mutate("delete_symbol "+name, func(a *automaton.Automaton) error {
		return a.DeleteSymbol(automaton.Symbol(name))
	})
}

func (s *Session) AddTransition(src, sym, tgt string) (uint64, error) {
	op := fmt.Sprintf("add_transition %s %s %s", src, sym, tgt)
	return s.mutate(op, func(a *automaton.Automaton) error {
		return a.AddTransition(automaton.State(src), automaton.Symbol(sym), automaton.State(tgt))
	})
}

// DeleteTransition removes a transition. Removing one that does not exist succeeds.
func (s *Session) DeleteTransition(src, sym, tgt string) (uint64, error) {
	op := fmt.Sprintf("delete_transition %s %s %s", src, sym, tgt)
	return s.mutate(op, func(a *automaton.Automaton) error {
		return a.DeleteTransition(automaton.State(src), automaton.Symbol(sym), automaton.State(tgt))
	})
}

func (s *Session) SetStart(name string) (uint64, error) {
	return s.mutate("set_start "+name, func(a *automaton.Automaton) error {
		return a.SetStart(automaton.State(name))
	})
}

func (s *Session) ToggleFinal(name string) (uint64, error) {
	return s.mutate("toggle_final "+name, func(a *automaton.Automaton) error {
		return a.ToggleFinal(automaton.State(name))
	})
}

// LoadSample replaces the NFA with the onboarding sample, see automaton.MakeSample.
func (s *Session) LoadSample() uint64 {
	rev, _ := s.mutate("load_sample", func(a *automaton.Automaton) error {
		a.LoadSample()
		return nil
	})
	return rev
}

// Reset empties the NFA.
func (s *Session) Reset() uint64 {
	rev, _ := s.mutate("reset", func(a *automaton.Automaton) error {
		a.Reset()
		return nil
	})
	return rev
}

// Load replaces the NFA with the automaton described by def. A definition that fails validation leaves
// the session untouched.
func (s *Session) Load(def *automaton.Definition) (uint64, error) {
	return s.mutate("load", func(a *automaton.Automaton) error {
		loaded, err := automaton.FromDefinition(def)
		if err != nil {
			return err
		}
		if loaded.IsDeterministic() {
			return fmt.Errorf("%w: only nondeterministic definitions can be loaded", automaton.ErrInvalidInput)
		}
		a.Replace(loaded)
		return nil
	})
}

// dfaValid reports whether the cached DFA was derived from the current NFA revision. Callers hold the lock.
func (s *Session) dfaValid() bool {
	return s.cached != nil && s.cached.Revision == s.nfa.Revision()
}

// active returns the automaton the current mode designates. Callers hold the lock.
func (s *Session) active() *automaton.Automaton {
	if s.mode == automaton.ModeDFA && s.dfaValid() {
		return s.cached.DFA
	}
	return s.nfa
}

// Convert runs subset construction on the NFA and caches the result against the current revision.
// The active mode is not changed.
func (s *Session) Convert() ConversionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	options := []automaton.DeterminizeOption{
		automaton.WithWorkLimit(s.opts.WorkLimit),
		automaton.WithTrapState(s.opts.TrapState),
	}
	derived, err := automaton.Determinize(s.nfa, options...)
	if err != nil {
		u.Warnf("session: conversion failed: %v", err)
		return ConversionResult{Success: false, Message: conversionMessage(err)}
	}

	s.cached = derived
	u.Infof("session: converted NFA revision %d into a DFA with %d states", derived.Revision, derived.DFA.GetNumStates())
	return ConversionResult{
		Success: true,
		Message: fmt.Sprintf("NFA converted to DFA with %d states", derived.DFA.GetNumStates()),
	}
}

func conversionMessage(err error) string {
	switch {
	case errors.Is(err, automaton.ErrMissingStart):
		return "NFA has no start state"
	case errors.Is(err, automaton.ErrTooComplex):
		return "NFA is too complex to convert: " + err.Error()
	}
	return err.Error()
}

// Mode returns the active mode.
func (s *Session) Mode() automaton.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the active mode. Selecting DFA fails with ErrConversionUnavailable unless a DFA derived
// from the current NFA revision is cached. Selecting NFA always succeeds.
func (s *Session) SetMode(mode automaton.Mode) (automaton.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == automaton.ModeDFA && !s.dfaValid() {
		u.Warnf("session: DFA mode requested without a current conversion")
		return s.mode, fmt.Errorf("%w: convert the NFA first", automaton.ErrConversionUnavailable)
	}
	if s.mode != mode {
		u.Infof("session: mode %s -> %s", s.mode, mode)
	}
	s.mode = mode
	return s.mode, nil
}

// SelectMode parses name and calls SetMode.
func (s *Session) SelectMode(name string) (automaton.Mode, error) {
	mode, err := automaton.ParseMode(name)
	if err != nil {
		return s.Mode(), err
	}
	return s.SetMode(mode)
}

// DFAAvailable reports whether a DFA derived from the current NFA revision is cached.
func (s *Session) DFAAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dfaValid()
}

// Revision returns the NFA revision.
func (s *Session) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nfa.Revision()
}

// Definition returns the formal definition of the active automaton.
func (s *Session) Definition() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return automaton.FormalDefinition(s.active())
}

// TransitionTable returns the transition table of the active automaton.
func (s *Session) TransitionTable() *automaton.TransitionTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return automaton.BuildTransitionTable(s.active())
}

// Serialized returns a snapshot of the active automaton.
func (s *Session) Serialized() *automaton.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active().Definition()
}

// Analysis reports unreachable and dead states of the active automaton.
func (s *Session) Analysis() *automaton.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return automaton.Analyse(s.active())
}

// NFA returns a copy of the source NFA.
func (s *Session) NFA() *automaton.Automaton {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nfa.Clone()
}

// DerivedDFA returns the cached conversion, or ErrConversionUnavailable when there is no current one.
func (s *Session) DerivedDFA() (*automaton.DerivedDFA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.dfaValid() {
		return nil, fmt.Errorf("%w: convert the NFA first", automaton.ErrConversionUnavailable)
	}
	labeling := make(map[string][]automaton.State, len(s.cached.Labeling))
	for k, v := range s.cached.Labeling {
		labeling[k] = append([]automaton.State(nil), v...)
	}
	return &automaton.DerivedDFA{
		DFA:      s.cached.DFA.Clone(),
		Labeling: labeling,
		Order:    append([]string(nil), s.cached.Order...),
		Revision: s.cached.Revision,
	}, nil
}

// SimulateCurrent runs input through the active automaton.
func (s *Session) SimulateCurrent(input string) (*automaton.SimulationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mode := s.mode
	if !s.dfaValid() {
		mode = automaton.ModeNFA
	}
	return s.simulate(mode, input)
}

// SimulateDFA runs input through the cached DFA whatever the active mode. It fails with
// ErrConversionUnavailable when there is no current conversion.
func (s *Session) SimulateDFA(input string) (*automaton.SimulationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.dfaValid() {
		return nil, fmt.Errorf("%w: convert the NFA first", automaton.ErrConversionUnavailable)
	}
	return s.simulate(automaton.ModeDFA, input)
}

func (s *Session) simulate(mode automaton.Mode, input string) (*automaton.SimulationResult, error) {
	a := s.nfa
	if mode == automaton.ModeDFA {
		a = s.cached.DFA
	}
	result, err := automaton.Simulate(a, mode, automaton.SplitInput(input))
	if err != nil {
		return nil, err
	}
	u.Debugf("session: simulate %s %q -> %s", mode, input, result.Message)
	return result, nil
}

// Diagram describes the automaton picked by sel. Asking for the DFA without a current conversion fails
// with ErrConversionUnavailable.
func (s *Session) Diagram(sel Selector) (*diagram.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch normalizeSelector(sel) {
	case SelectCurrent:
		return diagram.Describe(s.mode.String(), s.active()), nil
	case SelectNFA:
		return diagram.Describe(automaton.ModeNFA.String(), s.nfa), nil
	case SelectDFA:
		if !s.dfaValid() {
			return nil, fmt.Errorf("%w: convert the NFA first", automaton.ErrConversionUnavailable)
		}
		return diagram.Describe(automaton.ModeDFA.String(), s.cached.DFA), nil
	}
	return nil, fmt.Errorf("%w: unknown diagram selector %q", automaton.ErrInvalidInput, sel)
}

func normalizeSelector(sel Selector) Selector {
	switch strings.ToUpper(strings.TrimSpace(string(sel))) {
	case "", "CURRENT":
		return SelectCurrent
	case "NFA":
		return SelectNFA
	case "DFA":
		return SelectDFA
	}
	return sel
}
