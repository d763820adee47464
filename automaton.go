package automaton

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bits-and-blooms/bitset"
)

// State names an automaton state. Two states are the same state iff their names are equal.
type State string

// Symbol names an input symbol.
type Symbol string

// Epsilon labels spontaneous transitions. It is never a member of an alphabet.
const Epsilon Symbol = "ε"

const (
	epsilonID = 0
	noState   = -1

	reservedChars = ",{}"
)

// Transition is a (source, symbol, target) triple.
type Transition struct {
	Source State  `json:"from"`
	Symbol Symbol `json:"symbol"`
	Target State  `json:"to"`
}

func (t Transition) String() string {
	return fmt.Sprintf("%s --%s--> %s", t.Source, t.Symbol, t.Target)
}

// Automaton Represents a finite automaton over named states and symbols. Internally states and symbols are
// interned to integer ids handed out in creation order; ids are never reused, so walking the live bits of
// liveStates visits states in creation order even after deletions. Symbol id 0 is reserved for Epsilon.
//
// Every mutator validates its arguments before touching anything, so a failed call leaves the automaton
// unchanged. Every successful mutator call advances the revision counter.
//
// An Automaton created with NewDeterministicAutomaton refuses epsilon transitions and a second target for
// an existing (state, symbol) pair.
type Automaton struct {
	stateNames []State
	stateIDs   map[State]int
	liveStates *bitset.BitSet

	symbolNames []Symbol
	symbolIDs   map[Symbol]int
	liveSymbols *bitset.BitSet

	// Start state id, or noState.
	start int

	isAccept *bitset.BitSet

	// source -> symbol -> targets
	delta map[int]map[int]*bitset.BitSet

	deterministic bool

	revision uint64
}

// NewAutomaton Returns an empty automaton that may be nondeterministic.
func NewAutomaton() *Automaton {
	return newAutomaton(false)
}

// NewDeterministicAutomaton Returns an empty automaton that enforces determinism on every mutation.
func NewDeterministicAutomaton() *Automaton {
	return newAutomaton(true)
}

func newAutomaton(deterministic bool) *Automaton {
	return &Automaton{
		stateIDs:      make(map[State]int),
		liveStates:    bitset.New(8),
		symbolNames:   []Symbol{Epsilon},
		symbolIDs:     make(map[Symbol]int),
		liveSymbols:   bitset.New(8),
		start:         noState,
		isAccept:      bitset.New(8),
		delta:         make(map[int]map[int]*bitset.BitSet),
		deterministic: deterministic,
	}
}

func validName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s name is empty", ErrInvalidInput, kind)
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return fmt.Errorf("%w: %s name %q contains whitespace", ErrInvalidInput, kind, name)
		}
	}
	if strings.ContainsAny(name, reservedChars) {
		return fmt.Errorf("%w: %s name %q contains one of %q", ErrInvalidInput, kind, name, reservedChars)
	}
	// Traces print the empty set as EmptySetLabel.
	if name == EmptySetLabel {
		return fmt.Errorf("%w: %s name %q is reserved for the empty set", ErrInvalidInput, kind, name)
	}
	return nil
}

func (a *Automaton) lookupState(name State) (int, error) {
	if err := validName("state", string(name)); err != nil {
		return noState, err
	}
	id, ok := a.stateIDs[name]
	if !ok {
		return noState, fmt.Errorf("%w: state %q", ErrNotFound, name)
	}
	return id, nil
}

func (a *Automaton) lookupSymbol(name Symbol) (int, error) {
	if name == Epsilon {
		return epsilonID, nil
	}
	if err := validName("symbol", string(name)); err != nil {
		return noState, err
	}
	id, ok := a.symbolIDs[name]
	if !ok {
		return noState, fmt.Errorf("%w: symbol %q", ErrNotFound, name)
	}
	return id, nil
}

// AddState Adds a state. Adding a state that already exists is a no-op.
func (a *Automaton) AddState(name State) error {
	if err := validName("state", string(name)); err != nil {
		return err
	}
	if _, ok := a.stateIDs[name]; !ok {
		a.createState(name)
	}
	a.revision++
	return nil
}

func (a *Automaton) createState(name State) int {
	id := len(a.stateNames)
	a.stateNames = append(a.stateNames, name)
	a.stateIDs[name] = id
	a.liveStates.Set(uint(id))
	return id
}

// DeleteState Removes a state together with every transition that enters or leaves it. The state is also
// removed from the final states, and the start state is cleared if it was this state.
func (a *Automaton) DeleteState(name State) error {
	id, err := a.lookupState(name)
	if err != nil {
		return err
	}

	delete(a.delta, id)
	for _, bySymbol := range a.delta {
		for _, targets := range bySymbol {
			targets.Clear(uint(id))
		}
	}
	a.isAccept.Clear(uint(id))
	if a.start == id {
		a.start = noState
	}
	a.liveStates.Clear(uint(id))
	delete(a.stateIDs, name)
	a.revision++
	return nil
}

// AddSymbol Adds a symbol to the alphabet. Adding a symbol that already exists is a no-op.
func (a *Automaton) AddSymbol(name Symbol) error {
	if name == Epsilon {
		return fmt.Errorf("%w: %s is reserved for epsilon transitions", ErrInvalidInput, Epsilon)
	}
	if err := validName("symbol", string(name)); err != nil {
		return err
	}
	if _, ok := a.symbolIDs[name]; !ok {
		a.createSymbol(name)
	}
	a.revision++
	return nil
}

func (a *Automaton) createSymbol(name Symbol) int {
	id := len(a.symbolNames)
	a.symbolNames = append(a.symbolNames, name)
	a.symbolIDs[name] = id
	a.liveSymbols.Set(uint(id))
	return id
}

// DeleteSymbol Removes a symbol from the alphabet together with every transition labelled with it.
func (a *Automaton) DeleteSymbol(name Symbol) error {
	if name == Epsilon {
		return fmt.Errorf("%w: %s is not part of the alphabet", ErrInvalidInput, Epsilon)
	}
	id, err := a.lookupSymbol(name)
	if err != nil {
		return err
	}

	for _, bySymbol := range a.delta {
		delete(bySymbol, id)
	}
	a.liveSymbols.Clear(uint(id))
	delete(a.symbolIDs, name)
	a.revision++
	return nil
}

// AddTransition Adds the transition (src, sym, tgt). Both states must exist and sym must be a declared
// symbol or Epsilon. Adding a transition that already exists is a no-op.
func (a *Automaton) AddTransition(src State, sym Symbol, tgt State) error {
	source, err := a.lookupState(src)
	if err != nil {
		return err
	}
	label, err := a.lookupSymbol(sym)
	if err != nil {
		return err
	}
	dest, err := a.lookupState(tgt)
	if err != nil {
		return err
	}

	targets := a.delta[source][label]
	if a.deterministic {
		if label == epsilonID {
			return fmt.Errorf("%w: epsilon transition %s --%s--> %s", ErrNondeterministic, src, sym, tgt)
		}
		if targets != nil && targets.Any() && !targets.Test(uint(dest)) {
			return fmt.Errorf("%w: %s already has a transition on %s", ErrNondeterministic, src, sym)
		}
	}

	a.addTransitionID(source, label, dest)
	a.revision++
	return nil
}

func (a *Automaton) addTransitionID(source, label, dest int) {
	bySymbol, ok := a.delta[source]
	if !ok {
		bySymbol = make(map[int]*bitset.BitSet)
		a.delta[source] = bySymbol
	}
	targets, ok := bySymbol[label]
	if !ok {
		targets = bitset.New(uint(len(a.stateNames)))
		bySymbol[label] = targets
	}
	targets.Set(uint(dest))
}

// DeleteTransition Removes the transition (src, sym, tgt). A transition that does not exist, including one
// naming undeclared states or symbols, is not an error.
func (a *Automaton) DeleteTransition(src State, sym Symbol, tgt State) error {
	if err := validName("state", string(src)); err != nil {
		return err
	}
	if sym != Epsilon {
		if err := validName("symbol", string(sym)); err != nil {
			return err
		}
	}
	if err := validName("state", string(tgt)); err != nil {
		return err
	}

	source, okSrc := a.stateIDs[src]
	dest, okDst := a.stateIDs[tgt]
	label, okSym := a.symbolIDs[sym]
	if sym == Epsilon {
		label, okSym = epsilonID, true
	}
	if okSrc && okDst && okSym {
		if targets := a.delta[source][label]; targets != nil {
			targets.Clear(uint(dest))
		}
	}
	a.revision++
	return nil
}

// SetStart Makes name the start state.
func (a *Automaton) SetStart(name State) error {
	id, err := a.lookupState(name)
	if err != nil {
		return err
	}
	a.start = id
	a.revision++
	return nil
}

// ToggleFinal Flips whether name is a final state.
func (a *Automaton) ToggleFinal(name State) error {
	id, err := a.lookupState(name)
	if err != nil {
		return err
	}
	a.isAccept.SetTo(uint(id), !a.isAccept.Test(uint(id)))
	a.revision++
	return nil
}

// SetFinal Sets or clears name as a final state.
func (a *Automaton) SetFinal(name State, final bool) error {
	id, err := a.lookupState(name)
	if err != nil {
		return err
	}
	a.isAccept.SetTo(uint(id), final)
	a.revision++
	return nil
}

// Reset Removes every state, symbol and transition. The revision keeps counting.
func (a *Automaton) Reset() {
	a.replace(newAutomaton(a.deterministic))
}

// LoadSample Replaces the automaton with the onboarding sample, see Automata.MakeSample.
func (a *Automaton) LoadSample() {
	a.replace(defaultAutomata.MakeSample())
}

// Replace Replaces the contents of the automaton with a copy of other.
func (a *Automaton) Replace(other *Automaton) {
	a.replace(other.Clone())
}

func (a *Automaton) replace(other *Automaton) {
	revision := a.revision
	*a = *other
	a.revision = revision + 1
}

// Clone Returns a deep copy. The copy starts with the same revision.
func (a *Automaton) Clone() *Automaton {
	b := &Automaton{
		stateNames:    append([]State(nil), a.stateNames...),
		stateIDs:      make(map[State]int, len(a.stateIDs)),
		liveStates:    a.liveStates.Clone(),
		symbolNames:   append([]Symbol(nil), a.symbolNames...),
		symbolIDs:     make(map[Symbol]int, len(a.symbolIDs)),
		liveSymbols:   a.liveSymbols.Clone(),
		start:         a.start,
		isAccept:      a.isAccept.Clone(),
		delta:         make(map[int]map[int]*bitset.BitSet, len(a.delta)),
		deterministic: a.deterministic,
		revision:      a.revision,
	}
	for k, v := range a.stateIDs {
		b.stateIDs[k] = v
	}
	for k, v := range a.symbolIDs {
		b.symbolIDs[k] = v
	}
	for source, bySymbol := range a.delta {
		m := make(map[int]*bitset.BitSet, len(bySymbol))
		for label, targets := range bySymbol {
			m[label] = targets.Clone()
		}
		b.delta[source] = m
	}
	return b
}

// Revision Returns the mutation counter.
func (a *Automaton) Revision() uint64 {
	return a.revision
}

// IsDeterministic Returns true if this automaton was created as a DFA and enforces determinism.
func (a *Automaton) IsDeterministic() bool {
	return a.deterministic
}

// GetNumStates How many states this automaton has.
func (a *Automaton) GetNumStates() int {
	return int(a.liveStates.Count())
}

// GetNumTransitions How many transitions this automaton has.
func (a *Automaton) GetNumTransitions() int {
	n := 0
	for _, bySymbol := range a.delta {
		for _, targets := range bySymbol {
			n += int(targets.Count())
		}
	}
	return n
}

// HasState Returns true if name is a declared state.
func (a *Automaton) HasState(name State) bool {
	_, ok := a.stateIDs[name]
	return ok
}

// HasSymbol Returns true if name is in the alphabet.
func (a *Automaton) HasSymbol(name Symbol) bool {
	_, ok := a.symbolIDs[name]
	return ok
}

// HasEpsilon Returns true if at least one epsilon transition exists.
func (a *Automaton) HasEpsilon() bool {
	for _, bySymbol := range a.delta {
		if targets, ok := bySymbol[epsilonID]; ok && targets.Any() {
			return true
		}
	}
	return false
}

// States Returns the states in creation order.
func (a *Automaton) States() []State {
	states := make([]State, 0, a.GetNumStates())
	for _, id := range a.stateIDList() {
		states = append(states, a.stateNames[id])
	}
	return states
}

// Alphabet Returns the declared symbols in insertion order.
func (a *Automaton) Alphabet() []Symbol {
	ids := a.symbolIDList()
	symbols := make([]Symbol, 0, len(ids))
	for _, id := range ids {
		symbols = append(symbols, a.symbolNames[id])
	}
	return symbols
}

// Start Returns the start state, if one is set.
func (a *Automaton) Start() (State, bool) {
	if a.start == noState {
		return "", false
	}
	return a.stateNames[a.start], true
}

// IsFinal Returns true if name is a final state.
func (a *Automaton) IsFinal(name State) bool {
	id, ok := a.stateIDs[name]
	return ok && a.isAccept.Test(uint(id))
}

// Finals Returns the final states in creation order.
func (a *Automaton) Finals() []State {
	finals := make([]State, 0, a.isAccept.Count())
	for _, id := range a.stateIDList() {
		if a.isAccept.Test(uint(id)) {
			finals = append(finals, a.stateNames[id])
		}
	}
	return finals
}

// Targets Returns the states reachable from src on exactly one sym transition, in creation order.
func (a *Automaton) Targets(src State, sym Symbol) []State {
	source, ok := a.stateIDs[src]
	if !ok {
		return nil
	}
	label, ok := a.symbolIDs[sym]
	if sym == Epsilon {
		label, ok = epsilonID, true
	}
	if !ok {
		return nil
	}
	return a.names(a.delta[source][label])
}

// Transitions Returns every transition, ordered by source, then symbol (Epsilon first), then target.
func (a *Automaton) Transitions() []Transition {
	transitions := make([]Transition, 0)
	labels := append([]int{epsilonID}, a.symbolIDList()...)
	for _, source := range a.stateIDList() {
		bySymbol := a.delta[source]
		if bySymbol == nil {
			continue
		}
		for _, label := range labels {
			for _, target := range a.names(bySymbol[label]) {
				transitions = append(transitions, Transition{
					Source: a.stateNames[source],
					Symbol: a.symbolNames[label],
					Target: target,
				})
			}
		}
	}
	return transitions
}

func (a *Automaton) stateIDList() []int {
	return bitsToIDs(a.liveStates)
}

func (a *Automaton) symbolIDList() []int {
	return bitsToIDs(a.liveSymbols)
}

func (a *Automaton) names(bits *bitset.BitSet) []State {
	if bits == nil {
		return nil
	}
	ids := bitsToIDs(bits)
	names := make([]State, 0, len(ids))
	for _, id := range ids {
		names = append(names, a.stateNames[id])
	}
	return names
}

func bitsToIDs(bits *bitset.BitSet) []int {
	ids := make([]int, 0, bits.Count())
	for i, ok := bits.NextSet(0); ok; i, ok = bits.NextSet(i + 1) {
		ids = append(ids, int(i))
	}
	return ids
}

// next Performs lookup in transitions, assuming determinism. If more than one target exists the earliest
// created one wins. Returns noState if there is no matching transition.
func (a *Automaton) next(state, label int) int {
	targets := a.delta[state][label]
	if targets == nil {
		return noState
	}
	dest, ok := targets.NextSet(0)
	if !ok {
		return noState
	}
	return int(dest)
}
