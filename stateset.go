package automaton

import (
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// IntSet is a set of state ids that can serve as a HashMap key. Two IntSets are equal iff they hold the
// same ids, whatever their concrete type.
type IntSet interface {
	Hashable

	// GetArray Returns the ids in ascending order.
	GetArray() []int

	Size() int
}

// hashIDs sums the MurmurHash3 32-bit finaliser of every id, so the hash does not depend on order.
func hashIDs(ids []int) uint64 {
	h := uint64(len(ids))
	for _, id := range ids {
		k := uint32(id)
		k = (k ^ (k >> 16)) * 0x85ebca6b
		k = (k ^ (k >> 13)) * 0xc2b2ae35
		h += uint64(k ^ (k >> 16))
	}
	return h
}

func equalIntSets(a IntSet, other Hashable) bool {
	switch ptr := other.(type) {
	case *FrozenStateSet:
		if ptr == nil {
			return false
		}
	case *StateSet:
		if ptr == nil {
			return false
		}
	}
	b, ok := other.(IntSet)
	if !ok {
		return false
	}
	if a.Size() != b.Size() || a.Hash() != b.Hash() {
		return false
	}
	return slices.Equal(a.GetArray(), b.GetArray())
}

var _ IntSet = &StateSet{}

// StateSet is a mutable set of state ids.
type StateSet struct {
	bits        *bitset.BitSet
	hashUpdated bool
	hashCode    uint64
}

// NewStateSet Returns a set holding ids.
func NewStateSet(ids ...int) *StateSet {
	s := &StateSet{bits: bitset.New(8)}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add Inserts id and reports whether it was absent.
func (s *StateSet) Add(id int) bool {
	if s.bits.Test(uint(id)) {
		return false
	}
	s.bits.Set(uint(id))
	s.hashUpdated = false
	return true
}

func (s *StateSet) Contains(id int) bool {
	return s.bits.Test(uint(id))
}

// Union Adds every member of other to s.
func (s *StateSet) Union(other *bitset.BitSet) {
	if other == nil {
		return
	}
	s.bits.InPlaceUnion(other)
	s.hashUpdated = false
}

// Intersects Returns true if s and other share a member.
func (s *StateSet) Intersects(other *bitset.BitSet) bool {
	return s.bits.IntersectionCardinality(other) > 0
}

func (s *StateSet) IsEmpty() bool {
	return s.bits.None()
}

func (s *StateSet) Size() int {
	return int(s.bits.Count())
}

func (s *StateSet) GetArray() []int {
	return bitsToIDs(s.bits)
}

func (s *StateSet) Clone() *StateSet {
	return &StateSet{bits: s.bits.Clone(), hashUpdated: s.hashUpdated, hashCode: s.hashCode}
}

func (s *StateSet) Hash() uint64 {
	if s.hashUpdated {
		return s.hashCode
	}
	s.hashCode = hashIDs(s.GetArray())
	s.hashUpdated = true
	return s.hashCode
}

func (s *StateSet) Equals(other Hashable) bool {
	return equalIntSets(s, other)
}

// Freeze Returns an immutable copy carrying the sorted member names and canonical label, resolved
// against a.
func (s *StateSet) Freeze(a *Automaton) *FrozenStateSet {
	ids := s.GetArray()
	names := a.namesOf(ids)
	slices.Sort(names)
	return &FrozenStateSet{
		values:   ids,
		names:    names,
		label:    Label(names),
		hashCode: s.Hash(),
	}
}

var _ IntSet = &FrozenStateSet{}

// FrozenStateSet is an immutable StateSet used as a powerset state during determinization.
type FrozenStateSet struct {
	values   []int
	names    []State
	label    string
	hashCode uint64
}

func (f *FrozenStateSet) Hash() uint64 {
	return f.hashCode
}

func (f *FrozenStateSet) Equals(other Hashable) bool {
	if f == nil {
		ptr, ok := other.(*FrozenStateSet)
		return ok && ptr == nil
	}
	return equalIntSets(f, other)
}

func (f *FrozenStateSet) GetArray() []int {
	return f.values
}

func (f *FrozenStateSet) Size() int {
	return len(f.values)
}

// Names Returns the member names in lexical order.
func (f *FrozenStateSet) Names() []State {
	return f.names
}

// Label Returns the canonical label, see Label.
func (f *FrozenStateSet) Label() string {
	return f.label
}

// EmptySetLabel labels the empty set of states.
const EmptySetLabel = "∅"

// Label Returns the canonical, order independent label of a set of states: the names sorted and joined
// as {a,b,c}. The empty set is labelled EmptySetLabel.
func Label(names []State) string {
	if len(names) == 0 {
		return EmptySetLabel
	}
	sorted := make([]string, len(names))
	for i, n := range names {
		sorted[i] = string(n)
	}
	slices.Sort(sorted)
	return "{" + strings.Join(sorted, ",") + "}"
}

func (a *Automaton) namesOf(ids []int) []State {
	names := make([]State, len(ids))
	for i, id := range ids {
		names[i] = a.stateNames[id]
	}
	return names
}

// StateSetOf Returns the set of the named states.
func (a *Automaton) StateSetOf(names ...State) (*StateSet, error) {
	set := NewStateSet()
	for _, name := range names {
		id, err := a.lookupState(name)
		if err != nil {
			return nil, err
		}
		set.Add(id)
	}
	return set, nil
}

// Names Returns the names of the members of set, in creation order.
func (a *Automaton) Names(set IntSet) []State {
	return a.namesOf(set.GetArray())
}

// formatSet renders a set of states as "q0, q1", or EmptySetLabel.
func (a *Automaton) formatSet(set IntSet) string {
	if set.Size() == 0 {
		return EmptySetLabel
	}
	names := a.Names(set)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}
