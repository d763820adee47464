package automaton

import (
	"github.com/bits-and-blooms/bitset"
)

// Analysis summarises structural properties of an automaton that do not stop it from running.
type Analysis struct {
	Deterministic bool    `json:"deterministic"`
	HasEpsilon    bool    `json:"has_epsilon"`
	EmptyLanguage bool    `json:"empty_language"`
	Unreachable   []State `json:"unreachable"`
	// States that cannot reach a final state.
	Dead []State `json:"dead"`
}

// Analyse Reports unreachable and dead states and whether the accepted language is empty.
func Analyse(a *Automaton) *Analysis {
	reachable := getLiveStatesFromInitial(a)
	coReachable := getLiveStatesToAccept(a)

	analysis := &Analysis{
		Deterministic: a.IsDeterministic(),
		HasEpsilon:    a.HasEpsilon(),
		EmptyLanguage: IsEmptyAutomaton(a),
		Unreachable:   make([]State, 0),
		Dead:          make([]State, 0),
	}
	for _, id := range a.stateIDList() {
		if !reachable.Test(uint(id)) {
			analysis.Unreachable = append(analysis.Unreachable, a.stateNames[id])
		}
		if !coReachable.Test(uint(id)) {
			analysis.Dead = append(analysis.Dead, a.stateNames[id])
		}
	}
	return analysis
}

// IsEmptyAutomaton Returns true if the given automaton accepts no strings.
func IsEmptyAutomaton(a *Automaton) bool {
	if a.start == noState {
		return true
	}
	return getLiveStatesFromInitial(a).IntersectionCardinality(a.isAccept) == 0
}

// getLiveStatesFromInitial Returns the states reachable from the start state over any transition,
// epsilon included.
func getLiveStatesFromInitial(a *Automaton) *bitset.BitSet {
	live := bitset.New(uint(len(a.stateNames)))
	if a.start == noState {
		return live
	}

	workList := []int{a.start}
	live.Set(uint(a.start))
	for len(workList) > 0 {
		s := workList[0]
		workList = workList[1:]

		for _, targets := range a.delta[s] {
			for t, ok := targets.NextSet(0); ok; t, ok = targets.NextSet(t + 1) {
				if !live.Test(t) {
					live.Set(t)
					workList = append(workList, int(t))
				}
			}
		}
	}
	return live
}

// getLiveStatesToAccept Returns the states from which some final state can be reached.
func getLiveStatesToAccept(a *Automaton) *bitset.BitSet {
	reversed := make(map[int][]int)
	for source, bySymbol := range a.delta {
		for _, targets := range bySymbol {
			for t, ok := targets.NextSet(0); ok; t, ok = targets.NextSet(t + 1) {
				reversed[int(t)] = append(reversed[int(t)], source)
			}
		}
	}

	live := bitset.New(uint(len(a.stateNames)))
	workList := make([]int, 0)
	for _, id := range a.stateIDList() {
		if a.isAccept.Test(uint(id)) {
			live.Set(uint(id))
			workList = append(workList, id)
		}
	}
	for len(workList) > 0 {
		s := workList[0]
		workList = workList[1:]
		for _, p := range reversed[s] {
			if !live.Test(uint(p)) {
				live.Set(uint(p))
				workList = append(workList, p)
			}
		}
	}
	return live
}
