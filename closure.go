package automaton

// EpsilonClosureSet Returns the smallest superset of set closed under epsilon transitions. Each state
// enters the work list at most once, so epsilon cycles terminate. set itself is not modified.
func (a *Automaton) EpsilonClosureSet(set IntSet) *StateSet {
	closure := NewStateSet(set.GetArray()...)
	workList := set.GetArray()

	for len(workList) > 0 {
		s := workList[len(workList)-1]
		workList = workList[:len(workList)-1]

		targets := a.delta[s][epsilonID]
		if targets == nil {
			continue
		}
		for t, ok := targets.NextSet(0); ok; t, ok = targets.NextSet(t + 1) {
			if closure.Add(int(t)) {
				workList = append(workList, int(t))
			}
		}
	}
	return closure
}

// EpsilonClosure Returns the epsilon closure of the named states, in creation order.
func (a *Automaton) EpsilonClosure(states ...State) ([]State, error) {
	set, err := a.StateSetOf(states...)
	if err != nil {
		return nil, err
	}
	return a.Names(a.EpsilonClosureSet(set)), nil
}

// move Returns the union of the label successors of every member of set, without closing over epsilon.
func (a *Automaton) move(set IntSet, label int) *StateSet {
	moved := NewStateSet()
	for _, s := range set.GetArray() {
		moved.Union(a.delta[s][label])
	}
	return moved
}

// step Returns closure(move(set, label)).
func (a *Automaton) step(set IntSet, label int) *StateSet {
	return a.EpsilonClosureSet(a.move(set, label))
}
