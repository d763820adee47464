// Package diagram turns an automaton into a graph description and, when graphviz is installed, into an
// image. Rendering is best effort: a missing or failing dot binary is reported as ErrUnavailable and
// never touches the automaton.
package diagram

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	automaton "github.com/geange/automaton-editor"
)

// Node is one state.
type Node struct {
	ID    string `json:"id"`
	Start bool   `json:"start,omitempty"`
	Final bool   `json:"final,omitempty"`
}

// Edge is every transition between one ordered pair of states, labelled with the comma separated symbols.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Graph is the layout-free description of an automaton.
type Graph struct {
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Describe builds the graph of a. Nodes follow state creation order; edges follow the order of
// automaton.Transitions, merged per (from, to) pair.
func Describe(name string, a *automaton.Automaton) *Graph {
	g := &Graph{
		Name:  name,
		Nodes: make([]Node, 0, a.GetNumStates()),
		Edges: make([]Edge, 0),
	}

	start, hasStart := a.Start()
	for _, s := range a.States() {
		g.Nodes = append(g.Nodes, Node{
			ID:    string(s),
			Start: hasStart && s == start,
			Final: a.IsFinal(s),
		})
	}

	type pair struct{ from, to automaton.State }
	index := make(map[pair]int)
	labels := make([][]string, 0)
	for _, t := range a.Transitions() {
		key := pair{t.Source, t.Target}
		i, ok := index[key]
		if !ok {
			i = len(g.Edges)
			index[key] = i
			g.Edges = append(g.Edges, Edge{From: string(t.Source), To: string(t.Target)})
			labels = append(labels, nil)
		}
		labels[i] = append(labels[i], string(t.Symbol))
	}
	for i := range g.Edges {
		g.Edges[i].Label = strings.Join(labels[i], ", ")
	}
	return g
}

// Start returns the start node id.
func (g *Graph) Start() (string, bool) {
	for _, n := range g.Nodes {
		if n.Start {
			return n.ID, true
		}
	}
	return "", false
}

// startNode is the invisible point the start arrow leaves from.
const startNode = "__start__"

// WriteDOT writes g in the graphviz dot language: left to right, final states as double circles, and an
// arrow from a point into the start state.
func WriteDOT(out io.Writer, g *Graph) error {
	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, "digraph %s {\n", strconv.Quote(g.Name))
	_, _ = fmt.Fprintln(&b, "  rankdir=LR;")
	_, _ = fmt.Fprintln(&b, "  node [shape=circle];")

	for _, n := range g.Nodes {
		if n.Final {
			_, _ = fmt.Fprintf(&b, "  %s [shape=doublecircle];\n", strconv.Quote(n.ID))
		} else {
			_, _ = fmt.Fprintf(&b, "  %s;\n", strconv.Quote(n.ID))
		}
	}

	if start, ok := g.Start(); ok {
		_, _ = fmt.Fprintf(&b, "  %s [shape=point];\n", startNode)
		_, _ = fmt.Fprintf(&b, "  %s -> %s;\n", startNode, strconv.Quote(start))
	}

	for _, e := range g.Edges {
		_, _ = fmt.Fprintf(&b, "  %s -> %s [label=%s];\n", strconv.Quote(e.From), strconv.Quote(e.To), strconv.Quote(e.Label))
	}
	_, _ = fmt.Fprintln(&b, "}")

	_, err := out.Write(b.Bytes())
	return err
}

// DOT returns g in the dot language.
func DOT(g *Graph) string {
	var b strings.Builder
	_ = WriteDOT(&b, g)
	return b.String()
}
