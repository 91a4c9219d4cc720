package traversal

import (
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// glossary collects the terms connected to start through term-to-term edges,
// in either direction, and the data elements assigned to any of them.
func (w *walker) glossary(start core.Vertex) (*core.Subgraph, error) {
	sub := core.NewSubgraph(w.r.Name())
	sub.AddVertex(start)

	visited := map[string]bool{start.GUID: true}
	terms := []core.Vertex{start}
	stack := []core.Vertex{start}
	var termEdges []core.Edge

	for len(stack) > 0 {
		if err := w.checkContext("glossary"); err != nil {
			return nil, err
		}
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, e := range w.r.Edges(u.GUID, core.EdgeTermToTerm, core.DirectionBoth) {
			termEdges = append(termEdges, e)
			other := e.Target
			if other == u.GUID {
				other = e.Source
			}
			if visited[other] {
				continue
			}
			visited[other] = true
			v, err := w.r.FindVertex(other)
			if err != nil {
				return nil, err
			}
			terms = append(terms, v)
			stack = append(stack, v)
			sub.AddVertex(v)
		}
	}

	for _, e := range termEdges {
		sub.AddEdge(e)
	}

	for _, term := range terms {
		for _, e := range w.r.Edges(term.GUID, core.EdgeSemanticAssignment, core.DirectionIn) {
			element, err := w.r.FindVertex(e.Source)
			if err != nil {
				return nil, err
			}
			sub.AddVertex(element)
			sub.AddEdge(e)
		}
	}
	return sub, nil
}
