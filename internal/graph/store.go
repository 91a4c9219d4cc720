package graph

import (
	"fmt"

	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// Store owns the independent named graphs. Graphs never share vertices or edges.
type Store struct {
	graphs map[core.NamedGraph]*Graph
}

// NewStore creates a store with an empty graph for every named graph.
func NewStore() *Store {
	s := &Store{graphs: make(map[core.NamedGraph]*Graph)}
	for _, name := range core.AllGraphs() {
		s.graphs[name] = newGraph(name)
	}
	return s
}

// Open returns the handle for a named graph.
func (s *Store) Open(name core.NamedGraph) (*Graph, error) {
	g, ok := s.graphs[name]
	if !ok {
		return nil, core.NewError(core.KindUnknownGraph, "open graph", fmt.Errorf("%q", string(name)))
	}
	return g, nil
}

// MustOpen is like Open but panics on an unknown graph. Intended for tests and fixtures.
func (s *Store) MustOpen(name core.NamedGraph) *Graph {
	g, err := s.Open(name)
	if err != nil {
		panic(err)
	}
	return g
}

// FindVertex looks up a vertex by guid in a named graph.
func (s *Store) FindVertex(name core.NamedGraph, guid string) (core.Vertex, error) {
	g, err := s.Open(name)
	if err != nil {
		return core.Vertex{}, err
	}
	return g.FindVertex(guid)
}

// Graphs returns every graph in the order of core.AllGraphs.
func (s *Store) Graphs() []*Graph {
	graphs := make([]*Graph, 0, len(s.graphs))
	for _, name := range core.AllGraphs() {
		graphs = append(graphs, s.graphs[name])
	}
	return graphs
}
