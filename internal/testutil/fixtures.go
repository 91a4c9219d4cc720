package testutil

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// NewStore returns a store and its MOCK graph.
func NewStore(t testing.TB) (*graph.Store, *graph.Graph) {
	t.Helper()
	s := graph.NewStore()
	return s, s.MustOpen(core.GraphMock)
}

// vertexLabelFor picks the entity type used for vertices created by Flow.
func vertexLabelFor(edgeLabel string) string {
	switch edgeLabel {
	case core.EdgeTableFlow:
		return "table"
	case core.EdgeColumnFlow:
		return "column"
	}
	return "entity"
}

// Flow adds edges written as "src>dst" with the given label. Missing vertices are
// created with an entity type matching the label.
func Flow(t testing.TB, g *graph.Graph, label string, specs ...string) {
	t.Helper()
	err := g.Update(func(tx *graph.Tx) error {
		for _, spec := range specs {
			src, dst, ok := strings.Cut(spec, ">")
			if !ok {
				t.Fatalf("invalid edge spec %q, want src>dst", spec)
			}
			for _, id := range []string{src, dst} {
				if tx.Exists(id) {
					continue
				}
				if err := tx.PutVertex(Entity(id, vertexLabelFor(label))); err != nil {
					return err
				}
			}
			if err := tx.PutEdge(core.Edge{Label: label, Source: src, Target: dst}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to build flow: %v", err)
	}
}

// Entity returns a vertex with a qualifiedName property.
func Entity(guid, label string) core.Vertex {
	return core.Vertex{
		GUID:       guid,
		Label:      label,
		Properties: map[string]string{"qualifiedName": "qn:" + guid},
	}
}

// Terms adds glossary term vertices.
func Terms(t testing.TB, g *graph.Graph, guids ...string) {
	t.Helper()
	for _, id := range guids {
		if err := g.AddVertex(Entity(id, core.LabelGlossaryTerm)); err != nil {
			t.Fatalf("failed to add term %s: %v", id, err)
		}
	}
}

// Relate connects two existing glossary terms with a term-to-term edge.
func Relate(t testing.TB, g *graph.Graph, from, to string) {
	t.Helper()
	if err := g.AddEdge(core.Edge{Label: core.EdgeTermToTerm, Source: from, Target: to}); err != nil {
		t.Fatalf("failed to relate %s and %s: %v", from, to, err)
	}
}

// Assign creates the data element if needed and classifies it with the term.
func Assign(t testing.TB, g *graph.Graph, element, elementLabel, term string) {
	t.Helper()
	err := g.Update(func(tx *graph.Tx) error {
		if !tx.Exists(element) {
			if err := tx.PutVertex(Entity(element, elementLabel)); err != nil {
				return err
			}
		}
		return tx.PutEdge(core.Edge{Label: core.EdgeSemanticAssignment, Source: element, Target: term})
	})
	if err != nil {
		t.Fatalf("failed to assign %s to %s: %v", term, element, err)
	}
}
