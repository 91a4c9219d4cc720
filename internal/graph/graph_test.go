package graph

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/leapstack-labs/leapgraph/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(guid string) core.Vertex {
	return core.Vertex{GUID: guid, Label: "table", Properties: map[string]string{"name": guid}}
}

func flow(src, dst string) core.Edge {
	return core.Edge{Label: core.EdgeTableFlow, Source: src, Target: dst}
}

func TestStore_OpenAllGraphs(t *testing.T) {
	s := NewStore()

	for _, name := range core.AllGraphs() {
		g, err := s.Open(name)
		require.NoError(t, err)
		assert.Equal(t, name, g.Name())
	}
	assert.Len(t, s.Graphs(), 4)
}

func TestStore_OpenUnknownGraph(t *testing.T) {
	s := NewStore()

	g, err := s.Open("ARCHIVE")
	assert.Nil(t, g)
	assert.ErrorIs(t, err, core.ErrUnknownGraph)

	_, err = s.FindVertex("ARCHIVE", "a")
	assert.ErrorIs(t, err, core.ErrUnknownGraph)
}

func TestStore_GraphsAreIndependent(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.MustOpen(core.GraphMain).AddVertex(table("a")))

	_, err := s.FindVertex(core.GraphMain, "a")
	require.NoError(t, err)

	_, err = s.FindVertex(core.GraphBuffer, "a")
	assert.ErrorIs(t, err, core.ErrVertexNotFound)
}

func TestGraph_AddVertexAndEdge(t *testing.T) {
	g := newGraph(core.GraphMain)

	require.NoError(t, g.AddVertex(table("a")))
	require.NoError(t, g.AddVertex(table("b")))
	require.NoError(t, g.AddEdge(flow("a", "b")))
	// duplicate edge is ignored
	require.NoError(t, g.AddEdge(flow("a", "b")))

	assert.Equal(t, 2, g.VertexCount())
	assert.Equal(t, 1, g.EdgeCount())

	out := g.Neighbors("a", core.EdgeTableFlow, core.DirectionOut)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].GUID)

	in := g.Neighbors("b", core.EdgeTableFlow, core.DirectionIn)
	require.Len(t, in, 1)
	assert.Equal(t, "a", in[0].GUID)

	assert.Empty(t, g.Neighbors("a", core.EdgeColumnFlow, core.DirectionOut))
	assert.Empty(t, g.Neighbors("a", "", core.DirectionOut), "empty label finds no neighbours")
}

func TestGraph_AddEdge_InvalidEndpoints(t *testing.T) {
	g := newGraph(core.GraphMain)
	require.NoError(t, g.AddVertex(table("a")))

	err := g.AddEdge(flow("a", "missing"))
	assert.ErrorIs(t, err, core.ErrInvalidGraph)

	err = g.AddEdge(flow("missing", "a"))
	assert.ErrorIs(t, err, core.ErrInvalidGraph)

	err = g.AddEdge(core.Edge{Source: "a", Target: "a"})
	assert.ErrorIs(t, err, core.ErrInvalidGraph)
}

func TestGraph_RejectsReservedVertices(t *testing.T) {
	g := newGraph(core.GraphMain)

	assert.ErrorIs(t, g.AddVertex(core.Vertex{GUID: "", Label: "table"}), core.ErrInvalidGraph)
	assert.ErrorIs(t, g.AddVertex(core.Vertex{GUID: "x", Label: core.LabelCondensed}), core.ErrInvalidGraph)
	assert.ErrorIs(t, g.AddVertex(core.Vertex{GUID: core.CondensedPrefix + "1", Label: "table"}), core.ErrInvalidGraph)
}

func TestGraph_UpsertReplacesVertex(t *testing.T) {
	g := newGraph(core.GraphMain)
	require.NoError(t, g.AddVertex(table("a")))
	require.NoError(t, g.AddVertex(core.Vertex{GUID: "a", Label: "column"}))

	v, err := g.FindVertex("a")
	require.NoError(t, err)
	assert.Equal(t, "column", v.Label)
	assert.Equal(t, 1, g.VertexCount())
}

func TestGraph_UpdateIsAtomic(t *testing.T) {
	g := newGraph(core.GraphMain)

	err := g.Update(func(tx *Tx) error {
		require.NoError(t, tx.PutVertex(table("a")))
		require.NoError(t, tx.PutVertex(table("b")))
		return tx.PutEdge(flow("a", "c"))
	})
	require.ErrorIs(t, err, core.ErrInvalidGraph)
	assert.Equal(t, 0, g.VertexCount(), "failed batch must not be applied")

	sentinel := errors.New("abort")
	err = g.Update(func(tx *Tx) error {
		_ = tx.PutVertex(table("a"))
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, g.VertexCount())

	err = g.Update(func(tx *Tx) error {
		_ = tx.PutVertex(table("a"))
		_ = tx.PutVertex(table("b"))
		return tx.PutEdge(flow("a", "b"))
	})
	require.NoError(t, err)
	assert.Equal(t, 2, g.VertexCount())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraph_FindVertexReturnsCopy(t *testing.T) {
	g := newGraph(core.GraphMain)
	require.NoError(t, g.AddVertex(table("a")))

	v, err := g.FindVertex("a")
	require.NoError(t, err)
	v.Properties["name"] = "changed"

	again, err := g.FindVertex("a")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Properties["name"])
}

func TestGraph_EdgesBothDirections(t *testing.T) {
	g := newGraph(core.GraphMain)
	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, g.AddVertex(core.Vertex{GUID: id, Label: core.LabelGlossaryTerm}))
	}
	require.NoError(t, g.AddEdge(core.Edge{Label: core.EdgeTermToTerm, Source: "t1", Target: "t2"}))
	require.NoError(t, g.AddEdge(core.Edge{Label: core.EdgeTermToTerm, Source: "t3", Target: "t2"}))

	edges := g.Edges("t2", core.EdgeTermToTerm, core.DirectionBoth)
	assert.Len(t, edges, 2)
	assert.Equal(t, 2, g.Degree("t2", core.EdgeTermToTerm, core.DirectionIn))
	assert.Equal(t, 0, g.Degree("t2", core.EdgeTermToTerm, core.DirectionOut))

	n := g.Neighbors("t2", core.EdgeTermToTerm, core.DirectionBoth)
	assert.ElementsMatch(t, []string{"t1", "t3"}, []string{n[0].GUID, n[1].GUID})
}

func TestGraph_SnapshotAndStats(t *testing.T) {
	g := newGraph(core.GraphHistory)
	require.NoError(t, g.AddVertex(table("a")))
	require.NoError(t, g.AddVertex(core.Vertex{GUID: "p", Label: "process"}))
	require.NoError(t, g.AddEdge(flow("a", "p")))

	vertices, edges := g.Snapshot()
	assert.Len(t, vertices, 2)
	assert.Equal(t, []core.Edge{flow("a", "p")}, edges)

	stats := g.Stats()
	assert.Equal(t, core.GraphHistory, stats.Graph)
	assert.Equal(t, 1, stats.VertexLabels["table"])
	assert.Equal(t, 1, stats.EdgeLabels[core.EdgeTableFlow])
	assert.Equal(t, []string{"process", "table"}, SortedLabels(stats.VertexLabels))

	g.Clear()
	assert.Equal(t, 0, g.VertexCount())
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_ConcurrentReadersAndWriter(t *testing.T) {
	g := newGraph(core.GraphMain)
	require.NoError(t, g.AddVertex(table("root")))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			id := fmt.Sprintf("v%d", i)
			_ = g.Update(func(tx *Tx) error {
				_ = tx.PutVertex(table(id))
				return tx.PutEdge(flow("root", id))
			})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = g.View(func(rd Reader) error {
					// a batch adds a vertex and its edge together
					vertices, edges := rd.Snapshot()
					assert.Equal(t, len(vertices)-1, len(edges))
					return nil
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 201, g.VertexCount())
}

func TestGraph_Replace(t *testing.T) {
	g := newGraph(core.GraphBuffer)
	require.NoError(t, g.AddVertex(table("old")))

	err := g.Replace(func(tx *Tx) error {
		assert.False(t, tx.Exists("old"), "replace starts from an empty graph")
		_ = tx.PutVertex(table("a"))
		_ = tx.PutVertex(table("b"))
		return tx.PutEdge(flow("a", "b"))
	})
	require.NoError(t, err)

	_, err = g.FindVertex("old")
	assert.ErrorIs(t, err, core.ErrVertexNotFound)
	assert.Equal(t, 2, g.VertexCount())

	err = g.Replace(func(tx *Tx) error {
		return tx.PutEdge(flow("x", "y"))
	})
	assert.ErrorIs(t, err, core.ErrInvalidGraph)
	assert.Equal(t, 2, g.VertexCount(), "failed replace keeps the previous content")
}
