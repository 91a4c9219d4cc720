// Package graph provides the named property graph store used by the lineage engine.
// Each named graph keeps arena-indexed vertex and edge tables with adjacency lists,
// supports many concurrent readers and a single writer at a time.
package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// Reader is a read-only view of a named graph.
type Reader interface {
	// Name returns the named graph the reader belongs to.
	Name() core.NamedGraph
	// FindVertex returns a copy of the vertex with the guid.
	FindVertex(guid string) (core.Vertex, error)
	// Edges returns the edges with the label incident to the vertex in the given direction.
	Edges(guid, label string, dir core.Direction) []core.Edge
	// Neighbors returns the vertices across the edges returned by Edges, deduplicated.
	Neighbors(guid, label string, dir core.Direction) []core.Vertex
	// Degree returns the number of edges with the label incident in the given direction.
	Degree(guid, label string, dir core.Direction) int
	// Snapshot returns copies of every vertex and edge in insertion order.
	Snapshot() ([]core.Vertex, []core.Edge)
	// Stats returns vertex and edge counts.
	Stats() Stats
}

// Stats summarizes a graph.
type Stats struct {
	Graph        core.NamedGraph `json:"graph"`
	Vertices     int             `json:"vertices"`
	Edges        int             `json:"edges"`
	VertexLabels map[string]int  `json:"vertex_labels"`
	EdgeLabels   map[string]int  `json:"edge_labels"`
}

type vertexRecord struct {
	vertex core.Vertex
	out    []int // edge indexes where this vertex is the source
	in     []int // edge indexes where this vertex is the target
}

type edgeRecord struct {
	label  string
	source int
	target int
}

// Graph is a single named property graph.
type Graph struct {
	name core.NamedGraph

	mu       sync.RWMutex
	vertices []vertexRecord
	byGUID   map[string]int
	edges    []edgeRecord
	edgeKeys map[string]int
}

func newGraph(name core.NamedGraph) *Graph {
	return &Graph{
		name:     name,
		byGUID:   make(map[string]int),
		edgeKeys: make(map[string]int),
	}
}

// Name returns the graph's name.
func (g *Graph) Name() core.NamedGraph {
	return g.name
}

// View runs fn with a reader that sees a consistent state of the graph.
// No write can be applied while fn runs.
func (g *Graph) View(fn func(r Reader) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn(readView{g})
}

// FindVertex returns a copy of the vertex with the guid.
func (g *Graph) FindVertex(guid string) (core.Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return readView{g}.FindVertex(guid)
}

// Edges returns the edges with the label incident to the vertex.
func (g *Graph) Edges(guid, label string, dir core.Direction) []core.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return readView{g}.Edges(guid, label, dir)
}

// Neighbors returns the vertices adjacent to guid over edges with the label.
func (g *Graph) Neighbors(guid, label string, dir core.Direction) []core.Vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return readView{g}.Neighbors(guid, label, dir)
}

// Degree returns the number of edges with the label incident to guid.
func (g *Graph) Degree(guid, label string, dir core.Direction) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return readView{g}.Degree(guid, label, dir)
}

// Snapshot returns copies of all vertices and edges.
func (g *Graph) Snapshot() ([]core.Vertex, []core.Edge) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return readView{g}.Snapshot()
}

// Stats returns vertex and edge counts.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return readView{g}.Stats()
}

// VertexCount returns the number of vertices in the graph.
func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// AddVertex inserts or replaces a vertex.
func (g *Graph) AddVertex(v core.Vertex) error {
	return g.Update(func(tx *Tx) error {
		return tx.PutVertex(v)
	})
}

// AddEdge inserts an edge between two existing vertices. Duplicate edges are ignored.
func (g *Graph) AddEdge(e core.Edge) error {
	return g.Update(func(tx *Tx) error {
		return tx.PutEdge(e)
	})
}

// Update applies a batch of writes atomically. If fn or validation fails
// nothing is applied.
func (g *Graph) Update(fn func(tx *Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	tx := &Tx{graph: g, pending: make(map[string]struct{})}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.validate(); err != nil {
		return err
	}
	tx.apply()
	return nil
}

// Replace swaps the whole content of the graph for the batch built by fn.
// Readers see either the old or the new content, never a mix.
func (g *Graph) Replace(fn func(tx *Tx) error) error {
	fresh := newGraph(g.name)
	tx := &Tx{graph: fresh, pending: make(map[string]struct{})}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.validate(); err != nil {
		return err
	}
	tx.apply()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.vertices = fresh.vertices
	g.byGUID = fresh.byGUID
	g.edges = fresh.edges
	g.edgeKeys = fresh.edgeKeys
	return nil
}

// Clear removes every vertex and edge.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vertices = nil
	g.byGUID = make(map[string]int)
	g.edges = nil
	g.edgeKeys = make(map[string]int)
}

// Tx collects writes for a single Update call.
type Tx struct {
	graph    *Graph
	vertices []core.Vertex
	edges    []core.Edge
	pending  map[string]struct{}
}

// PutVertex queues an insert or replace of v.
func (tx *Tx) PutVertex(v core.Vertex) error {
	if strings.TrimSpace(v.GUID) == "" {
		return core.NewError(core.KindInvalidGraph, "put vertex", fmt.Errorf("empty guid"))
	}
	if v.IsCondensed() || strings.HasPrefix(v.GUID, core.CondensedPrefix) {
		return core.NewError(core.KindInvalidGraph, "put vertex",
			fmt.Errorf("vertex %q uses the reserved condensation label or prefix", v.GUID))
	}
	tx.vertices = append(tx.vertices, v.Clone())
	tx.pending[v.GUID] = struct{}{}
	return nil
}

// PutEdge queues an insert of e. Both endpoints must exist in the graph or in this batch.
func (tx *Tx) PutEdge(e core.Edge) error {
	if e.Label == "" {
		return core.NewError(core.KindInvalidGraph, "put edge", fmt.Errorf("empty label for %s->%s", e.Source, e.Target))
	}
	tx.edges = append(tx.edges, e)
	return nil
}

// Exists reports whether a vertex with the guid is in the graph or queued in this batch.
func (tx *Tx) Exists(guid string) bool {
	if _, ok := tx.pending[guid]; ok {
		return true
	}
	_, ok := tx.graph.byGUID[guid]
	return ok
}

func (tx *Tx) validate() error {
	for _, e := range tx.edges {
		if !tx.Exists(e.Source) {
			return core.NewError(core.KindInvalidGraph, "put edge",
				fmt.Errorf("source vertex %q does not exist in %s", e.Source, tx.graph.name))
		}
		if !tx.Exists(e.Target) {
			return core.NewError(core.KindInvalidGraph, "put edge",
				fmt.Errorf("target vertex %q does not exist in %s", e.Target, tx.graph.name))
		}
	}
	return nil
}

func (tx *Tx) apply() {
	g := tx.graph
	for _, v := range tx.vertices {
		if idx, ok := g.byGUID[v.GUID]; ok {
			g.vertices[idx].vertex = v
			continue
		}
		g.byGUID[v.GUID] = len(g.vertices)
		g.vertices = append(g.vertices, vertexRecord{vertex: v})
	}
	for _, e := range tx.edges {
		key := e.Key()
		if _, ok := g.edgeKeys[key]; ok {
			continue
		}
		src, dst := g.byGUID[e.Source], g.byGUID[e.Target]
		idx := len(g.edges)
		g.edges = append(g.edges, edgeRecord{label: e.Label, source: src, target: dst})
		g.edgeKeys[key] = idx
		g.vertices[src].out = append(g.vertices[src].out, idx)
		g.vertices[dst].in = append(g.vertices[dst].in, idx)
	}
}

// readView implements Reader without locking; callers hold the read lock.
type readView struct {
	g *Graph
}

func (r readView) Name() core.NamedGraph { return r.g.name }

func (r readView) FindVertex(guid string) (core.Vertex, error) {
	idx, ok := r.g.byGUID[guid]
	if !ok {
		return core.Vertex{}, core.NewError(core.KindVertexNotFound, "find vertex",
			fmt.Errorf("guid %q in graph %s", guid, r.g.name))
	}
	return r.g.vertices[idx].vertex.Clone(), nil
}

func (r readView) edgeIndexes(guid, label string, dir core.Direction) []int {
	if label == "" {
		return nil
	}
	idx, ok := r.g.byGUID[guid]
	if !ok {
		return nil
	}
	rec := r.g.vertices[idx]

	var candidates []int
	switch dir {
	case core.DirectionIn:
		candidates = rec.in
	case core.DirectionOut:
		candidates = rec.out
	case core.DirectionBoth:
		candidates = make([]int, 0, len(rec.in)+len(rec.out))
		candidates = append(candidates, rec.out...)
		candidates = append(candidates, rec.in...)
	}

	var result []int
	for _, ei := range candidates {
		if r.g.edges[ei].label == label {
			result = append(result, ei)
		}
	}
	return result
}

func (r readView) edge(ei int) core.Edge {
	rec := r.g.edges[ei]
	return core.Edge{
		Label:  rec.label,
		Source: r.g.vertices[rec.source].vertex.GUID,
		Target: r.g.vertices[rec.target].vertex.GUID,
	}
}

func (r readView) Edges(guid, label string, dir core.Direction) []core.Edge {
	idxs := r.edgeIndexes(guid, label, dir)
	edges := make([]core.Edge, 0, len(idxs))
	for _, ei := range idxs {
		edges = append(edges, r.edge(ei))
	}
	return edges
}

func (r readView) Neighbors(guid, label string, dir core.Direction) []core.Vertex {
	self := r.g.byGUID[guid]
	seen := make(map[int]bool)
	var result []core.Vertex
	for _, ei := range r.edgeIndexes(guid, label, dir) {
		rec := r.g.edges[ei]
		other := rec.target
		if rec.target == self {
			other = rec.source
		}
		if seen[other] {
			continue
		}
		seen[other] = true
		result = append(result, r.g.vertices[other].vertex.Clone())
	}
	return result
}

func (r readView) Degree(guid, label string, dir core.Direction) int {
	return len(r.edgeIndexes(guid, label, dir))
}

func (r readView) Snapshot() ([]core.Vertex, []core.Edge) {
	vertices := make([]core.Vertex, len(r.g.vertices))
	for i, rec := range r.g.vertices {
		vertices[i] = rec.vertex.Clone()
	}
	edges := make([]core.Edge, len(r.g.edges))
	for i := range r.g.edges {
		edges[i] = r.edge(i)
	}
	return vertices, edges
}

func (r readView) Stats() Stats {
	s := Stats{
		Graph:        r.g.name,
		Vertices:     len(r.g.vertices),
		Edges:        len(r.g.edges),
		VertexLabels: make(map[string]int),
		EdgeLabels:   make(map[string]int),
	}
	for _, rec := range r.g.vertices {
		s.VertexLabels[rec.vertex.Label]++
	}
	for _, rec := range r.g.edges {
		s.EdgeLabels[rec.label]++
	}
	return s
}

// SortedLabels returns the keys of a label histogram in order.
func SortedLabels(m map[string]int) []string {
	labels := make([]string, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
