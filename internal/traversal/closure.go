package traversal

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// cancelCheckInterval is how many expanded vertices may pass between context checks.
const cancelCheckInterval = 1024

// walker runs closures for one query and enforces the vertex budget.
type walker struct {
	ctx      context.Context
	r        graph.Reader
	limit    int
	expanded int
}

func (w *walker) checkContext(op string) error {
	if err := w.ctx.Err(); err != nil {
		return core.NewError(core.KindCancelled, op, err)
	}
	return nil
}

// closure returns every vertex reachable from start by repeatedly following
// label edges in dir, in breadth-first discovery order. start itself is never
// part of the result.
func (w *walker) closure(start core.Vertex, label string, dir core.Direction) ([]core.Vertex, error) {
	visited := map[string]bool{start.GUID: true}
	frontier := []core.Vertex{start}
	var result []core.Vertex

	for len(frontier) > 0 {
		if err := w.checkContext("closure"); err != nil {
			return nil, err
		}
		var next []core.Vertex
		for _, u := range frontier {
			w.expanded++
			if w.expanded%cancelCheckInterval == 0 {
				if err := w.checkContext("closure"); err != nil {
					return nil, err
				}
			}
			for _, n := range w.r.Neighbors(u.GUID, label, dir) {
				if visited[n.GUID] {
					continue
				}
				visited[n.GUID] = true
				result = append(result, n)
				next = append(next, n)
				if w.limit > 0 && len(result) > w.limit {
					return nil, core.NewError(core.KindTraversalLimit, "closure",
						fmt.Errorf("more than %d vertices reachable from %q", w.limit, start.GUID))
				}
			}
		}
		frontier = next
	}
	return result, nil
}

// boundary reduces a closure to its ultimate members: the vertices with no
// further neighbour in dir. The result is never empty. It is [start] when the
// closure is empty, and the whole closure when every member sits on a cycle.
func (w *walker) boundary(start core.Vertex, closure []core.Vertex, label string, dir core.Direction) []core.Vertex {
	if len(closure) == 0 {
		return []core.Vertex{start}
	}
	var ends []core.Vertex
	for _, v := range closure {
		if w.r.Degree(v.GUID, label, dir) == 0 {
			ends = append(ends, v)
		}
	}
	if len(ends) == 0 {
		return closure
	}
	return ends
}

// Closure returns the predecessor (DirectionIn) or successor (DirectionOut)
// closure of the vertex over edges with the label.
func Closure(ctx context.Context, r graph.Reader, guid, label string, dir core.Direction) ([]core.Vertex, error) {
	start, err := r.FindVertex(guid)
	if err != nil {
		return nil, err
	}
	w := &walker{ctx: ctx, r: r}
	return w.closure(start, label, dir)
}

// Boundary returns the ultimate sources (DirectionIn) or ultimate destinations
// (DirectionOut) of the vertex. It returns just the vertex when nothing is reachable.
func Boundary(ctx context.Context, r graph.Reader, guid, label string, dir core.Direction) ([]core.Vertex, error) {
	start, err := r.FindVertex(guid)
	if err != nil {
		return nil, err
	}
	w := &walker{ctx: ctx, r: r}
	c, err := w.closure(start, label, dir)
	if err != nil {
		return nil, err
	}
	return w.boundary(start, c, label, dir), nil
}
