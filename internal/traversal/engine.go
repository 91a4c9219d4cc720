package traversal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// Engine executes lineage queries. It is safe for concurrent use.
type Engine struct {
	logger      *slog.Logger
	maxVertices int
	newID       func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxVertices bounds the size of a single closure. Zero means unlimited.
func WithMaxVertices(n int) Option {
	return func(e *Engine) {
		e.maxVertices = n
	}
}

// WithIDGenerator replaces the generator for condensation vertex ids.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.DiscardHandler),
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query runs a lineage request against g while holding its read lock.
func (e *Engine) Query(ctx context.Context, g *graph.Graph, req core.LineageRequest) (*core.Subgraph, error) {
	var sub *core.Subgraph
	err := g.View(func(r graph.Reader) error {
		var err error
		sub, err = e.Lineage(ctx, r, req.Scope, req.View, req.GUID)
		return err
	})
	return sub, err
}

// Lineage runs the query shape selected by scope from the vertex with the guid.
// view is ignored for the GLOSSARY scope and must be valid for every other scope.
func (e *Engine) Lineage(ctx context.Context, r graph.Reader, scope core.Scope, view core.View, guid string) (*core.Subgraph, error) {
	if !scope.Valid() {
		return nil, core.NewError(core.KindUnknownScope, "lineage", fmt.Errorf("%q", string(scope)))
	}
	label := EdgeLabelForView(view)
	if scope.NeedsView() && label == "" {
		return nil, core.NewError(core.KindUnknownView, "lineage", fmt.Errorf("%q", string(view)))
	}

	start, err := r.FindVertex(guid)
	if err != nil {
		return nil, err
	}

	w := &walker{ctx: ctx, r: r, limit: e.maxVertices}

	var sub *core.Subgraph
	switch scope {
	case core.ScopeSourceAndDestination:
		sub, err = e.sourceAndDestination(w, start, label, true, true)
	case core.ScopeUltimateSource:
		sub, err = e.sourceAndDestination(w, start, label, true, false)
	case core.ScopeUltimateDestination:
		sub, err = e.sourceAndDestination(w, start, label, false, true)
	case core.ScopeEndToEnd:
		sub, err = w.endToEnd(start, label)
	case core.ScopeGlossary:
		sub, err = w.glossary(start)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug("lineage query",
		"graph", r.Name(),
		"scope", scope,
		"view", view,
		"guid", guid,
		"vertices", sub.VertexCount(),
		"edges", sub.EdgeCount(),
		"expanded", w.expanded)
	return sub, nil
}

// EdgeLabelForView returns the flow edge label followed for the view.
// An unknown view yields "", over which no neighbours exist.
func EdgeLabelForView(view core.View) string {
	return view.EdgeLabel()
}

func (e *Engine) sourceAndDestination(w *walker, start core.Vertex, label string, sources, destinations bool) (*core.Subgraph, error) {
	sub := core.NewSubgraph(w.r.Name())
	sub.AddVertex(start)

	if sources {
		preds, err := w.closure(start, label, core.DirectionIn)
		if err != nil {
			return nil, err
		}
		e.condense(sub, start, w.boundary(start, preds, label, core.DirectionIn), core.DirectionIn)
	}
	if destinations {
		succs, err := w.closure(start, label, core.DirectionOut)
		if err != nil {
			return nil, err
		}
		e.condense(sub, start, w.boundary(start, succs, label, core.DirectionOut), core.DirectionOut)
	}
	return sub, nil
}

// endToEnd keeps every vertex and flow edge upstream and downstream of start.
// An edge is kept when both endpoints lie on the same side of start, so edges
// bypassing start from an ancestor to a descendant are left out.
func (w *walker) endToEnd(start core.Vertex, label string) (*core.Subgraph, error) {
	up, err := w.closure(start, label, core.DirectionIn)
	if err != nil {
		return nil, err
	}
	down, err := w.closure(start, label, core.DirectionOut)
	if err != nil {
		return nil, err
	}

	sub := core.NewSubgraph(w.r.Name())
	sub.AddVertex(start)

	upSet := map[string]bool{start.GUID: true}
	for _, v := range up {
		upSet[v.GUID] = true
		sub.AddVertex(v)
	}
	downSet := map[string]bool{start.GUID: true}
	for _, v := range down {
		downSet[v.GUID] = true
		sub.AddVertex(v)
	}

	addSide := func(members []core.Vertex, set map[string]bool) {
		for _, v := range members {
			for _, e := range w.r.Edges(v.GUID, label, core.DirectionOut) {
				if set[e.Target] {
					sub.AddEdge(e)
				}
			}
		}
	}
	addSide(append(up, start), upSet)
	addSide(append([]core.Vertex{start}, down...), downSet)
	return sub, nil
}
