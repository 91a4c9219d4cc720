package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// Ingestor accepts lineage change events.
type Ingestor interface {
	AddEntity(ctx context.Context, ev Event) error
}

// Persister saves a graph after it changed.
type Persister interface {
	SaveGraph(ctx context.Context, r graph.Reader) error
}

// Applier applies events to the graphs of a store. Events are applied one at a
// time, which gives every named graph a single writer.
type Applier struct {
	store        *graph.Store
	persister    Persister
	defaultGraph core.NamedGraph
	logger       *slog.Logger

	mu sync.Mutex
}

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithPersister saves each changed graph after an event is applied.
func WithPersister(p Persister) ApplierOption {
	return func(a *Applier) { a.persister = p }
}

// WithDefaultGraph sets the graph used by events that do not name one.
func WithDefaultGraph(g core.NamedGraph) ApplierOption {
	return func(a *Applier) { a.defaultGraph = g }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ApplierOption {
	return func(a *Applier) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewApplier creates an applier. Events without a graph go to MAIN unless
// WithDefaultGraph says otherwise.
func NewApplier(store *graph.Store, opts ...ApplierOption) *Applier {
	a := &Applier{
		store:        store,
		defaultGraph: core.GraphMain,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ Ingestor = (*Applier)(nil)

// AddEntity applies the event as one batch. Edges may reference vertices of the
// same event or vertices already in the graph; anything else rejects the event.
func (a *Applier) AddEntity(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := a.defaultGraph
	if ev.Graph != "" {
		parsed, err := core.ParseNamedGraph(ev.Graph)
		if err != nil {
			return err
		}
		name = parsed
	}
	g, err := a.store.Open(name)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err = g.Update(func(tx *graph.Tx) error {
		for _, v := range ev.Vertices {
			if err := tx.PutVertex(v.Vertex()); err != nil {
				return err
			}
		}
		for _, e := range ev.Edges {
			if err := tx.PutEdge(e.Edge()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply event to %s: %w", name, err)
	}

	a.logger.Debug("applied event", "graph", name, "vertices", len(ev.Vertices), "edges", len(ev.Edges))

	if a.persister != nil {
		if err := a.persister.SaveGraph(ctx, g); err != nil {
			return fmt.Errorf("failed to persist %s: %w", name, err)
		}
	}
	return nil
}

// ApplyFile applies every event in the file in order and returns how many were applied.
func (a *Applier) ApplyFile(ctx context.Context, path string) (int, error) {
	events, err := DecodeFile(path)
	if err != nil {
		return 0, err
	}
	for i, ev := range events {
		if err := a.AddEntity(ctx, ev); err != nil {
			return i, fmt.Errorf("%s: event %d: %w", path, i+1, err)
		}
	}
	a.logger.Info("applied event file", "path", path, "events", len(events))
	return len(events), nil
}
