package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/internal/serializer"
	"github.com/leapstack-labs/leapgraph/internal/traversal"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a query or export. Exactly one of Payload and Err is set.
type Result struct {
	Graph core.NamedGraph
	// Subgraph is the response graph Payload was rendered from.
	Subgraph *core.Subgraph
	// Payload is the portable JSON form of Subgraph.
	Payload []byte
	Err     *core.Error
}

// OK reports whether the result carries a payload.
func (r Result) OK() bool { return r.Err == nil }

// Service answers lineage, export and dump requests.
type Service struct {
	store  *graph.Store
	engine *traversal.Engine
	dumper *serializer.Dumper
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngine replaces the default traversal engine.
func WithEngine(e *traversal.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithDumper sets where dumps are written. Without one, dumps go to the
// working directory as GraphML.
func WithDumper(d *serializer.Dumper) Option {
	return func(s *Service) {
		if d != nil {
			s.dumper = d
		}
	}
}

// NewService creates a service over store.
func NewService(store *graph.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		dumper: serializer.NewDumper(".", serializer.FormatGraphML),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = traversal.New(traversal.WithLogger(s.logger))
	}
	return s
}

// Store returns the graph store the service reads from.
func (s *Service) Store() *graph.Store { return s.store }

// ParseRequest builds a request from its string form. The view may be empty for
// the GLOSSARY scope, which ignores it.
func ParseRequest(graphName, scope, view, guid string) (core.LineageRequest, error) {
	var req core.LineageRequest

	g, err := core.ParseNamedGraph(graphName)
	if err != nil {
		return req, err
	}
	sc, err := core.ParseScope(scope)
	if err != nil {
		return req, err
	}
	req.Graph, req.Scope, req.GUID = g, sc, strings.TrimSpace(guid)

	if !sc.NeedsView() && strings.TrimSpace(view) == "" {
		return req, nil
	}
	v, err := core.ParseView(view)
	if err != nil {
		return req, err
	}
	req.View = v
	return req, nil
}

// Lineage answers a lineage query. A vertex without any lineage yields an OK
// result whose graph holds only that vertex.
func (s *Service) Lineage(ctx context.Context, req core.LineageRequest) (res Result) {
	res.Graph = req.Graph
	defer s.recoverInto(&res, "lineage")

	g, err := s.store.Open(req.Graph)
	if err != nil {
		return s.fail(res, "lineage", err)
	}

	sub, err := s.engine.Query(ctx, g, req)
	if err != nil {
		return s.fail(res, "lineage", err,
			"scope", req.Scope, "view", req.View, "guid", req.GUID)
	}
	return s.render(res, "lineage", sub)
}

// Export renders the whole named graph.
func (s *Service) Export(ctx context.Context, name core.NamedGraph) (res Result) {
	res.Graph = name
	defer s.recoverInto(&res, "export")

	if err := ctx.Err(); err != nil {
		return s.fail(res, "export", err)
	}
	g, err := s.store.Open(name)
	if err != nil {
		return s.fail(res, "export", err)
	}
	return s.render(res, "export", serializer.ExportFullGraph(g))
}

// Dump writes the named graph to the dump directory and returns the file path.
// Failures are logged and returned; they never affect queries.
func (s *Service) Dump(ctx context.Context, name core.NamedGraph) (string, error) {
	g, err := s.store.Open(name)
	if err != nil {
		s.logger.Error("dump failed", "graph", name, "error", err)
		return "", err
	}
	path, err := s.dumper.Dump(ctx, g)
	if err != nil {
		s.logger.Error("dump failed", "graph", name, "error", err)
		return "", fmt.Errorf("failed to dump %s: %w", name, err)
	}
	s.logger.Info("graph dumped", "graph", name, "path", path, "format", s.dumper.Format)
	return path, nil
}

// DumpAll dumps every named graph in parallel. Paths are in AllGraphs order.
func (s *Service) DumpAll(ctx context.Context) ([]string, error) {
	names := core.AllGraphs()
	paths := make([]string, len(names))

	eg, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		eg.Go(func() error {
			path, err := s.Dump(ctx, name)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Stats returns vertex and edge counts of a named graph.
func (s *Service) Stats(name core.NamedGraph) (graph.Stats, error) {
	g, err := s.store.Open(name)
	if err != nil {
		return graph.Stats{}, err
	}
	return g.Stats(), nil
}

func (s *Service) render(res Result, op string, sub *core.Subgraph) Result {
	payload, err := serializer.Serialize(sub)
	if err != nil {
		return s.fail(res, op, err)
	}
	res.Subgraph = sub
	res.Payload = payload
	return res
}

func (s *Service) fail(res Result, op string, err error, attrs ...any) Result {
	res.Err = AsError(op, err)
	res.Subgraph, res.Payload = nil, nil

	args := append([]any{"op", op, "graph", res.Graph, "kind", res.Err.Kind, "error", err}, attrs...)
	switch res.Err.Kind {
	case core.KindUnknownGraph, core.KindUnknownScope, core.KindUnknownView, core.KindVertexNotFound, core.KindCancelled:
		s.logger.Warn("request failed", args...)
	default:
		s.logger.Error("request failed", args...)
	}
	return res
}

func (s *Service) recoverInto(res *Result, op string) {
	if r := recover(); r != nil {
		*res = s.fail(Result{Graph: res.Graph}, op, fmt.Errorf("panic: %v", r))
	}
}

// AsError returns err as a typed error, classifying it when it is not one already.
func AsError(op string, err error) *core.Error {
	var ce *core.Error
	if errors.As(err, &ce) {
		return ce
	}
	return core.NewError(core.KindOf(err), op, err)
}
