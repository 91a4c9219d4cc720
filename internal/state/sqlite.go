// Package state persists named graphs in SQLite so the lineage engine can be
// restarted without re-ingesting every event.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/pkg/core"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

var errNotOpened = errors.New("database not opened")

// GraphMeta describes the last save of a named graph.
type GraphMeta struct {
	Graph    core.NamedGraph
	Vertices int
	Edges    int
	SavedAt  time.Time
}

// SQLiteStore stores vertices and edges of every named graph in one database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewWithDB wraps an existing connection. The caller owns migrations.
func NewWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state store", "path", path)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGraph replaces the stored copy of the graph with the reader's content.
func (s *SQLiteStore) SaveGraph(ctx context.Context, r graph.Reader) error {
	if s.db == nil {
		return errNotOpened
	}
	vertices, edges := r.Snapshot()
	name := string(r.Name())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE graph = ?`, name); err != nil {
		return fmt.Errorf("failed to delete edges of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vertices WHERE graph = ?`, name); err != nil {
		return fmt.Errorf("failed to delete vertices of %s: %w", name, err)
	}

	vstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO vertices (graph, guid, label, properties, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare vertex insert: %w", err)
	}
	defer func() { _ = vstmt.Close() }()
	for i, v := range vertices {
		props, err := marshalProperties(v.Properties)
		if err != nil {
			return fmt.Errorf("failed to encode properties of %s: %w", v.GUID, err)
		}
		if _, err := vstmt.ExecContext(ctx, name, v.GUID, v.Label, props, i); err != nil {
			return fmt.Errorf("failed to insert vertex %s: %w", v.GUID, err)
		}
	}

	estmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (graph, label, source_guid, target_guid, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer func() { _ = estmt.Close() }()
	for i, e := range edges {
		if _, err := estmt.ExecContext(ctx, name, e.Label, e.Source, e.Target, i); err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", e.Key(), err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO graph_meta (graph, vertices, edges, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (graph) DO UPDATE SET vertices = excluded.vertices, edges = excluded.edges, saved_at = excluded.saved_at`,
		name, len(vertices), len(edges), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record save of %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save of %s: %w", name, err)
	}
	s.logger.Debug("saved graph", "graph", name, "vertices", len(vertices), "edges", len(edges))
	return nil
}

// LoadGraph replaces the content of g with its stored copy.
// A graph that was never saved loads as empty.
func (s *SQLiteStore) LoadGraph(ctx context.Context, g *graph.Graph) error {
	if s.db == nil {
		return errNotOpened
	}
	name := string(g.Name())

	vertices, err := s.loadVertices(ctx, name)
	if err != nil {
		return err
	}
	edges, err := s.loadEdges(ctx, name)
	if err != nil {
		return err
	}

	err = g.Replace(func(tx *graph.Tx) error {
		for _, v := range vertices {
			if err := tx.PutVertex(v); err != nil {
				return err
			}
		}
		for _, e := range edges {
			if err := tx.PutEdge(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to restore graph %s: %w", name, err)
	}
	s.logger.Debug("loaded graph", "graph", name, "vertices", len(vertices), "edges", len(edges))
	return nil
}

// LoadAll restores every named graph of the store in parallel.
func (s *SQLiteStore) LoadAll(ctx context.Context, store *graph.Store) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, g := range store.Graphs() {
		eg.Go(func() error {
			return s.LoadGraph(ctx, g)
		})
	}
	return eg.Wait()
}

// SaveAll saves every named graph of the store.
func (s *SQLiteStore) SaveAll(ctx context.Context, store *graph.Store) error {
	for _, g := range store.Graphs() {
		if err := s.SaveGraph(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// ListSaved returns metadata for every saved graph.
func (s *SQLiteStore) ListSaved(ctx context.Context) ([]GraphMeta, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	rows, err := s.db.QueryContext(ctx, `SELECT graph, vertices, edges, saved_at FROM graph_meta ORDER BY graph`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved graphs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metas []GraphMeta
	for rows.Next() {
		var m GraphMeta
		var name string
		if err := rows.Scan(&name, &m.Vertices, &m.Edges, &m.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan graph meta: %w", err)
		}
		m.Graph = core.NamedGraph(name)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (s *SQLiteStore) loadVertices(ctx context.Context, name string) ([]core.Vertex, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT guid, label, properties FROM vertices WHERE graph = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query vertices of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var vertices []core.Vertex
	for rows.Next() {
		var v core.Vertex
		var props sql.NullString
		if err := rows.Scan(&v.GUID, &v.Label, &props); err != nil {
			return nil, fmt.Errorf("failed to scan vertex: %w", err)
		}
		if v.Properties, err = unmarshalProperties(props); err != nil {
			return nil, fmt.Errorf("failed to decode properties of %s: %w", v.GUID, err)
		}
		vertices = append(vertices, v)
	}
	return vertices, rows.Err()
}

func (s *SQLiteStore) loadEdges(ctx context.Context, name string) ([]core.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, source_guid, target_guid FROM edges WHERE graph = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var edges []core.Edge
	for rows.Next() {
		var e core.Edge
		if err := rows.Scan(&e.Label, &e.Source, &e.Target); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// marshalProperties returns a NULL-able JSON encoding of a property map.
func marshalProperties(props map[string]string) (sql.NullString, error) {
	if len(props) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalProperties(ns sql.NullString) (map[string]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var props map[string]string
	if err := json.Unmarshal([]byte(ns.String), &props); err != nil {
		return nil, err
	}
	return props, nil
}
