package serializer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/leapgraph/pkg/core"
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
)

var duckDBSchema = []string{
	`CREATE TABLE graph_info (name VARCHAR)`,
	`CREATE TABLE vertices (
    position   INTEGER,
    guid       VARCHAR PRIMARY KEY,
    label      VARCHAR NOT NULL,
    properties VARCHAR
)`,
	`CREATE TABLE edges (
    position INTEGER,
    label    VARCHAR NOT NULL,
    source   VARCHAR NOT NULL,
    target   VARCHAR NOT NULL
)`,
}

// WriteDuckDB writes sub into a fresh DuckDB database at path, replacing any
// existing file. Vertices and edges land in tables of the same name so the dump
// can be explored with plain SQL.
func WriteDuckDB(ctx context.Context, path string, sub *core.Subgraph) (err error) {
	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return core.NewError(core.KindSerializationFailure, "write duckdb", rmErr)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return core.NewError(core.KindSerializationFailure, "write duckdb", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = core.NewError(core.KindSerializationFailure, "write duckdb", cerr)
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return core.NewError(core.KindSerializationFailure, "write duckdb", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range duckDBSchema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return core.NewError(core.KindSerializationFailure, "write duckdb", fmt.Errorf("create schema: %w", err))
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO graph_info (name) VALUES (?)`, string(sub.Graph)); err != nil {
		return core.NewError(core.KindSerializationFailure, "write duckdb", err)
	}

	for i, v := range sub.Vertices() {
		props, err := json.Marshal(v.Properties)
		if err != nil {
			return core.NewError(core.KindSerializationFailure, "write duckdb", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vertices (position, guid, label, properties) VALUES (?, ?, ?, ?)`,
			i, v.GUID, v.Label, string(props)); err != nil {
			return core.NewError(core.KindSerializationFailure, "write duckdb", fmt.Errorf("insert vertex %s: %w", v.GUID, err))
		}
	}
	for i, e := range sub.Edges() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO edges (position, label, source, target) VALUES (?, ?, ?, ?)`,
			i, e.Label, e.Source, e.Target); err != nil {
			return core.NewError(core.KindSerializationFailure, "write duckdb", fmt.Errorf("insert edge %s: %w", e.Key(), err))
		}
	}

	if err := tx.Commit(); err != nil {
		return core.NewError(core.KindSerializationFailure, "write duckdb", err)
	}
	return nil
}

// ReadDuckDB reads a dump written by WriteDuckDB.
func ReadDuckDB(ctx context.Context, path string) (*core.Subgraph, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
	}
	defer func() { _ = db.Close() }()

	var name string
	if err := db.QueryRowContext(ctx, `SELECT name FROM graph_info LIMIT 1`).Scan(&name); err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
	}
	sub := core.NewSubgraph(core.NamedGraph(name))

	rows, err := db.QueryContext(ctx, `SELECT guid, label, properties FROM vertices ORDER BY position`)
	if err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var v core.Vertex
		var props sql.NullString
		if err := rows.Scan(&v.GUID, &v.Label, &props); err != nil {
			return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
		}
		if props.Valid && props.String != "" && props.String != "null" {
			if err := json.Unmarshal([]byte(props.String), &v.Properties); err != nil {
				return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
			}
		}
		sub.AddVertex(v)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
	}

	erows, err := db.QueryContext(ctx, `SELECT label, source, target FROM edges ORDER BY position`)
	if err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
	}
	defer func() { _ = erows.Close() }()
	for erows.Next() {
		var e core.Edge
		if err := erows.Scan(&e.Label, &e.Source, &e.Target); err != nil {
			return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
		}
		sub.AddEdge(e)
	}
	if err := erows.Err(); err != nil {
		return nil, core.NewError(core.KindSerializationFailure, "read duckdb", err)
	}
	return sub, nil
}
