// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// schema is applied on open. Idempotent; the loader owns further
// migrations, this core only needs these four tables to exist.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	ref_id       TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '',
	symbols      INTEGER NOT NULL DEFAULT 0,
	files        INTEGER NOT NULL DEFAULT 0,
	doc_coverage REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS edges (
	src_ref_id TEXT NOT NULL,
	dst_ref_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	PRIMARY KEY (src_ref_id, dst_ref_id, kind)
);
CREATE TABLE IF NOT EXISTS code_imports (
	file_path       TEXT NOT NULL,
	line_number     INTEGER NOT NULL,
	import_path     TEXT NOT NULL,
	resolved_ref_id TEXT
);
CREATE TABLE IF NOT EXISTS rules (
	name        TEXT PRIMARY KEY,
	rule_type   TEXT NOT NULL,
	severity    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore implements Store over a SQLite database file.
//
// Thread Safety: database/sql pools connections; the store itself holds
// no mutable state beyond the pool.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and ensures the
// schema exists. A failure here is fatal to the run.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStoreUnreadable, path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", ErrStoreUnreadable, err)
	}
	return &SQLiteStore{db: db}, nil
}

// LoadSnapshot reads nodes, edges, and metrics in one consistent pass.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*graph.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ref_id, kind, source, tags, symbols, files, doc_coverage
		 FROM nodes ORDER BY ref_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query nodes: %v", ErrStoreUnreadable, err)
	}
	defer rows.Close()

	var nodes []*graph.Node
	metrics := make(map[string]graph.NodeMetrics)
	for rows.Next() {
		var n graph.Node
		var tags string
		var m graph.NodeMetrics
		if err := rows.Scan(&n.RefID, &n.Kind, &n.Source, &tags,
			&m.Symbols, &m.Files, &m.DocCoverage); err != nil {
			return nil, fmt.Errorf("%w: scan node: %v", ErrStoreUnreadable, err)
		}
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				n.AddTag(t)
			}
		}
		nodes = append(nodes, &n)
		metrics[n.RefID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate nodes: %v", ErrStoreUnreadable, err)
	}

	edgeRows, err := s.db.QueryContext(ctx,
		`SELECT src_ref_id, dst_ref_id, kind FROM edges
		 ORDER BY src_ref_id, dst_ref_id, kind`)
	if err != nil {
		return nil, fmt.Errorf("%w: query edges: %v", ErrStoreUnreadable, err)
	}
	defer edgeRows.Close()

	var edges []graph.Edge
	for edgeRows.Next() {
		var e graph.Edge
		if err := edgeRows.Scan(&e.SrcRefID, &e.DstRefID, &e.Kind); err != nil {
			return nil, fmt.Errorf("%w: scan edge: %v", ErrStoreUnreadable, err)
		}
		edges = append(edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate edges: %v", ErrStoreUnreadable, err)
	}

	snap, err := graph.NewSnapshot(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreadable, err)
	}
	snap.SetMetrics(metrics)
	return snap, nil
}

// MergeEdges upserts edges; the composite primary key provides dedup.
func (s *SQLiteStore) MergeEdges(ctx context.Context, edges []graph.Edge) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("merge edges: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO edges (src_ref_id, dst_ref_id, kind) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("merge edges: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range edges {
		res, err := stmt.ExecContext(ctx, e.SrcRefID, e.DstRefID, e.Kind)
		if err != nil {
			return 0, fmt.Errorf("merge edge %s -> %s: %w", e.SrcRefID, e.DstRefID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("merge edges: %w", err)
	}
	return inserted, nil
}

// ReplaceImports swaps the code_imports table contents for this run.
func (s *SQLiteStore) ReplaceImports(ctx context.Context, imports []graph.ResolvedImport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace imports: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM code_imports`); err != nil {
		return fmt.Errorf("replace imports: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO code_imports (file_path, line_number, import_path, resolved_ref_id)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("replace imports: %w", err)
	}
	defer stmt.Close()

	for _, imp := range imports {
		var ref any
		if imp.Resolved() {
			ref = imp.RefID
		}
		if _, err := stmt.ExecContext(ctx, imp.FilePath, imp.LineNumber, imp.ImportPath, ref); err != nil {
			return fmt.Errorf("insert import %s:%d: %w", imp.FilePath, imp.LineNumber, err)
		}
	}
	return tx.Commit()
}

// ReplaceRules swaps the rules table contents for this run.
func (s *SQLiteStore) ReplaceRules(ctx context.Context, rules []RuleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace rules: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return fmt.Errorf("replace rules: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rules (name, rule_type, severity, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("replace rules: %w", err)
	}
	defer stmt.Close()

	for _, r := range rules {
		if _, err := stmt.ExecContext(ctx, r.Name, r.Type, r.Severity, r.Description); err != nil {
			return fmt.Errorf("insert rule %s: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

// Close closes the connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
