// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage persists the architecture graph and the artifacts the
// rule engine derives from a run.
//
// Store is the port; SQLiteStore is the shipped adapter and MemoryStore
// backs tests. The graph itself is populated by an external loader —
// this core only reads nodes/edges plus per-node metrics, and writes
// back derived depends_on edges, promoted code imports, and the rule
// inventory of the last run.
package storage

import (
	"context"
	"errors"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// Sentinel errors for the storage package.
var (
	// ErrStoreClosed indicates a call on a closed store.
	ErrStoreClosed = errors.New("store closed")

	// ErrStoreUnreadable indicates the backing store could not be
	// opened or queried. Fatal: the run aborts with no partial result.
	ErrStoreUnreadable = errors.New("store unreadable")
)

// RuleRecord is the row shape persisted to the rules table. It is a
// flattened summary of a loaded rule, not the rule document itself.
type RuleRecord struct {
	Name        string
	Type        string
	Severity    string
	Description string
}

// Store is the persistence port for the rule engine.
//
// Implementations must be safe for sequential use within one run; the
// engine never interleaves reads and writes on the same snapshot.
type Store interface {
	// LoadSnapshot reads nodes, edges, and per-node metrics into a
	// read-only snapshot. Returns ErrStoreUnreadable on I/O failure.
	LoadSnapshot(ctx context.Context) (*graph.Snapshot, error)

	// MergeEdges upserts derived edges, deduplicating on
	// (src, dst, kind). Returns the number of newly inserted edges.
	MergeEdges(ctx context.Context, edges []graph.Edge) (int, error)

	// ReplaceImports replaces the code_imports table with this run's
	// resolved imports (including intra-project unmapped ones).
	ReplaceImports(ctx context.Context, imports []graph.ResolvedImport) error

	// ReplaceRules replaces the rules table with the rule inventory
	// of the current run.
	ReplaceRules(ctx context.Context, rules []RuleRecord) error

	// Close releases underlying resources.
	Close() error
}
