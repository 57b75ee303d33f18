// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		[]*graph.Node{
			{RefID: "a", Kind: "domain", Source: "src/a"},
			{RefID: "b", Kind: "domain", Source: "src/b"},
		},
		[]graph.Edge{{SrcRefID: "a", DstRefID: "b", Kind: graph.EdgeKindUses}},
	)

	snap, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.NodeCount())
	assert.Len(t, snap.Edges(), 1)

	inserted, err := store.MergeEdges(ctx, []graph.Edge{
		{SrcRefID: "a", DstRefID: "b", Kind: graph.EdgeKindUses}, // dup
		{SrcRefID: "b", DstRefID: "a", Kind: graph.EdgeKindDependsOn},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	require.NoError(t, store.ReplaceImports(ctx, []graph.ResolvedImport{
		{ImportRecord: graph.ImportRecord{FilePath: "src/a/x.py", LineNumber: 1, ImportPath: "src/b"}, RefID: "b"},
	}))
	assert.Len(t, store.Imports, 1)

	require.NoError(t, store.Close())
	_, err = store.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.MergeEdges(ctx, nil)
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "arch.db")

	store, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	defer store.Close()

	// Seed the graph the way the external loader would.
	_, err = store.db.Exec(`
		INSERT INTO nodes (ref_id, kind, source, tags, symbols, files, doc_coverage) VALUES
		('billing', 'domain', 'src/billing', 'core,money', 250, 12, 0.8),
		('ui', 'service', 'src/ui', '', 40, 3, 0.5);
		INSERT INTO edges (src_ref_id, dst_ref_id, kind) VALUES
		('ui', 'billing', 'depends_on');`)
	require.NoError(t, err)

	snap, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.NodeCount())

	n, ok := snap.Node("billing")
	require.True(t, ok)
	assert.True(t, n.HasTag("core"))
	assert.True(t, n.HasTag("money"))

	m, ok := snap.Metrics("billing")
	require.True(t, ok)
	assert.Equal(t, 250, m.Symbols)
	assert.InDelta(t, 0.8, m.DocCoverage, 1e-9)

	t.Run("merge edges dedups on composite key", func(t *testing.T) {
		inserted, err := store.MergeEdges(ctx, []graph.Edge{
			{SrcRefID: "ui", DstRefID: "billing", Kind: "depends_on"}, // exists
			{SrcRefID: "billing", DstRefID: "ui", Kind: "uses"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)

		again, err := store.MergeEdges(ctx, []graph.Edge{
			{SrcRefID: "billing", DstRefID: "ui", Kind: "uses"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, again)
	})

	t.Run("replace imports keeps unresolved as NULL", func(t *testing.T) {
		imports := []graph.ResolvedImport{
			{ImportRecord: graph.ImportRecord{FilePath: "src/ui/a.ts", LineNumber: 1, ImportPath: "src/billing/api"}, RefID: "billing"},
			{ImportRecord: graph.ImportRecord{FilePath: "src/ui/a.ts", LineNumber: 2, ImportPath: "./local"}},
		}
		require.NoError(t, store.ReplaceImports(ctx, imports))
		require.NoError(t, store.ReplaceImports(ctx, imports)) // replace, not append

		var total, unresolved int
		require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM code_imports`).Scan(&total))
		require.NoError(t, store.db.QueryRow(
			`SELECT COUNT(*) FROM code_imports WHERE resolved_ref_id IS NULL`).Scan(&unresolved))
		assert.Equal(t, 2, total)
		assert.Equal(t, 1, unresolved)
	})

	t.Run("replace rules", func(t *testing.T) {
		require.NoError(t, store.ReplaceRules(ctx, []RuleRecord{
			{Name: "no-ui-to-db", Type: "deny", Severity: "error", Description: "d"},
		}))
		var name string
		require.NoError(t, store.db.QueryRow(`SELECT name FROM rules`).Scan(&name))
		assert.Equal(t, "no-ui-to-db", name)
	})
}

func TestOpenSQLiteBadPath(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "missing", "nested", "arch.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnreadable)
}
