// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

func snapshotOf(t *testing.T, nodes ...*graph.Node) *graph.Snapshot {
	t.Helper()
	snap, err := graph.NewSnapshot(nodes, nil)
	require.NoError(t, err)
	return snap
}

func TestResolveHierarchicalPrefix(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "billing", Kind: "domain", Source: "src/billing"},
		&graph.Node{RefID: "billing.invoices", Kind: "feature", Source: "src/billing/invoices"},
		&graph.Node{RefID: "auth", Kind: "domain", Source: "src/auth/"},
	)
	r := New(snap, nil, Config{})

	tests := []struct {
		name       string
		importPath string
		fromFile   string
		want       string
		wantOK     bool
	}{
		{"longest prefix wins", "src/billing/invoices/pdf", "src/main.py", "billing.invoices", true},
		{"shorter prefix for sibling", "src/billing/ledger", "src/main.py", "billing", true},
		{"trailing slash on source is ignored", "src/auth/tokens", "src/main.py", "auth", true},
		{"dotted python import", "billing.invoices.pdf", "src/main.py", "", false},
		{"segment boundary respected", "src/billingx/api", "src/main.py", "", false},
		{"unknown path unresolved", "vendor/lib", "src/main.py", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.importPath, tt.fromFile)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDottedImportViaAlias(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "billing", Kind: "domain", Source: "src/myapp/billing"},
	)
	r := New(snap, nil, Config{
		Aliases: map[string]string{"myapp.": "src/myapp/"},
	})

	// Django-style dotted import reaches the node only through the
	// alias rewrite and its single retry.
	got, ok := r.Resolve("myapp.billing.models", "manage.py")
	require.True(t, ok)
	assert.Equal(t, "billing", got)

	// TypeScript-style "@/" alias.
	r2 := New(snapshotOf(t,
		&graph.Node{RefID: "ui.components", Kind: "feature", Source: "src/components"},
	), nil, Config{Aliases: map[string]string{"@/": "src/"}})
	got, ok = r2.Resolve("@/components/Button", "src/pages/home.tsx")
	require.True(t, ok)
	assert.Equal(t, "ui.components", got)
}

func TestResolveRelativeImports(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "billing", Kind: "domain", Source: "src/billing"},
		&graph.Node{RefID: "shared", Kind: "domain", Source: "src/shared"},
	)
	r := New(snap, nil, Config{})

	t.Run("ecmascript sibling", func(t *testing.T) {
		got, ok := r.Resolve("./models", "src/billing/api.ts")
		require.True(t, ok)
		assert.Equal(t, "billing", got)
	})

	t.Run("ecmascript parent escape", func(t *testing.T) {
		got, ok := r.Resolve("../shared/utils", "src/billing/api.ts")
		require.True(t, ok)
		assert.Equal(t, "shared", got)
	})

	t.Run("python relative", func(t *testing.T) {
		got, ok := r.Resolve("..shared.utils", "src/billing/api.py")
		require.True(t, ok)
		assert.Equal(t, "shared", got)
	})
}

func TestResolveRustPaths(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "engine", Kind: "service", Source: "src/engine"},
	)
	r := New(snap, nil, Config{})

	got, ok := r.Resolve("crate::engine::executor", "src/main.rs")
	require.True(t, ok)
	assert.Equal(t, "engine", got)

	got, ok = r.Resolve("super::engine", "src/workers/pool.rs")
	require.True(t, ok)
	assert.Equal(t, "engine", got)
}

func TestResolveKindPriorityTieBreak(t *testing.T) {
	// Two nodes anchored to the same source prefix: the tie-break is
	// a documented ambiguity in the upstream design, resolved here as
	// a configurable kind-priority list.
	serviceNode := &graph.Node{RefID: "checkout.svc", Kind: "service", Source: "src/checkout"}
	domainNode := &graph.Node{RefID: "checkout", Kind: "domain", Source: "src/checkout"}

	t.Run("default prefers service", func(t *testing.T) {
		r := New(snapshotOf(t, serviceNode, domainNode), nil, Config{})
		got, ok := r.Resolve("src/checkout/cart", "src/main.go")
		require.True(t, ok)
		assert.Equal(t, "checkout.svc", got)
	})

	t.Run("custom priority prefers domain", func(t *testing.T) {
		r := New(snapshotOf(t, serviceNode, domainNode), nil, Config{
			KindPriority: []string{"domain", "service"},
		})
		got, ok := r.Resolve("src/checkout/cart", "src/main.go")
		require.True(t, ok)
		assert.Equal(t, "checkout", got)
	})

	t.Run("unlisted kinds fall back to ref_id order", func(t *testing.T) {
		a := &graph.Node{RefID: "bbb", Kind: "entity", Source: "src/x"}
		b := &graph.Node{RefID: "aaa", Kind: "adr", Source: "src/x"}
		r := New(snapshotOf(t, a, b), nil, Config{})
		got, ok := r.Resolve("src/x/y", "main.go")
		require.True(t, ok)
		assert.Equal(t, "aaa", got)
	})
}

func TestResolveAnnotationsWinOverSources(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "billing", Kind: "domain", Source: "src/billing"},
		&graph.Node{RefID: "legacy.adapter", Kind: "feature"},
	)
	annotations := map[string]string{
		"src/billing/legacy_bridge.py": "legacy.adapter",
	}
	r := New(snap, annotations, Config{})

	// The annotated file itself maps to the annotation, not the
	// enclosing source prefix.
	got, ok := r.ResolveFile("src/billing/legacy_bridge.py")
	require.True(t, ok)
	assert.Equal(t, "legacy.adapter", got)

	// Imports of the annotated module (extension-stripped form).
	got, ok = r.Resolve("src/billing/legacy_bridge", "src/main.py")
	require.True(t, ok)
	assert.Equal(t, "legacy.adapter", got)

	// Unannotated siblings still resolve through the source prefix.
	got, ok = r.ResolveFile("src/billing/api.py")
	require.True(t, ok)
	assert.Equal(t, "billing", got)
}

func TestResolvePackageIndexAnnotationBindsDirectory(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "reporting", Kind: "feature"},
	)
	r := New(snap, map[string]string{
		"src/reports/__init__.py": "reporting",
	}, Config{})

	// An annotated package index speaks for every file in the package.
	got, ok := r.ResolveFile("src/reports/monthly.py")
	require.True(t, ok)
	assert.Equal(t, "reporting", got)

	got, ok = r.Resolve("src/reports/monthly", "src/main.py")
	require.True(t, ok)
	assert.Equal(t, "reporting", got)
}

func TestResolveIdempotent(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "billing", Kind: "domain", Source: "src/billing"},
	)
	r := New(snap, nil, Config{})

	first, ok1 := r.Resolve("src/billing/api", "src/main.py")
	second, ok2 := r.Resolve("src/billing/api", "src/main.py")
	assert.Equal(t, first, second)
	assert.Equal(t, ok1, ok2)
}

func TestResolveAll(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "billing", Kind: "domain", Source: "src/billing"},
		&graph.Node{RefID: "auth", Kind: "domain", Source: "src/auth"},
	)
	r := New(snap, nil, Config{})

	records := []graph.ImportRecord{
		{FilePath: "src/auth/login.py", LineNumber: 2, ImportPath: "src/billing/api"},
		{FilePath: "src/auth/login.py", LineNumber: 3, ImportPath: "requests_like_unknown"},
	}
	resolved := r.ResolveAll(records)
	require.Len(t, resolved, 2)

	assert.Equal(t, "billing", resolved[0].RefID)
	assert.Equal(t, "auth", resolved[0].FromRefID)

	// Unresolved imports are preserved for boundary rules.
	assert.False(t, resolved[1].Resolved())
	assert.Equal(t, "auth", resolved[1].FromRefID)
}
