// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

func TestBuildEdges(t *testing.T) {
	snap := snapshotOf(t,
		&graph.Node{RefID: "auth", Kind: "domain", Source: "src/auth"},
		&graph.Node{RefID: "billing", Kind: "domain", Source: "src/billing"},
	)
	r := New(snap, nil, Config{})

	imports := []graph.ResolvedImport{
		// Two imports of the same target from the same node: one edge.
		{ImportRecord: graph.ImportRecord{FilePath: "src/auth/a.py", LineNumber: 1, ImportPath: "src/billing/api"}, RefID: "billing", FromRefID: "auth"},
		{ImportRecord: graph.ImportRecord{FilePath: "src/auth/b.py", LineNumber: 2, ImportPath: "src/billing/models"}, RefID: "billing", FromRefID: "auth"},
		// Unresolved: skipped.
		{ImportRecord: graph.ImportRecord{FilePath: "src/auth/a.py", LineNumber: 3, ImportPath: "vendor/thing"}},
		// Self edge: skipped.
		{ImportRecord: graph.ImportRecord{FilePath: "src/auth/a.py", LineNumber: 4, ImportPath: "src/auth/tokens"}, RefID: "auth", FromRefID: "auth"},
		// FromRefID empty: derived from the file path.
		{ImportRecord: graph.ImportRecord{FilePath: "src/billing/ledger.py", LineNumber: 5, ImportPath: "src/auth/tokens"}, RefID: "auth"},
	}

	edges := BuildEdges(r, imports, EdgeBuilderOptions{})
	require.Len(t, edges, 2)
	assert.Equal(t, graph.Edge{SrcRefID: "auth", DstRefID: "billing", Kind: graph.EdgeKindDependsOn}, edges[0])
	assert.Equal(t, graph.Edge{SrcRefID: "billing", DstRefID: "auth", Kind: graph.EdgeKindDependsOn}, edges[1])
}

func TestBuildEdgesCap(t *testing.T) {
	var nodes []*graph.Node
	var imports []graph.ResolvedImport
	nodes = append(nodes, &graph.Node{RefID: "hub", Kind: "domain", Source: "src/hub"})
	for i := 0; i < 10; i++ {
		ref := fmt.Sprintf("spoke%02d", i)
		nodes = append(nodes, &graph.Node{RefID: ref, Kind: "domain", Source: "src/" + ref})
		imports = append(imports, graph.ResolvedImport{
			ImportRecord: graph.ImportRecord{FilePath: "src/hub/main.py", LineNumber: i + 1, ImportPath: "src/" + ref},
			RefID:        ref,
			FromRefID:    "hub",
		})
	}
	r := New(snapshotOf(t, nodes...), nil, Config{})

	edges := BuildEdges(r, imports, EdgeBuilderOptions{MaxEdges: 4})
	assert.Len(t, edges, 4)
}
