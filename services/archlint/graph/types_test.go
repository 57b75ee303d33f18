// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(refID, kind, source string) *Node {
	return &Node{RefID: refID, Kind: kind, Source: source}
}

func TestNewSnapshot(t *testing.T) {
	t.Run("rejects duplicate ref_id", func(t *testing.T) {
		_, err := NewSnapshot([]*Node{
			node("billing", "domain", "src/billing"),
			node("billing", "service", "svc/billing"),
		}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate ref_id")
	})

	t.Run("rejects node without kind", func(t *testing.T) {
		_, err := NewSnapshot([]*Node{{RefID: "x"}}, nil)
		require.Error(t, err)
	})

	t.Run("deduplicates edges on composite key", func(t *testing.T) {
		snap, err := NewSnapshot(
			[]*Node{node("a", "domain", ""), node("b", "domain", "")},
			[]Edge{
				{SrcRefID: "a", DstRefID: "b", Kind: EdgeKindDependsOn},
				{SrcRefID: "a", DstRefID: "b", Kind: EdgeKindDependsOn},
				{SrcRefID: "a", DstRefID: "b", Kind: EdgeKindUses},
			})
		require.NoError(t, err)
		assert.Len(t, snap.Edges(), 2)
	})
}

func TestSnapshotEdgeQueries(t *testing.T) {
	snap, err := NewSnapshot(
		[]*Node{node("a", "domain", ""), node("b", "domain", ""), node("c", "domain", "")},
		[]Edge{
			{SrcRefID: "a", DstRefID: "b", Kind: EdgeKindDependsOn},
			{SrcRefID: "b", DstRefID: "c", Kind: EdgeKindPartOf},
		})
	require.NoError(t, err)

	assert.True(t, snap.HasEdge("a", "b", EdgeKindDependsOn))
	assert.False(t, snap.HasEdge("b", "a", EdgeKindDependsOn))

	// HasAnyEdge looks in both directions.
	assert.True(t, snap.HasAnyEdge("c", "b", []string{EdgeKindPartOf}))
	assert.False(t, snap.HasAnyEdge("a", "c", []string{EdgeKindPartOf, EdgeKindDependsOn}))

	out := snap.OutgoingEdges("a", EdgeKindDependsOn)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].DstRefID)
	assert.Empty(t, snap.OutgoingEdges("a", EdgeKindPartOf))
}

func TestSnapshotMergeEdges(t *testing.T) {
	snap, err := NewSnapshot(
		[]*Node{node("a", "domain", ""), node("b", "domain", "")},
		[]Edge{{SrcRefID: "a", DstRefID: "b", Kind: EdgeKindDependsOn}})
	require.NoError(t, err)

	added := snap.MergeEdges([]Edge{
		{SrcRefID: "a", DstRefID: "b", Kind: EdgeKindDependsOn}, // dup
		{SrcRefID: "b", DstRefID: "a", Kind: EdgeKindDependsOn},
	})
	assert.Equal(t, 1, added)
	assert.Len(t, snap.Edges(), 2)
	assert.True(t, snap.HasEdge("b", "a", EdgeKindDependsOn))
}

func TestSnapshotApplyTags(t *testing.T) {
	snap, err := NewSnapshot([]*Node{node("ui.web", "service", "src/ui")}, nil)
	require.NoError(t, err)

	warnings := snap.ApplyTags(map[string][]string{
		"presentation": {"ui.web", "ghost.node"},
	})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "ghost.node")

	n, ok := snap.Node("ui.web")
	require.True(t, ok)
	assert.True(t, n.HasTag("presentation"))
}

func TestNormalizeSourcePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/billing/", "src/billing"},
		{"./src/billing", "src/billing"},
		{`src\billing\api`, "src/billing/api"},
		{"src/billing", "src/billing"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSourcePath(tt.in), "input %q", tt.in)
	}
}

func TestResolvedImport(t *testing.T) {
	r := ResolvedImport{ImportRecord: ImportRecord{FilePath: "a.py", LineNumber: 1, ImportPath: "billing.api"}}
	assert.False(t, r.Resolved())
	r.RefID = "billing"
	assert.True(t, r.Resolved())
}
