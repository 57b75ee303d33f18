// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

func cycleRule(maxDepth int, kinds ...string) *Rule {
	return &Rule{
		Name:     "no-cycles",
		Severity: SeverityError,
		Cycle:    &CycleRule{EdgeKind: StringList(kinds), MaxDepth: maxDepth},
	}
}

func dependsOn(pairs ...[2]string) []graph.Edge {
	edges := make([]graph.Edge, 0, len(pairs))
	for _, p := range pairs {
		edges = append(edges, graph.Edge{SrcRefID: p[0], DstRefID: p[1], Kind: graph.EdgeKindDependsOn})
	}
	return edges
}

func cycleNodes(refs ...string) []*graph.Node {
	nodes := make([]*graph.Node, 0, len(refs))
	for _, r := range refs {
		nodes = append(nodes, &graph.Node{RefID: r, Kind: "domain"})
	}
	return nodes
}

func TestEvalCycle(t *testing.T) {
	t.Run("three-node cycle reported exactly once", func(t *testing.T) {
		snap := testSnapshot(t, cycleNodes("a", "b", "c"),
			dependsOn([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"}))

		violations := Evaluate(snap, cycleRule(0, graph.EdgeKindDependsOn))
		require.Len(t, violations, 1)
		assert.Equal(t, "dependency cycle: a -> b -> c -> a", violations[0].Message)
		assert.Equal(t, "a", violations[0].FromRefID)
	})

	t.Run("open chain reports nothing", func(t *testing.T) {
		snap := testSnapshot(t, cycleNodes("a", "b", "c"),
			dependsOn([2]string{"a", "b"}, [2]string{"b", "c"}))
		assert.Empty(t, Evaluate(snap, cycleRule(0, graph.EdgeKindDependsOn)))
	})

	t.Run("self loop", func(t *testing.T) {
		snap := testSnapshot(t, cycleNodes("a"), dependsOn([2]string{"a", "a"}))
		violations := Evaluate(snap, cycleRule(0, graph.EdgeKindDependsOn))
		require.Len(t, violations, 1)
		assert.Equal(t, "dependency cycle: a -> a", violations[0].Message)
	})

	t.Run("two distinct cycles reported separately", func(t *testing.T) {
		snap := testSnapshot(t, cycleNodes("a", "b", "x", "y"),
			dependsOn([2]string{"a", "b"}, [2]string{"b", "a"},
				[2]string{"x", "y"}, [2]string{"y", "x"}))
		violations := Evaluate(snap, cycleRule(0, graph.EdgeKindDependsOn))
		require.Len(t, violations, 2)
		assert.Equal(t, "dependency cycle: a -> b -> a", violations[0].Message)
		assert.Equal(t, "dependency cycle: x -> y -> x", violations[1].Message)
	})

	t.Run("max_depth abandons longer paths silently", func(t *testing.T) {
		// Cycle of length 4 with max_depth 3: out of reach, no report.
		snap := testSnapshot(t, cycleNodes("a", "b", "c", "d"),
			dependsOn([2]string{"a", "b"}, [2]string{"b", "c"},
				[2]string{"c", "d"}, [2]string{"d", "a"}))
		assert.Empty(t, Evaluate(snap, cycleRule(3, graph.EdgeKindDependsOn)))
		assert.Len(t, Evaluate(snap, cycleRule(4, graph.EdgeKindDependsOn)), 1)
	})

	t.Run("edge kind filter", func(t *testing.T) {
		snap := testSnapshot(t, cycleNodes("a", "b"), []graph.Edge{
			{SrcRefID: "a", DstRefID: "b", Kind: graph.EdgeKindDependsOn},
			{SrcRefID: "b", DstRefID: "a", Kind: graph.EdgeKindUses},
		})
		assert.Empty(t, Evaluate(snap, cycleRule(0, graph.EdgeKindDependsOn)))

		// Over the union of both kinds the cycle closes.
		violations := Evaluate(snap, cycleRule(0, graph.EdgeKindDependsOn, graph.EdgeKindUses))
		assert.Len(t, violations, 1)
	})

	t.Run("parallel edges of both kinds report the cycle once", func(t *testing.T) {
		snap := testSnapshot(t, cycleNodes("a", "b"), []graph.Edge{
			{SrcRefID: "a", DstRefID: "b", Kind: graph.EdgeKindDependsOn},
			{SrcRefID: "a", DstRefID: "b", Kind: graph.EdgeKindUses},
			{SrcRefID: "b", DstRefID: "a", Kind: graph.EdgeKindDependsOn},
		})
		violations := Evaluate(snap, cycleRule(0, graph.EdgeKindDependsOn, graph.EdgeKindUses))
		require.Len(t, violations, 1)
		assert.Equal(t, "dependency cycle: a -> b -> a", violations[0].Message)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		snap := testSnapshot(t, cycleNodes("a", "b", "c"),
			dependsOn([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"},
				[2]string{"b", "a"}))
		rule := cycleRule(0, graph.EdgeKindDependsOn)
		assert.Equal(t, Evaluate(snap, rule), Evaluate(snap, rule))
	})
}
