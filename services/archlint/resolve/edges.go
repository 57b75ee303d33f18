// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"sort"

	"github.com/AleutianAI/archgraph/pkg/logging"
	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// DefaultMaxEdges caps the edges one run may derive, bounding output
// size on pathological repositories.
const DefaultMaxEdges = 50_000

// EdgeBuilderOptions configures BuildEdges.
type EdgeBuilderOptions struct {
	// MaxEdges caps the number of derived edges. 0 means
	// DefaultMaxEdges.
	MaxEdges int

	// Logger receives a warning when the cap truncates output.
	Logger *logging.Logger
}

// BuildEdges converts resolved imports into depends_on edges.
//
// The importing node is found from the file path via the same
// hierarchical matching the resolver uses. Imports from files that map
// to no node, unresolved imports, and self-edges are discarded. Edges
// are deduplicated on (src, dst, kind) and returned in sorted order so
// repeated runs merge identical sets.
func BuildEdges(r *Resolver, imports []graph.ResolvedImport, opts EdgeBuilderOptions) []graph.Edge {
	maxEdges := opts.MaxEdges
	if maxEdges <= 0 {
		maxEdges = DefaultMaxEdges
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	seen := make(map[string]struct{})
	var edges []graph.Edge
	truncated := false

	for _, imp := range imports {
		if !imp.Resolved() {
			continue
		}
		src := imp.FromRefID
		if src == "" {
			src, _ = r.ResolveFile(imp.FilePath)
		}
		if src == "" || src == imp.RefID {
			continue
		}
		e := graph.Edge{SrcRefID: src, DstRefID: imp.RefID, Kind: graph.EdgeKindDependsOn}
		if _, dup := seen[e.Key()]; dup {
			continue
		}
		if len(edges) >= maxEdges {
			truncated = true
			break
		}
		seen[e.Key()] = struct{}{}
		edges = append(edges, e)
	}

	if truncated {
		logger.Warn("edge cap reached, derived edges truncated", "max_edges", maxEdges)
	}

	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.SrcRefID != b.SrcRefID {
			return a.SrcRefID < b.SrcRefID
		}
		if a.DstRefID != b.DstRefID {
			return a.DstRefID < b.DstRefID
		}
		return a.Kind < b.Kind
	})
	return edges
}
