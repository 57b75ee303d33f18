// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// evalCycle reports every elementary cycle over the configured edge
// kinds, at most max_depth long. Each cycle is reported exactly once,
// rotated so its lexically smallest ref_id leads.
func evalCycle(snap *graph.Snapshot, r *Rule) []Violation {
	body := r.Cycle
	maxDepth := body.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultCycleMaxDepth
	}

	kinds := make(map[string]struct{}, len(body.EdgeKind))
	for _, k := range body.EdgeKind {
		kinds[k] = struct{}{}
	}

	// Successors are deduplicated: parallel edges of different kinds
	// between one pair must not report the same cycle twice.
	successors := make(map[string]map[string]struct{})
	for _, e := range snap.Edges() {
		if _, ok := kinds[e.Kind]; !ok {
			continue
		}
		if successors[e.SrcRefID] == nil {
			successors[e.SrcRefID] = make(map[string]struct{})
		}
		successors[e.SrcRefID][e.DstRefID] = struct{}{}
	}
	adjacency := make(map[string][]string, len(successors))
	starts := make([]string, 0, len(successors))
	for src, dsts := range successors {
		for dst := range dsts {
			adjacency[src] = append(adjacency[src], dst)
		}
		sort.Strings(adjacency[src])
		starts = append(starts, src)
	}
	sort.Strings(starts)

	// Searching from each start in sorted order, restricted to nodes
	// not smaller than the start, yields every elementary cycle exactly
	// once with the smallest ref_id first.
	var cycles [][]string
	for _, start := range starts {
		path := []string{start}
		onPath := map[string]struct{}{start: {}}
		var walk func(cur string)
		walk = func(cur string) {
			if len(path) > maxDepth {
				return
			}
			for _, next := range adjacency[cur] {
				if next < start {
					continue
				}
				if next == start {
					cycle := make([]string, len(path))
					copy(cycle, path)
					cycles = append(cycles, cycle)
					continue
				}
				if _, seen := onPath[next]; seen {
					continue
				}
				path = append(path, next)
				onPath[next] = struct{}{}
				walk(next)
				path = path[:len(path)-1]
				delete(onPath, next)
			}
		}
		walk(start)
	}

	sort.Slice(cycles, func(i, j int) bool {
		a, b := cycles[i], cycles[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	out := make([]Violation, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, Violation{
			RuleName:  r.Name,
			RuleType:  TypeCycle,
			Severity:  r.Severity,
			FromRefID: c[0],
			Message: fmt.Sprintf("dependency cycle: %s -> %s",
				strings.Join(c, " -> "), c[0]),
		})
	}
	return out
}
