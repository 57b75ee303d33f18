// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// EvaluateAll runs every rule in document order and returns the
// canonically sorted violations. Evaluation never errors: a rule that
// matches nothing simply produces no violations.
func EvaluateAll(snap *graph.Snapshot, rs *RuleSet) []Violation {
	var out []Violation
	for i := range rs.Rules {
		out = append(out, Evaluate(snap, &rs.Rules[i])...)
	}
	SortViolations(out)
	return out
}

// Evaluate dispatches one rule to its evaluator.
func Evaluate(snap *graph.Snapshot, r *Rule) []Violation {
	switch r.Type() {
	case TypeDeny:
		return evalDeny(snap, r)
	case TypeRequire:
		return evalRequire(snap, r)
	case TypeForbidEdge:
		return evalForbidEdge(snap, r)
	case TypeLayer:
		return evalLayer(snap, r)
	case TypeCycle:
		return evalCycle(snap, r)
	case TypeImportBoundary:
		return evalImportBoundary(snap, r)
	case TypeCardinality:
		return evalCardinality(snap, r)
	default:
		return nil
	}
}

// evalDeny flags resolved imports from a From node into a To node.
// Imports inside one node are never violations, and an edge of a kind
// listed in unless_edge (either direction) exempts the pair.
func evalDeny(snap *graph.Snapshot, r *Rule) []Violation {
	body := r.Deny
	var out []Violation
	for _, imp := range snap.Imports() {
		if !imp.Resolved() || imp.FromRefID == "" || imp.FromRefID == imp.RefID {
			continue
		}
		from, ok := snap.Node(imp.FromRefID)
		if !ok || !body.From.Matches(from) {
			continue
		}
		to, ok := snap.Node(imp.RefID)
		if !ok || !body.To.Matches(to) {
			continue
		}
		if len(body.UnlessEdge) > 0 && snap.HasAnyEdge(from.RefID, to.RefID, body.UnlessEdge) {
			continue
		}
		out = append(out, Violation{
			RuleName:   r.Name,
			RuleType:   TypeDeny,
			Severity:   r.Severity,
			FilePath:   imp.FilePath,
			LineNumber: imp.LineNumber,
			FromRefID:  from.RefID,
			ToRefID:    to.RefID,
			Message: fmt.Sprintf("%s must not depend on %s (import %q)",
				from.RefID, to.RefID, imp.ImportPath),
		})
	}
	return out
}

// evalRequire flags For-matching nodes lacking an outgoing edge of the
// required kind to any HasEdgeTo-matching node.
func evalRequire(snap *graph.Snapshot, r *Rule) []Violation {
	body := r.Require
	var out []Violation
	for _, n := range body.For.MatchingNodes(snap) {
		satisfied := false
		for _, e := range snap.OutgoingEdges(n.RefID, body.EdgeKind) {
			dst, ok := snap.Node(e.DstRefID)
			if ok && body.HasEdgeTo.Matches(dst) {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}
		out = append(out, Violation{
			RuleName:  r.Name,
			RuleType:  TypeRequire,
			Severity:  r.Severity,
			FromRefID: n.RefID,
			Message: fmt.Sprintf("%s has no %q edge to a required target",
				n.RefID, body.EdgeKind),
		})
	}
	return out
}

// evalForbidEdge flags graph edges (not imports) between matching
// endpoints. An empty edge_kind matches every kind.
func evalForbidEdge(snap *graph.Snapshot, r *Rule) []Violation {
	body := r.ForbidEdge
	var out []Violation
	for _, e := range snap.Edges() {
		if body.EdgeKind != "" && e.Kind != body.EdgeKind {
			continue
		}
		src, ok := snap.Node(e.SrcRefID)
		if !ok || !body.From.Matches(src) {
			continue
		}
		dst, ok := snap.Node(e.DstRefID)
		if !ok || !body.To.Matches(dst) {
			continue
		}
		out = append(out, Violation{
			RuleName:  r.Name,
			RuleType:  TypeForbidEdge,
			Severity:  r.Severity,
			FromRefID: src.RefID,
			ToRefID:   dst.RefID,
			Message: fmt.Sprintf("forbidden %s edge from %s to %s",
				e.Kind, src.RefID, dst.RefID),
		})
	}
	return out
}

// evalLayer enforces top-down flow through the ordered layers. An edge
// from a lower layer to a higher one is always a violation; skipping an
// intermediate layer violates only when allow_skip is explicitly false.
// Nodes outside every layer, and edges within one layer, are ignored.
func evalLayer(snap *graph.Snapshot, r *Rule) []Violation {
	body := r.Layer
	layerIdx := func(n *graph.Node) (int, bool) {
		for i, l := range body.Layers {
			if n.HasTag(l.Tag) {
				return i, true
			}
		}
		return 0, false
	}

	var out []Violation
	for _, e := range snap.Edges() {
		if e.Kind != body.EdgeKind {
			continue
		}
		src, ok := snap.Node(e.SrcRefID)
		if !ok {
			continue
		}
		dst, ok := snap.Node(e.DstRefID)
		if !ok {
			continue
		}
		srcIdx, ok := layerIdx(src)
		if !ok {
			continue
		}
		dstIdx, ok := layerIdx(dst)
		if !ok {
			continue
		}
		switch {
		case dstIdx < srcIdx:
			out = append(out, Violation{
				RuleName:  r.Name,
				RuleType:  TypeLayer,
				Severity:  r.Severity,
				FromRefID: src.RefID,
				ToRefID:   dst.RefID,
				Message: fmt.Sprintf("upward dependency: %s (%s) depends on %s (%s)",
					src.RefID, body.Layers[srcIdx].Name,
					dst.RefID, body.Layers[dstIdx].Name),
			})
		case !body.skipAllowed() && dstIdx > srcIdx+1:
			out = append(out, Violation{
				RuleName:  r.Name,
				RuleType:  TypeLayer,
				Severity:  r.Severity,
				FromRefID: src.RefID,
				ToRefID:   dst.RefID,
				Message: fmt.Sprintf("layer skip: %s (%s) depends on %s (%s), skipping %s",
					src.RefID, body.Layers[srcIdx].Name,
					dst.RefID, body.Layers[dstIdx].Name,
					body.Layers[srcIdx+1].Name),
			})
		}
	}
	return out
}

// evalImportBoundary runs against raw import records, resolved or not,
// so boundaries hold even for paths the graph does not map.
func evalImportBoundary(snap *graph.Snapshot, r *Rule) []Violation {
	body := r.ImportBoundary
	if body.fromGlob == nil {
		body.compile()
	}
	var out []Violation
	for _, imp := range snap.Imports() {
		if !body.fromGlob.MatchesPath(imp.FilePath) || !body.toGlob.MatchesPath(imp.ImportPath) {
			continue
		}
		out = append(out, Violation{
			RuleName:   r.Name,
			RuleType:   TypeImportBoundary,
			Severity:   r.Severity,
			FilePath:   imp.FilePath,
			LineNumber: imp.LineNumber,
			FromRefID:  imp.FromRefID,
			ToRefID:    imp.RefID,
			Message: fmt.Sprintf("import %q from %s crosses boundary %s -> %s",
				imp.ImportPath, imp.FilePath, body.From, body.To),
		})
	}
	return out
}

// evalCardinality emits one violation per breached threshold per node.
// Nodes without collected metrics are skipped rather than treated as
// zero, so a partial scan cannot produce false positives.
func evalCardinality(snap *graph.Snapshot, r *Rule) []Violation {
	body := r.Cardinality
	var out []Violation
	add := func(n *graph.Node, msg string) {
		out = append(out, Violation{
			RuleName:  r.Name,
			RuleType:  TypeCardinality,
			Severity:  r.Severity,
			FromRefID: n.RefID,
			Message:   msg,
		})
	}
	for _, n := range body.For.MatchingNodes(snap) {
		m, ok := snap.Metrics(n.RefID)
		if !ok {
			continue
		}
		if body.MaxSymbols != nil && m.Symbols > *body.MaxSymbols {
			add(n, fmt.Sprintf("%s has %d symbols, max is %d", n.RefID, m.Symbols, *body.MaxSymbols))
		}
		if body.MaxFiles != nil && m.Files > *body.MaxFiles {
			add(n, fmt.Sprintf("%s has %d files, max is %d", n.RefID, m.Files, *body.MaxFiles))
		}
		if body.MinDocCoverage != nil && m.DocCoverage < *body.MinDocCoverage {
			add(n, fmt.Sprintf("%s doc coverage %.2f is below %.2f", n.RefID, m.DocCoverage, *body.MinDocCoverage))
		}
	}
	return out
}
