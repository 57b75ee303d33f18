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

// Matches reports whether the node satisfies every set field of the
// matcher. Exclusion is checked last so an excluded ref_id never
// matches regardless of the other predicates.
func (m Matcher) Matches(n *graph.Node) bool {
	if n == nil {
		return false
	}
	if m.RefID != "" && n.RefID != m.RefID {
		return false
	}
	if m.Kind != "" && n.Kind != m.Kind {
		return false
	}
	if m.Tag != "" && !n.HasTag(m.Tag) {
		return false
	}
	for _, ex := range m.Exclude {
		if n.RefID == ex {
			return false
		}
	}
	return true
}

// MatchingNodes returns the snapshot nodes the matcher accepts, in
// ref_id order (Snapshot.Nodes is already sorted).
func (m Matcher) MatchingNodes(snap *graph.Snapshot) []*graph.Node {
	var out []*graph.Node
	for _, n := range snap.Nodes() {
		if m.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// referenceWarnings reports ref_ids and tags the matcher names that do
// not exist in the snapshot. Non-fatal by contract: the rule simply
// never matches.
func (m Matcher) referenceWarnings(ruleName, field string, snap *graph.Snapshot) []string {
	var warnings []string
	if m.RefID != "" {
		if _, ok := snap.Node(m.RefID); !ok {
			warnings = append(warnings,
				fmt.Sprintf("rule %s: %s references unknown ref_id %q", ruleName, field, m.RefID))
		}
	}
	if m.Tag != "" && !tagExists(snap, m.Tag) {
		warnings = append(warnings,
			fmt.Sprintf("rule %s: %s references unknown tag %q", ruleName, field, m.Tag))
	}
	for _, ex := range m.Exclude {
		if _, ok := snap.Node(ex); !ok {
			warnings = append(warnings,
				fmt.Sprintf("rule %s: %s excludes unknown ref_id %q", ruleName, field, ex))
		}
	}
	return warnings
}

func tagExists(snap *graph.Snapshot, tag string) bool {
	for _, n := range snap.Nodes() {
		if n.HasTag(tag) {
			return true
		}
	}
	return false
}
