// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// Sentinel errors for rule loading. All are fatal: a malformed document
// aborts the run before any evaluation, with no partial result.
var (
	// ErrBadDocument indicates the document failed YAML parsing or
	// structural validation.
	ErrBadDocument = errors.New("malformed rule document")

	// ErrBadVersion indicates an unsupported schema version.
	ErrBadVersion = errors.New("unsupported rule schema version")

	// ErrDuplicateRule indicates two rules share a name.
	ErrDuplicateRule = errors.New("duplicate rule name")

	// ErrBodyCount indicates a rule with zero or multiple
	// type-specific bodies.
	ErrBodyCount = errors.New("rule must have exactly one type body")
)

// Supported schema versions. v1 is the five structural rule types;
// v2 adds import_boundary and cardinality; v3 adds the tags block.
const (
	minVersion = 1
	maxVersion = 3

	tagsVersion          = 3
	boundaryCardinalityV = 2
)

type document struct {
	Version int                 `yaml:"version"`
	Tags    map[string][]string `yaml:"tags,omitempty"`
	Rules   []Rule              `yaml:"rules"`
}

// LoadFile reads and parses a rule document from disk.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Load(data)
}

// Load parses and validates a rule document.
//
// Fatal failures (malformed YAML, bad version, duplicate names, body
// count, bad severity) return an error and no partial result.
// Referential problems against a node set are not checked here — they
// are non-fatal and reported by Validate.
func Load(data []byte) (*RuleSet, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	if doc.Version < minVersion || doc.Version > maxVersion {
		return nil, fmt.Errorf("%w: %d (supported: %d-%d)",
			ErrBadVersion, doc.Version, minVersion, maxVersion)
	}
	if len(doc.Tags) > 0 && doc.Version < tagsVersion {
		return nil, fmt.Errorf("%w: tags block requires version %d, document declares %d",
			ErrBadDocument, tagsVersion, doc.Version)
	}

	seen := make(map[string]struct{}, len(doc.Rules))
	for i := range doc.Rules {
		r := &doc.Rules[i]
		if r.Name == "" {
			return nil, fmt.Errorf("%w: rule %d has no name", ErrBadDocument, i)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, r.Name)
		}
		seen[r.Name] = struct{}{}

		if n := r.bodyCount(); n != 1 {
			return nil, fmt.Errorf("%w: rule %q has %d", ErrBodyCount, r.Name, n)
		}
		if t := r.Type(); (t == TypeImportBoundary || t == TypeCardinality) &&
			doc.Version < boundaryCardinalityV {
			return nil, fmt.Errorf("%w: rule %q: %s requires version %d",
				ErrBadDocument, r.Name, t, boundaryCardinalityV)
		}

		if r.Severity == "" {
			r.Severity = SeverityError
		}
		if err := validateBody(r); err != nil {
			return nil, fmt.Errorf("%w: rule %q: %v", ErrBadDocument, r.Name, err)
		}
		if r.ImportBoundary != nil {
			r.ImportBoundary.compile()
		}
	}

	return &RuleSet{Version: doc.Version, Rules: doc.Rules, Tags: doc.Tags}, nil
}

// validateBody checks variant-specific structure.
func validateBody(r *Rule) error {
	switch r.Type() {
	case TypeRequire:
		if r.Require.EdgeKind == "" {
			return fmt.Errorf("require needs edge_kind")
		}
	case TypeLayer:
		if len(r.Layer.Layers) < 2 {
			return fmt.Errorf("layer needs at least two layers")
		}
		if r.Layer.Enforce != "" && r.Layer.Enforce != "top-down" {
			return fmt.Errorf("layer enforce must be top-down, got %q", r.Layer.Enforce)
		}
		if r.Layer.EdgeKind == "" {
			return fmt.Errorf("layer needs edge_kind")
		}
		seen := make(map[string]struct{})
		for _, l := range r.Layer.Layers {
			if l.Name == "" || l.Tag == "" {
				return fmt.Errorf("layer entries need name and tag")
			}
			if _, dup := seen[l.Tag]; dup {
				return fmt.Errorf("layer tag %q appears twice", l.Tag)
			}
			seen[l.Tag] = struct{}{}
		}
	case TypeCycle:
		if len(r.Cycle.EdgeKind) == 0 {
			return fmt.Errorf("cycle_detection needs edge_kind")
		}
		if r.Cycle.MaxDepth < 0 {
			return fmt.Errorf("cycle_detection max_depth must be non-negative")
		}
	case TypeImportBoundary:
		if r.ImportBoundary.From == "" || r.ImportBoundary.To == "" {
			return fmt.Errorf("import_boundary needs from and to globs")
		}
	case TypeCardinality:
		c := r.Cardinality
		if c.MaxSymbols == nil && c.MaxFiles == nil && c.MinDocCoverage == nil {
			return fmt.Errorf("cardinality needs at least one threshold")
		}
	}
	return nil
}

// Validate checks the rule set's references against the snapshot.
// Returned warnings are non-fatal: rules naming unknown refs or tags
// load fine and simply never match.
func (rs *RuleSet) Validate(snap *graph.Snapshot) []string {
	var warnings []string
	for i := range rs.Rules {
		r := &rs.Rules[i]
		switch r.Type() {
		case TypeDeny:
			warnings = append(warnings, r.Deny.From.referenceWarnings(r.Name, "deny.from", snap)...)
			warnings = append(warnings, r.Deny.To.referenceWarnings(r.Name, "deny.to", snap)...)
		case TypeRequire:
			warnings = append(warnings, r.Require.For.referenceWarnings(r.Name, "require.for", snap)...)
			warnings = append(warnings, r.Require.HasEdgeTo.referenceWarnings(r.Name, "require.has_edge_to", snap)...)
		case TypeForbidEdge:
			warnings = append(warnings, r.ForbidEdge.From.referenceWarnings(r.Name, "forbid_edge.from", snap)...)
			warnings = append(warnings, r.ForbidEdge.To.referenceWarnings(r.Name, "forbid_edge.to", snap)...)
		case TypeLayer:
			for _, l := range r.Layer.Layers {
				if !tagExists(snap, l.Tag) {
					warnings = append(warnings,
						fmt.Sprintf("rule %s: layer %s references unknown tag %q", r.Name, l.Name, l.Tag))
				}
			}
		case TypeCardinality:
			warnings = append(warnings, r.Cardinality.For.referenceWarnings(r.Name, "cardinality.for", snap)...)
		}
	}
	return warnings
}

// Records flattens the rule set into the row shape persisted to the
// rules table.
func (rs *RuleSet) Records() []RuleRecordView {
	out := make([]RuleRecordView, 0, len(rs.Rules))
	for i := range rs.Rules {
		r := &rs.Rules[i]
		out = append(out, RuleRecordView{
			Name:        r.Name,
			Type:        string(r.Type()),
			Severity:    string(r.Severity),
			Description: r.Description,
		})
	}
	return out
}

// RuleRecordView mirrors storage.RuleRecord without importing the
// storage package; the lint runner converts between the two.
type RuleRecordView struct {
	Name        string
	Type        string
	Severity    string
	Description string
}
