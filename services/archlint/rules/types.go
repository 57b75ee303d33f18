// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rules loads architecture rule documents and evaluates them
// against a graph snapshot.
//
// A rule is a closed tagged union: exactly one of seven type-specific
// bodies is set, and dispatch happens through a switch so a new rule
// type cannot be added without the compiler pointing at every site that
// must learn about it. Evaluators are pure functions over the read-only
// snapshot; violations are data, never errors.
package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"

	ignore "github.com/sabhiram/go-gitignore"
)

// Severity classifies a rule's violations. In strict mode only errors
// fail the CI gate; warnings are reported but non-blocking.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// rank orders severities for the canonical violation sort
// (error before warn).
func (s Severity) rank() int {
	if s == SeverityError {
		return 0
	}
	return 1
}

// UnmarshalYAML validates severity at parse time; anything outside the
// closed set is a fatal document error.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch Severity(raw) {
	case SeverityError, SeverityWarn:
		*s = Severity(raw)
		return nil
	default:
		return fmt.Errorf("invalid severity %q (want error or warn)", raw)
	}
}

// RuleType names the seven rule variants.
type RuleType string

const (
	TypeDeny           RuleType = "deny"
	TypeRequire        RuleType = "require"
	TypeForbidEdge     RuleType = "forbid_edge"
	TypeLayer          RuleType = "layer"
	TypeCycle          RuleType = "cycle_detection"
	TypeImportBoundary RuleType = "import_boundary"
	TypeCardinality    RuleType = "cardinality"
)

// Matcher is the shared node predicate reused by every evaluator.
// All set fields must match; Exclude rejects listed ref_ids even when
// the rest matches. A zero Matcher matches every node.
type Matcher struct {
	RefID   string   `yaml:"ref_id,omitempty"`
	Kind    string   `yaml:"kind,omitempty"`
	Tag     string   `yaml:"tag,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// StringList accepts either a YAML scalar or a sequence of scalars.
// cycle_detection's edge_kind uses it.
type StringList []string

// UnmarshalYAML implements the scalar-or-sequence decoding.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// DenyRule forbids dependencies (resolved imports) from nodes matching
// From to nodes matching To, unless an edge of a kind in UnlessEdge
// connects the pair in either direction.
type DenyRule struct {
	From       Matcher  `yaml:"from"`
	To         Matcher  `yaml:"to"`
	UnlessEdge []string `yaml:"unless_edge,omitempty"`
}

// RequireRule demands that every node matching For has at least one
// outgoing edge of EdgeKind to a node matching HasEdgeTo.
type RequireRule struct {
	For       Matcher `yaml:"for"`
	HasEdgeTo Matcher `yaml:"has_edge_to"`
	EdgeKind  string  `yaml:"edge_kind"`
}

// ForbidEdgeRule flags edges from nodes matching From to nodes matching
// To. EdgeKind empty means any kind.
type ForbidEdgeRule struct {
	From     Matcher `yaml:"from"`
	To       Matcher `yaml:"to"`
	EdgeKind string  `yaml:"edge_kind,omitempty"`
}

// LayerSpec is one tier of a layered-architecture rule.
type LayerSpec struct {
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`
}

// LayerRule enforces one-directional dependency flow through an ordered
// list of tagged layers.
type LayerRule struct {
	Layers  []LayerSpec `yaml:"layers"`
	Enforce string      `yaml:"enforce"` // only "top-down" is defined

	// AllowSkip permits a layer to depend on a non-adjacent lower
	// layer. Unset means true: only upward edges violate.
	AllowSkip *bool  `yaml:"allow_skip,omitempty"`
	EdgeKind  string `yaml:"edge_kind"`
}

// skipAllowed resolves the AllowSkip default.
func (r *LayerRule) skipAllowed() bool {
	return r.AllowSkip == nil || *r.AllowSkip
}

// DefaultCycleMaxDepth bounds cycle search when the rule does not.
const DefaultCycleMaxDepth = 10

// CycleRule detects dependency cycles over edges of the given kind(s).
type CycleRule struct {
	EdgeKind StringList `yaml:"edge_kind"`
	MaxDepth int        `yaml:"max_depth,omitempty"`
}

// ImportBoundaryRule flags raw imports whose importing file path
// matches From and whose import path matches To. It sees pre-resolution
// records, so even unmapped intra-project imports are caught.
type ImportBoundaryRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`

	fromGlob *ignore.GitIgnore
	toGlob   *ignore.GitIgnore
}

// compile prepares the glob matchers. Called once at load.
func (b *ImportBoundaryRule) compile() {
	b.fromGlob = ignore.CompileIgnoreLines(b.From)
	b.toGlob = ignore.CompileIgnoreLines(b.To)
}

// CardinalityRule bounds per-node size metrics. Nil thresholds are not
// checked.
type CardinalityRule struct {
	For            Matcher  `yaml:"for"`
	MaxSymbols     *int     `yaml:"max_symbols,omitempty"`
	MaxFiles       *int     `yaml:"max_files,omitempty"`
	MinDocCoverage *float64 `yaml:"min_doc_coverage,omitempty"`
}

// Rule is one parsed rule: shared header plus exactly one body.
type Rule struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Severity    Severity `yaml:"severity,omitempty"`

	Deny           *DenyRule           `yaml:"deny,omitempty"`
	Require        *RequireRule        `yaml:"require,omitempty"`
	ForbidEdge     *ForbidEdgeRule     `yaml:"forbid_edge,omitempty"`
	Layer          *LayerRule          `yaml:"layer,omitempty"`
	Cycle          *CycleRule          `yaml:"cycle_detection,omitempty"`
	ImportBoundary *ImportBoundaryRule `yaml:"import_boundary,omitempty"`
	Cardinality    *CardinalityRule    `yaml:"cardinality,omitempty"`
}

// Type returns the variant tag for the rule's single body.
func (r *Rule) Type() RuleType {
	switch {
	case r.Deny != nil:
		return TypeDeny
	case r.Require != nil:
		return TypeRequire
	case r.ForbidEdge != nil:
		return TypeForbidEdge
	case r.Layer != nil:
		return TypeLayer
	case r.Cycle != nil:
		return TypeCycle
	case r.ImportBoundary != nil:
		return TypeImportBoundary
	case r.Cardinality != nil:
		return TypeCardinality
	default:
		return ""
	}
}

// bodyCount returns how many type-specific bodies are set; the loader
// rejects anything other than exactly one.
func (r *Rule) bodyCount() int {
	count := 0
	for _, set := range []bool{
		r.Deny != nil, r.Require != nil, r.ForbidEdge != nil, r.Layer != nil,
		r.Cycle != nil, r.ImportBoundary != nil, r.Cardinality != nil,
	} {
		if set {
			count++
		}
	}
	return count
}

// Violation is one detected rule breach. Immutable after creation.
type Violation struct {
	RuleName   string   `json:"rule_name"`
	RuleType   RuleType `json:"rule_type"`
	Severity   Severity `json:"severity"`
	FilePath   string   `json:"file_path,omitempty"`
	LineNumber int      `json:"line_number,omitempty"`
	FromRefID  string   `json:"from_ref_id,omitempty"`
	ToRefID    string   `json:"to_ref_id,omitempty"`
	Message    string   `json:"message"`
}

// RuleSet is one loaded rule document.
type RuleSet struct {
	Version int
	Rules   []Rule
	Tags    map[string][]string
}
