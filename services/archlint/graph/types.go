// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graph defines the architecture graph data model shared by the
// resolver, the rule evaluators, and the storage layer.
//
// Nodes are graph-addressable architecture units (domains, services,
// features, entities, ADRs) keyed by a globally unique ref_id. Edges are
// typed relationships between two nodes, composite-keyed on
// (src, dst, kind) and deduplicated.
//
// The graph is populated by an external loader; this package only models
// it. Everything the rule engine consumes is bundled into a Snapshot,
// which is read-only for the duration of an evaluation run.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known edge kinds. Edge.Kind is an open string because the loader
// may introduce project-specific kinds; these are the ones this core
// creates or gives special meaning to.
const (
	// EdgeKindDependsOn is the kind written by the dependency edge
	// builder for resolved code imports.
	EdgeKindDependsOn = "depends_on"

	// EdgeKindPartOf expresses structural containment. Deny rules
	// commonly exempt pairs connected by it.
	EdgeKindPartOf = "part_of"

	// EdgeKindUses expresses a declared (not derived) usage relation.
	EdgeKindUses = "uses"
)

// Node is a graph-addressable architecture unit.
//
// Owned by the graph store; read-only to the rule engine.
type Node struct {
	// RefID is the globally unique identifier.
	RefID string `json:"ref_id"`

	// Kind classifies the node (domain, service, feature, entity, adr).
	Kind string `json:"kind"`

	// Source is an optional path prefix that anchors the node to a
	// location in the source tree. Trailing slashes are not
	// significant; matching normalizes them away.
	Source string `json:"source,omitempty"`

	// Tags is the set of free-form labels attached to the node.
	Tags map[string]struct{} `json:"-"`
}

// HasTag reports whether the node carries the given tag.
func (n *Node) HasTag(tag string) bool {
	if n.Tags == nil {
		return false
	}
	_, ok := n.Tags[tag]
	return ok
}

// AddTag attaches a tag to the node.
func (n *Node) AddTag(tag string) {
	if n.Tags == nil {
		n.Tags = make(map[string]struct{})
	}
	n.Tags[tag] = struct{}{}
}

// TagList returns the node's tags in sorted order.
func (n *Node) TagList() []string {
	tags := make([]string, 0, len(n.Tags))
	for t := range n.Tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Validate checks structural invariants on the node.
func (n *Node) Validate() error {
	if n.RefID == "" {
		return fmt.Errorf("node missing ref_id")
	}
	if n.Kind == "" {
		return fmt.Errorf("node %s missing kind", n.RefID)
	}
	return nil
}

// Edge is a typed relationship between two nodes.
type Edge struct {
	SrcRefID string `json:"src_ref_id"`
	DstRefID string `json:"dst_ref_id"`
	Kind     string `json:"kind"`
}

// Key returns the composite dedup key for the edge.
func (e Edge) Key() string {
	return e.SrcRefID + "\x00" + e.DstRefID + "\x00" + e.Kind
}

// ImportRecord is one raw import statement found in one file.
// Ephemeral per extraction run unless promoted to code_imports.
type ImportRecord struct {
	FilePath   string `json:"file_path"`
	LineNumber int    `json:"line_number"`
	ImportPath string `json:"import_path"`
}

// ResolvedImport is an ImportRecord mapped to a graph node.
//
// An empty RefID means "intra-project but unmapped": the record is
// excluded from edge building but stays visible to import-boundary
// evaluation, which operates on raw paths.
type ResolvedImport struct {
	ImportRecord
	RefID string `json:"resolved_ref_id,omitempty"`

	// FromRefID is the node owning the importing file, derived from
	// FilePath by the resolver. Not persisted; deny rules and the edge
	// builder consume it.
	FromRefID string `json:"-"`
}

// Resolved reports whether the import was mapped to a node.
func (r ResolvedImport) Resolved() bool { return r.RefID != "" }

// NodeMetrics carries the per-node counts consumed by cardinality rules.
type NodeMetrics struct {
	Symbols     int     `json:"symbols"`
	Files       int     `json:"files"`
	DocCoverage float64 `json:"doc_coverage"`
}

// Snapshot is the read-only view of the graph that one evaluation run
// operates on. Nothing in the rule engine mutates it; concurrent readers
// are safe once construction finishes.
type Snapshot struct {
	nodes   map[string]*Node
	edges   []Edge
	edgeSet map[string]struct{}
	imports []ResolvedImport
	metrics map[string]NodeMetrics
}

// NewSnapshot builds a snapshot from loader output. Duplicate ref_ids
// and duplicate (src, dst, kind) edges are rejected so one run never
// sees an ambiguous graph.
func NewSnapshot(nodes []*Node, edges []Edge) (*Snapshot, error) {
	s := &Snapshot{
		nodes:   make(map[string]*Node, len(nodes)),
		edgeSet: make(map[string]struct{}, len(edges)),
		metrics: make(map[string]NodeMetrics),
	}
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.nodes[n.RefID]; dup {
			return nil, fmt.Errorf("duplicate ref_id %q", n.RefID)
		}
		s.nodes[n.RefID] = n
	}
	for _, e := range edges {
		if _, dup := s.edgeSet[e.Key()]; dup {
			continue
		}
		s.edgeSet[e.Key()] = struct{}{}
		s.edges = append(s.edges, e)
	}
	return s, nil
}

// Node returns the node with the given ref_id.
func (s *Snapshot) Node(refID string) (*Node, bool) {
	n, ok := s.nodes[refID]
	return n, ok
}

// Nodes returns all nodes sorted by ref_id. The slice is freshly
// allocated; callers may not mutate the nodes themselves.
func (s *Snapshot) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RefID < out[j].RefID })
	return out
}

// NodeCount returns the number of nodes in the snapshot.
func (s *Snapshot) NodeCount() int { return len(s.nodes) }

// Edges returns all edges in insertion order.
func (s *Snapshot) Edges() []Edge { return s.edges }

// HasEdge reports whether an edge of the given kind connects src to dst.
func (s *Snapshot) HasEdge(src, dst, kind string) bool {
	_, ok := s.edgeSet[Edge{SrcRefID: src, DstRefID: dst, Kind: kind}.Key()]
	return ok
}

// HasAnyEdge reports whether any edge of one of the given kinds connects
// src to dst, in either direction. Used by deny-rule exemptions, where a
// declared relationship either way excuses the dependency.
func (s *Snapshot) HasAnyEdge(src, dst string, kinds []string) bool {
	for _, k := range kinds {
		if s.HasEdge(src, dst, k) || s.HasEdge(dst, src, k) {
			return true
		}
	}
	return false
}

// OutgoingEdges returns edges leaving the given node, optionally
// filtered by kind (empty kind means all).
func (s *Snapshot) OutgoingEdges(refID, kind string) []Edge {
	var out []Edge
	for _, e := range s.edges {
		if e.SrcRefID != refID {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e)
	}
	return out
}

// MergeEdges adds run-derived edges to the snapshot, skipping
// duplicates, and returns the number actually added. Edges merged here
// are visible to rule evaluation the same run that derived them.
func (s *Snapshot) MergeEdges(edges []Edge) int {
	added := 0
	for _, e := range edges {
		if _, dup := s.edgeSet[e.Key()]; dup {
			continue
		}
		s.edgeSet[e.Key()] = struct{}{}
		s.edges = append(s.edges, e)
		added++
	}
	return added
}

// SetImports attaches the run's resolved imports to the snapshot.
func (s *Snapshot) SetImports(imports []ResolvedImport) { s.imports = imports }

// Imports returns the run's resolved imports (including unmapped ones).
func (s *Snapshot) Imports() []ResolvedImport { return s.imports }

// SetMetrics attaches per-node metrics used by cardinality rules.
func (s *Snapshot) SetMetrics(m map[string]NodeMetrics) {
	if m == nil {
		m = make(map[string]NodeMetrics)
	}
	s.metrics = m
}

// Metrics returns the metrics recorded for a node, if any.
func (s *Snapshot) Metrics(refID string) (NodeMetrics, bool) {
	m, ok := s.metrics[refID]
	return m, ok
}

// ApplyTags attaches tag assignments (tag name -> ref_ids) to the nodes
// they name. Unknown ref_ids are returned so the caller can surface a
// non-fatal warning; evaluation proceeds without them.
func (s *Snapshot) ApplyTags(tags map[string][]string) []string {
	var unknown []string
	for tag, refs := range tags {
		for _, ref := range refs {
			n, ok := s.nodes[ref]
			if !ok {
				unknown = append(unknown, fmt.Sprintf("tag %s: unknown ref_id %s", tag, ref))
				continue
			}
			n.AddTag(tag)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// NormalizeSourcePath canonicalizes a node source or import path for
// prefix comparison: backslashes become slashes, leading "./" and
// trailing "/" are dropped. Trailing-slash and non-trailing-slash
// source values therefore compare identically.
func NormalizeSourcePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, "/")
	return p
}
