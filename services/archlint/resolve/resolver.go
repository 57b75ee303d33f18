// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolve maps import strings to architecture graph nodes.
//
// Resolution is a pure function of (import path, originating file,
// node set): identical inputs always produce identical output, which
// the CI gate depends on. The order, first match wins:
//
//  1. Annotation lookup — explicit arch:node annotations collected
//     during extraction bind file and directory prefixes to nodes.
//  2. Hierarchical source-prefix matching — the normalized import path
//     is compared against every node's source path; the longest
//     matching prefix wins, ties broken by kind priority, then by
//     ref_id.
//  3. Alias rewriting — configured prefix substitutions (dotted
//     package prefixes, "@/"-style path aliases) are applied and
//     step 2 retried once.
//
// Imports that survive extraction but match nothing resolve to "",
// which is expected and not an error.
package resolve

import (
	"path"
	"sort"
	"strings"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// DefaultKindPriority breaks equal-length prefix ties. The source
// system leaves the exact order underspecified, so it is configurable;
// this default prefers the most specific architectural unit.
var DefaultKindPriority = []string{"service", "domain", "feature"}

// Config tunes resolution behavior.
type Config struct {
	// KindPriority orders node kinds for equal-length prefix ties.
	// Kinds not listed rank after all listed ones. Nil uses
	// DefaultKindPriority.
	KindPriority []string

	// Aliases maps import-path prefixes to source-path prefixes,
	// e.g. {"@/": "src/", "myapp.": "src/myapp/"}. Applied before the
	// single retry of hierarchical matching.
	Aliases map[string]string
}

// Resolver maps import paths and file paths to node ref_ids against a
// fixed node set. Immutable after construction; safe for concurrent
// use.
type Resolver struct {
	sources      []sourceEntry
	annotations  []annotationEntry
	kindRank     map[string]int
	aliasPrefix  []string // sorted longest-first for deterministic rewriting
	aliasReplace map[string]string
}

type sourceEntry struct {
	prefix string // normalized node source
	refID  string
	kind   string
}

type annotationEntry struct {
	prefix string
	refID  string
}

// packageIndexStems are file stems whose annotation speaks for the
// whole directory, not just the file (Python packages, ECMAScript
// barrels, Rust modules).
var packageIndexStems = map[string]struct{}{
	"__init__": {},
	"index":    {},
	"mod":      {},
	"lib":      {},
}

// New builds a resolver over the snapshot's nodes.
//
// annotations maps file paths (relative, slash-separated) to explicitly
// annotated ref_ids. Each annotated file binds its own path and its
// extension-stripped stem; package index files (__init__.py, index.ts,
// mod.rs, lib.rs) additionally bind their directory. When two files
// bind the same prefix, the lexicographically first file path wins,
// keeping construction deterministic.
func New(snap *graph.Snapshot, annotations map[string]string, cfg Config) *Resolver {
	r := &Resolver{
		kindRank:     make(map[string]int),
		aliasReplace: make(map[string]string),
	}

	priority := cfg.KindPriority
	if priority == nil {
		priority = DefaultKindPriority
	}
	for i, kind := range priority {
		r.kindRank[kind] = i
	}

	for _, n := range snap.Nodes() {
		if n.Source == "" {
			continue
		}
		r.sources = append(r.sources, sourceEntry{
			prefix: graph.NormalizeSourcePath(n.Source),
			refID:  n.RefID,
			kind:   n.Kind,
		})
	}

	bound := make(map[string]string)
	files := make([]string, 0, len(annotations))
	for f := range annotations {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		refID := annotations[f]
		norm := graph.NormalizeSourcePath(f)
		stem := strings.TrimSuffix(norm, path.Ext(norm))
		prefixes := []string{norm, stem}
		if _, indexFile := packageIndexStems[path.Base(stem)]; indexFile {
			prefixes = append(prefixes, path.Dir(norm))
		}
		for _, prefix := range prefixes {
			if prefix == "." || prefix == "" {
				continue
			}
			if _, taken := bound[prefix]; !taken {
				bound[prefix] = refID
			}
		}
	}
	for prefix, refID := range bound {
		r.annotations = append(r.annotations, annotationEntry{prefix: prefix, refID: refID})
	}
	sort.Slice(r.annotations, func(i, j int) bool {
		return r.annotations[i].prefix < r.annotations[j].prefix
	})

	for prefix, repl := range cfg.Aliases {
		r.aliasPrefix = append(r.aliasPrefix, prefix)
		r.aliasReplace[prefix] = repl
	}
	sort.Slice(r.aliasPrefix, func(i, j int) bool {
		a, b := r.aliasPrefix[i], r.aliasPrefix[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return r
}

// Resolve maps an import path from the given originating file to a node
// ref_id. The second return is false when nothing matches.
func (r *Resolver) Resolve(importPath, fromFile string) (string, bool) {
	candidates := r.candidates(importPath, fromFile)

	for _, c := range candidates {
		if ref, ok := r.lookupAnnotation(c); ok {
			return ref, true
		}
	}
	for _, c := range candidates {
		if ref, ok := r.lookupSource(c); ok {
			return ref, true
		}
	}

	// Alias rewriting, then one retry of hierarchical matching.
	for _, prefix := range r.aliasPrefix {
		if !strings.HasPrefix(importPath, prefix) {
			continue
		}
		rewritten := r.aliasReplace[prefix] + importPath[len(prefix):]
		for _, c := range r.candidates(rewritten, fromFile) {
			if ref, ok := r.lookupSource(c); ok {
				return ref, true
			}
		}
		break
	}

	return "", false
}

// ResolveFile maps a source file path to its owning node via the same
// annotation-then-prefix matching used for import paths.
func (r *Resolver) ResolveFile(filePath string) (string, bool) {
	norm := graph.NormalizeSourcePath(filePath)
	if ref, ok := r.lookupAnnotation(norm); ok {
		return ref, true
	}
	return r.lookupSource(norm)
}

// ResolveAll resolves every record, preserving unresolved ones with an
// empty ref_id so import-boundary rules can still see them. The
// importing node is resolved from the file path and carried alongside.
func (r *Resolver) ResolveAll(records []graph.ImportRecord) []graph.ResolvedImport {
	out := make([]graph.ResolvedImport, 0, len(records))
	for _, rec := range records {
		ref, _ := r.Resolve(rec.ImportPath, rec.FilePath)
		from, _ := r.ResolveFile(rec.FilePath)
		out = append(out, graph.ResolvedImport{ImportRecord: rec, RefID: ref, FromRefID: from})
	}
	return out
}

// candidates returns the normalized slash-path forms an import string
// can take, most specific first.
func (r *Resolver) candidates(importPath, fromFile string) []string {
	fromDir := path.Dir(graph.NormalizeSourcePath(fromFile))
	var out []string
	add := func(p string) {
		p = graph.NormalizeSourcePath(path.Clean(p))
		if p == "" || p == "." || p == "/" {
			return
		}
		for _, existing := range out {
			if existing == p {
				return
			}
		}
		out = append(out, p)
	}

	switch {
	case strings.HasPrefix(importPath, "."):
		// Python-style relative module: one dot is the current
		// package, each extra dot climbs one level.
		dots := 0
		for dots < len(importPath) && importPath[dots] == '.' {
			dots++
		}
		base := fromDir
		for i := 1; i < dots; i++ {
			base = path.Dir(base)
		}
		rest := strings.ReplaceAll(importPath[dots:], ".", "/")
		add(path.Join(base, rest))
		// ECMAScript-style "./x" and "../x" arrive with slashes.
		add(path.Join(fromDir, importPath))

	case strings.Contains(importPath, "::"):
		segs := strings.Split(importPath, "::")
		switch segs[0] {
		case "crate":
			add(path.Join("src", path.Join(segs[1:]...)))
			add(path.Join(segs[1:]...))
		case "self":
			add(path.Join(fromDir, path.Join(segs[1:]...)))
		case "super":
			base := fromDir
			i := 1
			for i < len(segs) && segs[i] == "super" {
				base = path.Dir(base)
				i++
			}
			add(path.Join(path.Dir(base), path.Join(segs[i:]...)))
		default:
			add(path.Join(segs...))
		}

	case strings.Contains(importPath, "/"):
		add(importPath)
		add(path.Join(fromDir, importPath))

	default:
		// Dotted package path (Python absolute, Java, Kotlin) or a
		// bare module name (Swift).
		add(strings.ReplaceAll(importPath, ".", "/"))
		add(importPath)
	}

	return out
}

// lookupAnnotation finds the longest annotated prefix of p.
func (r *Resolver) lookupAnnotation(p string) (string, bool) {
	best := -1
	for i, a := range r.annotations {
		if !prefixMatch(a.prefix, p) {
			continue
		}
		if best < 0 || len(a.prefix) > len(r.annotations[best].prefix) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return r.annotations[best].refID, true
}

// lookupSource finds the node whose source is the longest prefix of p.
// Equal-length ties go to the higher-priority kind, then to the
// lexicographically smaller ref_id.
func (r *Resolver) lookupSource(p string) (string, bool) {
	found := false
	var bestEntry sourceEntry
	for _, e := range r.sources {
		if !prefixMatch(e.prefix, p) {
			continue
		}
		if !found || betterMatch(e, bestEntry, r.kindRank) {
			bestEntry = e
			found = true
		}
	}
	if !found {
		return "", false
	}
	return bestEntry.refID, true
}

// prefixMatch reports whether prefix matches p on segment boundaries.
func prefixMatch(prefix, p string) bool {
	if prefix == p {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// betterMatch reports whether a beats b: longer prefix, then kind
// priority, then ref_id.
func betterMatch(a, b sourceEntry, kindRank map[string]int) bool {
	if len(a.prefix) != len(b.prefix) {
		return len(a.prefix) > len(b.prefix)
	}
	ar, aok := kindRank[a.kind]
	br, bok := kindRank[b.kind]
	switch {
	case aok && !bok:
		return true
	case !aok && bok:
		return false
	case aok && bok && ar != br:
		return ar < br
	}
	return a.refID < b.refID
}
