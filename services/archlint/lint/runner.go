// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package lint wires the scan/resolve/evaluate pipeline into a single
// entry point used by the CLI and by embedding callers.
package lint

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/archgraph/pkg/logging"
	"github.com/AleutianAI/archgraph/services/archlint/resolve"
	"github.com/AleutianAI/archgraph/services/archlint/rules"
	"github.com/AleutianAI/archgraph/services/archlint/scanner"
	"github.com/AleutianAI/archgraph/services/archlint/storage"
)

// Options configures one lint run.
type Options struct {
	// ProjectRoot is the directory whose sources are scanned.
	ProjectRoot string

	// RulesPath is the YAML rule document.
	RulesPath string

	// Store supplies the architecture graph and receives this run's
	// derived edges, imports, and rule inventory.
	Store storage.Store

	// Roots restricts scanning to these subdirectories of ProjectRoot.
	Roots []string

	// IgnorePatterns adds gitignore-style scan exclusions.
	IgnorePatterns []string

	// Workers bounds the extraction pool. 0 means one per CPU.
	Workers int

	// MaxEdges caps derived edges. 0 means resolve.DefaultMaxEdges.
	MaxEdges int

	// Aliases maps import-path prefixes to source-path prefixes.
	Aliases map[string]string

	// KindPriority overrides the resolution tie-break order.
	KindPriority []string

	// Logger receives progress and warnings. Nil uses the default.
	Logger *logging.Logger
}

// Result is one completed lint run. Violations are in canonical order;
// a result with violations is a success, not an error.
type Result struct {
	RunID           string            `json:"run_id"`
	Violations      []rules.Violation `json:"violations"`
	Summary         rules.Summary     `json:"summary"`
	RulesEvaluated  int               `json:"rules_evaluated"`
	FilesScanned    int               `json:"files_scanned"`
	ImportsResolved int               `json:"imports_resolved"`
	EdgesDerived    int               `json:"edges_derived"`
	ElapsedMs       int64             `json:"elapsed_ms"`
	Warnings        []string          `json:"warnings,omitempty"`
}

// Run executes the full pipeline: load snapshot, load rules, scan,
// resolve, derive edges, persist, evaluate.
//
// Fatal conditions (unreadable store, malformed rule document, failed
// walk) return an error and no partial result. Recoverable conditions
// (unparseable file, unknown rule reference, unresolvable import) are
// collected as warnings and evaluation proceeds.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("lint: no store configured")
	}

	snap, err := opts.Store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	logger.Debug("snapshot loaded", "nodes", snap.NodeCount(), "edges", len(snap.Edges()))

	ruleSet, err := rules.LoadFile(opts.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	var warnings []string
	warnings = append(warnings, snap.ApplyTags(ruleSet.Tags)...)
	warnings = append(warnings, ruleSet.Validate(snap)...)

	scanResult, err := scanner.Scan(ctx, opts.ProjectRoot, scanner.Options{
		Roots:          opts.Roots,
		IgnorePatterns: opts.IgnorePatterns,
		Workers:        opts.Workers,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	warnings = append(warnings, scanResult.Warnings...)

	resolver := resolve.New(snap, scanResult.Annotations, resolve.Config{
		KindPriority: opts.KindPriority,
		Aliases:      opts.Aliases,
	})
	imports := resolver.ResolveAll(scanResult.Records)

	resolved := 0
	for _, imp := range imports {
		if imp.Resolved() {
			resolved++
		}
	}

	edges := resolve.BuildEdges(resolver, imports, resolve.EdgeBuilderOptions{
		MaxEdges: opts.MaxEdges,
		Logger:   logger,
	})
	snap.MergeEdges(edges)
	snap.SetImports(imports)

	if _, err := opts.Store.MergeEdges(ctx, edges); err != nil {
		return nil, fmt.Errorf("persist edges: %w", err)
	}
	if err := opts.Store.ReplaceImports(ctx, imports); err != nil {
		return nil, fmt.Errorf("persist imports: %w", err)
	}
	if err := opts.Store.ReplaceRules(ctx, ruleRecords(ruleSet)); err != nil {
		return nil, fmt.Errorf("persist rules: %w", err)
	}

	violations := rules.EvaluateAll(snap, ruleSet)
	sort.Strings(warnings)

	result := &Result{
		RunID:           uuid.NewString(),
		Violations:      violations,
		Summary:         rules.Summarize(violations),
		RulesEvaluated:  len(ruleSet.Rules),
		FilesScanned:    scanResult.FilesScanned,
		ImportsResolved: resolved,
		EdgesDerived:    len(edges),
		ElapsedMs:       time.Since(start).Milliseconds(),
		Warnings:        warnings,
	}
	logger.Info("lint run complete",
		"run_id", result.RunID,
		"violations", len(result.Violations),
		"errors", result.Summary.ErrorCount,
		"warnings", result.Summary.WarningCount,
		"elapsed_ms", result.ElapsedMs)
	return result, nil
}

func ruleRecords(rs *rules.RuleSet) []storage.RuleRecord {
	out := make([]storage.RuleRecord, 0, len(rs.Rules))
	for _, v := range rs.Records() {
		out = append(out, storage.RuleRecord{
			Name:        v.Name,
			Type:        v.Type,
			Severity:    v.Severity,
			Description: v.Description,
		})
	}
	return out
}
