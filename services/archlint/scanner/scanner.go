// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scanner walks configured scan roots and runs import
// extraction over every candidate source file.
//
// Files are independent of each other, so extraction fans out across a
// bounded worker pool. The only ordering guarantee is on the output:
// records and warnings are canonically sorted before being returned, so
// two runs over identical input are byte-identical regardless of worker
// completion order.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/archgraph/pkg/logging"
	"github.com/AleutianAI/archgraph/services/archlint/extract"
	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// defaultIgnores are directories no project wants scanned. User
// patterns are appended after these.
var defaultIgnores = []string{
	".git/", "node_modules/", "vendor/", "dist/", "build/",
	"target/", "__pycache__/", ".venv/", "venv/", ".idea/",
}

// Options configures a scan.
type Options struct {
	// Roots are the scan roots, relative to the project root.
	// Empty means scan the project root itself.
	Roots []string

	// IgnorePatterns are gitignore-style patterns (supports ** globs)
	// applied on top of the built-in defaults.
	IgnorePatterns []string

	// Workers bounds the extraction pool. 0 means runtime.NumCPU().
	Workers int

	// Logger receives per-file skip warnings. Nil uses the default.
	Logger *logging.Logger
}

// Result is the outcome of one scan.
type Result struct {
	// Records are the raw import records, sorted by (file, line,
	// import path) for reproducibility.
	Records []graph.ImportRecord

	// Annotations maps file paths to explicit arch:node ref_ids found
	// in file headers.
	Annotations map[string]string

	// FilesScanned counts files that were dispatched to an extractor.
	FilesScanned int

	// Warnings collects recoverable per-file failures, sorted.
	Warnings []string
}

// Scan walks the roots under projectRoot and extracts imports from
// every file on the extension allow-list.
//
// File paths in the result are relative to projectRoot and
// slash-separated. A file that fails to parse is skipped with a warning
// and never aborts the run; only the walk itself failing is fatal.
func Scan(ctx context.Context, projectRoot string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	matcher := ignore.CompileIgnoreLines(append(append([]string{}, defaultIgnores...), opts.IgnorePatterns...)...)

	files, err := collectFiles(projectRoot, opts.Roots, matcher)
	if err != nil {
		return nil, err
	}

	result := &Result{Annotations: make(map[string]string)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, relPath := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			records, annotation, warning := extractFile(gctx, projectRoot, relPath, logger)

			mu.Lock()
			defer mu.Unlock()
			result.FilesScanned++
			result.Records = append(result.Records, records...)
			if annotation != "" {
				result.Annotations[relPath] = annotation
			}
			if warning != "" {
				result.Warnings = append(result.Warnings, warning)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortRecords(result.Records)
	sort.Strings(result.Warnings)
	return result, nil
}

// collectFiles walks the scan roots and returns the relative paths of
// files on the extension allow-list, sorted.
func collectFiles(projectRoot string, roots []string, matcher *ignore.GitIgnore) ([]string, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	seen := make(map[string]struct{})
	var files []string

	for _, root := range roots {
		rootPath := filepath.Join(projectRoot, filepath.FromSlash(root))
		err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// A root that cannot be walked at all is a
				// misconfiguration; a zero-file success here would let a
				// CI gate pass green. Entries below the root stay
				// non-fatal.
				if path == rootPath {
					return err
				}
				return nil
			}

			rel, relErr := filepath.Rel(projectRoot, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel != "." && matcher.MatchesPath(rel+"/") {
					return fs.SkipDir
				}
				return nil
			}
			if matcher.MatchesPath(rel) {
				return nil
			}
			if _, ok := extract.ForFile(rel); !ok {
				return nil
			}
			if _, dup := seen[rel]; dup {
				return nil
			}
			seen[rel] = struct{}{}
			files = append(files, rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", rootPath, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// extractFile reads and extracts one file. All failures are recoverable
// and reported as a warning string.
func extractFile(ctx context.Context, projectRoot, relPath string, logger *logging.Logger) (records []graph.ImportRecord, annotation, warning string) {
	extractor, ok := extract.ForFile(relPath)
	if !ok {
		return nil, "", ""
	}

	absPath := filepath.Join(projectRoot, filepath.FromSlash(relPath))
	content, err := os.ReadFile(absPath)
	if err != nil {
		logger.Warn("file skipped", "file", relPath, "error", err)
		return nil, "", fmt.Sprintf("skipped %s: %v", relPath, err)
	}

	ctx, span := extract.StartExtractSpan(ctx, extractor.Language(), relPath, len(content))
	defer span.End()

	start := time.Now()
	records, err = extractor.Extract(relPath, content)
	extract.RecordExtraction(ctx, extractor.Language(), time.Since(start), len(records), err == nil)
	if err != nil {
		logger.Warn("file skipped", "file", relPath, "language", extractor.Language(), "error", err)
		return nil, "", fmt.Sprintf("skipped %s: %v", relPath, err)
	}

	return records, extract.Annotation(content), ""
}

// sortRecords orders records by file, line, then import path.
func sortRecords(records []graph.ImportRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.LineNumber != b.LineNumber {
			return a.LineNumber < b.LineNumber
		}
		return a.ImportPath < b.ImportPath
	})
}

// Extensions exposes the allow-list for CLI help output.
func Extensions() string {
	return strings.Join(extract.Extensions(), ",")
}
