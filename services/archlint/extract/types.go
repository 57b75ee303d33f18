// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extract implements per-language import extraction.
//
// Each supported language has one Extractor implementation behind a
// shared interface; dispatch happens through a static extension table
// (see registry.go), so adding a language means adding one
// implementation, not touching the pipeline.
//
// Extraction is deliberately syntactic: extractors scan source lines
// for import/include statements and apply a language-specific standard
// library / framework deny-list so downstream stages only see
// intra-project candidates. No type-aware resolution happens here.
//
// A parse failure on a single file is recoverable by contract: the
// caller skips the file with a warning and the run continues.
package extract

import (
	"bufio"
	"bytes"
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// MaxFileSize is the largest file an extractor will accept. Larger
// files are skipped with a warning; generated bundles and vendored
// blobs are never worth scanning.
const MaxFileSize = 2 * 1024 * 1024

// Sentinel errors for the extract package.
var (
	// ErrUnparseable indicates the file content could not be scanned
	// (binary content, invalid encoding). Recoverable: skip the file.
	ErrUnparseable = errors.New("unparseable source file")

	// ErrFileTooLarge indicates the file exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

// Extractor extracts raw import records from one source file.
//
// Implementations must be stateless and safe for concurrent use: the
// scanner shards files across workers and calls Extract from many
// goroutines.
type Extractor interface {
	// Language returns the language name used in logs and metrics.
	Language() string

	// Extract returns the intra-project import candidates found in
	// content. The language deny-list has already been applied to the
	// result. Line numbers are 1-based.
	Extract(filePath string, content []byte) ([]graph.ImportRecord, error)
}

// annotationRe matches explicit node annotations in source comments,
// e.g. "// arch:node billing-service" or "# arch:node ui.checkout".
var annotationRe = regexp.MustCompile(`arch:node\s+([A-Za-z0-9][A-Za-z0-9_.:/-]*)`)

// Annotation returns the ref_id from the first arch:node annotation in
// content, or "" if the file carries none. Only the head of the file is
// scanned; annotations belong next to the package/module declaration.
func Annotation(content []byte) string {
	head := content
	if len(head) > 4096 {
		head = head[:4096]
	}
	m := annotationRe.FindSubmatch(head)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// checkContent applies the shared guards every extractor runs first.
func checkContent(content []byte) error {
	if len(content) > MaxFileSize {
		return ErrFileTooLarge
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return ErrUnparseable
	}
	if !utf8.Valid(content) {
		return ErrUnparseable
	}
	return nil
}

// eachLine invokes fn for every line of content with a 1-based line
// number. Lines longer than the scanner default are tolerated up to
// MaxFileSize.
func eachLine(content []byte, fn func(line string, n int)) error {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), MaxFileSize)
	n := 0
	for scanner.Scan() {
		n++
		fn(scanner.Text(), n)
	}
	if err := scanner.Err(); err != nil {
		return ErrUnparseable
	}
	return nil
}

// record is a small constructor shared by the extractors.
func record(filePath string, line int, importPath string) graph.ImportRecord {
	return graph.ImportRecord{
		FilePath:   filePath,
		LineNumber: line,
		ImportPath: importPath,
	}
}

// firstSegment returns the path up to the first separator, used by
// deny-lists that match on the root package/module.
func firstSegment(path string, sep byte) string {
	for i := 0; i < len(path); i++ {
		if path[i] == sep {
			return path[:i]
		}
	}
	return path
}
