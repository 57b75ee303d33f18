// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

var goImportLineRe = regexp.MustCompile(`^\s*(?:import\s+)?(?:[.\w]+\s+)?"([^"]+)"`)

// GoExtractor extracts single imports and import blocks.
//
// Standard library packages are recognized the Go way: a first path
// segment without a dot cannot be a module path, so it is either
// stdlib or a toolchain pseudo-package and never intra-project.
// Dotted module paths are kept even when third-party, because
// intra-project Go imports carry the full module path too; the
// resolver drops whatever maps to no node, and boundary rules still
// see the raw path.
type GoExtractor struct{}

func (g *GoExtractor) Language() string { return "go" }

func (g *GoExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	inBlock := false
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
			return
		case inBlock && trimmed == ")":
			inBlock = false
			return
		case strings.HasPrefix(trimmed, "//"):
			return
		}

		isImportLine := inBlock || strings.HasPrefix(trimmed, "import ")
		if !isImportLine {
			return
		}
		m := goImportLineRe.FindStringSubmatch(line)
		if m == nil {
			return
		}
		if path := m[1]; goKeep(path) {
			records = append(records, record(filePath, n, path))
		}
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func goKeep(path string) bool {
	if path == "C" { // cgo pseudo-import
		return false
	}
	return strings.Contains(firstSegment(path, '/'), ".")
}
