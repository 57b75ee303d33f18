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

// rustDenied covers the language's own crates plus the dependency
// crates ubiquitous enough to treat as framework noise.
var rustDenied = map[string]struct{}{
	"std": {}, "core": {}, "alloc": {}, "proc_macro": {}, "test": {},
	"serde": {}, "serde_json": {}, "tokio": {}, "futures": {}, "anyhow": {},
	"thiserror": {}, "clap": {}, "log": {}, "tracing": {}, "rand": {},
	"regex": {}, "chrono": {}, "reqwest": {}, "hyper": {}, "axum": {},
	"actix_web": {}, "sqlx": {}, "diesel": {}, "rayon": {}, "itertools": {},
}

var (
	rustUseRe = regexp.MustCompile(`^\s*(?:pub\s+)?use\s+([A-Za-z_][A-Za-z0-9_:]*)`)
	rustModRe = regexp.MustCompile(`^\s*(?:pub\s+)?mod\s+([A-Za-z_][A-Za-z0-9_]*)\s*;`)
)

// RustExtractor extracts use declarations and file-backed mod
// declarations. Paths rooted at crate/super/self are intra-project by
// construction; external crate roots go through the deny-list.
type RustExtractor struct{}

func (r *RustExtractor) Language() string { return "rust" }

func (r *RustExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			return
		}

		if m := rustUseRe.FindStringSubmatch(line); m != nil {
			path := m[1]
			root := firstSegment(path, ':')
			if root == "crate" || root == "super" || root == "self" {
				records = append(records, record(filePath, n, path))
				return
			}
			if _, denied := rustDenied[root]; !denied {
				records = append(records, record(filePath, n, path))
			}
			return
		}

		if m := rustModRe.FindStringSubmatch(line); m != nil {
			// A mod declaration pulls in a sibling file or directory.
			records = append(records, record(filePath, n, "self::"+m[1]))
		}
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
