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

// pythonStdlib holds the module roots shipped with CPython plus the
// third-party packages common enough to treat as framework noise.
// Matching is on the first dotted segment.
var pythonStdlib = map[string]struct{}{
	// standard library
	"abc": {}, "argparse": {}, "asyncio": {}, "base64": {}, "collections": {},
	"concurrent": {}, "contextlib": {}, "copy": {}, "csv": {}, "dataclasses": {},
	"datetime": {}, "decimal": {}, "enum": {}, "functools": {}, "glob": {},
	"hashlib": {}, "heapq": {}, "html": {}, "http": {}, "importlib": {},
	"inspect": {}, "io": {}, "itertools": {}, "json": {}, "logging": {},
	"math": {}, "multiprocessing": {}, "os": {}, "pathlib": {}, "pickle": {},
	"platform": {}, "queue": {}, "random": {}, "re": {}, "shutil": {},
	"signal": {}, "socket": {}, "sqlite3": {}, "string": {}, "struct": {},
	"subprocess": {}, "sys": {}, "tempfile": {}, "threading": {}, "time": {},
	"traceback": {}, "types": {}, "typing": {}, "unittest": {}, "urllib": {},
	"uuid": {}, "warnings": {}, "weakref": {}, "xml": {}, "zipfile": {},
	// frameworks and ubiquitous third-party packages
	"django": {}, "flask": {}, "fastapi": {}, "pydantic": {}, "sqlalchemy": {},
	"celery": {}, "numpy": {}, "pandas": {}, "scipy": {}, "requests": {},
	"httpx": {}, "pytest": {}, "click": {}, "yaml": {}, "boto3": {},
	"redis": {}, "setuptools": {}, "pip": {}, "wheel": {},
}

var (
	pyImportRe = regexp.MustCompile(`^\s*import\s+(.+)$`)
	pyFromRe   = regexp.MustCompile(`^\s*from\s+([.\w]+)\s+import\b`)
)

// PythonExtractor extracts import and from-import statements.
//
// Relative imports ("from .billing import x") are emitted with their
// leading dots intact; the resolver expands them against the
// originating file's directory.
type PythonExtractor struct{}

func (p *PythonExtractor) Language() string { return "python" }

func (p *PythonExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			return
		}

		if m := pyFromRe.FindStringSubmatch(line); m != nil {
			if mod := m[1]; pythonKeep(mod) {
				records = append(records, record(filePath, n, mod))
			}
			return
		}

		if m := pyImportRe.FindStringSubmatch(line); m != nil {
			// "import a.b as c, d.e" declares several modules.
			for _, part := range strings.Split(m[1], ",") {
				mod := strings.TrimSpace(part)
				if i := strings.Index(mod, " as "); i >= 0 {
					mod = strings.TrimSpace(mod[:i])
				}
				if i := strings.IndexAny(mod, " #;"); i >= 0 {
					mod = mod[:i]
				}
				if mod != "" && pythonKeep(mod) {
					records = append(records, record(filePath, n, mod))
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// pythonKeep reports whether a module path survives the deny-list.
// Relative imports always survive; absolute imports survive unless
// their root segment is standard library or a known framework.
func pythonKeep(mod string) bool {
	if strings.HasPrefix(mod, ".") {
		return true
	}
	_, denied := pythonStdlib[firstSegment(mod, '.')]
	return !denied
}
