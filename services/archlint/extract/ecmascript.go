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

// nodeBuiltins are Node.js built-in modules, denied with or without the
// "node:" scheme prefix.
var nodeBuiltins = map[string]struct{}{
	"assert": {}, "async_hooks": {}, "buffer": {}, "child_process": {},
	"cluster": {}, "console": {}, "crypto": {}, "dgram": {}, "dns": {},
	"events": {}, "fs": {}, "http": {}, "http2": {}, "https": {}, "net": {},
	"os": {}, "path": {}, "perf_hooks": {}, "process": {}, "querystring": {},
	"readline": {}, "stream": {}, "string_decoder": {}, "timers": {},
	"tls": {}, "tty": {}, "url": {}, "util": {}, "v8": {}, "vm": {},
	"worker_threads": {}, "zlib": {},
}

var (
	esFromRe    = regexp.MustCompile(`\bfrom\s+['"]([^'"]+)['"]`)
	esBareRe    = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	esRequireRe = regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	esDynamicRe = regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"]+)['"]\s*\)`)
)

// ECMAScriptExtractor covers TypeScript, TSX, JavaScript and JSX: the
// import syntax is shared, so one implementation serves four
// extensions. ESM import/export-from, bare side-effect imports,
// CommonJS require and dynamic import() are all recognized.
type ECMAScriptExtractor struct{}

func (e *ECMAScriptExtractor) Language() string { return "ecmascript" }

func (e *ECMAScriptExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			return
		}

		seen := map[string]struct{}{}
		for _, re := range []*regexp.Regexp{esFromRe, esBareRe, esRequireRe, esDynamicRe} {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				spec := m[1]
				if _, dup := seen[spec]; dup {
					continue
				}
				seen[spec] = struct{}{}
				if ecmascriptKeep(spec) {
					records = append(records, record(filePath, n, spec))
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ecmascriptKeep keeps relative, absolute, and alias-prefixed
// specifiers. Bare specifiers are npm packages (or Node built-ins) and
// never intra-project, so they are denied wholesale; path aliases like
// "@/lib/api" or "~/components" are the intra-project exception.
func ecmascriptKeep(spec string) bool {
	if spec == "" {
		return false
	}
	if strings.HasPrefix(spec, "node:") {
		return false
	}
	if _, builtin := nodeBuiltins[firstSegment(spec, '/')]; builtin {
		return false
	}
	switch {
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"),
		spec == ".", spec == "..":
		return true
	case strings.HasPrefix(spec, "/"):
		return true
	case strings.HasPrefix(spec, "@/"), strings.HasPrefix(spec, "~/"):
		return true
	case strings.HasPrefix(spec, "src/"):
		return true
	}
	return false
}
