// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"path/filepath"
	"sort"
	"strings"
)

// extractors is the full set of language implementations, constructed
// once. All extractors are stateless.
var (
	pythonExtractor     = &PythonExtractor{}
	ecmascriptExtractor = &ECMAScriptExtractor{}
	goExtractor         = &GoExtractor{}
	rustExtractor       = &RustExtractor{}
	kotlinExtractor     = &KotlinExtractor{}
	javaExtractor       = &JavaExtractor{}
	swiftExtractor      = &SwiftExtractor{}
	objcExtractor       = &ObjCExtractor{}
	cFamilyExtractor    = &CFamilyExtractor{}
)

// byExtension is the static dispatch table: 16 extensions mapping to 9
// extractor families. TypeScript and JavaScript share the ECMAScript
// extractor; C and C++ share a family. Plain .h headers dispatch to the
// C family — Objective-C headers are still recognized there because
// #import lines parse identically.
var byExtension = map[string]Extractor{
	".py":    pythonExtractor,
	".ts":    ecmascriptExtractor,
	".tsx":   ecmascriptExtractor,
	".js":    ecmascriptExtractor,
	".jsx":   ecmascriptExtractor,
	".go":    goExtractor,
	".rs":    rustExtractor,
	".kt":    kotlinExtractor,
	".kts":   kotlinExtractor,
	".java":  javaExtractor,
	".swift": swiftExtractor,
	".m":     objcExtractor,
	".mm":    objcExtractor,
	".c":     cFamilyExtractor,
	".cpp":   cFamilyExtractor,
	".h":     cFamilyExtractor,
}

// ForFile returns the extractor responsible for the given path, or
// false if the extension is not on the allow-list.
func ForFile(path string) (Extractor, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := byExtension[ext]
	return e, ok
}

// Extensions returns the sorted extension allow-list. The scanner uses
// it to filter candidate files before dispatch.
func Extensions() []string {
	exts := make([]string, 0, len(byExtension))
	for ext := range byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
