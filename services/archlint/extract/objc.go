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

var (
	objcAngleRe  = regexp.MustCompile(`^\s*#(?:import|include)\s+<([^>]+)>`)
	objcQuoteRe  = regexp.MustCompile(`^\s*#(?:import|include)\s+"([^"]+)"`)
	objcModuleRe = regexp.MustCompile(`^\s*@import\s+([A-Za-z_][\w.]*)\s*;`)
)

// ObjCExtractor extracts #import/#include directives and @import module
// declarations. Angle-bracket imports of Apple SDK frameworks are
// denied via the shared appleFrameworks list (the framework name is the
// path's first segment: <UIKit/UIKit.h>); quoted imports are
// intra-project by convention and always kept.
type ObjCExtractor struct{}

func (o *ObjCExtractor) Language() string { return "objc" }

func (o *ObjCExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			return
		}

		if m := objcQuoteRe.FindStringSubmatch(line); m != nil {
			records = append(records, record(filePath, n, m[1]))
			return
		}
		if m := objcAngleRe.FindStringSubmatch(line); m != nil {
			path := m[1]
			framework := firstSegment(path, '/')
			framework = strings.TrimSuffix(framework, ".h")
			if _, denied := appleFrameworks[framework]; denied {
				return
			}
			if _, denied := cSystemHeaders[framework+".h"]; denied {
				return
			}
			records = append(records, record(filePath, n, path))
			return
		}
		if m := objcModuleRe.FindStringSubmatch(line); m != nil {
			module := m[1]
			if _, denied := appleFrameworks[firstSegment(module, '.')]; denied {
				return
			}
			records = append(records, record(filePath, n, module))
		}
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
