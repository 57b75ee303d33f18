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

// kotlinDeniedPrefixes filters the Kotlin/JVM/Android platform plus the
// libraries every Android or server project drags in.
var kotlinDeniedPrefixes = []string{
	"kotlin.", "kotlinx.", "java.", "javax.", "jakarta.",
	"android.", "androidx.", "dalvik.", "org.jetbrains.",
	"org.junit.", "junit.", "io.ktor.", "org.koin.", "dagger.",
	"com.google.", "com.squareup.", "okhttp3.", "retrofit2.", "io.mockk.",
}

var kotlinImportRe = regexp.MustCompile(`^\s*import\s+([\w.]+)(?:\s+as\s+\w+)?`)

// KotlinExtractor extracts import statements from .kt and .kts files.
type KotlinExtractor struct{}

func (k *KotlinExtractor) Language() string { return "kotlin" }

func (k *KotlinExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			return
		}
		m := kotlinImportRe.FindStringSubmatch(line)
		if m == nil {
			return
		}
		path := strings.TrimSuffix(m[1], ".") // trailing dot from "import a.b.*"
		for _, prefix := range kotlinDeniedPrefixes {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}
		records = append(records, record(filePath, n, path))
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
