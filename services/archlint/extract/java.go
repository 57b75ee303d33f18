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

var javaDeniedPrefixes = []string{
	"java.", "javax.", "jakarta.", "jdk.", "sun.", "com.sun.",
	"org.junit.", "org.mockito.", "org.assertj.", "org.hamcrest.",
	"org.springframework.", "org.apache.", "org.slf4j.", "ch.qos.logback.",
	"com.fasterxml.", "com.google.", "io.micronaut.", "io.quarkus.",
	"lombok.", "org.hibernate.", "org.testcontainers.",
}

var javaImportRe = regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`)

// JavaExtractor extracts import declarations, including static imports.
type JavaExtractor struct{}

func (j *JavaExtractor) Language() string { return "java" }

func (j *JavaExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			return
		}
		m := javaImportRe.FindStringSubmatch(line)
		if m == nil {
			return
		}
		path := strings.TrimSuffix(m[1], ".*")
		path = strings.TrimSuffix(path, ".")
		for _, prefix := range javaDeniedPrefixes {
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
