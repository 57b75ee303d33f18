// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import "sort"

// Summary counts violations by severity.
type Summary struct {
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
}

// Summarize tallies a violation list.
func Summarize(violations []Violation) Summary {
	var s Summary
	for _, v := range violations {
		if v.Severity == SeverityError {
			s.ErrorCount++
		} else {
			s.WarningCount++
		}
	}
	return s
}

// SortViolations puts the list in canonical order: errors before
// warnings, then rule name, origin, line, message. Two runs over the
// same inputs always produce byte-identical reports.
func SortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() < b.Severity.rank()
		}
		if a.RuleName != b.RuleName {
			return a.RuleName < b.RuleName
		}
		if a.FromRefID != b.FromRefID {
			return a.FromRefID < b.FromRefID
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.LineNumber != b.LineNumber {
			return a.LineNumber < b.LineNumber
		}
		return a.Message < b.Message
	})
}
