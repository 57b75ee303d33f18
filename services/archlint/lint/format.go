// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AleutianAI/archgraph/services/archlint/rules"
)

// Severity glyphs for the human format.
const (
	glyphError = "✗"
	glyphWarn  = "⚠"
)

// FormatHuman renders one line per violation plus a summary. Output is
// deterministic: violations arrive pre-sorted and nothing time-based is
// printed.
func FormatHuman(r *Result) string {
	var b strings.Builder
	for _, v := range r.Violations {
		glyph := glyphWarn
		if v.Severity == rules.SeverityError {
			glyph = glyphError
		}
		loc := violationLocation(v)
		fmt.Fprintf(&b, "%s %s  %s  %s\n", glyph, v.RuleName, loc, v.Message)
	}
	if len(r.Violations) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d error(s), %d warning(s) from %d rule(s) over %d file(s)\n",
		r.Summary.ErrorCount, r.Summary.WarningCount, r.RulesEvaluated, r.FilesScanned)
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return b.String()
}

// jsonReport is the stable wire shape of the JSON format. It carries
// only deterministic fields so repeat runs over unchanged input are
// byte-identical.
type jsonReport struct {
	Violations []rules.Violation `json:"violations"`
	Summary    jsonSummary       `json:"summary"`
}

type jsonSummary struct {
	ErrorCount     int `json:"error_count"`
	WarningCount   int `json:"warning_count"`
	RulesEvaluated int `json:"rules_evaluated"`
}

// FormatJSON renders the machine-readable report.
func FormatJSON(r *Result) (string, error) {
	report := jsonReport{
		Violations: r.Violations,
		Summary: jsonSummary{
			ErrorCount:     r.Summary.ErrorCount,
			WarningCount:   r.Summary.WarningCount,
			RulesEvaluated: r.RulesEvaluated,
		},
	}
	if report.Violations == nil {
		report.Violations = []rules.Violation{}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(data) + "\n", nil
}

// FormatPorcelain renders one TAB-separated line per violation for
// scripting: severity, rule name, from, to, file, message.
func FormatPorcelain(r *Result) string {
	var b strings.Builder
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Severity, v.RuleName, v.FromRefID, v.ToRefID, v.FilePath, v.Message)
	}
	return b.String()
}

func violationLocation(v rules.Violation) string {
	switch {
	case v.FilePath != "" && v.LineNumber > 0:
		return fmt.Sprintf("%s:%d", v.FilePath, v.LineNumber)
	case v.FilePath != "":
		return v.FilePath
	case v.FromRefID != "" && v.ToRefID != "":
		return v.FromRefID + " -> " + v.ToRefID
	case v.FromRefID != "":
		return v.FromRefID
	default:
		return "-"
	}
}
