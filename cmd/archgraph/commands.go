// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/AleutianAI/archgraph/pkg/logging"
)

// Exit codes shared by all subcommands.
const (
	ExitSuccess   = 0
	ExitViolation = 1
	ExitError     = 2
)

var (
	logLevel string
	logJSON  bool

	rootCmd = &cobra.Command{
		Use:   "archgraph",
		Short: "Architecture rule engine over a versioned code graph",
		Long: `archgraph checks a codebase against declared architecture rules.

It scans source files for imports, resolves them to nodes of an
architecture graph stored in SQLite, derives dependency edges, and
evaluates YAML rules (deny, require, forbid_edge, layer,
cycle_detection, import_boundary, cardinality) against the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetDefault(logging.New(logging.Config{
				Level:   logging.ParseLevel(logLevel),
				Service: "archgraph",
				JSON:    logJSON,
			}))
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Emit logs as JSON")
}
