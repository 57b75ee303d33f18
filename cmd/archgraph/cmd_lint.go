// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/archgraph/pkg/logging"
	"github.com/AleutianAI/archgraph/services/archlint/lint"
	"github.com/AleutianAI/archgraph/services/archlint/storage"
)

const lintTimeout = 10 * time.Minute

var (
	lintRules     string
	lintDB        string
	lintRoots     []string
	lintExclude   []string
	lintAliases   []string
	lintJSON      bool
	lintPorcelain bool
	lintStrict    bool
	lintQuiet     bool
	lintWorkers   int
	lintMaxEdges  int
)

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Check a codebase against its architecture rules",
	Long: `Scan source files, resolve imports against the architecture graph,
and evaluate the rule document.

Examples:
  archgraph lint --rules arch-rules.yaml --db arch.db
  archgraph lint ./backend --rules rules.yaml --db arch.db --strict
  archgraph lint --rules rules.yaml --db arch.db --porcelain | cut -f2

Exit Codes:
  0 = Completed; no error-severity violations (or strict mode off)
  1 = Completed; error-severity violations found (strict mode)
  2 = Fatal error (bad rule document, unreadable store, scan failure)`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLint,
}

func init() {
	lintCmd.Flags().StringVar(&lintRules, "rules", "arch-rules.yaml",
		"Path to the YAML rule document")
	lintCmd.Flags().StringVar(&lintDB, "db", "arch.db",
		"Path to the architecture graph SQLite database")
	lintCmd.Flags().StringSliceVar(&lintRoots, "root", nil,
		"Scan only these subdirectories (repeatable)")
	lintCmd.Flags().StringSliceVar(&lintExclude, "exclude", nil,
		"Extra gitignore-style patterns to skip (e.g. 'gen/**')")
	lintCmd.Flags().StringSliceVar(&lintAliases, "alias", nil,
		"Import alias as prefix=target (e.g. '@/=src/')")
	lintCmd.Flags().BoolVar(&lintJSON, "json", false,
		"Output as JSON")
	lintCmd.Flags().BoolVar(&lintPorcelain, "porcelain", false,
		"Output TAB-separated lines for scripting")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false,
		"Exit non-zero when error-severity violations exist")
	lintCmd.Flags().BoolVar(&lintQuiet, "quiet", false,
		"Only exit code, no output")
	lintCmd.Flags().IntVar(&lintWorkers, "workers", 0,
		"Number of parallel extraction workers (0 = NumCPU)")
	lintCmd.Flags().IntVar(&lintMaxEdges, "max-edges", 0,
		"Cap on derived edges (0 = default)")

	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), lintTimeout)
	defer cancel()

	projectRoot := "."
	if len(args) > 0 {
		projectRoot = args[0]
	}
	if _, err := os.Stat(projectRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Error: path not found: %v\n", err)
		os.Exit(ExitError)
	}

	aliases, err := parseAliases(lintAliases)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	store, err := storage.OpenSQLite(lintDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open store: %v\n", err)
		os.Exit(ExitError)
	}
	defer store.Close()

	result, err := lint.Run(ctx, lint.Options{
		ProjectRoot:    projectRoot,
		RulesPath:      lintRules,
		Store:          store,
		Roots:          lintRoots,
		IgnorePatterns: lintExclude,
		Workers:        lintWorkers,
		MaxEdges:       lintMaxEdges,
		Aliases:        aliases,
		Logger:         logging.Default(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	if !lintQuiet {
		switch {
		case lintJSON:
			out, err := lint.FormatJSON(result)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(ExitError)
			}
			fmt.Print(out)
		case lintPorcelain:
			fmt.Print(lint.FormatPorcelain(result))
		default:
			fmt.Print(lint.FormatHuman(result))
		}
	}

	if lintStrict && result.Summary.ErrorCount > 0 {
		os.Exit(ExitViolation)
	}
	os.Exit(ExitSuccess)
}

// parseAliases converts repeated prefix=target flags into a map.
func parseAliases(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		prefix, target, ok := strings.Cut(p, "=")
		if !ok || prefix == "" {
			return nil, fmt.Errorf("alias %q is not prefix=target", p)
		}
		out[prefix] = target
	}
	return out, nil
}
