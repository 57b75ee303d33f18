// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/archgraph/pkg/logging"
	"github.com/AleutianAI/archgraph/services/archlint/resolve"
	"github.com/AleutianAI/archgraph/services/archlint/scanner"
	"github.com/AleutianAI/archgraph/services/archlint/storage"
)

var (
	resolveDB         string
	resolveAliases    []string
	resolveJSON       bool
	resolveUnresolved bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Show how imports map to graph nodes (debugging aid)",
	Long: `Scan a codebase and print each extracted import with the node it
resolved to, without evaluating any rules. Useful when writing aliases
or diagnosing why a deny rule does not fire.

Examples:
  archgraph resolve --db arch.db
  archgraph resolve ./src --db arch.db --unresolved`,
	Args: cobra.MaximumNArgs(1),
	Run:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveDB, "db", "arch.db",
		"Path to the architecture graph SQLite database")
	resolveCmd.Flags().StringSliceVar(&resolveAliases, "alias", nil,
		"Import alias as prefix=target (e.g. '@/=src/')")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false,
		"Output as JSON")
	resolveCmd.Flags().BoolVar(&resolveUnresolved, "unresolved", false,
		"Only show imports that resolved to no node")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), lintTimeout)
	defer cancel()

	projectRoot := "."
	if len(args) > 0 {
		projectRoot = args[0]
	}

	aliases, err := parseAliases(resolveAliases)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	store, err := storage.OpenSQLite(resolveDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open store: %v\n", err)
		os.Exit(ExitError)
	}
	defer store.Close()

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	scanResult, err := scanner.Scan(ctx, projectRoot, scanner.Options{
		Logger: logging.Default(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	resolver := resolve.New(snap, scanResult.Annotations, resolve.Config{Aliases: aliases})
	imports := resolver.ResolveAll(scanResult.Records)

	if resolveJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(imports); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitError)
		}
		os.Exit(ExitSuccess)
	}

	for _, imp := range imports {
		if resolveUnresolved && imp.Resolved() {
			continue
		}
		target := imp.RefID
		if target == "" {
			target = "(unresolved)"
		}
		fmt.Printf("%s:%d\t%s\t%s\n", imp.FilePath, imp.LineNumber, imp.ImportPath, target)
	}
	os.Exit(ExitSuccess)
}
