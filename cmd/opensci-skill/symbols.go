// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HughYau/opensci-skill/internal/index"
	"github.com/HughYau/opensci-skill/internal/inspect"
	"github.com/HughYau/opensci-skill/pkg/types"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Build and query the symbol index (build, query, export)",
	Long: `Symbols manages a local SQLite symbol index built from a Go module's
source. Use subcommands to build the index and its dictionary artifacts,
query symbols, or export.`,
}

// --- build subcommand ---

var symbolsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Parse Go source and build the symbol index",
	Long: `Build parses every package of a Go module with go/ast, ingests the
exported symbols into a SQLite database with FTS5 indexing, and renders
the dictionary artifacts: symbol-index.jsonl, symbol-index.md, and one
package card per package under symbol-cards/. Files that fail to parse
are reported and skipped; they never abort the build.`,
	RunE: runSymbolsBuild,
}

func runSymbolsBuild(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")

	set, err := inspect.CollectSymbols(types.InspectConfig{SourceDir: source})
	if err != nil {
		return err
	}

	cfg := storeConfig(cmd)
	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Ingest(context.Background(), set.Records, os.Stdout); err != nil {
		return err
	}

	paths, err := index.WriteArtifacts(set.ModulePath, set.Records, set.Failures, cfg.AssetsDir)
	if err != nil {
		return err
	}

	for _, f := range set.Failures {
		fmt.Fprintf(os.Stderr, "warning: parse failure: %s\n", f)
	}

	fmt.Printf("\nModule      : %s\n", set.ModulePath)
	fmt.Printf("Mode        : ast\n")
	fmt.Printf("Symbols     : %d\n", len(set.Records))
	fmt.Printf("Failures    : %d\n", len(set.Failures))
	fmt.Printf("Index (md)  : %s\n", paths.Index)
	fmt.Printf("Index (json): %s\n", paths.JSONL)
	fmt.Printf("Cards dir   : %s\n", paths.CardsDir)
	return nil
}

// --- query subcommand ---

var symbolsQueryCmd = &cobra.Command{
	Use:   "query [query]",
	Short: "Query the symbol index with full-text search and filters",
	Long: `Query searches the symbol index using FTS5 full-text search, structured
filters (kind, package), or a combination of both. Results include the
signature, doc summary, and source anchor of each symbol.`,
	RunE: runSymbolsQuery,
}

func runSymbolsQuery(cmd *cobra.Command, args []string) error {
	cfg := storeConfig(cmd)
	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --kind, or --package")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return index.FormatJSON(results, os.Stdout)
	}
	index.FormatTable(results, os.Stdout)
	return nil
}

// --- export subcommand ---

var symbolsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the symbol index to YAML or JSON",
	Long: `Export writes the full symbol index (or a filtered subset) to
export.yaml or export.json under the index directory. Supports the same
filter flags as query for partial exports.`,
	RunE: runSymbolsExport,
}

func runSymbolsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := storeConfig(cmd)
	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.AssetsDir, "index", "export.yaml"))
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.AssetsDir, "index", "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) types.IndexConfig {
	assetsDir, _ := cmd.Flags().GetString("assets-dir")
	if assetsDir == "" {
		assetsDir = "assets"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.IndexConfig{
		AssetsDir:  assetsDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	kind, _ := cmd.Flags().GetString("kind")
	pkg, _ := cmd.Flags().GetString("package")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:      queryText,
		Kind:       types.SymbolKind(kind),
		Package:    pkg,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	symbolsCmd.PersistentFlags().String("assets-dir", "assets", "base directory for skill assets (contains index/, symbol-cards/)")
	symbolsCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Build flags.
	symbolsBuildCmd.Flags().String("source", ".", "root of the Go module to index")

	// Query flags.
	symbolsQueryCmd.Flags().String("query", "", "full-text search query")
	symbolsQueryCmd.Flags().String("kind", "", "filter by symbol kind: func, type, or method")
	symbolsQueryCmd.Flags().String("package", "", "filter by package import path")
	symbolsQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	symbolsQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	symbolsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	symbolsExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	symbolsExportCmd.Flags().String("kind", "", "filter by symbol kind for partial export")
	symbolsExportCmd.Flags().String("package", "", "filter by package for partial export")
	symbolsExportCmd.Flags().Int("limit", 0, "maximum symbols to export (0 = all)")

	// Wire subcommands.
	symbolsCmd.AddCommand(symbolsBuildCmd)
	symbolsCmd.AddCommand(symbolsQueryCmd)
	symbolsCmd.AddCommand(symbolsExportCmd)

	rootCmd.AddCommand(symbolsCmd)
}
