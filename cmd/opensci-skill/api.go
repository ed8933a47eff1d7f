package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HughYau/opensci-skill/internal/inspect"
	"github.com/HughYau/opensci-skill/pkg/types"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Dump a Go module's public API to one Markdown file",
	Long: `Api renders every exported function and type of a Go module into a
single Markdown file, one section per package, with signatures, doc
excerpts, and method lists. The dump gives an agent the full API surface
without opening source files.`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().String("source", ".", "root of the Go module to dump")
	apiCmd.Flags().String("output", "assets/api-dump.md", "output file for the API dump")
	apiCmd.Flags().Int("max-depth", 0, "maximum package directory depth (0 = unlimited)")

	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	output, _ := cmd.Flags().GetString("output")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")

	cfg := types.InspectConfig{
		SourceDir: source,
		MaxDepth:  maxDepth,
	}

	fmt.Printf("Extracting API from: %s\n", source)
	if maxDepth > 0 {
		fmt.Printf("Max package depth: %d\n", maxDepth)
	}
	fmt.Printf("Output: %s\n\n", output)

	result, err := inspect.WriteAPIDump(cfg, output, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\nDone. Output written to: %s\n", output)
	if info, err := os.Stat(output); err == nil {
		fmt.Printf("File size: %.1f KB\n", float64(info.Size())/1024.0)
	}
	if result.Failures > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d file(s) failed to parse\n", result.Failures)
	}
	return nil
}
