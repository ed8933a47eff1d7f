package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HughYau/opensci-skill/internal/rst"
	"github.com/HughYau/opensci-skill/pkg/types"
)

var rstCmd = &cobra.Command{
	Use:   "rst",
	Short: "Convert a local RST documentation tree to Markdown",
	Long: `Rst walks a cloned repository's reStructuredText documentation tree and
converts every .rst file to Markdown, preserving the directory layout.
Mixed-in Markdown sources are copied as-is, unconvertible constructs
degrade to readable plain text, and a processing manifest is written
alongside the output.`,
	RunE: runRst,
}

func init() {
	rstCmd.Flags().String("source", "", "root of the RST documentation tree (required)")
	rstCmd.Flags().String("output", "assets/docs-cache", "output directory for the converted tree")
	_ = rstCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(rstCmd)
}

func runRst(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	output, _ := cmd.Flags().GetString("output")

	cfg := types.ConvertConfig{
		SourceDir: source,
		OutputDir: output,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	result, err := rst.ProcessTree(cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
