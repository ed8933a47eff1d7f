package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HughYau/opensci-skill/internal/inspect"
	"github.com/HughYau/opensci-skill/pkg/types"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Map a Go module's package layout to Markdown",
	Long: `Modules writes a "what lives where" orientation file for a Go module:
an overview table, the root package synopsis, a per-package inventory with
size flags, and the module's direct dependencies. Packages over the size
threshold are flagged so an agent prefers the symbol index to whole-file
reads there.`,
	RunE: runModules,
}

func init() {
	modulesCmd.Flags().String("source", ".", "root of the Go module to map")
	modulesCmd.Flags().String("output", "assets/module-map.md", "output file for the module map")
	modulesCmd.Flags().Int("large-threshold", 0, "non-blank line count that flags a package as large (default 500)")

	rootCmd.AddCommand(modulesCmd)
}

func runModules(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	output, _ := cmd.Flags().GetString("output")
	threshold, _ := cmd.Flags().GetInt("large-threshold")

	cfg := types.InspectConfig{
		SourceDir:      source,
		LargeThreshold: threshold,
	}

	result, err := inspect.WriteModuleMap(cfg, output)
	if err != nil {
		return err
	}

	goVersion := result.GoVersion
	if goVersion == "" {
		goVersion = "unknown"
	}
	fmt.Printf("Module   : %s\n", result.ModulePath)
	fmt.Printf("Go       : %s\n", goVersion)
	fmt.Printf("Packages : %d (%d large)\n", result.Packages, result.Large)
	fmt.Printf("Output   : %s\n", output)
	return nil
}
