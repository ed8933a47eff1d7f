// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inspect

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/HughYau/opensci-skill/pkg/types"
)

// defaultLargeThreshold flags packages an agent should not read whole.
const defaultLargeThreshold = 500

// ModuleMapResult summarizes a written module map.
type ModuleMapResult struct {
	ModulePath string

	// GoVersion is the go directive from the module's go.mod, empty when
	// no go.mod was found.
	GoVersion string

	Packages int
	Large    int
}

// WriteModuleMap renders a "what lives where" orientation file for the
// module under cfg.SourceDir: an overview table, the root package synopsis,
// a per-package inventory with size flags, and the module's direct
// dependencies.
func WriteModuleMap(cfg types.InspectConfig, outPath string) (ModuleMapResult, error) {
	mod, err := Load(cfg.SourceDir)
	if err != nil {
		return ModuleMapResult{}, err
	}
	threshold := cfg.LargeThreshold
	if threshold <= 0 {
		threshold = defaultLargeThreshold
	}

	large := 0
	for _, pkg := range mod.Packages {
		if pkg.Lines >= threshold {
			large++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Module Map: %s\n\n", mod.Path)
	fmt.Fprintf(&b, "> Generated by opensci-skill modules · %s\n\n", runtime.Version())

	b.WriteString("## Package Overview\n\n")
	b.WriteString("| Key | Value |\n|-----|-------|\n")
	fmt.Fprintf(&b, "| Module | `%s` |\n", mod.Path)
	goVersion := mod.GoVersion
	if goVersion == "" {
		goVersion = "unknown"
	}
	fmt.Fprintf(&b, "| Go | `%s` |\n", goVersion)
	fmt.Fprintf(&b, "| Location | `%s` |\n", mod.Root)
	fmt.Fprintf(&b, "| Packages | %d (%d large) |\n\n", len(mod.Packages), large)

	b.WriteString("## Root Package\n\n")
	if s := rootSynopsis(mod); s != "" {
		fmt.Fprintf(&b, "> %s\n\n", s)
	} else {
		b.WriteString("_No documented Go package at the module root._\n\n")
	}

	b.WriteString("## Package Inventory\n\n")
	fmt.Fprintf(&b, "`[LARGE]` = over %d non-blank lines; prefer the symbol index to whole-file reads there.\n\n", threshold)
	b.WriteString("| Package | Lines | Exported | Notes |\n|---------|-------|----------|-------|\n")
	for _, pkg := range mod.Packages {
		var notes []string
		if pkg.Lines >= threshold {
			notes = append(notes, "`[LARGE]`")
		}
		if pkg.Name == "main" {
			notes = append(notes, "command")
		}
		fmt.Fprintf(&b, "| `%s` | %d | %d | %s |\n",
			pkg.ImportPath, pkg.Lines, len(packageSymbols(mod, pkg)), strings.Join(notes, " "))
	}
	b.WriteString("\n")

	if len(mod.Requires) > 0 {
		requires := append([]Requirement(nil), mod.Requires...)
		sort.Slice(requires, func(i, j int) bool { return requires[i].Path < requires[j].Path })

		b.WriteString("## Dependency Hints\n\n")
		b.WriteString("Direct requirements from go.mod:\n\n")
		for _, r := range requires {
			fmt.Fprintf(&b, "- `%s` %s\n", r.Path, r.Version)
		}
		b.WriteString("\n")
	}

	if len(mod.Failures) > 0 {
		b.WriteString("## Parse Failures\n\n")
		for _, f := range mod.Failures {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return ModuleMapResult{}, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return ModuleMapResult{}, fmt.Errorf("writing module map: %w", err)
	}
	return ModuleMapResult{
		ModulePath: mod.Path,
		GoVersion:  mod.GoVersion,
		Packages:   len(mod.Packages),
		Large:      large,
	}, nil
}

// rootSynopsis returns the documented synopsis of the package at the module
// root, skipping main packages.
func rootSynopsis(mod *Module) string {
	for _, pkg := range mod.Packages {
		if pkg.Dir != "." || pkg.Name == "main" {
			continue
		}
		if s := pkg.Synopsis(); s != "" {
			return s
		}
	}
	return ""
}
