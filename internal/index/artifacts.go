// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HughYau/opensci-skill/pkg/types"
)

const cardsDirName = "symbol-cards"

// ArtifactPaths names the files WriteArtifacts produced.
type ArtifactPaths struct {
	JSONL    string
	Index    string
	CardsDir string
}

// WriteArtifacts renders the dictionary-style lookup files for records
// under assetsDir: symbol-index.jsonl (one JSON object per line, in input
// order), symbol-index.md (coverage counts, the lookup contract, one card
// row per package), and symbol-cards/*.md. modulePath heads the index;
// failures lists source files whose symbols may be missing.
func WriteArtifacts(modulePath string, records []types.SymbolRecord, failures []string, assetsDir string) (ArtifactPaths, error) {
	if assetsDir == "" {
		assetsDir = "assets"
	}
	paths := ArtifactPaths{
		JSONL:    filepath.Join(assetsDir, "symbol-index.jsonl"),
		Index:    filepath.Join(assetsDir, "symbol-index.md"),
		CardsDir: filepath.Join(assetsDir, cardsDirName),
	}

	if err := writeJSONL(records, paths.JSONL); err != nil {
		return paths, err
	}
	cards, err := writeCards(records, paths.CardsDir)
	if err != nil {
		return paths, err
	}
	if err := writeIndexMarkdown(modulePath, records, failures, cards, paths.Index); err != nil {
		return paths, err
	}
	return paths, nil
}

func writeJSONL(records []types.SymbolRecord, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var b strings.Builder
	enc := json.NewEncoder(&b)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding %s: %w", r.Symbol, err)
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// cardFilename flattens a package import path into a single path component.
func cardFilename(pkg string) string {
	return strings.ReplaceAll(pkg, "/", "__") + ".md"
}

func writeCards(records []types.SymbolRecord, cardsDir string) (map[string]string, error) {
	if err := os.MkdirAll(cardsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cards directory: %w", err)
	}

	byPackage := make(map[string][]types.SymbolRecord)
	for _, r := range records {
		byPackage[r.Package] = append(byPackage[r.Package], r)
	}

	cards := make(map[string]string, len(byPackage))
	for pkg, recs := range byPackage {
		name := cardFilename(pkg)
		cards[pkg] = name

		sort.Slice(recs, func(i, j int) bool { return recs[i].Symbol < recs[j].Symbol })

		var b strings.Builder
		fmt.Fprintf(&b, "# Package Card: `%s`\n\n", pkg)
		b.WriteString("> Generated by opensci-skill symbols. Use as dictionary-style lookup before opening source files.\n\n")

		for _, rec := range recs {
			fmt.Fprintf(&b, "## `%s`\n\n", rec.Symbol)
			fmt.Fprintf(&b, "- kind: `%s`\n", rec.Kind)
			fmt.Fprintf(&b, "- signature: `%s`\n", rec.Signature)
			if rec.Summary != "" {
				fmt.Fprintf(&b, "- summary: %s\n", rec.Summary)
			} else {
				b.WriteString("- summary: [UNVERIFIED: no doc summary available]\n")
			}
			if rec.SourceLine > 0 {
				fmt.Fprintf(&b, "- source: `%s:L%d`\n", rec.SourceFile, rec.SourceLine)
			} else {
				fmt.Fprintf(&b, "- source: `%s`\n", rec.SourceFile)
			}
			fmt.Fprintf(&b, "- verification: `%s`\n\n", rec.Verification)
		}

		if err := os.WriteFile(filepath.Join(cardsDir, name), []byte(b.String()), 0o644); err != nil {
			return nil, fmt.Errorf("writing card %s: %w", name, err)
		}
	}
	return cards, nil
}

func writeIndexMarkdown(modulePath string, records []types.SymbolRecord, failures []string, cards map[string]string, path string) error {
	counts := make(map[types.SymbolKind]int)
	packageCounts := make(map[string]int)
	for _, r := range records {
		counts[r.Kind]++
		packageCounts[r.Package]++
	}
	packages := make([]string, 0, len(packageCounts))
	for pkg := range packageCounts {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	var b strings.Builder
	fmt.Fprintf(&b, "# Symbol Index: `%s`\n\n", modulePath)
	b.WriteString("> Generated by opensci-skill symbols. Primary dictionary entrypoint for API lookup.\n\n")

	b.WriteString("## Coverage\n\n")
	b.WriteString("- discovery mode: `ast`\n")
	fmt.Fprintf(&b, "- total symbols: `%d`\n", len(records))
	fmt.Fprintf(&b, "- functions: `%d`\n", counts[types.KindFunc])
	fmt.Fprintf(&b, "- types: `%d`\n", counts[types.KindType])
	fmt.Fprintf(&b, "- methods: `%d`\n\n", counts[types.KindMethod])

	b.WriteString("## Lookup Contract\n\n")
	b.WriteString("Use this order for retrieval before reading source files:\n")
	b.WriteString("1. query `symbol-index.jsonl` for exact symbol names\n")
	b.WriteString("2. open the package card in `symbol-cards/`\n")
	b.WriteString("3. follow `source` anchors only when implementation details are needed\n\n")

	b.WriteString("## Package Cards\n\n")
	b.WriteString("| Package | Symbols | Card |\n|---------|---------|------|\n")
	for _, pkg := range packages {
		fmt.Fprintf(&b, "| `%s` | %d | `%s/%s` |\n", pkg, packageCounts[pkg], cardsDirName, cards[pkg])
	}
	b.WriteString("\n")

	if len(failures) > 0 {
		b.WriteString("## Parse Failures\n\n")
		b.WriteString("The following files could not be parsed. Symbols from them may be missing.\n\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
