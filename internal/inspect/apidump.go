// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inspect

import (
	"fmt"
	"go/ast"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HughYau/opensci-skill/pkg/types"
)

// maxListedMethods caps the method list of a type entry; beyond it the dump
// notes how many were elided.
const maxListedMethods = 15

// APIDumpResult summarizes a written API dump.
type APIDumpResult struct {
	// Packages is the number of packages that contributed entries.
	Packages int

	// Entries is the number of exported functions and types rendered.
	Entries int

	// Failures is the number of files that could not be parsed.
	Failures int
}

type apiEntry struct {
	name    string
	kind    string
	sig     string
	doc     []string
	methods []string
}

// WriteAPIDump renders every exported function and type of the module under
// cfg.SourceDir into a single Markdown file at outPath, one section per
// package. Progress is reported per package on w.
func WriteAPIDump(cfg types.InspectConfig, outPath string, w io.Writer) (APIDumpResult, error) {
	mod, err := Load(cfg.SourceDir)
	if err != nil {
		return APIDumpResult{}, err
	}

	pkgs := mod.Packages
	if cfg.MaxDepth > 0 {
		var kept []*PackageInfo
		for _, pkg := range pkgs {
			if pkgDepth(pkg.Dir) <= cfg.MaxDepth {
				kept = append(kept, pkg)
			}
		}
		pkgs = kept
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# `%s` Public API\n\n", mod.Path)
	b.WriteString("*Generated by opensci-skill api*\n\n---\n")

	result := APIDumpResult{Failures: len(mod.Failures)}
	for i, pkg := range pkgs {
		fmt.Fprintf(w, "  [%3d/%d]  %s\n", i+1, len(pkgs), pkg.ImportPath)
		if pkg.Name == "main" {
			continue
		}
		entries := packageEntries(mod, pkg)
		if len(entries) == 0 {
			continue
		}
		result.Packages++
		result.Entries += len(entries)

		fmt.Fprintf(&b, "\n## %s\n", pkg.ImportPath)
		for _, e := range entries {
			fmt.Fprintf(&b, "\n### `%s`  *(%s)*\n", e.name, e.kind)
			fmt.Fprintf(&b, "\n**Signature:** `%s`\n", e.sig)
			if len(e.doc) > 0 {
				b.WriteString("\n**Doc:**\n")
				for _, line := range e.doc {
					fmt.Fprintf(&b, "> %s\n", line)
				}
			}
			if len(e.methods) > 0 {
				shown := e.methods
				extra := ""
				if len(shown) > maxListedMethods {
					extra = fmt.Sprintf(", ... (%d more)", len(shown)-maxListedMethods)
					shown = shown[:maxListedMethods]
				}
				quoted := make([]string, len(shown))
				for i, m := range shown {
					quoted[i] = "`" + m + "`"
				}
				fmt.Fprintf(&b, "\n**Methods:** %s%s\n", strings.Join(quoted, ", "), extra)
			}
		}
	}
	for _, f := range mod.Failures {
		fmt.Fprintf(&b, "\n*Parse failed: %s*\n", f)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return result, fmt.Errorf("writing API dump: %w", err)
	}
	return result, nil
}

// packageEntries collects the package's exported functions and types, with
// each type carrying its exported method names. Entries are ordered
// case-insensitively by name.
func packageEntries(mod *Module, pkg *PackageInfo) []apiEntry {
	var entries []apiEntry
	methods := make(map[string][]string)

	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if !ast.IsExported(d.Name.Name) {
					continue
				}
				if d.Recv != nil {
					if recv, ok := receiverType(d.Recv); ok && ast.IsExported(recv) {
						methods[recv] = append(methods[recv], d.Name.Name)
					}
					continue
				}
				entries = append(entries, apiEntry{
					name: d.Name.Name,
					kind: "func",
					sig:  funcSignature(mod.Fset, d.Name.Name, d.Type),
					doc:  firstDocLines(d.Doc.Text(), 3),
				})
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok || !ast.IsExported(ts.Name.Name) {
						continue
					}
					entries = append(entries, apiEntry{
						name: ts.Name.Name,
						kind: "type",
						sig:  typeSignature(mod.Fset, ts),
						doc:  firstDocLines(typeDoc(d, ts), 3),
					})
				}
			}
		}
	}

	for i := range entries {
		if entries[i].kind != "type" {
			continue
		}
		if ms := methods[entries[i].name]; len(ms) > 0 {
			sort.Strings(ms)
			entries[i].methods = ms
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})
	return entries
}

// pkgDepth is the directory depth of a package relative to the module root:
// 0 for the root package, 1 for a direct subdirectory, and so on.
func pkgDepth(dir string) int {
	if dir == "." || dir == "" {
		return 0
	}
	return strings.Count(dir, "/") + 1
}

// firstDocLines returns up to n non-empty lines of a doc comment, for the
// blockquote excerpt under each entry.
func firstDocLines(text string, n int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}
