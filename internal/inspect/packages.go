// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspect parses a Go module's source with go/ast and renders
// agent-consumable views of it: symbol records for the index store, a
// public API dump, and a module map.
package inspect

import (
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

// Module is a parsed Go source tree.
type Module struct {
	// Path is the module path from go.mod, or the root directory's base
	// name when no go.mod is present.
	Path string

	// GoVersion is the go directive from go.mod, empty when unknown.
	GoVersion string

	// Root is the source directory Load was given.
	Root string

	Fset *token.FileSet

	// Packages holds every parsed package, sorted by directory.
	Packages []*PackageInfo

	// Requires lists the module's direct dependencies from go.mod.
	Requires []Requirement

	// Failures records inputs that could not be parsed, as "path: error".
	Failures []string
}

// PackageInfo is one parsed package.
type PackageInfo struct {
	// ImportPath is the module path joined with Dir.
	ImportPath string

	// Name is the package clause name.
	Name string

	// Dir is the package directory relative to the module root, "." for
	// the root package.
	Dir string

	// Files holds the parsed non-test files, in lexical filename order.
	Files []*ast.File

	// Lines is the non-blank source line count across Files.
	Lines int
}

// Requirement is one direct dependency from the go.mod require block.
type Requirement struct {
	Path    string
	Version string
}

// skipDir reports whether a directory is excluded from analysis. Vendored
// code, test fixtures, and hidden or underscore-prefixed trees (which the
// Go toolchain itself ignores) never contribute symbols.
func skipDir(name string) bool {
	if name == "vendor" || name == "testdata" {
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Load parses every non-test .go file under root. Files that fail to parse
// are recorded in Module.Failures rather than aborting the load, so one
// broken file cannot hide the rest of the module.
func Load(root string) (*Module, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", root)
	}

	mod := &Module{Root: root, Fset: token.NewFileSet()}
	if abs, err := filepath.Abs(root); err == nil {
		mod.Path = filepath.Base(abs)
	} else {
		mod.Path = filepath.Base(root)
	}
	readGoMod(mod, root)

	// Dir and package name together key a package: a directory normally
	// holds a single package, but a stray second clause should not merge
	// into it.
	byKey := make(map[string]*PackageInfo)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			mod.Failures = append(mod.Failures, fmt.Sprintf("%s: %v", filepath.ToSlash(rel), err))
			return nil
		}
		file, err := parser.ParseFile(mod.Fset, path, src, parser.ParseComments)
		if err != nil {
			mod.Failures = append(mod.Failures, fmt.Sprintf("%s: %v", filepath.ToSlash(rel), err))
			return nil
		}

		dir := filepath.ToSlash(filepath.Dir(rel))
		key := dir + "\x00" + file.Name.Name
		pkg, ok := byKey[key]
		if !ok {
			pkg = &PackageInfo{
				ImportPath: importPath(mod.Path, dir),
				Name:       file.Name.Name,
				Dir:        dir,
			}
			byKey[key] = pkg
		}
		pkg.Files = append(pkg.Files, file)
		pkg.Lines += countNonBlank(src)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}

	for _, pkg := range byKey {
		mod.Packages = append(mod.Packages, pkg)
	}
	sort.Slice(mod.Packages, func(i, j int) bool {
		if mod.Packages[i].Dir != mod.Packages[j].Dir {
			return mod.Packages[i].Dir < mod.Packages[j].Dir
		}
		return mod.Packages[i].Name < mod.Packages[j].Name
	})
	sort.Strings(mod.Failures)
	return mod, nil
}

// Synopsis returns the first sentence of the package's doc comment, or ""
// when no file carries one.
func (p *PackageInfo) Synopsis() string {
	for _, file := range p.Files {
		if file.Doc == nil {
			continue
		}
		if s := doc.Synopsis(file.Doc.Text()); s != "" {
			return s
		}
	}
	return ""
}

func importPath(modPath, dir string) string {
	if dir == "." || dir == "" {
		return modPath
	}
	return modPath + "/" + dir
}

// readGoMod fills in the module path, Go version, and direct requirements
// when root carries a parseable go.mod. A missing file is not an error: the
// loader then falls back to the directory name chosen by Load.
func readGoMod(mod *Module, root string) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return
	}
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		mod.Failures = append(mod.Failures, fmt.Sprintf("go.mod: %v", err))
		return
	}
	if f.Module != nil {
		mod.Path = f.Module.Mod.Path
	}
	if f.Go != nil {
		mod.GoVersion = f.Go.Version
	}
	for _, r := range f.Require {
		if r.Indirect {
			continue
		}
		mod.Requires = append(mod.Requires, Requirement{Path: r.Mod.Path, Version: r.Mod.Version})
	}
}

func countNonBlank(src []byte) int {
	n := 0
	for _, line := range strings.Split(string(src), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
