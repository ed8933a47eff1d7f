// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inspect

import (
	"bytes"
	"go/ast"
	"go/doc"
	"go/printer"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HughYau/opensci-skill/pkg/types"
)

// SymbolSet is the outcome of collecting a module's exported symbols.
type SymbolSet struct {
	// ModulePath is the module path from go.mod, or the source directory
	// name when no go.mod is present.
	ModulePath string

	// Records holds one entry per exported symbol, sorted by symbol.
	Records []types.SymbolRecord

	// Failures lists files that failed to parse; any symbols they define
	// are missing from Records.
	Failures []string
}

// CollectSymbols parses the module under cfg.SourceDir and returns one
// record per exported top-level function, exported type, and exported
// method on an exported receiver. Packages named main are skipped: they
// cannot be imported, so they are not part of the API surface a skill
// teaches.
func CollectSymbols(cfg types.InspectConfig) (SymbolSet, error) {
	mod, err := Load(cfg.SourceDir)
	if err != nil {
		return SymbolSet{}, err
	}

	set := SymbolSet{ModulePath: mod.Path, Failures: mod.Failures}
	for _, pkg := range mod.Packages {
		if pkg.Name == "main" {
			continue
		}
		set.Records = append(set.Records, packageSymbols(mod, pkg)...)
	}
	sort.Slice(set.Records, func(i, j int) bool { return set.Records[i].Symbol < set.Records[j].Symbol })
	return set, nil
}

func packageSymbols(mod *Module, pkg *PackageInfo) []types.SymbolRecord {
	var records []types.SymbolRecord
	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if !ast.IsExported(d.Name.Name) {
					continue
				}
				if d.Recv == nil {
					records = append(records, newRecord(mod, pkg,
						d.Name.Name, types.KindFunc,
						funcSignature(mod.Fset, d.Name.Name, d.Type),
						d.Doc.Text(), d.Pos()))
					continue
				}
				recv, ok := receiverType(d.Recv)
				if !ok || !ast.IsExported(recv) {
					continue
				}
				records = append(records, newRecord(mod, pkg,
					recv+"."+d.Name.Name, types.KindMethod,
					funcSignature(mod.Fset, d.Name.Name, d.Type),
					d.Doc.Text(), d.Pos()))
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok || !ast.IsExported(ts.Name.Name) {
						continue
					}
					records = append(records, newRecord(mod, pkg,
						ts.Name.Name, types.KindType,
						typeSignature(mod.Fset, ts),
						typeDoc(d, ts), ts.Pos()))
				}
			}
		}
	}
	return records
}

func newRecord(mod *Module, pkg *PackageInfo, name string, kind types.SymbolKind, sig, docText string, pos token.Pos) types.SymbolRecord {
	position := mod.Fset.Position(pos)
	return types.SymbolRecord{
		Symbol:       pkg.ImportPath + "." + name,
		Kind:         kind,
		Package:      pkg.ImportPath,
		Signature:    sig,
		Summary:      doc.Synopsis(docText),
		SourceFile:   relFile(mod.Root, position.Filename),
		SourceLine:   position.Line,
		Verification: "ast",
	}
}

// funcSignature renders "Name(params) results" from the AST, collapsed to
// one line. Method signatures deliberately omit the receiver: the symbol
// name already carries the type.
func funcSignature(fset *token.FileSet, name string, ft *ast.FuncType) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, ft); err != nil {
		return name + "(...)"
	}
	sig := strings.Join(strings.Fields(buf.String()), " ")
	return name + strings.TrimPrefix(sig, "func")
}

// typeSignature keeps struct and interface declarations to their head line;
// other underlying types (named basics, funcs, maps) are short enough to
// render in full.
func typeSignature(fset *token.FileSet, ts *ast.TypeSpec) string {
	switch ts.Type.(type) {
	case *ast.StructType:
		return "type " + ts.Name.Name + " struct"
	case *ast.InterfaceType:
		return "type " + ts.Name.Name + " interface"
	}
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, ts.Type); err != nil {
		return "type " + ts.Name.Name
	}
	return "type " + ts.Name.Name + " " + strings.Join(strings.Fields(buf.String()), " ")
}

// typeDoc prefers the TypeSpec's own comment and falls back to the
// declaration comment, which is where the parser attaches docs for the
// common non-parenthesized form.
func typeDoc(gd *ast.GenDecl, ts *ast.TypeSpec) string {
	if text := ts.Doc.Text(); text != "" {
		return text
	}
	if len(gd.Specs) == 1 {
		return gd.Doc.Text()
	}
	return ""
}

// receiverType unwraps pointers and type parameters down to the receiver's
// base type name.
func receiverType(fields *ast.FieldList) (string, bool) {
	if fields == nil || len(fields.List) == 0 {
		return "", false
	}
	expr := fields.List[0].Type
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name, true
		default:
			return "", false
		}
	}
}

func relFile(root, filename string) string {
	rel, err := filepath.Rel(root, filename)
	if err != nil {
		return filepath.ToSlash(filename)
	}
	return filepath.ToSlash(rel)
}
