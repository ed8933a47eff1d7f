// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the opensci-skill pipeline.
package types

// SymbolKind classifies an exported Go declaration.
type SymbolKind string

const (
	KindFunc   SymbolKind = "func"
	KindType   SymbolKind = "type"
	KindMethod SymbolKind = "method"
)

// SymbolRecord describes one exported symbol of the library under analysis.
// Records are written to symbol-index.jsonl, rendered into per-package
// cards, and ingested into the SQLite index for lookup.
type SymbolRecord struct {
	// Symbol is the name qualified by its package import path, e.g.
	// "example.com/lib/convert.TreeResult", with ".Method" appended for
	// methods.
	Symbol string `json:"symbol" yaml:"symbol"`

	// Kind is func, type, or method.
	Kind SymbolKind `json:"kind" yaml:"kind"`

	// Package is the package import path relative to the module root.
	Package string `json:"package" yaml:"package"`

	// Signature is the declaration rendered from source, without the body.
	Signature string `json:"signature" yaml:"signature"`

	// Summary is the first sentence of the doc comment, if any.
	Summary string `json:"summary" yaml:"summary"`

	// SourceFile is the defining file relative to the module root.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// SourceLine is the 1-based line of the declaration.
	SourceLine int `json:"source_line" yaml:"source_line"`

	// Verification records how the record was obtained. Source-parsed
	// records carry "ast".
	Verification string `json:"verification" yaml:"verification"`
}
