// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/HughYau/opensci-skill/pkg/types"
)

// QueryOptions holds parameters for symbol lookups.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against symbol
	// names, summaries, and signatures.
	Query string

	// Kind filters by symbol kind.
	Kind types.SymbolKind

	// Package filters by package import path.
	Package string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Kind == "" && q.Package == ""
}

// Retrieve queries the symbol index with optional full-text search and
// structured filters. Full-text queries are ranked by relevance; structured
// queries are sorted by symbol name.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.SymbolRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT sy.symbol, sy.kind, sy.package, sy.signature, sy.summary,
				sy.source_file, sy.source_line, sy.verification
			FROM symbols_fts
			JOIN symbols sy ON sy.rowid = symbols_fts.rowid
			WHERE symbols_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT sy.symbol, sy.kind, sy.package, sy.signature, sy.summary,
				sy.source_file, sy.source_line, sy.verification
			FROM symbols sy
			WHERE 1=1`)
	}

	if opts.Kind != "" {
		qb.WriteString(` AND sy.kind = ?`)
		args = append(args, string(opts.Kind))
	}

	if opts.Package != "" {
		qb.WriteString(` AND sy.package = ?`)
		args = append(args, opts.Package)
	}

	if useFTS {
		qb.WriteString(` ORDER BY symbols_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY sy.symbol`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying symbol index: %w", err)
	}
	defer rows.Close()

	var results []types.SymbolRecord
	for rows.Next() {
		var (
			r          types.SymbolRecord
			kind       string
			signature  sql.NullString
			summary    sql.NullString
			sourceFile sql.NullString
			sourceLine sql.NullInt64
			verified   sql.NullString
		)
		if err := rows.Scan(
			&r.Symbol, &kind, &r.Package, &signature, &summary,
			&sourceFile, &sourceLine, &verified,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r.Kind = types.SymbolKind(kind)
		r.Signature = signature.String
		r.Summary = summary.String
		r.SourceFile = sourceFile.String
		r.SourceLine = int(sourceLine.Int64)
		r.Verification = verified.String

		results = append(results, r)
	}

	return results, rows.Err()
}
