// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists symbol records in SQLite and serves lookups and
// exports over them.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/HughYau/opensci-skill/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "symbols.db"
)

// Store manages the symbol index SQLite database.
type Store struct {
	db         *sql.DB
	assetsDir  string
	maxResults int
}

// NewStore opens or creates the symbol index at assetsDir/index/symbols.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	assetsDir := cfg.AssetsDir
	if assetsDir == "" {
		assetsDir = "assets"
	}
	dbDir := filepath.Join(assetsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, assetsDir: assetsDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS symbols (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			package TEXT NOT NULL,
			signature TEXT,
			summary TEXT,
			source_file TEXT,
			source_line INTEGER,
			verification TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_package ON symbols(package)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='symbols_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE symbols_fts USING fts5(symbol, summary, signature, content=symbols, content_rowid=rowid)`,
			`CREATE TRIGGER symbols_ai AFTER INSERT ON symbols BEGIN
				INSERT INTO symbols_fts(rowid, symbol, summary, signature) VALUES (new.rowid, new.symbol, new.summary, new.signature);
			END`,
			`CREATE TRIGGER symbols_ad AFTER DELETE ON symbols BEGIN
				INSERT INTO symbols_fts(symbols_fts, rowid, symbol, summary, signature) VALUES('delete', old.rowid, old.symbol, old.summary, old.signature);
			END`,
			`CREATE TRIGGER symbols_au AFTER UPDATE ON symbols BEGIN
				INSERT INTO symbols_fts(symbols_fts, rowid, symbol, summary, signature) VALUES('delete', old.rowid, old.symbol, old.summary, old.signature);
				INSERT INTO symbols_fts(rowid, symbol, summary, signature) VALUES (new.rowid, new.symbol, new.summary, new.signature);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a symbol ingest run.
type IngestSummary struct {
	Packages int
	Symbols  int
}

// Ingest replaces the stored rows of every package present in records, one
// transaction per package, and logs a status line per package on w. A
// package disappears from the index only when re-ingested without symbols;
// packages absent from records are left untouched so partial rebuilds stay
// cheap. On success it refreshes export.yaml.
func (s *Store) Ingest(ctx context.Context, records []types.SymbolRecord, w io.Writer) (IngestSummary, error) {
	byPackage := make(map[string][]types.SymbolRecord)
	for _, r := range records {
		byPackage[r.Package] = append(byPackage[r.Package], r)
	}
	packages := make([]string, 0, len(byPackage))
	for pkg := range byPackage {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	var summary IngestSummary
	for _, pkg := range packages {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if err := s.ingestPackage(ctx, pkg, byPackage[pkg]); err != nil {
			return summary, fmt.Errorf("indexing %s: %w", pkg, err)
		}
		fmt.Fprintf(w, "indexed %s (%d symbols)\n", pkg, len(byPackage[pkg]))
		summary.Packages++
		summary.Symbols += len(byPackage[pkg])
	}

	fmt.Fprintf(w, "\nindexed: %d packages, %d symbols\n", summary.Packages, summary.Symbols)

	if summary.Symbols > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestPackage(ctx context.Context, pkg string, records []types.SymbolRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE package = ?`, pkg); err != nil {
		return fmt.Errorf("deleting old symbols: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO symbols (symbol, kind, package, signature, summary, source_file, source_line, verification)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.Symbol, string(r.Kind), r.Package, r.Signature,
			r.Summary, r.SourceFile, r.SourceLine, r.Verification,
		)
		if err != nil {
			return fmt.Errorf("inserting symbol %s: %w", r.Symbol, err)
		}
	}

	return tx.Commit()
}
