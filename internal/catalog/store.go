// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps parsed publications in a SQLite database so they can
// be searched and exported without re-parsing the citation text.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubsite/pkg/types"
)

const (
	dbFile            = "catalog.db"
	exportYAMLFile    = "export.yaml"
	exportJSONFile    = "export.json"
	defaultMaxResults = 20
)

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates dir/catalog.db and its schema.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
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

// Dir returns the catalog directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS publications (
			key TEXT PRIMARY KEY,
			entry_type TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			venue TEXT,
			year INTEGER,
			position INTEGER NOT NULL,
			fingerprint TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS publication_fields (
			key TEXT NOT NULL REFERENCES publications(key) ON DELETE CASCADE,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (key, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_year ON publications(year)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_type ON publications(entry_type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one indexing run.
type IngestSummary struct {
	Added     int
	Updated   int
	Unchanged int
	Removed   int
	Skipped   int
}

// Total returns the number of records processed.
func (s IngestSummary) Total() int {
	return s.Added + s.Updated + s.Unchanged + s.Skipped
}

// Changed reports whether the run modified the catalog.
func (s IngestSummary) Changed() bool {
	return s.Added > 0 || s.Updated > 0 || s.Removed > 0
}

// Ingest makes the catalog hold exactly records, in the given order.
// Records whose type and fields are unchanged since the last run are left
// alone; keys no longer present are removed. A repeated key keeps its first
// occurrence. On change, export.yaml is rewritten.
func (s *Store) Ingest(ctx context.Context, records []types.CitationRecord, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stored, err := storedFingerprints(ctx, tx)
	if err != nil {
		return summary, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	seen := make(map[string]bool, len(records))
	for pos, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if seen[rec.Key] {
			fmt.Fprintf(w, "skipped %s: duplicate key\n", rec.Key)
			summary.Skipped++
			continue
		}
		seen[rec.Key] = true

		fp := fingerprint(rec)
		old, exists := stored[rec.Key]
		switch {
		case exists && old == fp:
			if _, err := tx.ExecContext(ctx,
				`UPDATE publications SET position = ? WHERE key = ?`, pos, rec.Key,
			); err != nil {
				return summary, fmt.Errorf("updating position of %s: %w", rec.Key, err)
			}
			summary.Unchanged++
			continue
		case exists:
			fmt.Fprintf(w, "updated %s\n", rec.Key)
			summary.Updated++
		default:
			fmt.Fprintf(w, "added   %s\n", rec.Key)
			summary.Added++
		}
		if err := upsertPublication(ctx, tx, rec, pos, fp, now); err != nil {
			return summary, err
		}
	}

	for key := range stored {
		if seen[key] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM publications WHERE key = ?`, key); err != nil {
			return summary, fmt.Errorf("removing %s: %w", key, err)
		}
		fmt.Fprintf(w, "removed %s\n", key)
		summary.Removed++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing catalog: %w", err)
	}

	fmt.Fprintf(w, "\nadded: %d, updated: %d, unchanged: %d, removed: %d, skipped: %d\n",
		summary.Added, summary.Updated, summary.Unchanged, summary.Removed, summary.Skipped)

	if summary.Changed() {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: %s write failed: %v\n", exportYAMLFile, err)
		}
	}
	return summary, nil
}

func storedFingerprints(ctx context.Context, tx *sql.Tx) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT key, fingerprint FROM publications`)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, fp string
		if err := rows.Scan(&key, &fp); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out[key] = fp
	}
	return out, rows.Err()
}

func upsertPublication(ctx context.Context, tx *sql.Tx, rec types.CitationRecord, pos int, fp, now string) error {
	var year sql.NullInt64
	if y := rec.Year(); y != 0 {
		year = sql.NullInt64{Int64: int64(y), Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO publications (key, entry_type, title, authors, venue, year, position, fingerprint, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			entry_type=excluded.entry_type, title=excluded.title, authors=excluded.authors,
			venue=excluded.venue, year=excluded.year, position=excluded.position,
			fingerprint=excluded.fingerprint, indexed_at=excluded.indexed_at`,
		rec.Key, rec.EntryType, rec.Field("title"), rec.Field("author"),
		rec.Venue(), year, pos, fp, now,
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", rec.Key, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM publication_fields WHERE key = ?`, rec.Key); err != nil {
		return fmt.Errorf("clearing fields of %s: %w", rec.Key, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO publication_fields (key, name, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for name, value := range rec.Fields {
		if _, err := stmt.ExecContext(ctx, rec.Key, name, value); err != nil {
			return fmt.Errorf("inserting field %s of %s: %w", name, rec.Key, err)
		}
	}
	return nil
}

// fingerprint identifies a record's content. Map keys marshal sorted, so
// equal records always produce equal fingerprints.
func fingerprint(rec types.CitationRecord) string {
	data, _ := json.Marshal(struct {
		Type   string            `json:"t"`
		Fields map[string]string `json:"f"`
	}{rec.EntryType, rec.Fields})
	return string(data)
}
