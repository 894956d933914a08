// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/pubsite/pkg/types"
)

// searchFields are the free-text columns matched besides title and authors.
var searchFields = []string{"abstract", "keywords", "note", "comment"}

// QueryOptions holds catalog query parameters. All set filters must match.
type QueryOptions struct {
	// Query is a case-insensitive substring matched against the title,
	// authors, and the abstract, keywords, note and comment fields.
	Query string

	// Type filters by entry type, case-insensitively.
	Type string

	// YearFrom and YearTo bound the year inclusively. Zero leaves a side
	// open. Entries without a year never match a year bound.
	YearFrom int
	YearTo   int

	// Author is a case-insensitive substring of the author field.
	Author string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && q.YearFrom == 0 && q.YearTo == 0 && q.Author == ""
}

// QueryResult is a stored publication.
type QueryResult struct {
	types.CitationRecord
	Position int `json:"position" yaml:"position"`
}

// Retrieve returns matching publications in the order they were ingested.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT p.key, p.entry_type, p.position FROM publications p WHERE 1=1`)

	if opts.Query != "" {
		pattern := likePattern(opts.Query)
		qb.WriteString(` AND (p.title LIKE ? ESCAPE '\' OR p.authors LIKE ? ESCAPE '\'`)
		args = append(args, pattern, pattern)
		qb.WriteString(` OR EXISTS (SELECT 1 FROM publication_fields f WHERE f.key = p.key AND f.name IN (`)
		for i, name := range searchFields {
			if i > 0 {
				qb.WriteString(`, `)
			}
			qb.WriteString(`?`)
			args = append(args, name)
		}
		qb.WriteString(`) AND f.value LIKE ? ESCAPE '\'))`)
		args = append(args, pattern)
	}
	if opts.Type != "" {
		qb.WriteString(` AND lower(p.entry_type) = lower(?)`)
		args = append(args, opts.Type)
	}
	if opts.YearFrom != 0 {
		qb.WriteString(` AND p.year >= ?`)
		args = append(args, opts.YearFrom)
	}
	if opts.YearTo != 0 {
		qb.WriteString(` AND p.year <= ?`)
		args = append(args, opts.YearTo)
	}
	if opts.Author != "" {
		qb.WriteString(` AND p.authors LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(opts.Author))
	}

	qb.WriteString(` ORDER BY p.position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}

	var results []QueryResult
	for rows.Next() {
		var qr QueryResult
		if err := rows.Scan(&qr.Key, &qr.EntryType, &qr.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, qr)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		fields, err := s.fields(ctx, results[i].Key)
		if err != nil {
			return nil, err
		}
		results[i].Fields = fields
	}
	return results, nil
}

// Get returns the publication stored under key.
func (s *Store) Get(ctx context.Context, key string) (types.CitationRecord, error) {
	rec := types.CitationRecord{Key: key}
	err := s.db.QueryRowContext(ctx,
		`SELECT entry_type FROM publications WHERE key = ?`, key,
	).Scan(&rec.EntryType)
	if err != nil {
		if err == sql.ErrNoRows {
			return rec, fmt.Errorf("publication %s not found", key)
		}
		return rec, fmt.Errorf("looking up publication: %w", err)
	}
	rec.Fields, err = s.fields(ctx, key)
	return rec, err
}

// Count returns the number of stored publications.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM publications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting publications: %w", err)
	}
	return n, nil
}

func (s *Store) fields(ctx context.Context, key string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM publication_fields WHERE key = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("loading fields of %s: %w", key, err)
	}
	defer rows.Close()

	fields := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		fields[name] = value
	}
	return fields, rows.Err()
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
