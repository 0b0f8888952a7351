// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// QueryOptions holds parameters for archive searches.
type QueryOptions struct {
	// Query is an FTS5 full-text search string. Empty lists the most
	// recent section bodies instead.
	Query string

	// Section restricts hits to one section label (e.g. "ACTION ITEMS").
	Section string

	// Limit caps the number of hits. Zero uses the store default.
	Limit int
}

// Hit is one matching section body.
type Hit struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Source    string    `json:"source" yaml:"source"`
	Section   string    `json:"section" yaml:"section"`
	Snippet   string    `json:"snippet" yaml:"snippet"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Search finds section bodies. Full-text queries are ranked by relevance;
// filter-only queries return the newest runs first.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Hit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		query  = strings.TrimSpace(opts.Query)
		useFTS = query != "" && s.fts
	)

	switch {
	case useFTS:
		qb.WriteString(
			`SELECT r.id, r.source, sec.label,
				snippet(sections_fts, 0, '[', ']', '...', 12), r.created_at
			FROM sections_fts
			JOIN sections sec ON sec.rowid = sections_fts.rowid
			JOIN runs r ON r.id = sec.run_id
			WHERE sections_fts MATCH ?`)
		args = append(args, query)
	default:
		qb.WriteString(
			`SELECT r.id, r.source, sec.label, sec.body, r.created_at
			FROM sections sec
			JOIN runs r ON r.id = sec.run_id
			WHERE 1=1`)
		if query != "" {
			qb.WriteString(` AND sec.body LIKE '%' || ? || '%'`)
			args = append(args, query)
		}
	}

	if opts.Section != "" {
		qb.WriteString(` AND sec.label = ?`)
		args = append(args, strings.ToUpper(strings.TrimSpace(opts.Section)))
	}

	if useFTS {
		qb.WriteString(` ORDER BY sections_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.created_at DESC, sec.ordinal`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching archive: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h       Hit
			created string
		)
		if err := rows.Scan(&h.RunID, &h.Source, &h.Section, &h.Snippet, &created); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		if h.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing created_at of %s: %w", h.RunID, err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
