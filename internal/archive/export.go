// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/notes-engine/internal/notes"
	"github.com/pdiddy/notes-engine/pkg/types"
)

// ExportEntry is the serialized form of one archived run. Notes keeps the
// fixed section order in both YAML and JSON.
type ExportEntry struct {
	ID          string       `json:"id" yaml:"id"`
	Source      string       `json:"source" yaml:"source"`
	Mode        string       `json:"mode" yaml:"mode"`
	Destination string       `json:"destination,omitempty" yaml:"destination,omitempty"`
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
	Notes       *notes.Notes `json:"notes,omitempty" yaml:"notes,omitempty"`
	Summary     string       `json:"summary,omitempty" yaml:"summary,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes every archived run to w as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every archived run to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	runs, err := s.List(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, 0, len(runs))
	for _, r := range runs {
		rec, err := s.Get(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		e := ExportEntry{
			ID:          rec.ID,
			Source:      rec.Source,
			Mode:        string(rec.Mode),
			Destination: rec.Destination,
			CreatedAt:   rec.CreatedAt,
			Summary:     rec.Summary,
		}
		if rec.Mode != types.ModeSummary {
			n := rec.Notes
			e.Notes = &n
		}
		entries = append(entries, e)
	}
	return entries, nil
}
