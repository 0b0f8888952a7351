// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/notes-engine/pkg/types"
)

const ruleWidth = 40

var rule = strings.Repeat("-", ruleWidth)

// WriteStanza writes one labeled section: the label, a rule of dashes, the
// body, and a trailing line break.
func WriteStanza(w io.Writer, s Section, body string) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", s, rule, body)
	return err
}

// Render writes every section as a stanza in the fixed section order.
func Render(w io.Writer, n Notes) error {
	for _, e := range n.Entries() {
		if err := WriteStanza(w, e.Section, e.Body); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes n in the requested format.
func Encode(w io.Writer, n Notes, format types.OutputFormat) error {
	switch format {
	case types.FormatText, "":
		return Render(w, n)
	case types.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(n); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case types.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(n)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
