// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notes splits model output into the fixed note sections and renders
// the result for the console and for persisted files.
package notes

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Notes is a parsed notes document: one body per Section, always in the
// fixed section order. Notes is a value type and is not modified after Parse
// returns it.
type Notes struct {
	bodies [numSections]string
}

// Entry pairs a section with its body text.
type Entry struct {
	Section Section
	Body    string
}

// NewNotes builds a Notes value from explicit bodies. Sections missing from
// bodies are left empty; invalid sections are ignored.
func NewNotes(bodies map[Section]string) Notes {
	var n Notes
	for s, body := range bodies {
		if s.Valid() {
			n.bodies[s] = body
		}
	}
	return n
}

// Get returns the body of section s.
func (n Notes) Get(s Section) string {
	if !s.Valid() {
		return ""
	}
	return n.bodies[s]
}

// Entries returns every section with its body in the fixed order.
func (n Notes) Entries() []Entry {
	entries := make([]Entry, 0, numSections)
	for _, s := range Sections() {
		entries = append(entries, Entry{Section: s, Body: n.bodies[s]})
	}
	return entries
}

// String renders the notes in the text stanza form.
func (n Notes) String() string {
	var b strings.Builder
	_ = Render(&b, n)
	return b.String()
}

// MarshalJSON encodes the notes as an object whose keys follow the fixed
// section order.
func (n Notes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range n.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Section.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Body)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the notes as an ordered mapping. Multi-line bodies use
// literal block style.
func (n Notes) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range n.Entries() {
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Body}
		if strings.Contains(e.Body, "\n") {
			val.Style = yaml.LiteralStyle
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Section.String()},
			val,
		)
	}
	return node, nil
}
