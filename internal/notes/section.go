// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import "strings"

// Section identifies one of the fixed note sections. The set is closed; the
// zero value is Summary.
type Section int

const (
	Summary Section = iota
	KeyPoints
	Decisions
	ActionItems

	numSections = int(ActionItems) + 1
)

// sectionLabels maps each Section to its heading label. Indexing by Section
// keeps the table total: adding a constant without a label fails to compile.
var sectionLabels = [numSections]string{
	Summary:     "SUMMARY",
	KeyPoints:   "KEY POINTS",
	Decisions:   "DECISIONS",
	ActionItems: "ACTION ITEMS",
}

// Sections returns all sections in their fixed order.
func Sections() []Section {
	return []Section{Summary, KeyPoints, Decisions, ActionItems}
}

// String returns the heading label (e.g. "KEY POINTS").
func (s Section) String() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return sectionLabels[s]
}

// Valid reports whether s is one of the fixed sections.
func (s Section) Valid() bool {
	return s >= 0 && int(s) < numSections
}

// MatchHeading reports whether line is a heading line and which section it
// opens. Matching is case-insensitive and anchored at the start of the
// trimmed line, so "Summary -", "summary:" and "SUMMARY" all open Summary
// while "the decisions were" does not open Decisions.
func MatchHeading(line string) (Section, bool) {
	norm := strings.ToUpper(strings.TrimSpace(line))
	for _, s := range Sections() {
		if strings.HasPrefix(norm, sectionLabels[s]) {
			return s, true
		}
	}
	return 0, false
}

// ParseSection resolves a user-supplied section name such as "key points",
// "key-points" or "ACTION_ITEMS".
func ParseSection(name string) (Section, bool) {
	norm := strings.ToUpper(strings.TrimSpace(name))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	for _, s := range Sections() {
		if norm == sectionLabels[s] {
			return s, true
		}
	}
	return 0, false
}
