// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import "strings"

// NoInformation replaces the body of a section that received no lines.
const NoInformation = "No information detected.\n"

// Parser splits heading-delimited text into sections. The zero value leaves
// empty sections empty; set Fallback to substitute NoInformation.
type Parser struct {
	Fallback bool
}

var defaultParser = Parser{Fallback: true}

// Parse splits raw with the fallback enabled.
func Parse(raw string) Notes {
	return defaultParser.Parse(raw)
}

// Parse splits raw into the fixed sections. It never fails: text before the
// first heading is dropped, blank lines are skipped, and each body line is
// stored trimmed and newline-terminated under the most recent heading.
func (p Parser) Parse(raw string) Notes {
	var acc [numSections]strings.Builder
	current, active := Summary, false

	for _, line := range splitLines(raw) {
		if s, ok := MatchHeading(line); ok {
			current, active = s, true
			continue
		}
		trimmed := strings.TrimSpace(line)
		if !active || trimmed == "" {
			continue
		}
		acc[current].WriteString(trimmed)
		acc[current].WriteByte('\n')
	}

	var n Notes
	for i := range acc {
		n.bodies[i] = acc[i].String()
		if p.Fallback && n.bodies[i] == "" {
			n.bodies[i] = NoInformation
		}
	}
	return n
}

// splitLines splits on \n, \r\n and bare \r.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
