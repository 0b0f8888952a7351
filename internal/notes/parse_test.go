// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoadmapExample(t *testing.T) {
	raw := "SUMMARY:\nTeam discussed Q3 roadmap.\nKEY POINTS:\nBudget is tight.\nHiring freeze likely.\n"

	got := Parse(raw)

	assert.Equal(t, "Team discussed Q3 roadmap.\n", got.Get(Summary))
	assert.Equal(t, "Budget is tight.\nHiring freeze likely.\n", got.Get(KeyPoints))
	assert.Equal(t, NoInformation, got.Get(Decisions))
	assert.Equal(t, NoInformation, got.Get(ActionItems))
}

func TestParse_EmptyInput(t *testing.T) {
	got := Parse("")
	for _, s := range Sections() {
		assert.Equal(t, NoInformation, got.Get(s), "section %s", s)
	}
}

func TestParse_Totality(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"no headings at all",
		"ACTION ITEMS\nship it\nSUMMARY\nshort",
		"\x00\xff garbage \r\r\n",
		strings.Repeat("KEY POINTS\n", 50),
	}

	for _, in := range inputs {
		got := Parse(in)
		entries := got.Entries()
		require.Len(t, entries, 4)
		assert.Equal(t, []Section{Summary, KeyPoints, Decisions, ActionItems},
			[]Section{entries[0].Section, entries[1].Section, entries[2].Section, entries[3].Section})
		for _, e := range entries {
			assert.NotEmpty(t, e.Body, "input %q section %s", in, e.Section)
		}
	}
}

func TestParse_Sections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[Section]string
	}{
		{
			name: "all four headings in order",
			raw: "SUMMARY:\nOne.\nKEY POINTS:\n- a\n- b\nDECISIONS:\nGo.\nACTION ITEMS:\n- Ana: draft plan\n",
			want: map[Section]string{
				Summary:     "One.\n",
				KeyPoints:   "- a\n- b\n",
				Decisions:   "Go.\n",
				ActionItems: "- Ana: draft plan\n",
			},
		},
		{
			name: "headings out of order",
			raw:  "ACTION ITEMS\nfollow up\nSUMMARY\nrecap\n",
			want: map[Section]string{
				Summary:     "recap\n",
				KeyPoints:   NoInformation,
				Decisions:   NoInformation,
				ActionItems: "follow up\n",
			},
		},
		{
			name: "preamble is dropped",
			raw:  "Sure! Here are your notes.\n\nSUMMARY:\nrecap\n",
			want: map[Section]string{
				Summary:     "recap\n",
				KeyPoints:   NoInformation,
				Decisions:   NoInformation,
				ActionItems: NoInformation,
			},
		},
		{
			name: "blank lines contribute nothing",
			raw:  "SUMMARY:\n\n   \nfirst\n\n\nsecond\n\n",
			want: map[Section]string{
				Summary:     "first\nsecond\n",
				KeyPoints:   NoInformation,
				Decisions:   NoInformation,
				ActionItems: NoInformation,
			},
		},
		{
			name: "body lines are trimmed and keep their casing",
			raw:  "  summary  \n\tMixed Case Line\t\n",
			want: map[Section]string{
				Summary:     "Mixed Case Line\n",
				KeyPoints:   NoInformation,
				Decisions:   NoInformation,
				ActionItems: NoInformation,
			},
		},
		{
			name: "mid-line heading word does not switch sections",
			raw:  "SUMMARY\nWe reviewed the decisions from last week.\nNo action items yet.\n",
			want: map[Section]string{
				Summary:     "We reviewed the decisions from last week.\nNo action items yet.\n",
				KeyPoints:   NoInformation,
				Decisions:   NoInformation,
				ActionItems: NoInformation,
			},
		},
		{
			name: "repeated heading keeps accumulating",
			raw:  "SUMMARY\none\nKEY POINTS\nk\nSUMMARY\ntwo\n",
			want: map[Section]string{
				Summary:     "one\ntwo\n",
				KeyPoints:   "k\n",
				Decisions:   NoInformation,
				ActionItems: NoInformation,
			},
		},
		{
			name: "windows line endings",
			raw:  "SUMMARY:\r\nrecap\r\nDECISIONS:\r\nyes\r\n",
			want: map[Section]string{
				Summary:     "recap\n",
				KeyPoints:   NoInformation,
				Decisions:   "yes\n",
				ActionItems: NoInformation,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			for s, want := range tt.want {
				assert.Equal(t, want, got.Get(s), "section %s", s)
			}
		})
	}
}

func TestParse_HeadingVariants(t *testing.T) {
	for _, heading := range []string{"summary:", "SUMMARY", "Summary -", "  **Summary**", "Summary:"} {
		t.Run(heading, func(t *testing.T) {
			got := Parse("KEY POINTS\nk\n" + heading + "\nbody\n")
			if strings.HasPrefix(strings.TrimSpace(heading), "*") {
				// Decoration before the label is not line-initial.
				assert.Equal(t, "k\n"+strings.TrimSpace(heading)+"\nbody\n", got.Get(KeyPoints))
				return
			}
			assert.Equal(t, "body\n", got.Get(Summary))
			assert.Equal(t, "k\n", got.Get(KeyPoints))
		})
	}
}

func TestParser_NoFallback(t *testing.T) {
	p := Parser{}
	got := p.Parse("DECISIONS\nship\n")

	assert.Equal(t, "", got.Get(Summary))
	assert.Equal(t, "", got.Get(KeyPoints))
	assert.Equal(t, "ship\n", got.Get(Decisions))
	assert.Equal(t, "", got.Get(ActionItems))
}

func TestParse_Concurrent(t *testing.T) {
	raw := "SUMMARY\nrecap\nACTION ITEMS\ntodo\n"
	want := Parse(raw)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Parse(raw))
		}()
	}
	wg.Wait()
}

func TestMatchHeading(t *testing.T) {
	tests := []struct {
		line string
		want Section
		ok   bool
	}{
		{line: "SUMMARY", want: Summary, ok: true},
		{line: "key points:", want: KeyPoints, ok: true},
		{line: "Decisions -", want: Decisions, ok: true},
		{line: "  action items  ", want: ActionItems, ok: true},
		{line: "ACTION ITEMS:", want: ActionItems, ok: true},
		{line: "Decisions were postponed", want: Decisions, ok: true},
		{line: "the decisions", ok: false},
		{line: "KEYPOINTS", ok: false},
		{line: "", ok: false},
		{line: "- summary", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := MatchHeading(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		in   string
		want Section
		ok   bool
	}{
		{in: "summary", want: Summary, ok: true},
		{in: "key-points", want: KeyPoints, ok: true},
		{in: "ACTION_ITEMS", want: ActionItems, ok: true},
		{in: " Decisions ", want: Decisions, ok: true},
		{in: "minutes", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSection(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSectionString(t *testing.T) {
	assert.Equal(t, "KEY POINTS", KeyPoints.String())
	assert.Equal(t, "UNKNOWN", Section(9).String())
	assert.False(t, Section(-1).Valid())
}
