package ingestion

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z][a-z0-9+#]*(?:[./\-][a-z0-9+#]+)*`)

// NormalizedText is the token stream of a document plus the section boundaries found in it.
type NormalizedText struct {
	Tokens   []string      `json:"tokens"`
	Sections []SectionSpan `json:"sections"`
}

// SectionSpan covers Tokens[Start:End] under one heading. The preamble before the
// first heading has an empty Name.
type SectionSpan struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// IsEmpty reports whether no tokens were produced.
func (n NormalizedText) IsEmpty() bool {
	return len(n.Tokens) == 0
}

// Tokenize lower-cases s and returns its word tokens, skipping stop-words and
// single characters. A nil stop set keeps every word.
func Tokenize(s string, stop map[string]bool) []string {
	words := wordPattern.FindAllString(strings.ToLower(s), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 || stop[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Normalize cleans raw text, tokenizes it and records section boundaries.
// Empty or whitespace-only input yields an empty NormalizedText.
func Normalize(raw string, stop map[string]bool) NormalizedText {
	segments := SplitSegments(raw)
	if len(segments) == 0 {
		return NormalizedText{}
	}

	var out NormalizedText
	for _, seg := range segments {
		if len(out.Sections) == 0 || out.Sections[len(out.Sections)-1].Name != seg.Heading {
			start := len(out.Tokens)
			if len(out.Sections) > 0 {
				out.Sections[len(out.Sections)-1].End = start
			}
			out.Sections = append(out.Sections, SectionSpan{Name: seg.Heading, Start: start})
		}
		out.Tokens = append(out.Tokens, Tokenize(seg.Text, stop)...)
	}
	out.Sections[len(out.Sections)-1].End = len(out.Tokens)
	return out
}
