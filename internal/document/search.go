package document

import (
	"strings"
	"unicode"
)

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Terms splits a free text query into distinct lowercase alphanumeric terms,
// in order of first appearance.
func Terms(q string) []string {
	fields := tokenize(q)
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Score counts how often the query terms occur in the title and content of d.
// Zero means d does not match.
func Score(d Document, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		want[t] = struct{}{}
	}
	var score float64
	for _, text := range []string{d.Title, d.Content} {
		for _, tok := range tokenize(text) {
			if _, ok := want[tok]; ok {
				score++
			}
		}
	}
	return score
}

// Ranked pairs a document with its relevance score.
type Ranked struct {
	Document Document
	Score    float64
}
