// Package metrics derives privacy-safe features from a user question for
// telemetry. Only counts and fixed vocabulary hits leave this package, never
// the question text.
package metrics

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Features holds basic local text features derived from a question.
type Features struct {
	Bytes int
	Runes int
	Words int
	Lines int
	// Numbers counts maximal digit runs, e.g. amounts and years.
	Numbers int
	// MonthRefs lists relative-month phrases and month names found, in
	// vocabulary order.
	MonthRefs []string
}

var relativePhrases = []string{"month before last", "last month", "this month"}

// CountFeatures computes the features of s.
func CountFeatures(s string) Features {
	return Features{
		Bytes:     len(s),
		Runes:     utf8.RuneCountInString(s),
		Words:     countWords(s),
		Lines:     countLines(s),
		Numbers:   countNumbers(s),
		MonthRefs: monthRefs(s),
	}
}

// countWords counts words split on Unicode whitespace.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}

func countNumbers(s string) int {
	n := 0
	inRun := false
	for _, r := range s {
		d := unicode.IsDigit(r)
		if d && !inRun {
			n++
		}
		inRun = d
	}
	return n
}

func monthRefs(s string) []string {
	lower := strings.ToLower(s)
	var refs []string
	// Each phrase is consumed once found so overlapping text counts once.
	rest := lower
	for _, p := range relativePhrases {
		if strings.Contains(rest, p) {
			refs = append(refs, p)
			rest = strings.ReplaceAll(rest, p, " ")
		}
	}
	words := strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) })
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		for _, w := range words {
			if w == name {
				refs = append(refs, name)
				break
			}
		}
	}
	return refs
}
