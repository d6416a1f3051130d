package report

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const minSuggestionRatio = .6

// SuggestStudents returns the group's students whose names look like name, most similar first.
func SuggestStudents(gd GroupData, name string) []string {
	target := strings.Split(strings.ToLower(strings.TrimSpace(name)), "")
	if len(target) == 0 {
		return nil
	}

	type match struct {
		student string
		ratio   float64
	}
	var matches []match
	for _, student := range gd.Metadata.StudentNames {
		cand := strings.Split(strings.ToLower(student), "")
		ratio := difflib.NewMatcher(target, cand).Ratio()
		if ratio >= minSuggestionRatio {
			matches = append(matches, match{student, ratio})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ratio > matches[j].ratio })

	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, m.student)
	}
	return suggestions
}
