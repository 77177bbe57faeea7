// Package resolve provides fuzzy matching of group names. Central
// identifies groups by name, so a typo in a task file or on the command
// line would otherwise surface as an opaque 404 from the API.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Match is a fuzzy match result with score.
type Match struct {
	Name  string
	Score int
}

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrEmptyNames = errors.New("no group names to match against")
)

// maxCandidates caps the candidate list reported on ambiguity.
const maxCandidates = 5

// AmbiguousError indicates multiple group names matched equally well.
// Matches are sorted best-first and capped at maxCandidates.
type AmbiguousError struct {
	Query   string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ambiguous match for %q", e.Query)
	if len(e.Matches) > 0 {
		b.WriteString(", candidates:")
		for _, m := range e.Matches {
			_, _ = fmt.Fprintf(&b, "\n  %s", m.Name)
		}
	}
	return b.String()
}

type namesLower []string

func (s namesLower) String(i int) string { return strings.ToLower(s[i]) }
func (s namesLower) Len() int            { return len(s) }

// GroupName finds the best matching group name.
//
// Behavior:
//   - Empty query or empty names are errors.
//   - An exact case-insensitive match always wins over fuzzy matches.
//   - Fuzzy matching is case-insensitive.
//   - If the top two fuzzy results tie on score, returns *AmbiguousError.
func GroupName(query string, names []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if len(names) == 0 {
		return "", ErrEmptyNames
	}

	for _, name := range names {
		if strings.EqualFold(name, query) {
			return name, nil
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), namesLower(names))
	if len(results) == 0 {
		return "", fmt.Errorf("no group matching %q", query)
	}

	if len(results) > 1 && results[0].Score == results[1].Score {
		limit := len(results)
		if limit > maxCandidates {
			limit = maxCandidates
		}
		matches := make([]Match, 0, limit)
		for _, r := range results[:limit] {
			matches = append(matches, Match{Name: names[r.Index], Score: r.Score})
		}
		return "", &AmbiguousError{Query: query, Matches: matches}
	}

	return names[results[0].Index], nil
}
