package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matcher tests record fields against a case-folded search query.
// A Matcher is not safe for concurrent use.
type Matcher struct {
	query  string
	folder cases.Caser
}

// NewMatcher prepares a matcher for query. An empty query matches everything.
func NewMatcher(query string) *Matcher {
	folder := cases.Fold()
	return &Matcher{
		query:  folder.String(strings.TrimSpace(query)),
		folder: folder,
	}
}

// Empty returns true if the matcher has no query
func (m *Matcher) Empty() bool {
	return m.query == ""
}

// Match returns true if any field contains the query, ignoring case
func (m *Matcher) Match(fields ...string) bool {
	if m.query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(m.folder.String(f), m.query) {
			return true
		}
	}
	return false
}
