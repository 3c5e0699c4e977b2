package filter

import "strings"

// Matcher performs case-insensitive substring matching of a free-text term
// against a list of item text fields. The term is trimmed and lower-cased
// once; missing fields are passed as empty strings and simply do not match.
type Matcher struct {
	term string
}

// NewMatcher creates a Matcher for the given raw term
func NewMatcher(term string) *Matcher {
	return &Matcher{term: Normalize(term)}
}

// Normalize trims surrounding whitespace and lower-cases a filter term
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Active reports whether the matcher has a non-empty term
func (m *Matcher) Active() bool {
	return m.term != ""
}

// Term returns the normalized term
func (m *Matcher) Term() string {
	return m.term
}

// Match reports whether the term is a substring of any of the fields.
// An empty term matches everything.
func (m *Matcher) Match(fields []string) bool {
	if m.term == "" {
		return true
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(strings.ToLower(f), m.term) {
			return true
		}
	}
	return false
}
