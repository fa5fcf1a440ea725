package title

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize returns the canonical comparison form of an article title.
// The title is case-folded, underscores are replaced with spaces, and
// surrounding whitespace is trimmed.
//
// Design decision: We use golang.org/x/text/cases.Fold rather than
// strings.ToLower because:
//  1. Full Unicode case folding maps forms such as "ß" and "SS" together
//  2. Titles from the content API are not restricted to ASCII
//  3. The Caser is created per call since Casers are not safe for concurrent use
func Normalize(t string) string {
	folded := cases.Fold().String(t)
	return strings.TrimSpace(strings.ReplaceAll(folded, "_", " "))
}

// Equal reports whether two titles name the same article.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Display converts a title as found in a link path into its display form:
// underscores become spaces and surrounding whitespace is trimmed.
// Capitalization is preserved.
func Display(t string) string {
	return strings.TrimSpace(strings.ReplaceAll(t, "_", " "))
}

// Set is a collection of titles compared by their normalized form.
// The zero value is not usable; create one with NewSet.
type Set struct {
	members map[string]string
}

// NewSet creates a Set containing the given titles.
func NewSet(titles ...string) *Set {
	s := &Set{members: make(map[string]string, len(titles))}
	for _, t := range titles {
		s.Add(t)
	}
	return s
}

// Add inserts a title. Blank titles are ignored.
func (s *Set) Add(t string) {
	key := Normalize(t)
	if key == "" {
		return
	}
	if _, ok := s.members[key]; !ok {
		s.members[key] = t
	}
}

// Contains reports whether a title equivalent to t is in the set.
func (s *Set) Contains(t string) bool {
	_, ok := s.members[Normalize(t)]
	return ok
}

// Len returns the number of distinct titles in the set.
func (s *Set) Len() int {
	return len(s.members)
}
