package table

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// fuzzyThreshold is the minimum levenshtein similarity for a header to be
// offered as a suggestion.
const fuzzyThreshold = 0.5

// Headers is the ordered set of column names of a Dataset. Position is the
// column index. Lookups assume names are unique; when they are not, the
// first match wins.
type Headers struct {
	names []string
}

// NewHeaders builds a header index, trimming surrounding whitespace from
// each name.
func NewHeaders(names ...string) *Headers {
	trimmed := make([]string, len(names))
	for i, n := range names {
		trimmed[i] = strings.TrimSpace(n)
	}
	return &Headers{names: trimmed}
}

// Len is the number of headers, which is also the column count.
func (h *Headers) Len() int { return len(h.names) }

// Name returns the header at column index i.
func (h *Headers) Name(i int) string { return h.names[i] }

// Names returns a copy of the header names in column order.
func (h *Headers) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Find returns the index of the column exactly matching s.
func (h *Headers) Find(s string) (int, bool) {
	return h.findMatch(func(x string) bool { return x == s })
}

// FindIgnoreCase returns the index of the column matching s, ignoring case.
func (h *Headers) FindIgnoreCase(s string) (int, bool) {
	return h.findMatch(func(x string) bool { return strings.EqualFold(x, s) })
}

// FindIgnoreCaseAndWS returns the index of the column matching s, ignoring
// case and any whitespace. This is the lookup used to bind formula
// identifiers, which cannot themselves contain spaces.
func (h *Headers) FindIgnoreCaseAndWS(s string) (int, bool) {
	return h.findMatch(func(x string) bool { return eqIgnoreCaseAndWS(x, s) })
}

func (h *Headers) findMatch(pred func(string) bool) (int, bool) {
	for i, n := range h.names {
		if pred(n) {
			return i, true
		}
	}
	return 0, false
}

// FuzzyMatch returns header names similar to s, best match first. The
// returned names have whitespace stripped so they can be pasted back into
// a formula or target argument verbatim.
func (h *Headers) FuzzyMatch(s string) []string {
	type scored struct {
		name  string
		score float64
	}

	query := stripWS(strings.ToLower(s))
	var hits []scored
	for _, n := range h.names {
		score := levenshtein.Similarity(stripWS(strings.ToLower(n)), query, nil)
		if score >= fuzzyThreshold {
			hits = append(hits, scored{name: stripWS(n), score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]string, len(hits))
	for i, hit := range hits {
		out[i] = hit.name
	}
	return out
}

// SuggestHelp renders the diagnostic help line attached to column-not-found
// errors.
func (h *Headers) SuggestHelp(s string) string {
	matches := h.FuzzyMatch(s)
	if len(matches) == 0 {
		return "help - no columns match, use `head -n1 <file>` to inspect the headers"
	}
	return "help - these headers are similar: " + strings.Join(matches, " ")
}

func eqIgnoreCaseAndWS(a, b string) bool {
	return strings.EqualFold(stripWS(a), stripWS(b))
}

func stripWS(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
