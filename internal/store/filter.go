package store

import "strings"

// FilterTracks returns the titles containing query, case-insensitively,
// in catalog order. An empty query matches nothing: the track list is only
// revealed through search.
func FilterTracks(catalog []string, query string) []string {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var out []string
	for _, title := range catalog {
		if strings.Contains(strings.ToLower(title), q) {
			out = append(out, title)
		}
	}
	return out
}

// ClampCaption truncates s to MaxCaption runes.
func ClampCaption(s string) string {
	if len(s) <= MaxCaption {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxCaption {
			return s[:i]
		}
		n++
	}
	return s
}
