package meta

import "strings"

const ellipsis = "…"

// Truncate collapses whitespace and shortens s to at most limit runes,
// preferring a word boundary and ending with an ellipsis. A limit <= 0
// disables truncation.
func Truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}
	cut := string(r[:limit-1])
	if r[limit-1] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:-") + ellipsis
}
