package world

import (
	"strings"

	"golang.org/x/text/cases"
)

// StripMarkup removes display markup from a name: {{shader|text}} wrappers
// keep only their text, and &X / ^X color codes are dropped. A doubled && or
// ^^ is an escaped literal.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "{}&^") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i+2:], '|')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			depth++
			i += 2 + end
		case c == '}' && depth > 0 && i+1 < len(s) && s[i+1] == '}':
			depth--
			i++
		case (c == '&' || c == '^') && i+1 < len(s):
			if s[i+1] == c {
				b.WriteByte(c)
			}
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeName reduces a blueprint or display name to the form used for
// identity comparisons. Casers keep state, so each call folds with its own.
func NormalizeName(s string) string {
	return cases.Fold().String(strings.TrimSpace(StripMarkup(s)))
}

// SameName reports whether two names are equal apart from markup and case.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
