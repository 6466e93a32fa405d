package diff

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var punctReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
)

// Normalize prepares a string for comparison: Unicode NFKC, curly quotes
// and dashes mapped to ASCII, whitespace runs collapsed, trimmed. Strings
// equal after Normalize differ only cosmetically.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = punctReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// equalNormalized reports whether two strings are the same after Normalize
func equalNormalized(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
