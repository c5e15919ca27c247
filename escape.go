package onig

import (
	"strings"
	"unicode/utf8"

	"github.com/magnetde/onig/syntax"
)

// metaChars are the bytes, that QuoteMeta escapes under the default dialect.
// Whitespace and '#' are included for the extended mode.
const metaChars = "()[]{}?*+-|^$\\.&~# \t\n\r\v\f"

// escapedOperators lists bytes, that form an operator when they follow a backslash.
// Under a dialect with such an operator, the byte is literal without the backslash.
var escapedOperators = []struct {
	op    syntax.Operator
	chars string
}{
	{syntax.OpEscLparenSubexp, "()"},
	{syntax.OpEscBraceInterval, "{}"},
	{syntax.OpEscVbarAlt, "|"},
	{syntax.OpEscPlusOneInf, "+"},
	{syntax.OpEscQmarkZeroOne, "?"},
}

// metaSet marks the ASCII bytes, that must be escaped to be matched literally.
type metaSet [utf8.RuneSelf]bool

// newMetaSet returns the bytes to escape under the dialect.
func newMetaSet(syn *syntax.Syntax) *metaSet {
	var m metaSet

	// a backslash has no meaning, so the text is its own pattern
	if syn.Op.Has(syntax.Op2IneffectiveEscape) {
		return &m
	}

	for i := 0; i < len(metaChars); i++ {
		m[metaChars[i]] = true
	}

	for _, e := range escapedOperators {
		if syn.Op.Has(e.op) {
			for i := 0; i < len(e.chars); i++ {
				m[e.chars[i]] = false
			}
		}
	}

	return &m
}

func (m *metaSet) has(b byte) bool {
	return b < utf8.RuneSelf && m[b]
}

// quote escapes every byte of the set.
func (m *metaSet) quote(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool {
		return r < utf8.RuneSelf && m[r]
	})
	if i < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteString(s[:i])

	// all metacharacters are ASCII, so a byte loop is correct
	for ; i < len(s); i++ {
		if m.has(s[i]) {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}

	return b.String()
}

var defaultMetaSet = newMetaSet(syntax.Default())

// QuoteMeta returns a pattern, that matches the text s literally under the Ruby dialect.
// The result also holds under Perl, Java and Oniguruma and in extended mode.
// Under dialects, where an escaped character is an operator, for example \( in POSIX basic,
// Emacs and Grep, QuoteMetaSyntax must be used instead.
func QuoteMeta(s string) string {
	return defaultMetaSet.quote(s)
}

// QuoteMetaSyntax returns a pattern, that matches the text s literally under the dialect.
// A nil dialect is the default dialect.
func QuoteMetaSyntax(s string, syn *syntax.Syntax) string {
	if syn == nil {
		return QuoteMeta(s)
	}

	return newMetaSet(syn).quote(s)
}
