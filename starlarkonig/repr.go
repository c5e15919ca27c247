package starlarkonig

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Digits of hex strings.
var hexDigits = "0123456789abcdef"

// repr returns the Starlark representation of a string or bytes value.
// Bytes values get a "b" prefix and all non-ASCII bytes are escaped.
func repr(s string, isString bool) string {
	var b strings.Builder
	b.Grow(len(s) + 3)

	quote := byte('"')
	if strings.IndexByte(s, '"') >= 0 && strings.IndexByte(s, '\'') < 0 {
		quote = '\''
	}

	if !isString {
		b.WriteByte('b')
	}
	b.WriteByte(quote)

	var ch rune
	for size := 0; len(s) > 0; s = s[size:] {
		if isString {
			ch, size = utf8.DecodeRuneInString(s)
		} else {
			ch, size = rune(s[0]), 1
		}

		switch {
		case ch == utf8.RuneError && size == 1:
			hexEscape(&b, rune(s[0]))
		case ch == rune(quote) || ch == '\\':
			b.WriteByte('\\')
			b.WriteByte(byte(ch))
		case ch == '\t':
			b.WriteString(`\t`)
		case ch == '\n':
			b.WriteString(`\n`)
		case ch == '\r':
			b.WriteString(`\r`)
		case ch < ' ' || ch == unicode.MaxASCII:
			hexEscape(&b, ch)
		case !unicode.IsPrint(ch) || (!isString && ch > unicode.MaxASCII):
			hexEscape(&b, ch)
		default:
			b.WriteRune(ch)
		}
	}

	b.WriteByte(quote)

	return b.String()
}

// hexEscape writes the character as a hex escape sequence.
func hexEscape(b *strings.Builder, ch rune) {
	var n int

	switch {
	case ch <= 0xff:
		b.WriteString(`\x`)
		n = 2
	case ch <= 0xffff:
		b.WriteString(`\u`)
		n = 4
	default:
		b.WriteString(`\U`)
		n = 8
	}

	for i := n - 1; i >= 0; i-- {
		b.WriteByte(hexDigits[(ch>>(4*i))&0xf])
	}
}
