package onig

import (
	"strconv"
	"unicode/utf8"

	"github.com/magnetde/onig/syntax"
)

// quote returns s as a Go string literal.
func quote(s string) string {
	if strconv.CanBackquote(s) {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

// charLen returns the length of the character at position i in bytes.
// At the end of the subject, 1 is returned.
func charLen(enc syntax.Encoding, b []byte, i int) int {
	if i >= len(b) || enc != syntax.UTF8 {
		return 1
	}

	_, size := utf8.DecodeRune(b[i:])
	return size
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}
