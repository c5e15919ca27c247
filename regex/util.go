package regex

import (
	"unicode"
	"unicode/utf8"
)

// isDigit checks if the given character is a decimal digit.
func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// isOctDigit checks if the given character is an octal digit.
func isOctDigit(c rune) bool {
	return '0' <= c && c <= '7'
}

// isHexDigit checks if the given byte is a hexadecimal digit.
func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// toDigit returns the corresponding integer value of a character.
// The character must be a digit in the set "0123456789".
func toDigit(c rune) int {
	return int(c) - '0'
}

// inRange checks, if c is in the range [lo, hi].
func inRange(lo, hi, c rune) bool {
	return lo <= c && c <= hi
}

// isWhitespace checks if a given character is skipped in the extended pattern form.
func isWhitespace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// isNameChar checks, if the character may appear in a group name.
func isNameChar(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.Is(unicode.M, c)
}

// isASCIIString checks, if the string only contains ASCII characters.
func isASCIIString(s []byte) bool {
	for _, c := range s {
		if c > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// utf8SeqLen returns the length of the UTF-8 sequence started by the lead byte b,
// or 0 if b is no lead byte.
func utf8SeqLen(b byte) int {
	switch {
	case b < utf8.RuneSelf:
		return 1
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	default:
		return 0
	}
}

// growSlice increases the slice's size, if necessary, to guarantee a size
// of n. If the previous capacity was less than n, the slice is filled with
// elements with a value of zero. If n is negative or too large to allocate
// the memory, growSlice panics. The resulting slice is filled with `fill`.
// See also slices.Grow.
func growSlice[S ~[]E, E any](s S, n int, fill E) S {
	if n < 0 {
		panic("cannot be negative")
	}
	if cap(s) < n {
		s = append(s[:cap(s)], make([]E, n-cap(s))...)
	}

	s = s[:n]
	for i := range s {
		s[i] = fill
	}
	return s
}
