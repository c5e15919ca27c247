package syntax

import "unicode/utf8"

// Encoding identifies how the bytes of a pattern or subject are interpreted.
type Encoding uint8

// Supported encodings. The zero value is no valid encoding.
const (
	UTF8  Encoding = iota + 1 // UTF-8; invalid bytes are single characters
	ASCII                     // every byte is a character, classes are ASCII-only
)

// String returns the name of the encoding.
func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case ASCII:
		return "ASCII"
	default:
		return "invalid encoding"
	}
}

// Validate returns an error, if the encoding is unknown.
func (e Encoding) Validate() error {
	if e != UTF8 && e != ASCII {
		return configErrorf("unknown encoding %d", uint8(e))
	}
	return nil
}

// IsBoundary reports whether the byte offset i is at a character boundary of b.
// The offsets 0 and len(b) are always boundaries.
// Under UTF-8, each byte of an invalid sequence is a character of its own.
func (e Encoding) IsBoundary(b []byte, i int) bool {
	if i < 0 || i > len(b) {
		return false
	}
	if e != UTF8 || i == 0 || i == len(b) || utf8.RuneStart(b[i]) {
		return true
	}

	// b[i] is a continuation byte; it is inside a character only,
	// if a valid sequence starting at one of the previous three bytes covers it.
	for p := i - 1; p >= 0 && p >= i-3; p-- {
		if !utf8.RuneStart(b[p]) {
			continue
		}

		r, size := utf8.DecodeRune(b[p:])
		if r == utf8.RuneError && size <= 1 {
			return true
		}
		return p+size <= i
	}

	return true
}
