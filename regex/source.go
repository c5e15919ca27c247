package regex

import (
	"strings"
	"unicode/utf8"
)

// source represents a reader to read the pattern string.
// The attributes may only be changed by using its functions.
type source struct {
	orig  string // original string
	cur   string // current cursor
	ascii bool   // every byte is a character
}

// init initializes the reader.
func (s *source) init(src string, ascii bool) {
	s.orig = src
	s.cur = src
	s.ascii = ascii
}

// tell returns the current read position.
func (s *source) tell() int {
	return len(s.orig) - len(s.cur)
}

// seek sets the current read position.
func (s *source) seek(pos int) {
	s.cur = s.orig[pos:]
}

// eof returns true, if the end of the pattern is reached.
func (s *source) eof() bool {
	return len(s.cur) == 0
}

// decode returns the next character and its size in bytes.
func (s *source) decode() (rune, int) {
	if s.ascii {
		return rune(s.cur[0]), 1
	}
	return utf8.DecodeRuneInString(s.cur)
}

// read reads the next character.
// If the current read position is at the end of the string, then the second return value is false.
// After reading, the current read position is increased.
func (s *source) read() (rune, bool) {
	if len(s.cur) == 0 {
		return 0, false
	}

	c, size := s.decode()
	s.cur = s.cur[size:]

	return c, true
}

// peek determines the next character.
// This function is equivalent with `read()`, except, that the current read position is not increased.
func (s *source) peek() (rune, bool) {
	if len(s.cur) == 0 {
		return 0, false
	}

	c, _ := s.decode()
	return c, true
}

// peekAt returns the byte at offset i from the current read position, or 0 if it does not exist.
func (s *source) peekAt(i int) byte {
	if i >= len(s.cur) {
		return 0
	}
	return s.cur[i]
}

// match returns, whether the next character matches the given character.
// If it does, the read position is then moved to the next character.
func (s *source) match(c rune) bool {
	if len(s.cur) == 0 {
		return false
	}

	ch, size := s.decode()
	if ch == c {
		s.cur = s.cur[size:]
		return true
	}

	return false
}

// matchString returns, whether the string at the current position starts with `prefix`.
// If it does, the read position is moved behind the prefix.
func (s *source) matchString(prefix string) bool {
	if strings.HasPrefix(s.cur, prefix) {
		s.cur = s.cur[len(prefix):]
		return true
	}
	return false
}

// hasPrefix returns, whether the string at the current position starts with `prefix`.
func (s *source) hasPrefix(prefix string) bool {
	return strings.HasPrefix(s.cur, prefix)
}

// rest returns the unread part of the pattern.
func (s *source) rest() string {
	return s.cur
}

// skipUntil skips all characters, until the given string is found.
// The read position is then moved behind the string and the skipped characters are returned.
// If the string is not found, the read position is moved to the end of the pattern.
func (s *source) skipUntil(sep string) (string, bool) {
	pre, rest, ok := strings.Cut(s.cur, sep)
	s.cur = rest
	return pre, ok
}

// nextInt returns the decimal integer at the current read position.
// If no integer exists, the second return value is false.
// Values above `limit` are reported as `limit+1`.
// The read position is then moved to the position of the first character,
// that is no decimal digit.
func (s *source) nextInt(limit int) (int, bool) {
	i := 0
	found := false

	for len(s.cur) > 0 && isDigit(rune(s.cur[0])) {
		if i <= limit {
			i = 10*i + toDigit(rune(s.cur[0]))
		}

		found = true
		s.cur = s.cur[1:]
	}

	if i > limit {
		i = limit + 1
	}

	return i, found
}

// nextHex returns the hexadecimal string at the current read position, with a maximum length of n.
// The read position is then moved to the position of the first character, that is no hexadecimal digit.
func (s *source) nextHex(n int) string {
	return s.nextFunc(n, isHexDigit)
}

// nextOct returns the octal string at the current read position, with a maximum length of n.
// The read position is then moved to the position of the first character, that is no octal digit.
func (s *source) nextOct(n int) string {
	return s.nextFunc(n, func(r byte) bool {
		return '0' <= r && r <= '7'
	})
}

// nextFunc returns the string at the current read position, where each byte matches the function `fn`.
// The string has a maximum length of n bytes.
func (s *source) nextFunc(n int, fn func(r byte) bool) string {
	e := len(s.cur)
	for i := 0; i < len(s.cur); i++ {
		if i >= n || !fn(s.cur[i]) {
			e = i
			break
		}
	}

	res := s.cur[:e]
	s.cur = s.cur[e:]

	return res
}

// errorp returns a new error with the given code at the given position.
func (s *source) errorp(code, pos int) *Error {
	return newError(code, pos, "")
}

// errorh is equivalent to errorp for the current position.
func (s *source) errorh(code int) *Error {
	return s.errorp(code, s.tell())
}

// errorn returns a new error at the given position, whose message contains a name.
func (s *source) errorn(code, pos int, name string) *Error {
	return newError(code, pos, name)
}

// clen returns the number of bytes of the given character.
// This function can be used, to calculate the offset for an error.
func (s *source) clen(c rune) int {
	if s.ascii {
		return 1
	}

	l := utf8.RuneLen(c)
	if l < 0 {
		l = 1
	}

	return l
}
