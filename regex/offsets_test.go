package regex

import (
	"testing"
	"unicode/utf8"
)

func TestCharStarts(t *testing.T) {
	// a long subject, so the offsets span several words
	var subject []byte
	for i := 0; i < 100; i++ {
		subject = append(subject, 'a')
		subject = utf8.AppendRune(subject, 'ö')
		subject = utf8.AppendRune(subject, '€')
	}
	subject = append(subject, 0xff)

	in := newInput(subject, false)

	b, i := 0, 0
	for b < len(subject) {
		if got := in.runeIndex(b); got != i {
			t.Fatalf("runeIndex(%d): expected %d, got %d", b, i, got)
		}
		if got := in.byteOffset(i); got != b {
			t.Fatalf("byteOffset(%d): expected %d, got %d", i, b, got)
		}

		_, size := utf8.DecodeRune(subject[b:])
		b += size
		i++
	}

	if in.runeIndex(len(subject)) != len(in.chars) || in.byteOffset(len(in.chars)) != len(subject) {
		t.Error("unexpected mapping of the end")
	}
	if in.chars[len(in.chars)-1] != 0xdcff {
		t.Errorf("unexpected replacement of an invalid byte: %U", in.chars[len(in.chars)-1])
	}
}
