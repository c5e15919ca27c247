package regex

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/magnetde/onig/syntax"
)

func mustCompile(t *testing.T, pattern string, opts syntax.Option, syn *syntax.Syntax) *program {
	t.Helper()

	p, err := Regexp2Engine{}.Compile(pattern, opts, syn, syntax.UTF8)
	if err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}

	return p.(*program)
}

func TestParseErrors(t *testing.T) {
	noMultiplex := syntax.Ruby()
	noMultiplex.Behavior = noMultiplex.Behavior.Without(syntax.BehaviorAllowMultiplexDefinitionName)

	tests := []struct {
		pattern string
		syn     *syntax.Syntax
		code    int
		pos     int
	}{
		{`(`, nil, ErrEndPatternWithUnmatched, 1},
		{`)`, nil, ErrUnmatchedCloseParen, 0},
		{`a{2,1}`, nil, ErrUpperSmallerThanLower, 1},
		{`a{100001}`, nil, ErrTooBigNumberForRepeatRange, 1},
		{`[b-a]`, nil, ErrEmptyRangeInCharClass, 1},
		{`\p{foo}`, nil, ErrInvalidCharPropertyName, 0},
		{`(?<=a+)`, nil, ErrInvalidLookBehind, 0},
		{`(?<n>a)(?<n>b)`, noMultiplex, ErrMultiplexDefinedName, 10},
		{`\k<x>`, nil, ErrUndefinedNameReference, 0},
		{`(?<n>a)|(?<n>b)\g<n>`, nil, ErrMultiplexDefinitionNameCall, 15},
		{`(?<a>\g<a>)`, nil, ErrNeverEndingRecursion, 5},
		{`(?<a>a\g<a>)`, nil, ErrNeverEndingRecursion, 6},
		{`\g<2>(a)`, nil, ErrUndefinedGroupReference, 0},
		{`(?<n>a)\1`, nil, ErrNumberedBackrefNotAllowed, 7},
		{`\1`, nil, ErrInvalidBackref, 0},
		{`(?z)`, nil, ErrUndefinedGroupOption, 2},
		{`[[:foo:]]`, nil, ErrInvalidPosixBracketType, 1},
		{`*a`, nil, ErrTargetOfRepeatNotSpec, 0},
		{`^*`, nil, ErrTargetOfRepeatInvalid, 1},
		{`\x{110000}`, nil, ErrTooBigWideCharValue, 0},
		{`\x{}`, nil, ErrInvalidCodePointValue, 0},
		{`\xff`, nil, ErrTooShortMultiByteString, 0},
		{`\`, nil, ErrEndPatternAtEscape, 0},
		{`[a`, nil, ErrPrematureEndOfCharClass, 0},
		{`[]`, nil, ErrEmptyCharClass, 0},
		{`(?<>a)`, nil, ErrEmptyGroupName, 3},
		{`(?<1a>x)`, nil, ErrInvalidGroupName, 3},
		{`(?<a-b>x)`, nil, ErrInvalidCharInGroupName, 3},
		{`\c`, nil, ErrEndPatternAtControl, 0},
		{`\M-`, nil, ErrEndPatternAtMeta, 0},
		{`\Mx`, nil, ErrMetaCodeSyntax, 0},
		{strings.Repeat("(", maxParseDepth+1), nil, ErrParseDepthLimitOver, maxParseDepth},
		{`a\{1`, syntax.PosixBasic(), ErrEndPatternAtLeftBrace, 1},
	}

	for _, test := range tests {
		syn := test.syn
		if syn == nil {
			syn = syntax.Ruby()
		}

		_, err := Regexp2Engine{}.Compile(test.pattern, syn.Options, syn, syntax.UTF8)

		var e *Error
		if !errors.As(err, &e) {
			t.Errorf("%q: expected an engine error, got %v", test.pattern, err)
			continue
		}

		if e.Code != test.code || e.Pos != test.pos {
			t.Errorf("%q: expected code %d at %d, got %d at %d (%v)", test.pattern, test.code, test.pos, e.Code, e.Pos, e)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	_, err := Regexp2Engine{}.Compile(`\p{foo}`, 0, syntax.Ruby(), syntax.UTF8)
	if err == nil || err.Error() != "invalid character property name {foo}" {
		t.Fatalf("unexpected error %v", err)
	}

	if !errors.Is(err, &Error{Code: ErrInvalidCharPropertyName}) {
		t.Fatal("errors.Is does not compare the error code")
	}

	if msg := ErrorMessage(ErrUndefinedNameReference, "x"); msg != "undefined name <x> reference" {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := ErrorMessage(1234, ""); msg != "undefined error code 1234" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestDialectsAccept(t *testing.T) {
	tests := []struct {
		pattern string
		syn     *syntax.Syntax
		groups  int
	}{
		{`\(a\)\{2\}`, syntax.PosixBasic(), 2},
		{`(a)`, syntax.PosixBasic(), 1},
		{`(a)|b`, syntax.PosixExtended(), 2},
		{`\(a\|b\)`, syntax.Emacs(), 2},
		{`[b-a]`, syntax.Emacs(), 1},
		{`(a)(?<n>b)`, syntax.Ruby(), 2},
		{`(a)(?<n>b)`, syntax.PerlNG(), 2},
		{`(a)(b)`, syntax.Perl(), 3},
		{`a{,2}`, syntax.Ruby(), 1},
		{`a{`, syntax.Ruby(), 1},
		{`\Q(a\E+`, syntax.Oniguruma(), 1},
		{`(?@a)+`, syntax.Oniguruma(), 2},
		{`(?<=a|bc)`, syntax.Ruby(), 1},
		{`(a)(?i)b|c`, syntax.Ruby(), 2},
		{`*a`, syntax.PosixBasic(), 1},
		{`a|*b`, syntax.Emacs(), 1},
		{`a(b`, syntax.ASIS(), 1},
	}

	for _, test := range tests {
		p := mustCompile(t, test.pattern, test.syn.Options, test.syn)
		if n := p.NumGroups(); n != test.groups {
			t.Errorf("%q: expected %d groups, got %d", test.pattern, test.groups, n)
		}
	}
}

func TestCapturePolicy(t *testing.T) {
	tests := []struct {
		opts  syntax.Option
		names map[string][]int
		num   int
	}{
		{0, map[string][]int{"n": {1}}, 2},
		{syntax.OptionCaptureGroup, map[string][]int{"n": {2}}, 3},
		{syntax.OptionDontCaptureGroup, map[string][]int{"n": {1}}, 2},
	}

	for _, test := range tests {
		p := mustCompile(t, `(a)(?<n>b)`, test.opts, syntax.Ruby())

		if n := p.NumGroups(); n != test.num {
			t.Errorf("%s: expected %d groups, got %d", test.opts, test.num, n)
		}
		if diff := cmp.Diff(test.names, p.Names()); diff != "" {
			t.Errorf("%s: unexpected names (-want +got):\n%s", test.opts, diff)
		}
	}

	p := mustCompile(t, `(?<a>x)(?<b>y)(?<a>z)`, 0, syntax.Ruby())
	if diff := cmp.Diff(map[string][]int{"a": {1, 3}, "b": {2}}, p.Names()); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestSource(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{`abc`, `\x61\x62\x63`},
		{`a|b`, `(?:\x61|\x62)`},
		{`ab|ac`, `\x61(?:\x62|\x63)`},
		{`(a)`, `(?<g1>\x61)`},
		{`a*?`, `(?:\x61)*?`},
		{`a++`, `(?>(?:\x61)+)`},
		{`a{2}?`, `(?:(?:\x61){2})?`},
		{`a{2,}`, `(?:\x61){2,}`},
		{`[a-c]`, `[\x61-\x63]`},
		{`[ab]`, `[\x61\x62]`},
		{`é`, `\xe9`},
		{`\x{20ac}`, `\u20ac`},
		{`\x{1F600}`, "\U0001F600"},
		{`.`, `[^\n]`},
		{`\A\z\G`, `\A\z\G`},
		{`$`, `(?=\n|\z)`},
		{`(?<n>a)\k<n>`, `(?<g1>\x61)\k<g1>`},
		{`(?i:a)`, `(?:[\x41\x61])`},
	}

	for _, test := range tests {
		p := mustCompile(t, test.pattern, 0, syntax.Ruby())
		if got := p.Source(); got != test.want {
			t.Errorf("%q: expected %s, got %s", test.pattern, test.want, got)
		}
	}
}

func TestWarnings(t *testing.T) {
	p := mustCompile(t, `a**[a-]`, 0, syntax.Ruby())

	want := []string{"redundant nested repeat operator"}
	if diff := cmp.Diff(want, p.Warnings()); diff != "" {
		t.Errorf("unexpected warnings (-want +got):\n%s", diff)
	}

	p = mustCompile(t, `[\w-a]`, 0, syntax.Ruby())

	want = []string{"character class has '-' without escape"}
	if diff := cmp.Diff(want, p.Warnings()); diff != "" {
		t.Errorf("unexpected warnings (-want +got):\n%s", diff)
	}
}

func TestDump(t *testing.T) {
	p := mustCompile(t, `a(b)`, 0, syntax.Ruby())

	want := "LITERAL 97\nSUBPATTERN 1\n  LITERAL 98"
	if got := p.Dump(); got != want {
		t.Errorf("unexpected dump:\n%s", got)
	}
}

func TestHistoryGroups(t *testing.T) {
	tests := []struct {
		pattern string
		syn     *syntax.Syntax
		history []int
	}{
		{`(a)(b)`, syntax.Ruby(), nil},
		{`(?<x>a)\g<x>`, syntax.Ruby(), []int{1}},
		{`(a)(?@b)`, syntax.Oniguruma(), []int{2}},
		{`a\g<0>?`, syntax.Ruby(), nil},
	}

	for _, test := range tests {
		p := mustCompile(t, test.pattern, 0, test.syn)
		if diff := cmp.Diff(test.history, p.HistoryGroups()); diff != "" {
			t.Errorf("%q: unexpected history groups (-want +got):\n%s", test.pattern, diff)
		}
	}
}
