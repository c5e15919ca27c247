package syntax

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuiltinDialects(t *testing.T) {
	names := Builtins()

	want := []string{
		"asis", "emacs", "gnu_regex", "grep", "java", "oniguruma",
		"perl", "perl_ng", "posix_basic", "posix_extended", "ruby",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("builtin names mismatch (-want +got):\n%s", diff)
	}

	for _, name := range names {
		s, ok := Builtin(name)
		if !ok {
			t.Fatalf("builtin %q not found", name)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("builtin %q is invalid: %v", name, err)
		}
	}
}

func TestBuiltinLookup(t *testing.T) {
	s, ok := Builtin("POSIX-Basic")
	if !ok {
		t.Fatal("lookup is not case insensitive")
	}
	if *s != *PosixBasic() {
		t.Fatal("lookup returned the wrong dialect")
	}

	s.Op = 0
	if PosixBasic().Op == 0 {
		t.Fatal("modifying a lookup result changed the builtin dialect")
	}

	if _, ok := Builtin("python"); ok {
		t.Fatal("unknown dialect was found")
	}
}

func TestImplicitSingleline(t *testing.T) {
	tests := []struct {
		syn  *Syntax
		want bool
	}{
		{PosixBasic(), true},
		{PosixExtended(), true},
		{Perl(), true},
		{PerlNG(), true},
		{Java(), true},
		{Ruby(), false},
		{Oniguruma(), false},
		{Emacs(), false},
	}

	for _, test := range tests {
		if got := test.syn.Options.Has(OptionSingleline); got != test.want {
			t.Errorf("%v: singleline is %v, want %v", test.syn.Op, got, test.want)
		}

		opts := Options{Compile: OptionNegateSingleline}
		if opts.Effective(test.syn).Has(OptionSingleline) {
			t.Errorf("%v: NEGATE_SINGLELINE did not clear singleline", test.syn.Op)
		}
	}
}

func TestDefaultIsRuby(t *testing.T) {
	if *Default() != *Ruby() {
		t.Fatal("default dialect is not ruby")
	}
	if !Oniguruma().Op.Has(Ruby().Op | Op2EscCapitalQQuote) {
		t.Fatal("oniguruma dialect does not extend ruby")
	}
}

func TestBuiltinsAreCopies(t *testing.T) {
	s := Ruby()
	s.Op = 0
	s.Behavior = 0

	if Ruby().Op == 0 || Default().Op == 0 {
		t.Fatal("the builtin dialect was modified through a copy")
	}

	b, _ := Builtin("ruby")
	b.Op = 0
	if *Ruby() != *Default() {
		t.Fatal("the builtin dialect was modified through a named copy")
	}
}

func TestCustomDialect(t *testing.T) {
	s := Perl()
	s.Op = s.Op.With(Op2QmarkLtNamedGroup).Without(OpEscOctal3)
	s.Behavior = s.Behavior.With(BehaviorAllowMultiplexDefinitionName)

	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if !s.Op.Has(Op2QmarkLtNamedGroup) || s.Op.Has(OpEscOctal3) {
		t.Fatalf("unexpected operators %v", s.Op)
	}
	if Perl().Op.Has(Op2QmarkLtNamedGroup) {
		t.Fatal("the builtin dialect was modified")
	}

	bad := &Syntax{Op: 1}
	var cerr *ConfigError
	if err := bad.Validate(); !errors.As(err, &cerr) {
		t.Fatalf("expected a config error for an unknown operator bit, got %v", err)
	}

	bad = &Syntax{Behavior: 1 << 15}
	if err := bad.Validate(); !errors.As(err, &cerr) {
		t.Fatalf("expected a config error for an unknown behavior bit, got %v", err)
	}

	bad = &Syntax{Options: OptionNotBOL}
	if err := bad.Validate(); !errors.As(err, &cerr) {
		t.Fatalf("expected a config error for a search option in a dialect, got %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		opts Options
		ok   bool
	}{
		{Options{}, true},
		{Options{Compile: OptionIgnoreCase | OptionExtend, Search: OptionNotBOL}, true},
		{Options{Search: OptionCaptureGroup}, true},
		{Options{Search: OptionCaptureGroup | OptionDontCaptureGroup}, false},
		{Options{Compile: OptionNotEOL}, false},
		{Options{Search: OptionIgnoreCase}, false},
		{Options{Compile: 1 << 20}, false},
	}

	for _, test := range tests {
		err := test.opts.Validate()
		if test.ok && err != nil {
			t.Errorf("%+v: unexpected error %v", test.opts, err)
		}
		if !test.ok {
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Errorf("%+v: expected a config error, got %v", test.opts, err)
			}
		}
	}
}

func TestOptionNames(t *testing.T) {
	o := OptionIgnoreCase | OptionNotEOL
	if got := o.String(); got != "IGNORECASE|NOTEOL" {
		t.Fatalf("got %q", got)
	}
	if got := OptionNone.String(); got != "NONE" {
		t.Fatalf("got %q", got)
	}

	v, ok := OptionByName("find_not_empty")
	if !ok || v != OptionFindNotEmpty {
		t.Fatalf("lookup failed: %v %v", v, ok)
	}

	if got := (OpDotAnychar | Op2EscHXDigit).String(); got != "DOT_ANYCHAR|ESC_H_XDIGIT" {
		t.Fatalf("got %q", got)
	}
	if got := BehaviorContextIndepAnchors.String(); got != "CONTEXT_INDEP_ANCHORS" {
		t.Fatalf("got %q", got)
	}
}

func TestOperatorWords(t *testing.T) {
	if OpDotAnychar.Op() != 2 || OpDotAnychar.Op2() != 0 {
		t.Fatal("DOT_ANYCHAR is not bit 1 of the first word")
	}
	if Op2EscCapitalQQuote.Op() != 0 || Op2EscCapitalQQuote.Op2() != 1 {
		t.Fatal("ESC_CAPITAL_Q_QUOTE is not bit 0 of the second word")
	}
	if Op2EscHXDigit.Op2() != 1<<19 || Op2IneffectiveEscape.Op2() != 1<<20 {
		t.Fatal("wrong bits of the second word")
	}
}

func TestEncodingBoundary(t *testing.T) {
	b := []byte("aä\xffb€")

	var got []int
	for i := 0; i <= len(b); i++ {
		if UTF8.IsBoundary(b, i) {
			got = append(got, i)
		}
	}

	want := []int{0, 1, 3, 4, 5, 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("boundary mismatch (-want +got):\n%s", diff)
	}

	for i := 0; i <= len(b); i++ {
		if !ASCII.IsBoundary(b, i) {
			t.Fatalf("offset %d is no ascii boundary", i)
		}
	}

	if err := Encoding(0).Validate(); err == nil {
		t.Fatal("zero encoding is valid")
	}
}
