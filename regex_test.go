package onig

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/magnetde/onig/regex"
	"github.com/magnetde/onig/syntax"
)

// countingEngine records the number of compilations.
type countingEngine struct {
	calls int
	prog  *stubProgram
}

func (e *countingEngine) Compile(pattern string, opts syntax.Option, syn *syntax.Syntax, enc syntax.Encoding) (regex.Program, error) {
	e.calls++
	if e.prog == nil {
		return nil, &regex.Error{Code: regex.ErrInvalidArgument, Pos: -1}
	}
	return e.prog, nil
}

// stubProgram is a program with fixed results.
type stubProgram struct {
	numGroups int
	names     map[string][]int
	released  int
	search    func(regs *regex.Registers) (int, error)
}

func (p *stubProgram) NumGroups() int {
	return p.numGroups
}

func (p *stubProgram) Names() map[string][]int {
	return p.names
}

func (p *stubProgram) HistoryGroups() []int {
	return nil
}

func (p *stubProgram) Warnings() []string {
	return nil
}

func (p *stubProgram) Release() {
	p.released++
}

func (p *stubProgram) Match(subject []byte, at int, opts syntax.Option, regs *regex.Registers) (int, error) {
	return -1, nil
}

func (p *stubProgram) Search(subject []byte, start, rangeEnd int, opts syntax.Option, regs *regex.Registers) (int, error) {
	if p.search == nil {
		return -1, nil
	}
	return p.search(regs)
}

func TestConfigErrors(t *testing.T) {
	tests := []Config{
		{Options: syntax.Options{Search: syntax.OptionCaptureGroup | syntax.OptionDontCaptureGroup}},
		{Options: syntax.Options{Compile: syntax.OptionNotBOL}},
		{Options: syntax.Options{Search: syntax.OptionIgnoreCase}},
		{Syntax: &syntax.Syntax{Op: 1 << 63}},
		{Syntax: &syntax.Syntax{Behavior: 1 << 15}},
		{Syntax: &syntax.Syntax{Options: syntax.OptionNotEOL}},
		{Encoding: 7},
		{MatchTimeout: -1},
	}

	for i, cfg := range tests {
		engine := &countingEngine{prog: &stubProgram{numGroups: 1}}
		cfg.Engine = engine

		_, err := CompileWith("a", cfg)

		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("config %d: expected a config error, got %v", i, err)
		}
		if engine.calls != 0 {
			t.Errorf("config %d: expected no engine calls, got %d", i, engine.calls)
		}
	}
}

func TestCompileError(t *testing.T) {
	tests := []struct {
		pattern string
		code    int
		pos     int
		message string
	}{
		{`\p{foo}`, regex.ErrInvalidCharPropertyName, 0, "invalid character property name {foo}"},
		{`(?<=a+)`, regex.ErrInvalidLookBehind, 0, "invalid pattern in look-behind"},
		{`ab)`, regex.ErrUnmatchedCloseParen, 2, "unmatched close parenthesis"},
	}

	for _, test := range tests {
		_, err := Compile(test.pattern)

		var ce *CompileError
		if !errors.As(err, &ce) {
			t.Errorf("%q: expected a compile error, got %v", test.pattern, err)
			continue
		}

		if ce.Code != test.code || ce.Pos != test.pos || ce.Message != test.message {
			t.Errorf("%q: unexpected error %d at %d: %s", test.pattern, ce.Code, ce.Pos, ce.Message)
		}
		if !errors.Is(err, &regex.Error{Code: test.code}) {
			t.Errorf("%q: error does not match the engine error", test.pattern)
		}
	}
}

func TestInconsistentNameTable(t *testing.T) {
	prog := &stubProgram{
		numGroups: 2,
		names:     map[string][]int{"x": {5}},
	}

	_, err := CompileWith("a", Config{Engine: &countingEngine{prog: prog}})

	var ce *CompileError
	if !errors.As(err, &ce) || ce.Code != regex.ErrInvalidArgument {
		t.Fatalf("expected an invalid argument error, got %v", err)
	}
	if prog.released != 1 {
		t.Errorf("expected one release, got %d", prog.released)
	}
}

func TestClose(t *testing.T) {
	prog := &stubProgram{numGroups: 1}

	r, err := CompileWith("a", Config{Engine: &countingEngine{prog: prog}})
	if err != nil {
		t.Fatal(err)
	}

	r.Close()
	r.Close()

	if prog.released != 1 {
		t.Errorf("expected one release, got %d", prog.released)
	}

	var ce *ConfigError
	if _, _, err := r.Search([]byte("a"), 0, 1, 0, nil); !errors.As(err, &ce) {
		t.Errorf("expected a config error after close, got %v", err)
	}

	var zero Regex
	if _, _, err := zero.Search(nil, 0, 0, 0, nil); !errors.As(err, &ce) {
		t.Errorf("expected a config error for an uncompiled regex, got %v", err)
	}
}

func TestMustCompile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()

	MustCompile(`(`)
}

func TestAccessors(t *testing.T) {
	cfg := Config{
		Options: syntax.Options{Compile: syntax.OptionIgnoreCase, Search: syntax.OptionCaptureGroup},
		Syntax:  syntax.Oniguruma(),
	}

	r, err := CompileWith(`(?<a>x)(?@y)(?<a>z)`, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.NumGroups() != 4 || r.NumCaptures() != 3 || r.NumNames() != 1 || r.NumCaptureHistories() != 1 {
		t.Errorf("unexpected counts %d %d %d %d", r.NumGroups(), r.NumCaptures(), r.NumNames(), r.NumCaptureHistories())
	}

	if diff := cmp.Diff(map[string][]int{"a": {1, 3}}, r.Names()); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 3}, r.GroupIndices("a")); diff != "" {
		t.Errorf("unexpected indices (-want +got):\n%s", diff)
	}

	if r.Pattern() != `(?<a>x)(?@y)(?<a>z)` || r.Options() != cfg.Options || r.Encoding() != syntax.UTF8 {
		t.Error("unexpected pattern, options or encoding")
	}
	if *r.Syntax() != *syntax.Oniguruma() {
		t.Error("unexpected syntax")
	}

	// the regex keeps its own copy of the dialect
	syn := syntax.Ruby()
	r2, err := CompileWith(`a`, Config{Syntax: syn})
	if err != nil {
		t.Fatal(err)
	}
	syn.Op = 0
	if r2.Syntax().Op != syntax.Ruby().Op {
		t.Error("the dialect of the regex was modified")
	}
}

func TestWarnings(t *testing.T) {
	r := MustCompile(`a**`)

	if diff := cmp.Diff([]string{"redundant nested repeat operator"}, r.Warnings()); diff != "" {
		t.Errorf("unexpected warnings (-want +got):\n%s", diff)
	}
}

func TestDialects(t *testing.T) {
	tests := []struct {
		pattern string
		syn     *syntax.Syntax
		subject string
		want    [][2]int
	}{
		{`\(a\)\{2\}`, syntax.PosixBasic(), "xaa", [][2]int{{1, 3}, {2, 3}}},
		{`(a)`, syntax.PosixBasic(), "x(a)", [][2]int{{1, 4}}},
		{`(?s).`, syntax.Perl(), "\n", [][2]int{{0, 1}}},
		{`(?m).`, syntax.Ruby(), "\n", [][2]int{{0, 1}}},
		{`a|b`, syntax.ASIS(), "xa|b", [][2]int{{1, 4}}},
		{`(?<x>a)|(?<x>b)`, syntax.Ruby(), "b", [][2]int{{0, 1}, {-1, -1}, {0, 1}}},
	}

	for _, test := range tests {
		r, err := CompileWith(test.pattern, Config{Syntax: test.syn})
		if err != nil {
			t.Errorf("%q: %v", test.pattern, err)
			continue
		}

		c := r.Captures([]byte(test.subject))
		if diff := cmp.Diff(test.want, c.Positions()); diff != "" {
			t.Errorf("%q on %q: unexpected positions (-want +got):\n%s", test.pattern, test.subject, diff)
		}
	}
}

func TestEncodingASCII(t *testing.T) {
	r, err := CompileWith(`.`, Config{Encoding: syntax.ASCII})
	if err != nil {
		t.Fatal(err)
	}

	region := NewRegion()
	if _, ok, err := r.Search([]byte("\xc3\xa4"), 1, 2, 0, region); err != nil || !ok {
		t.Fatalf("expected a match, got %v", err)
	}

	if start, end, _ := region.Pos(0); start != 1 || end != 2 {
		t.Errorf("expected (1,2), got (%d,%d)", start, end)
	}
}
