package onig

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/magnetde/onig/regex"
	"github.com/magnetde/onig/syntax"
)

func TestSearch(t *testing.T) {
	tests := []struct {
		pattern  string
		subject  string
		start    int
		rangeEnd int
		opts     syntax.Option
		want     [][2]int // nil if no match is expected
	}{
		{`e(l+)`, "hello", 0, 5, 0, [][2]int{{1, 4}, {2, 4}}},
		{`e(l+)|(r+)`, "hello", 0, 5, 0, [][2]int{{1, 4}, {2, 4}, {-1, -1}}},
		{`a`, "baa", 0, 0, 0, nil},
		{`a`, "baa", 0, 1, 0, [][2]int{{1, 2}}},
		{`a+`, "baaa", 0, 1, 0, [][2]int{{1, 4}}},
		{`(?<=a)b`, "ab", 1, 2, 0, [][2]int{{1, 2}}},
		{`\bb`, "ab", 1, 2, 0, nil},
		{`a*`, "", 0, 0, 0, [][2]int{{0, 0}}},
		{`ö`, "aöb", 0, 4, 0, [][2]int{{1, 3}}},
		{`^a`, "a", 0, 1, syntax.OptionNotBOL, nil},
		{`^a`, "b\na", 0, 3, syntax.OptionNotBOL, [][2]int{{2, 3}}},
		{`\Aa`, "a", 0, 1, syntax.OptionNotBOL, [][2]int{{0, 1}}},
		{`a$`, "a", 0, 1, syntax.OptionNotEOL, nil},
		{`a$`, "a\n", 0, 2, syntax.OptionNotEOL, [][2]int{{0, 1}}},
		{`a\Z`, "a", 0, 1, syntax.OptionNotEOL, nil},
		{`a\z`, "a", 0, 1, syntax.OptionNotEOL, [][2]int{{0, 1}}},
		{`^b`, "ab", 1, 2, 0, nil},
	}

	for _, test := range tests {
		r := MustCompile(test.pattern)
		region := NewRegion()

		start, ok, err := r.Search([]byte(test.subject), test.start, test.rangeEnd, test.opts, region)
		if err != nil {
			t.Errorf("%q on %q: unexpected error: %v", test.pattern, test.subject, err)
			continue
		}

		if test.want == nil {
			if ok || start != -1 {
				t.Errorf("%q on %q: expected no match, got %d", test.pattern, test.subject, start)
			}
			continue
		}

		if !ok || start != test.want[0][0] {
			t.Errorf("%q on %q: expected a match at %d, got %d", test.pattern, test.subject, test.want[0][0], start)
			continue
		}

		if diff := cmp.Diff(test.want, region.Captures().Positions()); diff != "" {
			t.Errorf("%q on %q: unexpected positions (-want +got):\n%s", test.pattern, test.subject, diff)
		}
	}
}

func TestNamedGroups(t *testing.T) {
	r := MustCompile(`(?<year>\d{4})-(?<month>\d{2})`)

	c := r.Captures([]byte("2024-03"))
	if c == nil {
		t.Fatal("expected a match")
	}

	if start, end, _ := c.Pos(0); start != 0 || end != 7 {
		t.Errorf("expected (0,7), got (%d,%d)", start, end)
	}

	for name, want := range map[string]string{"year": "2024", "month": "03"} {
		b, ok := c.NamedGet(name)
		if !ok || string(b) != want {
			t.Errorf("group %s: expected %q, got %q", name, want, b)
		}
	}
}

func TestDuplicateNames(t *testing.T) {
	r := MustCompile(`(?<x>a)(?<x>b)`)
	c := r.Captures([]byte("ab"))

	type group struct {
		Index int
		Text  string
		OK    bool
	}

	collect := func(it NameIter) []group {
		var res []group
		for it.Next() {
			i, b, ok := it.Group()
			res = append(res, group{i, string(b), ok})
		}
		return res
	}

	want := []group{{1, "a", true}, {2, "b", true}}

	it := c.Name("x")
	if diff := cmp.Diff(want, collect(it)); diff != "" {
		t.Errorf("unexpected groups (-want +got):\n%s", diff)
	}

	// a copy restarts the iteration
	if diff := cmp.Diff(want, collect(it)); diff != "" {
		t.Errorf("unexpected groups after restart (-want +got):\n%s", diff)
	}

	it.Next()
	it.Reset()
	if diff := cmp.Diff(want, collect(it)); diff != "" {
		t.Errorf("unexpected groups after reset (-want +got):\n%s", diff)
	}

	if it := c.Name("y"); it.Len() != 0 || it.Next() {
		t.Error("expected no groups for an unknown name")
	}

	if b, _ := c.NamedGet("x"); string(b) != "b" {
		t.Errorf("expected the last group of the name, got %q", b)
	}
}

func TestFindNotEmpty(t *testing.T) {
	cfg := Config{Options: syntax.Options{Compile: syntax.OptionFindNotEmpty}}

	r, err := CompileWith(`a*`, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := r.Search(nil, 0, 0, 0, nil); err != nil || ok {
		t.Errorf("expected no match, got %v, %v", ok, err)
	}

	region := NewRegion()
	if start, ok, _ := r.Search([]byte("baa"), 0, 3, 0, region); !ok || start != 1 {
		t.Errorf("expected a match at 1, got %d", start)
	}
	if _, end, _ := region.Pos(0); end != 3 {
		t.Errorf("expected the match to end at 3, got %d", end)
	}

	if start, ok, _ := MustCompile(`a*`).Search(nil, 0, 0, 0, region); !ok || start != 0 {
		t.Errorf("expected an empty match at 0, got %d", start)
	}
}

func TestFindLongest(t *testing.T) {
	cfg := Config{Options: syntax.Options{Compile: syntax.OptionFindLongest}}

	r, err := CompileWith(`a+|b`, cfg)
	if err != nil {
		t.Fatal(err)
	}

	region := NewRegion()
	if start, ok, _ := r.Search([]byte("baaa"), 0, 4, 0, region); !ok || start != 1 {
		t.Errorf("expected the longest match at 1, got %d", start)
	}
	if _, end, _ := region.Pos(0); end != 4 {
		t.Errorf("expected the match to end at 4, got %d", end)
	}

	// a longer alternative at the same position wins
	r, err = CompileWith(`a|ab`, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if start, ok, _ := r.Search([]byte("ab"), 0, 2, 0, region); !ok || start != 0 {
		t.Errorf("expected the longest match at 0, got %d", start)
	}
	if _, end, _ := region.Pos(0); end != 2 {
		t.Errorf("expected the match to end at 2, got %d", end)
	}

	if n, ok, _ := r.Match([]byte("ab"), 0, 0, region); !ok || n != 2 {
		t.Errorf("expected an anchored match of length 2, got %d", n)
	}
}

func TestSearchBounds(t *testing.T) {
	r := MustCompile(`a`)
	subject := []byte("aöa")

	tests := []struct {
		start, rangeEnd int
	}{
		{2, 1},
		{0, 5},
		{-1, 0},
		{2, 4},
		{0, 2},
	}

	for _, test := range tests {
		_, _, err := r.Search(subject, test.start, test.rangeEnd, 0, nil)

		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("[%d, %d]: expected a config error, got %v", test.start, test.rangeEnd, err)
		}
	}

	if _, _, err := r.Match(subject, 2, 0, nil); err == nil {
		t.Error("expected an error for a match inside a character")
	}

	var ce *ConfigError
	if _, _, err := r.Search(subject, 0, 4, syntax.OptionIgnoreCase, nil); !errors.As(err, &ce) {
		t.Errorf("expected a config error for a compile time option, got %v", err)
	}
}

func TestCapturePolicy(t *testing.T) {
	cfg := Config{Options: syntax.Options{Search: syntax.OptionCaptureGroup}}

	r, err := CompileWith(`(a)(?<n>b)`, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if r.NumGroups() != 3 {
		t.Errorf("expected 3 groups, got %d", r.NumGroups())
	}

	if _, ok, err := r.Search([]byte("ab"), 0, 2, syntax.OptionCaptureGroup, nil); err != nil || !ok {
		t.Errorf("expected a match with the same policy, got %v", err)
	}

	var ce *ConfigError
	if _, _, err := r.Search([]byte("ab"), 0, 2, syntax.OptionDontCaptureGroup, nil); !errors.As(err, &ce) {
		t.Errorf("expected a config error for a different policy, got %v", err)
	}
}

func TestDefaultSearchOptions(t *testing.T) {
	cfg := Config{Options: syntax.Options{Search: syntax.OptionNotBOL}}

	r, err := CompileWith(`^a`, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := r.Search([]byte("a"), 0, 1, 0, nil); ok {
		t.Error("expected no match with NOTBOL given at compile time")
	}
}

func TestRegionReuse(t *testing.T) {
	r := MustCompile(`a(b)?`)
	region := NewRegion()

	if region.Len() != 0 || region.Matched() {
		t.Error("expected an empty region")
	}
	if _, _, ok := region.Pos(0); ok {
		t.Error("expected group 0 of an empty region to be absent")
	}
	if region.Captures() != nil {
		t.Error("expected no captures of an empty region")
	}
	region.Clear()

	subject := []byte("ab")
	if _, ok, _ := r.Search(subject, 0, 2, 0, region); !ok {
		t.Fatal("expected a match")
	}

	c := region.Captures()
	for i := 0; i < c.Len(); i++ {
		start, end, _ := c.Pos(i)
		b, _ := c.Get(i)
		if string(b) != string(subject[start:end]) {
			t.Errorf("group %d: %q differs from the subject %q", i, b, subject[start:end])
		}
	}

	if _, ok, _ := r.Search([]byte("x"), 0, 1, 0, region); ok {
		t.Fatal("expected no match")
	}

	want := [][2]int{{-1, -1}, {-1, -1}}
	got := [][2]int{}
	for i := 0; i < region.Len(); i++ {
		start, end, _ := region.Pos(i)
		got = append(got, [2]int{start, end})
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected region after no match (-want +got):\n%s", diff)
	}

	// the view of the first match is stale
	if c.Valid() || c.Len() != 0 || c.All() != nil {
		t.Error("expected a stale view")
	}
	if _, ok := c.Get(0); ok {
		t.Error("expected group 0 of a stale view to be absent")
	}

	region.Clear()
	if region.Len() != 0 {
		t.Errorf("expected an empty region after clear, got %d groups", region.Len())
	}
}

func TestCapturesAll(t *testing.T) {
	c := MustCompile(`(a)|(b)`).Captures([]byte("xb"))

	want := [][]byte{[]byte("b"), nil, []byte("b")}
	if diff := cmp.Diff(want, c.All()); diff != "" {
		t.Errorf("unexpected groups (-want +got):\n%s", diff)
	}

	if _, ok := c.Get(1); ok {
		t.Error("expected group 1 to be absent")
	}
	if _, ok := c.Get(3); ok {
		t.Error("expected group 3 to be absent")
	}
	if s, ok := c.GetString(2); !ok || s != "b" {
		t.Errorf("expected group 2 to be %q, got %q", "b", s)
	}

	if MustCompile(`z`).Captures([]byte("xb")) != nil {
		t.Error("expected no captures")
	}
}

func TestMatchAndFind(t *testing.T) {
	r := MustCompile(`a+`)

	if !r.IsMatch("aaa") || r.IsMatch("aab") {
		t.Error("unexpected result of IsMatch")
	}

	region := NewRegion()
	if n, ok, err := r.Match([]byte("baa"), 1, 0, region); err != nil || !ok || n != 2 {
		t.Errorf("expected a match of length 2, got %d", n)
	}
	if n, ok, _ := r.Match([]byte("baa"), 0, 0, region); ok || n != -1 {
		t.Errorf("expected no match at 0, got %d", n)
	}

	if start, end, ok := MustCompile(`b+`).Find("abbc"); !ok || start != 1 || end != 3 {
		t.Errorf("expected (1,3), got (%d,%d)", start, end)
	}
	if _, _, ok := MustCompile(`x`).Find("abbc"); ok {
		t.Error("expected no match")
	}
}

func TestSearchErrors(t *testing.T) {
	prog := &stubProgram{numGroups: 1}

	r, err := CompileWith("a", Config{Engine: &countingEngine{prog: prog}})
	if err != nil {
		t.Fatal(err)
	}

	prog.search = func(regs *regex.Registers) (int, error) {
		regs.Reset(1)
		regs.Beg[0], regs.End[0] = 0, 1
		return -1, &regex.Error{Code: regex.ErrRetryLimitInMatchOver, Pos: -1}
	}

	region := NewRegion()

	var se *SearchError
	_, ok, err := r.Search([]byte("a"), 0, 1, 0, region)
	if !errors.As(err, &se) || se.Code != regex.ErrRetryLimitInMatchOver || ok {
		t.Fatalf("expected a search error, got %v", err)
	}
	if se.Message != "retry-limit-in-match over" {
		t.Errorf("unexpected message %q", se.Message)
	}
	if _, _, ok := region.Pos(0); ok {
		t.Error("expected an unmatched region after an error")
	}

	// the engine reports a match, but fills no positions
	prog.search = func(regs *regex.Registers) (int, error) {
		return 0, nil
	}

	if _, _, err := r.Search([]byte("a"), 0, 1, 0, region); !errors.As(err, &se) || se.Code != regex.ErrInvalidArgument {
		t.Errorf("expected a search error for an invalid region, got %v", err)
	}
}

func TestMatchTimeout(t *testing.T) {
	cfg := Config{MatchTimeout: 1}

	r, err := CompileWith(`(a+)+$`, cfg)
	if err != nil {
		t.Fatal(err)
	}

	subject := make([]byte, 40)
	for i := range subject {
		subject[i] = 'a'
	}
	subject = append(subject, 'b')

	_, _, err = r.Search(subject, 0, len(subject), 0, nil)

	var se *SearchError
	if !errors.As(err, &se) || se.Code != regex.ErrRetryLimitInMatchOver {
		t.Errorf("expected a timeout, got %v", err)
	}
}
