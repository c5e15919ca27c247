package onig

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/magnetde/onig/syntax"
)

func TestFindAllString(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		n       int
		want    []string
	}{
		{`a+`, "baaacaa", -1, []string{"aaa", "aa"}},
		{`a*`, "baaac", -1, []string{"", "aaa", ""}},
		{`a`, "aaa", 2, []string{"a", "a"}},
		{`x`, "aaa", -1, nil},
		{`ö|b`, "aöb", -1, []string{"ö", "b"}},
		{``, "ab", -1, []string{"", "", ""}},
	}

	for _, test := range tests {
		got, err := MustCompile(test.pattern).FindAllString(test.subject, test.n)
		if err != nil {
			t.Errorf("%q: %v", test.pattern, err)
			continue
		}

		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%q on %q: unexpected matches (-want +got):\n%s", test.pattern, test.subject, diff)
		}
	}
}

func TestFindAll(t *testing.T) {
	got, err := MustCompile(`(a)|b`).FindAll([]byte("ab"), -1)
	if err != nil {
		t.Fatal(err)
	}

	want := [][]int{{0, 1, 0, 1}, {1, 2, -1, -1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected matches (-want +got):\n%s", diff)
	}
}

func TestEachStops(t *testing.T) {
	calls := 0

	err := MustCompile(`a`).Each([]byte("aaa"), -1, func(c *Captures) bool {
		calls++
		return false
	})
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		n       int
		want    []string
	}{
		{`a`, "banana", -1, []string{"b", "n", "n", ""}},
		{`a`, "banana", 2, []string{"b", "nana"}},
		{`a`, "banana", 0, nil},
		{`,`, "", -1, []string{""}},
		{`\s*,\s*`, "x , y,z", -1, []string{"x", "y", "z"}},
		{`x*`, "abc", -1, []string{"a", "b", "c"}},
	}

	for _, test := range tests {
		got, err := MustCompile(test.pattern).Split(test.subject, test.n)
		if err != nil {
			t.Errorf("%q: %v", test.pattern, err)
			continue
		}

		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%q on %q: unexpected parts (-want +got):\n%s", test.pattern, test.subject, diff)
		}
	}
}

func TestReplaceAll(t *testing.T) {
	tests := []struct {
		pattern  string
		subject  string
		template string
		want     string
	}{
		{`(?<y>\d+)-(?<z>\d+)`, "1-2 33-44", `\2-\k<y>`, "2-1 44-33"},
		{`a`, "cat", `[\0]`, "c[a]t"},
		{`a`, "aaa", "x", "xxx"},
		{`a`, "cat", `\\`, `c\t`},
		{`a`, "cat", `\q\`, `c\q\t`},
		{`(?<x>a)|(?<x>b)`, "ab", `<\k<x>>`, "<a><b>"},
		{`(a)(b)?`, "a", `[\2]`, "[]"},
		{`x*`, "ab", "-", "-a-b-"},
	}

	for _, test := range tests {
		got, err := MustCompile(test.pattern).ReplaceAll(test.subject, test.template)
		if err != nil {
			t.Errorf("%q: %v", test.pattern, err)
			continue
		}

		if got != test.want {
			t.Errorf("%q on %q with %q: expected %q, got %q", test.pattern, test.subject, test.template, test.want, got)
		}
	}
}

func TestReplaceAllErrors(t *testing.T) {
	r := MustCompile(`(?<x>a)`)

	for _, template := range []string{`\k<y>`, `\2`, `\k<x`, `\k<>`} {
		_, err := r.ReplaceAll("a", template)

		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%q: expected a config error, got %v", template, err)
		}
	}
}

func TestReplaceAllFunc(t *testing.T) {
	got, err := MustCompile(`[a-c]+`).ReplaceAllFunc("xabcxb", func(c *Captures) string {
		s, _ := c.GetString(0)
		return strings.ToUpper(s)
	})
	if err != nil {
		t.Fatal(err)
	}

	if got != "xABCxB" {
		t.Errorf("unexpected result %q", got)
	}
}

func TestQuoteMeta(t *testing.T) {
	if got := QuoteMeta("1.5-2.0?"); got != `1\.5\-2\.0\?` {
		t.Errorf("unexpected result %q", got)
	}
	if got := QuoteMeta("abc"); got != "abc" {
		t.Errorf("unexpected result %q", got)
	}

	s := "a+b (c)|[d]{e}^$\\.*?#~&-\t\n"

	r, err := CompileWith(QuoteMeta(s), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsMatch(s) {
		t.Errorf("the quoted pattern %q does not match %q", QuoteMeta(s), s)
	}
}

func TestQuoteMetaSyntax(t *testing.T) {
	s := "a+b (c)|[d]{e}?^$\\.*-\t"

	for _, name := range syntax.Builtins() {
		syn, _ := syntax.Builtin(name)
		quoted := QuoteMetaSyntax(s, syn)

		r, err := CompileWith(quoted, Config{Syntax: syn})
		if err != nil {
			t.Errorf("%s: %q: %v", name, quoted, err)
			continue
		}
		if !r.IsMatch(s) {
			t.Errorf("%s: the quoted pattern %q does not match %q", name, quoted, s)
		}
	}

	if got := QuoteMetaSyntax("(a)", syntax.PosixBasic()); got != "(a)" {
		t.Errorf("unexpected posix basic quoting %q", got)
	}
	if got := QuoteMetaSyntax("a|b+", syntax.Grep()); got != "a|b+" {
		t.Errorf("unexpected grep quoting %q", got)
	}
	if got := QuoteMetaSyntax("a.b", syntax.ASIS()); got != "a.b" {
		t.Errorf("unexpected asis quoting %q", got)
	}
	if got := QuoteMetaSyntax("a.b", nil); got != QuoteMeta("a.b") {
		t.Errorf("unexpected default quoting %q", got)
	}
}

func TestEachFrom(t *testing.T) {
	var got []string

	err := MustCompile(`\w+`).EachFrom([]byte("ab cd ef"), 2, -1, func(c *Captures) bool {
		s, _ := c.GetString(0)
		got = append(got, s)
		return true
	})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"cd", "ef"}, got); diff != "" {
		t.Errorf("unexpected matches (-want +got):\n%s", diff)
	}

	var ce *ConfigError
	err = MustCompile(`a`).EachFrom([]byte("a"), 2, -1, func(c *Captures) bool { return true })
	if !errors.As(err, &ce) {
		t.Errorf("expected a config error, got %v", err)
	}
}

func TestExpand(t *testing.T) {
	r := MustCompile(`(?<key>\w+)=(?<val>\w+)`)

	c := r.Captures([]byte("a=1"))
	got, err := r.Expand(`\2:\k<key>`, c)
	if err != nil {
		t.Fatal(err)
	}
	if got != "1:a" {
		t.Errorf("unexpected expansion %q", got)
	}

	if _, err := r.Expand(`\3`, c); err == nil {
		t.Error("expected an error for an invalid group")
	}

	// plain groups are not captured, if the pattern has named groups
	r = MustCompile(`(?<key>\w+)=(\w+)`)
	if _, err := r.Expand(`\2`, r.Captures([]byte("a=1"))); err == nil {
		t.Error("expected an error for an uncaptured group")
	}
}
