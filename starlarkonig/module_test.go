package starlarkonig

import (
	_ "embed"
	"strconv"
	"sync"
	"testing"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarktest"
	"go.starlark.net/syntax"
)

//go:embed testdata/onig_test.star
var onigScript string

func TestScript(t *testing.T) {
	predeclared := starlark.StringDict{
		"onig":  NewModule(Config{}),
		"error": starlark.NewBuiltin("error", errorFunc),
		"catch": starlark.NewBuiltin("catch", catchFunc),
	}

	opts := syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}

	_, prog, err := starlark.SourceProgramOptions(&opts, "onig_test.star", onigScript, predeclared.Has)
	if err != nil {
		t.Fatal(err)
	}

	thread := &starlark.Thread{
		Name: "test onig",
		Print: func(thread *starlark.Thread, msg string) {
			t.Log(msg)
		},
	}
	starlarktest.SetReporter(thread, t)

	_, err = prog.Init(thread, predeclared)
	if err != nil {
		if e, ok := err.(*starlark.EvalError); ok {
			t.Fatal(e.Backtrace())
		}
		t.Fatal(err)
	}
}

// errorFunc reports an error to the test without halting the script.
func errorFunc(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var msg string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &msg); err != nil {
		return nil, err
	}

	starlarktest.GetReporter(thread).Error(thread.CallStack().String() + msg)
	return starlark.None, nil
}

// catchFunc calls a function and returns its error message, or None if the call succeeded.
func catchFunc(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fn starlark.Callable
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "fn", &fn); err != nil {
		return nil, err
	}

	if _, err := starlark.Call(thread, fn, nil, nil); err != nil {
		return starlark.String(err.Error()), nil
	}

	return starlark.None, nil
}

func call(t *testing.T, thread *starlark.Thread, m *Module, name string, args ...starlark.Value) starlark.Value {
	t.Helper()

	fn, err := m.Attr(name)
	if err != nil || fn == nil {
		t.Fatalf("no member %s", name)
	}

	v, err := starlark.Call(thread, fn, args, nil)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}

	return v
}

func TestCache(t *testing.T) {
	m := NewModule(Config{})
	thread := &starlark.Thread{Name: "test cache"}

	a := call(t, thread, m, "compile", starlark.String("x"))
	b := call(t, thread, m, "compile", starlark.String("x"))
	if a != b {
		t.Error("expected the cached pattern")
	}

	c := call(t, thread, m, "compile", starlark.Bytes("x"))
	if a == c {
		t.Error("expected different patterns for str and bytes")
	}

	for i := 0; i < maxPatternCacheSize+5; i++ {
		call(t, thread, m, "compile", starlark.String(strconv.Itoa(i)))
	}
	if n := m.cached(); n != maxPatternCacheSize {
		t.Errorf("expected %d cached patterns, got %d", maxPatternCacheSize, n)
	}

	// the oldest pattern was dropped
	if call(t, thread, m, "compile", starlark.String("x")) == a {
		t.Error("expected a new pattern after eviction")
	}

	call(t, thread, m, "purge")
	if n := m.cached(); n != 0 {
		t.Errorf("expected an empty cache, got %d", n)
	}
}

func TestCacheConcurrent(t *testing.T) {
	m := NewModule(Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			thread := &starlark.Thread{Name: "worker " + strconv.Itoa(i)}
			search, _ := m.Attr("search")

			for j := 0; j < 50; j++ {
				pattern := starlark.String(strconv.Itoa(j % 40))
				if _, err := starlark.Call(thread, search, starlark.Tuple{pattern, starlark.String("0123456789")}, nil); err != nil {
					t.Error(err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if n := m.cached(); n > maxPatternCacheSize {
		t.Errorf("cache exceeds its size: %d", n)
	}
}

func TestDefaultSyntax(t *testing.T) {
	m := NewModule(Config{Syntax: "posix_basic"})
	thread := &starlark.Thread{Name: "test syntax"}

	p := call(t, thread, m, "compile", starlark.String(`\(a\)`)).(*Pattern)
	if p.re.NumCaptures() != 1 {
		t.Errorf("expected one group, got %d", p.re.NumCaptures())
	}
	if p.String() != `onig.compile("\\(a\\)", syntax="posix_basic")` {
		t.Errorf("unexpected representation %s", p)
	}
}

func TestRepr(t *testing.T) {
	tests := []struct {
		s        string
		isString bool
		want     string
	}{
		{"abc", true, `"abc"`},
		{`a"b`, true, `'a"b'`},
		{`a"b'`, true, `"a\"b'"`},
		{"tab\t\n", true, `"tab\t\n"`},
		{"\x00\x7f", true, `"\x00\x7f"`},
		{"ä", true, `"ä"`},
		{"ä", false, `b"\xc3\xa4"`},
		{"\u2028", true, `"\u2028"`},
		{"\U0001f600", true, "\"\U0001f600\""},
		{"\xff", true, `"\xff"`},
		{`\`, false, `b"\\"`},
	}

	for _, test := range tests {
		if got := repr(test.s, test.isString); got != test.want {
			t.Errorf("repr(%q, %t): expected %s, got %s", test.s, test.isString, test.want, got)
		}
	}
}
