package starlarkonig

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"

	"github.com/magnetde/onig"
)

// replacer writes the replacement of a match.
type replacer interface {
	replace(b *strings.Builder, p *Pattern, str strOrBytes, c *onig.Captures) error
}

// literalReplacer is a replacement without group references.
type literalReplacer string

// templateReplacer is a replacement template containing group references like \1 or \k<name>.
type templateReplacer string

// functionReplacer calls a Starlark function with the match object.
type functionReplacer struct {
	thread *starlark.Thread
	fn     starlark.Callable
}

var (
	_ replacer = literalReplacer("")
	_ replacer = templateReplacer("")
	_ replacer = (*functionReplacer)(nil)
)

// newReplacer creates the replacer for the `repl` parameter of `sub`.
// A template is checked once, before the first match is replaced.
func newReplacer(thread *starlark.Thread, p *Pattern, repl starlark.Value) (replacer, error) {
	if fn, ok := repl.(starlark.Callable); ok {
		return &functionReplacer{thread: thread, fn: fn}, nil
	}

	var template strOrBytes
	if err := template.Unpack(repl); err != nil {
		return nil, fmt.Errorf("repl: %w", err)
	}
	if err := p.pattern.sameType(template); err != nil {
		return nil, err
	}

	if !strings.ContainsRune(template.value, '\\') {
		return literalReplacer(template.value), nil
	}

	if _, err := p.re.Expand(template.value, nil); err != nil {
		return nil, err
	}

	return templateReplacer(template.value), nil
}

func (r literalReplacer) replace(b *strings.Builder, _ *Pattern, _ strOrBytes, _ *onig.Captures) error {
	b.WriteString(string(r))
	return nil
}

func (r templateReplacer) replace(b *strings.Builder, p *Pattern, _ strOrBytes, c *onig.Captures) error {
	s, err := p.re.Expand(string(r), c)
	if err != nil {
		return err
	}

	b.WriteString(s)
	return nil
}

func (r *functionReplacer) replace(b *strings.Builder, p *Pattern, str strOrBytes, c *onig.Captures) error {
	v, err := starlark.Call(r.thread, r.fn, starlark.Tuple{newMatch(p, str, c, 0)}, nil)
	if err != nil {
		return err
	}

	var res strOrBytes
	if err := res.Unpack(v); err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	if err := str.sameType(res); err != nil {
		return err
	}

	b.WriteString(res.value)
	return nil
}
