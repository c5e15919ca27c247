package starlarkonig

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/magnetde/onig"
	onigsyntax "github.com/magnetde/onig/syntax"
)

// Pattern is a Starlark representation of a compiled pattern.
type Pattern struct {
	re      *onig.Regex
	pattern strOrBytes
	options onigsyntax.Option
	syntax  string
}

// newPattern compiles a pattern, which is also a Starlark value.
// Patterns of type bytes are compiled with the ASCII encoding.
func newPattern(pattern strOrBytes, options onigsyntax.Option, synName string, cfg *Config) (*Pattern, error) {
	syn, ok := onigsyntax.Builtin(synName)
	if !ok {
		return nil, fmt.Errorf("unknown syntax %q", synName)
	}

	enc := onigsyntax.UTF8
	if !pattern.isString {
		enc = onigsyntax.ASCII
	}

	re, err := onig.CompileWith(pattern.value, onig.Config{
		Options:      optionsParam{value: options}.split(),
		Syntax:       syn,
		Encoding:     enc,
		Engine:       cfg.Engine,
		MatchTimeout: cfg.MatchTimeout,
	})
	if err != nil {
		return nil, err
	}

	p := Pattern{
		re:      re,
		pattern: pattern,
		options: options,
		syntax:  strings.ReplaceAll(strings.ToLower(synName), "-", "_"),
	}

	return &p, nil
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value      = (*Pattern)(nil)
	_ starlark.HasAttrs   = (*Pattern)(nil)
	_ starlark.Comparable = (*Pattern)(nil)
)

func (p *Pattern) patternValue() starlark.Value { return p.pattern.asType(p.pattern.value) }

func (p *Pattern) String() string {
	r := repr(p.pattern.value, p.pattern.isString)
	if len(r) > 200 {
		r = r[:200]
	}

	var b strings.Builder
	b.WriteString("onig.compile(")
	b.WriteString(r)

	if p.options != 0 {
		b.WriteString(", ")
		for i, name := range strings.Split(p.options.String(), "|") {
			if i > 0 {
				b.WriteByte('|')
			}
			if !strings.HasPrefix(name, "0x") {
				b.WriteString("onig.")
			}
			b.WriteString(name)
		}
	}

	if p.syntax != defaultSyntax {
		b.WriteString(", syntax=")
		b.WriteString(repr(p.syntax, true))
	}

	b.WriteByte(')')
	return b.String()
}

func (p *Pattern) Type() string          { return "pattern" }
func (p *Pattern) Freeze()               {}
func (p *Pattern) Truth() starlark.Bool  { return p.pattern.value != "" }
func (p *Pattern) Hash() (uint32, error) { return starlark.String(p.pattern.value).Hash() }

// Methods of the pattern object.
var patternMethods = map[string]*starlark.Builtin{
	"search":    starlark.NewBuiltin("search", patternSearch),
	"match":     starlark.NewBuiltin("match", patternMatch),
	"fullmatch": starlark.NewBuiltin("fullmatch", patternFullmatch),
	"split":     starlark.NewBuiltin("split", patternSplit),
	"findall":   starlark.NewBuiltin("findall", patternFindall),
	"finditer":  starlark.NewBuiltin("finditer", patternFinditer),
	"sub":       starlark.NewBuiltin("sub", patternSub),
	"subn":      starlark.NewBuiltin("subn", patternSub),
}

// patternMembers contains members of the pattern object.
var patternMembers = map[string]func(p *Pattern) starlark.Value{
	"options":   func(p *Pattern) starlark.Value { return starlark.MakeUint64(uint64(p.options)) },
	"pattern":   func(p *Pattern) starlark.Value { return p.patternValue() },
	"syntax":    func(p *Pattern) starlark.Value { return starlark.String(p.syntax) },
	"groups":    func(p *Pattern) starlark.Value { return starlark.MakeInt(p.re.NumCaptures()) },
	"histories": func(p *Pattern) starlark.Value { return starlark.MakeInt(p.re.NumCaptureHistories()) },
	"groupindex": func(p *Pattern) starlark.Value {
		names := p.re.Names()

		keys := make([]string, 0, len(names))
		for name := range names {
			keys = append(keys, name)
		}
		slices.SortFunc(keys, func(a, b string) int {
			return names[a][0] - names[b][0]
		})

		// A name of several groups maps to a tuple of their indices.
		gi := starlark.NewDict(len(keys))
		for _, name := range keys {
			indices := names[name]

			var v starlark.Value
			if len(indices) == 1 {
				v = starlark.MakeInt(indices[0])
			} else {
				t := make(starlark.Tuple, len(indices))
				for i, index := range indices {
					t[i] = starlark.MakeInt(index)
				}
				v = t
			}

			_ = gi.SetKey(starlark.String(name), v)
		}

		gi.Freeze()
		return gi
	},
	"warnings": func(p *Pattern) starlark.Value {
		warnings := p.re.Warnings()

		t := make(starlark.Tuple, len(warnings))
		for i, w := range warnings {
			t[i] = starlark.String(w)
		}

		return t
	},
}

// Attr gets a value for a string attribute.
func (p *Pattern) Attr(name string) (starlark.Value, error) {
	if o, ok := patternMethods[name]; ok {
		return o.BindReceiver(p), nil
	}

	if o, ok := patternMembers[name]; ok {
		return o(p), nil
	}

	return nil, nil
}

// AttrNames lists available dot expression strings.
func (p *Pattern) AttrNames() []string {
	names := make([]string, 0, len(patternMethods)+len(patternMembers))

	for name := range patternMethods {
		names = append(names, name)
	}
	for name := range patternMembers {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

func (p *Pattern) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	o := y.(*Pattern)

	switch op {
	case syntax.EQL:
		return patternEquals(p, o), nil
	case syntax.NEQ:
		return !patternEquals(p, o), nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", p.Type(), op, o.Type())
	}
}

func patternEquals(x, y *Pattern) bool {
	return x.pattern == y.pattern && x.options == y.options && x.syntax == y.syntax
}

// patternSearch - see `onigSearch`.
func patternSearch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str    strOrBytes
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return patternSearchAt(p, str, pos, endpos)
}

// patternMatch - see `onigMatch`.
func patternMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str    strOrBytes
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return patternMatchAt(p, str, pos, endpos, false)
}

// patternFullmatch - see `onigFullmatch`.
func patternFullmatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str    strOrBytes
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return patternMatchAt(p, str, pos, endpos, true)
}

// patternSplit - see `onigSplit`.
func patternSplit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str      strOrBytes
		maxSplit int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "maxsplit?", &maxSplit); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return patternSplitN(p, str, maxSplit)
}

// patternFindall - see `onigFindall`.
func patternFindall(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str    strOrBytes
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return patternFindallAt(p, str, pos, endpos)
}

// patternFinditer - see `onigFinditer`.
func patternFinditer(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str    strOrBytes
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return patternFinditerAt(p, str, pos, endpos)
}

// patternSub - see `onigSub`.
func patternSub(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		repl  starlark.Value
		str   strOrBytes
		count int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "repl", &repl, "string", &str, "count?", &count); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return patternSubN(thread, b.Name(), p, repl, str, count)
}

// checkParams checks, if the parameter `str` has the type of the pattern.
// The parameters `pos` and `endpos` get clamped in range [0, n], where n is the length of `str`.
// This function returns `s[:endpos]` and `pos`.
func checkParams(p *Pattern, str strOrBytes, pos, endpos int) (strOrBytes, int, error) {
	var zero strOrBytes

	err := p.pattern.sameType(str)
	if err != nil {
		return zero, 0, err
	}

	n := len(str.value)
	pos = clamp(pos, n)
	endpos = clamp(endpos, n)

	if pos > endpos {
		pos = endpos
	}

	str.value = str.value[:endpos]

	return str, pos, nil
}

// clamp clamps `pos` between 0 and `length`.
func clamp(pos, length int) int {
	return min(max(pos, 0), length)
}

func patternSearchAt(p *Pattern, str strOrBytes, pos, endpos int) (starlark.Value, error) {
	str, pos, err := checkParams(p, str, pos, endpos)
	if err != nil {
		return nil, err
	}

	subject := []byte(str.value)
	region := onig.NewRegion()

	_, ok, err := p.re.Search(subject, pos, len(subject), 0, region)
	if err != nil {
		return nil, err
	}
	if !ok {
		return starlark.None, nil
	}

	return newMatch(p, str, region.Captures(), pos), nil
}

// patternMatchAt matches the pattern at `pos`.
// If full is true, the match must extend to `endpos`.
func patternMatchAt(p *Pattern, str strOrBytes, pos, endpos int, full bool) (starlark.Value, error) {
	str, pos, err := checkParams(p, str, pos, endpos)
	if err != nil {
		return nil, err
	}

	subject := []byte(str.value)
	region := onig.NewRegion()

	n, ok, err := p.re.Match(subject, pos, 0, region)
	if err != nil {
		return nil, err
	}
	if !ok || (full && pos+n != len(subject)) {
		return starlark.None, nil
	}

	return newMatch(p, str, region.Captures(), pos), nil
}

// patternSplitN splits the string by the matches of the pattern.
// The text of all groups is added to the result; unmatched groups are `None`.
func patternSplitN(p *Pattern, str strOrBytes, maxSplit int) (starlark.Value, error) {
	err := p.pattern.sameType(str)
	if err != nil {
		return nil, err
	}

	s := str.value
	if maxSplit < 0 {
		return starlark.NewList([]starlark.Value{str.asType(s)}), nil
	}

	n := -1
	if maxSplit > 0 {
		n = maxSplit
	}

	var l []starlark.Value
	beg := 0

	err = p.re.Each([]byte(s), n, func(c *onig.Captures) bool {
		pos := c.Positions()

		l = append(l, str.asType(s[beg:pos[0][0]]))
		for _, g := range pos[1:] {
			if g[0] < 0 {
				l = append(l, starlark.None)
			} else {
				l = append(l, str.asType(s[g[0]:g[1]]))
			}
		}

		beg = pos[0][1]
		return true
	})
	if err != nil {
		return nil, err
	}

	l = append(l, str.asType(s[beg:]))

	return starlark.NewList(l), nil
}

func patternFindallAt(p *Pattern, str strOrBytes, pos, endpos int) (starlark.Value, error) {
	str, pos, err := checkParams(p, str, pos, endpos)
	if err != nil {
		return nil, err
	}

	s := str.value
	var l []starlark.Value

	err = p.re.EachFrom([]byte(s), pos, -1, func(c *onig.Captures) bool {
		match := c.Positions()

		var v starlark.Value
		switch len(match) {
		case 1:
			// Match contains no groups; element is the whole match.
			v = str.asType(s[match[0][0]:match[0][1]])
		case 2:
			// Match contains one group; element is this group.
			v = groupText(str, match[1])
		default:
			// Match contains multiple groups; element is a tuple of groups.
			t := make(starlark.Tuple, 0, len(match)-1)
			for _, g := range match[1:] {
				t = append(t, groupText(str, g))
			}

			v = t
		}

		l = append(l, v)
		return true
	})
	if err != nil {
		return nil, err
	}

	return starlark.NewList(l), nil
}

// groupText returns the text of a group; the text of unmatched groups is empty.
func groupText(str strOrBytes, g [2]int) starlark.Value {
	if g[0] < 0 {
		return str.asType("")
	}

	return str.asType(str.value[g[0]:g[1]])
}

func patternFinditerAt(p *Pattern, str strOrBytes, pos, endpos int) (starlark.Value, error) {
	str, pos, err := checkParams(p, str, pos, endpos)
	if err != nil {
		return nil, err
	}

	var l []starlark.Value

	err = p.re.EachFrom([]byte(str.value), pos, -1, func(c *onig.Captures) bool {
		l = append(l, newMatch(p, str, c, pos))
		return true
	})
	if err != nil {
		return nil, err
	}

	return starlark.NewList(l), nil
}

// patternSubN replaces at most `count` matches; zero means all matches.
func patternSubN(thread *starlark.Thread, name string, p *Pattern, repl starlark.Value, str strOrBytes, count int) (starlark.Value, error) {
	err := p.pattern.sameType(str)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errors.New("count must be a non-negative integer")
	}

	r, err := newReplacer(thread, p, repl)
	if err != nil {
		return nil, err
	}

	n := -1
	if count > 0 {
		n = count
	}

	s := str.value

	var (
		b     strings.Builder
		beg   int
		subs  int
		inner error
	)

	err = p.re.Each([]byte(s), n, func(c *onig.Captures) bool {
		start, end, _ := c.Pos(0)

		b.WriteString(s[beg:start])
		if inner = r.replace(&b, p, str, c); inner != nil {
			return false
		}

		beg = end
		subs++
		return true
	})
	if err != nil {
		return nil, err
	}
	if inner != nil {
		return nil, inner
	}

	b.WriteString(s[beg:])
	res := str.asType(b.String())

	if name == "subn" {
		return starlark.Tuple{res, starlark.MakeInt(subs)}, nil
	}

	return res, nil
}
