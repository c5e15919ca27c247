package starlarkonig

import (
	"errors"
	"fmt"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/magnetde/onig"
)

// Match is the Starlark value of a successful match.
// It owns a copy of the groups, so it stays valid after further searches.
type Match struct {
	pattern *Pattern
	str     strOrBytes
	caps    *onig.Captures

	groups    [][2]int
	pos       int
	lastIndex int
}

// newMatch creates a new match object from the captures of a search.
func newMatch(p *Pattern, str strOrBytes, c *onig.Captures, pos int) *Match {
	caps := c.Clone()
	groups := caps.Positions()

	// the last index is the group, that closed last
	lastIndex := -1
	lastIndexEnd := -1

	for i, g := range groups {
		if i > 0 && g[0] >= 0 && g[1] > lastIndexEnd {
			lastIndex = i
			lastIndexEnd = g[1]
		}
	}

	m := Match{
		pattern:   p,
		str:       str,
		caps:      caps,
		groups:    groups,
		pos:       pos,
		lastIndex: lastIndex,
	}

	return &m
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value      = (*Match)(nil)
	_ starlark.HasAttrs   = (*Match)(nil)
	_ starlark.Mapping    = (*Match)(nil)
	_ starlark.Comparable = (*Match)(nil)
)

func (m *Match) String() string {
	g := m.groups[0]
	return fmt.Sprintf("<onig.match object; span=(%d, %d), match=%s>",
		g[0], g[1], repr(m.str.value[g[0]:g[1]], m.str.isString),
	)
}

func (m *Match) Type() string         { return "match" }
func (m *Match) Freeze()              {}
func (m *Match) Truth() starlark.Bool { return true }

func (m *Match) Hash() (uint32, error) {
	h, _ := m.pattern.Hash() // string type; no error possible

	for _, g := range m.groups {
		h ^= uint32(g[0]+1) ^ uint32(g[1]+1)<<16
		h *= 16777619
	}

	return h, nil
}

// matchMethods contains methods of the match object.
var matchMethods = map[string]*starlark.Builtin{
	"expand":       starlark.NewBuiltin("expand", matchExpand),
	"group":        starlark.NewBuiltin("group", matchGroup),
	"groups":       starlark.NewBuiltin("groups", matchGroups),
	"groupdict":    starlark.NewBuiltin("groupdict", matchGroupDict),
	"start":        starlark.NewBuiltin("start", matchStart),
	"end":          starlark.NewBuiltin("end", matchEnd),
	"span":         starlark.NewBuiltin("span", matchSpan),
	"capture_tree": starlark.NewBuiltin("capture_tree", matchCaptureTree),
}

// matchMembers contains members of the match object.
var matchMembers = map[string]func(m *Match) starlark.Value{
	"pos":    func(m *Match) starlark.Value { return starlark.MakeInt(m.pos) },
	"endpos": func(m *Match) starlark.Value { return starlark.MakeInt(len(m.str.value)) },
	"lastindex": func(m *Match) starlark.Value {
		if m.lastIndex < 0 {
			return starlark.None
		}

		return starlark.MakeInt(m.lastIndex)
	},
	"lastgroup": func(m *Match) starlark.Value {
		if m.lastIndex < 0 {
			return starlark.None
		}

		for name, indices := range m.pattern.re.Names() {
			if slices.Contains(indices, m.lastIndex) {
				return starlark.String(name)
			}
		}

		return starlark.None
	},
	"re":     func(m *Match) starlark.Value { return m.pattern },
	"string": func(m *Match) starlark.Value { return m.str.asType(m.str.value) },
	"regs": func(m *Match) starlark.Value {
		r := make(starlark.Tuple, len(m.groups))
		for i, g := range m.groups {
			r[i] = starlark.Tuple{starlark.MakeInt(g[0]), starlark.MakeInt(g[1])}
		}

		return r
	},
}

// Attr gets a value for a string attribute.
func (m *Match) Attr(name string) (starlark.Value, error) {
	if o, ok := matchMethods[name]; ok {
		return o.BindReceiver(m), nil
	}

	if o, ok := matchMembers[name]; ok {
		return o(m), nil
	}

	return nil, nil
}

// AttrNames lists available dot expression strings.
func (m *Match) AttrNames() []string {
	names := make([]string, 0, len(matchMethods)+len(matchMembers))

	for name := range matchMethods {
		names = append(names, name)
	}
	for name := range matchMembers {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

// Get returns the value corresponding to the specified key.
// For the match object, this equals calling the `group` function.
func (m *Match) Get(v starlark.Value) (starlark.Value, bool, error) {
	g, err := m.group(v)
	if err != nil {
		return nil, false, err
	}

	return g, true, nil
}

func (m *Match) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	o := y.(*Match)

	switch op {
	case syntax.EQL:
		return matchEquals(m, o), nil
	case syntax.NEQ:
		return !matchEquals(m, o), nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", m.Type(), op, o.Type())
	}
}

func matchEquals(x, y *Match) bool {
	return patternEquals(x.pattern, y.pattern) &&
		x.str == y.str &&
		slices.Equal(x.groups, y.groups) &&
		x.pos == y.pos
}

func (m *Match) group(v starlark.Value) (starlark.Value, error) {
	if i, ok := m.getIndex(v); ok {
		g := m.groups[i]
		if g[0] < 0 {
			return starlark.None, nil
		}

		return m.str.asType(m.str.value[g[0]:g[1]]), nil
	}

	return nil, errors.New("IndexError: no such group")
}

// getIndex returns the index of a group given by number or name.
// A name of several groups refers to the last matched one.
func (m *Match) getIndex(v starlark.Value) (int, bool) {
	switch t := v.(type) {
	case starlark.Int:
		i, ok := t.Int64()
		if ok && i >= 0 && i < int64(len(m.groups)) {
			return int(i), true
		}
	case starlark.String:
		indices := m.caps.NameIndices(string(t))
		if len(indices) == 0 {
			return 0, false
		}

		for j := len(indices) - 1; j >= 0; j-- {
			if m.groups[indices[j]][0] >= 0 {
				return indices[j], true
			}
		}

		return indices[len(indices)-1], true
	}

	return 0, false
}

func matchExpand(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var template strOrBytes
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "template", &template); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Match)

	err := m.str.sameType(template)
	if err != nil {
		return nil, err
	}

	s, err := m.pattern.re.Expand(template.value, m.caps)
	if err != nil {
		return nil, err
	}

	return m.str.asType(s), nil
}

func matchGroup(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), nil, kwargs); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Match)
	size := len(args)

	switch size {
	case 0:
		return m.group(zeroInt)
	case 1:
		return m.group(args[0])
	default:
		result := make(starlark.Tuple, size)

		for i := range result {
			g, err := m.group(args[i])
			if err != nil {
				return nil, err
			}

			result[i] = g
		}

		return result, nil
	}
}

func matchGroups(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var defaultValue starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "default?", &defaultValue); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Match)

	result := make(starlark.Tuple, 0, len(m.groups)-1)

	for _, g := range m.groups[1:] {
		if g[0] < 0 {
			result = append(result, defaultValue)
		} else {
			result = append(result, m.str.asType(m.str.value[g[0]:g[1]]))
		}
	}

	return result, nil
}

func matchGroupDict(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var defaultValue starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "default?", &defaultValue); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Match)

	names := m.pattern.re.Names()

	// the order of the names is the order of their first groups
	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, name)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return names[a][0] - names[b][0]
	})

	result := starlark.NewDict(len(keys))

	for _, name := range keys {
		sname := starlark.String(name)

		v, err := m.group(sname)
		if err != nil {
			return nil, err
		}
		if v == starlark.None {
			v = defaultValue
		}

		err = result.SetKey(sname, v)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// position returns the span of the group given by the only argument of the builtin.
func position(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) ([2]int, error) {
	var group starlark.Value = zeroInt
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "group?", &group); err != nil {
		return [2]int{}, err
	}

	m := b.Receiver().(*Match)

	i, ok := m.getIndex(group)
	if !ok {
		return [2]int{}, errors.New("IndexError: no such group")
	}

	return m.groups[i], nil
}

func matchStart(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	g, err := position(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.MakeInt(g[0]), nil
}

func matchEnd(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	g, err := position(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.MakeInt(g[1]), nil
}

func matchSpan(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	g, err := position(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.Tuple{starlark.MakeInt(g[0]), starlark.MakeInt(g[1])}, nil
}

// matchCaptureTree returns the capture tree of the match as nested structs
// with the fields `group`, `start`, `end`, `text` and `children`.
// It returns `None`, if the pattern has no history groups.
func matchCaptureTree(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Match)

	tree := m.caps.CaptureTree()
	if tree == nil {
		return starlark.None, nil
	}

	return treeValue(tree, m.str), nil
}

func treeValue(n *onig.CaptureTreeNode, str strOrBytes) starlark.Value {
	children := make([]starlark.Value, len(n.Children))
	for i, c := range n.Children {
		children[i] = treeValue(c, str)
	}

	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"group":    starlark.MakeInt(n.Group),
		"start":    starlark.MakeInt(n.Start),
		"end":      starlark.MakeInt(n.End),
		"text":     str.asType(str.value[n.Start:n.End]),
		"children": starlark.NewList(children),
	})
}
