// Package starlarkonig provides the onig regular expressions as a Starlark module.
//
// The module mirrors the functions of a Python-style re module, but the patterns
// are compiled with one of the dialects of the engine:
//
//	onig.search(r'(?<year>\d{4})', 'in 2023')
//	onig.compile(r'\(a\)', syntax='posix_basic')
//	onig.sub(r'(?<x>\w+)', r'<\k<x>>', 'a b')
package starlarkonig

import (
	"container/list"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.starlark.net/starlark"

	"github.com/magnetde/onig"
	"github.com/magnetde/onig/regex"
	"github.com/magnetde/onig/syntax"
)

const (
	// Maximum cache size; 32 should be more than enough, because Starlark scripts stay relatively small.
	maxPatternCacheSize = 32

	// Maximum possible value of a position.
	// Used as the default value of `endpos`, because the position parameters always get clamped.
	posMax = math.MaxInt

	defaultSyntax = "ruby"
)

// Names of the option constants of the module.
var optionConstants = []string{
	"IGNORECASE",
	"EXTEND",
	"MULTILINE",
	"SINGLELINE",
	"FIND_LONGEST",
	"FIND_NOT_EMPTY",
	"NEGATE_SINGLELINE",
	"DONT_CAPTURE_GROUP",
	"CAPTURE_GROUP",
	"NOTBOL",
	"NOTEOL",
}

var zeroInt = starlark.MakeInt(0)

// Config configures a module.
type Config struct {
	// Syntax is the name of the dialect used, if a call does not name one. Empty means "ruby".
	Syntax string

	// Engine compiles the patterns. Nil means the default engine.
	Engine regex.Engine

	// MatchTimeout limits a single engine call of the default engine; zero means no limit.
	MatchTimeout time.Duration
}

// Module is the Starlark value of the onig module.
// It contains a LRU cache of compiled patterns, implemented with a map and a linked list.
// When the cache exceeds the maximum size, the least recently used pattern is dropped.
// The cache is safe for concurrent use by multiple threads.
type Module struct {
	members starlark.StringDict
	cfg     Config

	mu    sync.Mutex
	list  *list.List                 // least recently used patterns
	cache map[cacheKey]*list.Element // mapping of patterns to list elements
}

// cacheKey identifies a compiled pattern.
type cacheKey struct {
	pattern string
	isStr   bool
	options syntax.Option
	syntax  string
}

// Each list element needs to know its key in the map.
type cacheValue struct {
	pattern *Pattern
	key     cacheKey
}

// NewModule creates a new onig module.
func NewModule(cfg Config) *Module {
	if cfg.Syntax == "" {
		cfg.Syntax = defaultSyntax
	}

	members := starlark.StringDict{
		"NONE": zeroInt,

		"compile": starlark.NewBuiltin("compile", onigCompile),
		"purge":   starlark.NewBuiltin("purge", onigPurge),

		"search":    starlark.NewBuiltin("search", onigSearch),
		"match":     starlark.NewBuiltin("match", onigMatch),
		"fullmatch": starlark.NewBuiltin("fullmatch", onigFullmatch),
		"split":     starlark.NewBuiltin("split", onigSplit),
		"findall":   starlark.NewBuiltin("findall", onigFindall),
		"finditer":  starlark.NewBuiltin("finditer", onigFinditer),
		"sub":       starlark.NewBuiltin("sub", onigSub),
		"subn":      starlark.NewBuiltin("subn", onigSub),
		"escape":    starlark.NewBuiltin("escape", onigEscape),
	}

	for _, name := range optionConstants {
		o, _ := syntax.OptionByName(name)
		members[name] = starlark.MakeUint64(uint64(o))
	}

	names := syntax.Builtins()
	syntaxes := make(starlark.Tuple, len(names))
	for i, name := range names {
		syntaxes[i] = starlark.String(name)
	}
	members["SYNTAXES"] = syntaxes

	m := Module{
		members: members,
		cfg:     cfg,
		list:    list.New(),
		cache:   make(map[cacheKey]*list.Element),
	}

	return &m
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value    = (*Module)(nil)
	_ starlark.HasAttrs = (*Module)(nil)
)

func (m *Module) Freeze()               { m.members.Freeze() }
func (m *Module) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }
func (m *Module) String() string        { return "<module onig>" }
func (m *Module) Truth() starlark.Bool  { return true }
func (m *Module) Type() string          { return "module" }

func (m *Module) Attr(name string) (starlark.Value, error) {
	if v, ok := m.members[name]; ok {
		if b, ok := v.(*starlark.Builtin); ok {
			return b.BindReceiver(m), nil
		}

		return v, nil
	}

	return nil, nil
}
func (m *Module) AttrNames() []string { return m.members.Keys() }

// compile compiles a pattern. If the pattern is already in the cache,
// the compiled pattern is returned from the cache.
// Else, the pattern is compiled and then added to the cache.
// If the cache exceeds `maxPatternCacheSize`, the least recently used pattern is dropped.
// Dropped patterns are not closed, because they may still be referenced by Starlark values.
func (m *Module) compile(pattern strOrBytes, options syntax.Option, synName string) (*Pattern, error) {
	if synName == "" {
		synName = m.cfg.Syntax
	}

	key := cacheKey{
		pattern.value,
		pattern.isString,
		options,
		synName,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.cache[key]; ok { // pattern found in the cache
		m.list.MoveToFront(e) // "refresh" the pattern in the linked list
		return e.Value.(*cacheValue).pattern, nil
	}

	p, err := newPattern(pattern, options, synName, &m.cfg)
	if err != nil {
		return nil, err
	}

	// purge elements, if the size exceeds a certain threshold
	if m.list.Len() >= maxPatternCacheSize {
		last := m.list.Back() // determine the oldest element

		delete(m.cache, last.Value.(*cacheValue).key)
		m.list.Remove(last)
	}

	v := &cacheValue{
		pattern: p,
		key:     key,
	}

	m.cache[key] = m.list.PushFront(v)

	return p, nil
}

// purge clears the pattern cache.
func (m *Module) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.list.Init()
	clear(m.cache)
}

// cached returns the number of cached patterns.
func (m *Module) cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.list.Len()
}

// onigCompile compiles a pattern into a pattern object,
// which can be used for matching using its `search`, `match` and other methods.
// Because all functions of the module cache compiled patterns,
// this function is only necessary, if the number of patterns exceeds the cache size.
func onigCompile(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		options optionsParam
		synName string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "options?", &options, "syntax?", &synName); err != nil {
		return nil, err
	}

	return compilePattern(b, pattern, options, synName)
}

// patternParam represents the possible types of the pattern parameter.
type patternParam struct {
	compiled *Pattern
	raw      strOrBytes
}

// strOrBytes is a string or bytes parameter.
type strOrBytes struct {
	value    string
	isString bool
}

// optionsParam is a parameter containing compile and search options.
type optionsParam struct {
	value syntax.Option
	set   bool
}

var (
	_ starlark.Unpacker = (*strOrBytes)(nil)
	_ starlark.Unpacker = (*patternParam)(nil)
	_ starlark.Unpacker = (*optionsParam)(nil)
)

func (p *patternParam) Unpack(v starlark.Value) error {
	if c, ok := v.(*Pattern); ok {
		p.compiled = c
		return nil
	}

	err := p.raw.Unpack(v)
	if err != nil {
		return errors.New("first argument must be string or compiled pattern")
	}

	return nil
}

func (s *strOrBytes) Unpack(v starlark.Value) error {
	switch t := v.(type) {
	case starlark.String:
		s.value = string(t)
		s.isString = true
	case starlark.Bytes:
		s.value = string(t)
		s.isString = false
	default:
		return fmt.Errorf("got %s, want str or bytes", v.Type())
	}

	return nil
}

func (s *strOrBytes) sameType(v strOrBytes) error {
	if s.isString != v.isString {
		return fmt.Errorf("got %s, want %s", v.typeString(), s.typeString())
	}

	return nil
}

func (s *strOrBytes) typeString() string {
	if s.isString {
		return "str"
	}

	return "bytes"
}

func (s *strOrBytes) asType(v string) starlark.Value {
	if s.isString {
		return starlark.String(v)
	}

	return starlark.Bytes(v)
}

func (o *optionsParam) Unpack(v starlark.Value) error {
	i, ok := v.(starlark.Int)
	if !ok {
		return fmt.Errorf("got %s, want int", v.Type())
	}

	u, ok := i.Uint64()
	if !ok || u > math.MaxUint32 {
		return fmt.Errorf("invalid options %s", i)
	}

	o.value = syntax.Option(u)
	o.set = o.value != 0
	return nil
}

// split divides the options into the two namespaces.
// Unknown bits stay in the compile time set, where they are rejected.
func (o optionsParam) split() syntax.Options {
	return syntax.Options{
		Compile: o.value &^ syntax.SearchOptions,
		Search:  o.value & syntax.SearchOptions,
	}
}

// onigPurge clears the pattern cache.
func onigPurge(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Module)
	m.purge()

	return starlark.None, nil
}

// onigSearch scans through the string looking for the first location where the pattern produces a match,
// and returns a corresponding `Match`. Returns `None` if no position in the string matches the pattern.
func onigSearch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		str     strOrBytes
		options optionsParam
		synName string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &str, "options?", &options, "syntax?", &synName); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, options, synName)
	if err != nil {
		return nil, err
	}

	return patternSearchAt(p, str, 0, posMax)
}

// onigMatch returns a `Match`, if the pattern matches at the beginning of the string.
// Returns `None` otherwise.
func onigMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		str     strOrBytes
		options optionsParam
		synName string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &str, "options?", &options, "syntax?", &synName); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, options, synName)
	if err != nil {
		return nil, err
	}

	return patternMatchAt(p, str, 0, posMax, false)
}

// onigFullmatch returns a `Match`, if the whole string matches the pattern.
// Returns `None` otherwise.
func onigFullmatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		str     strOrBytes
		options optionsParam
		synName string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &str, "options?", &options, "syntax?", &synName); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, options, synName)
	if err != nil {
		return nil, err
	}

	return patternMatchAt(p, str, 0, posMax, true)
}

// onigSplit splits a string by the occurrences of a pattern.
// If maxsplit is nonzero, at most maxsplit splits occur, and the remainder of the string is returned as the final element of the list.
func onigSplit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern  patternParam
		str      strOrBytes
		maxSplit int
		options  optionsParam
		synName  string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &str, "maxsplit?", &maxSplit, "options?", &options, "syntax?", &synName); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, options, synName)
	if err != nil {
		return nil, err
	}

	return patternSplitN(p, str, maxSplit)
}

// onigFindall returns all non-overlapping matches of pattern in string, as a list of strings or tuples.
// If one or more groups are present in the pattern, a list of groups is returned;
// this will be a list of tuples if the pattern has more than one group.
func onigFindall(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		str     strOrBytes
		options optionsParam
		synName string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &str, "options?", &options, "syntax?", &synName); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, options, synName)
	if err != nil {
		return nil, err
	}

	return patternFindallAt(p, str, 0, posMax)
}

// onigFinditer returns a list containing `Match` objects over all non-overlapping matches.
func onigFinditer(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		str     strOrBytes
		options optionsParam
		synName string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &str, "options?", &options, "syntax?", &synName); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, options, synName)
	if err != nil {
		return nil, err
	}

	return patternFinditerAt(p, str, 0, posMax)
}

// onigSub returns the string obtained by replacing the leftmost non-overlapping matches of the pattern
// by the replacement repl, replacing at most `count` matches.
// If the name of the builtin is "subn", the tuple `(new_string, number_of_subs_made)` is returned instead.
func onigSub(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		repl    starlark.Value
		str     strOrBytes
		count   int
		options optionsParam
		synName string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "repl", &repl, "string", &str, "count?", &count, "options?", &options, "syntax?", &synName); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, options, synName)
	if err != nil {
		return nil, err
	}

	return patternSubN(thread, b.Name(), p, repl, str, count)
}

// onigEscape escapes all metacharacters of the pattern under the given dialect.
func onigEscape(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern strOrBytes
		synName string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "syntax?", &synName); err != nil {
		return nil, err
	}

	if synName == "" {
		synName = b.Receiver().(*Module).cfg.Syntax
	}

	syn, ok := syntax.Builtin(synName)
	if !ok {
		return nil, fmt.Errorf("unknown syntax %q", synName)
	}

	return pattern.asType(onig.QuoteMetaSyntax(pattern.value, syn)), nil
}

// compilePattern compiles a pattern using the cache of the module.
// The receiver of the builtin must be of type `*Module`.
func compilePattern(b *starlark.Builtin, p patternParam, options optionsParam, synName string) (*Pattern, error) {
	if p.compiled != nil {
		if options.set || synName != "" {
			return nil, errors.New("cannot process options or syntax with a compiled pattern")
		}

		return p.compiled, nil
	}

	return b.Receiver().(*Module).compile(p.raw, options.value, synName)
}
