// Package onig compiles regular expressions of several dialects, for example Ruby,
// Perl, Java or POSIX, and extracts the results of a search as capture groups,
// named groups and capture trees.
//
// Patterns are parsed under the selected dialect and executed by a backtracking engine.
// All offsets are byte offsets into the subject.
package onig

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/magnetde/onig/regex"
	"github.com/magnetde/onig/syntax"
)

// Regex is a compiled pattern.
// A Regex must not be used by concurrent searches unless the caller synchronizes them.
// Regexes compiled by the default engine are safe for concurrent searches with distinct regions.
type Regex struct {
	pattern string
	syn     *syntax.Syntax
	opts    syntax.Options
	enc     syntax.Encoding

	prog      regex.Program
	names     map[string][]int
	numGroups int
	history   []int

	policy     syntax.Option // capture group policy, fixed at compile time
	searchOpts syntax.Option // default search options

	once   sync.Once
	closed atomic.Bool
}

// Compile compiles the pattern with the Ruby dialect and no options.
func Compile(pattern string) (*Regex, error) {
	return CompileWith(pattern, Config{})
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
func MustCompile(pattern string) *Regex {
	r, err := Compile(pattern)
	if err != nil {
		panic(`onig: Compile(` + quote(pattern) + `): ` + err.Error())
	}
	return r
}

// CompileWith compiles the pattern with the given configuration.
// The configuration is validated, before the engine is called.
func CompileWith(pattern string, cfg Config) (*Regex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()

	prog, err := cfg.Engine.Compile(pattern, cfg.Options.Effective(cfg.Syntax), cfg.Syntax, cfg.Encoding)
	if err != nil {
		return nil, compileError(err)
	}

	r := &Regex{
		pattern:    pattern,
		syn:        cfg.Syntax,
		opts:       cfg.Options,
		enc:        cfg.Encoding,
		prog:       prog,
		numGroups:  prog.NumGroups(),
		policy:     cfg.Options.Search & syntax.CapturePolicy,
		searchOpts: cfg.Options.Search &^ syntax.CapturePolicy,
	}

	names, err := buildNames(prog.Names(), r.numGroups)
	if err != nil {
		r.Close()
		return nil, err
	}

	r.names = names
	r.history = prog.HistoryGroups()

	return r, nil
}

// buildNames checks the name table of the engine and sorts the group indices of each name.
func buildNames(names map[string][]int, numGroups int) (map[string][]int, error) {
	if numGroups < 1 {
		return nil, invalidNameTable()
	}

	res := make(map[string][]int, len(names))

	for name, groups := range names {
		if len(groups) == 0 {
			return nil, invalidNameTable()
		}

		for _, g := range groups {
			if g < 1 || g >= numGroups {
				return nil, invalidNameTable()
			}
		}

		groups = slices.Clone(groups)
		slices.Sort(groups)
		res[name] = groups
	}

	return res, nil
}

func invalidNameTable() error {
	return &CompileError{
		Code:    regex.ErrInvalidArgument,
		Pos:     -1,
		Message: regex.ErrorMessage(regex.ErrInvalidArgument, ""),
	}
}

// Close releases the compiled program. Further calls of Close have no effect.
// Searches after Close fail with a ConfigError.
func (r *Regex) Close() error {
	r.once.Do(func() {
		r.closed.Store(true)
		r.prog.Release()
	})

	return nil
}

// check returns an error, if the regex is not usable.
func (r *Regex) check() error {
	if r == nil || r.prog == nil {
		return errNotCompiled
	}
	if r.closed.Load() {
		return errClosed
	}
	return nil
}

// String returns the source text of the pattern.
func (r *Regex) String() string {
	return r.pattern
}

// Pattern returns the source text of the pattern.
func (r *Regex) Pattern() string {
	return r.pattern
}

// Syntax returns a copy of the dialect, the pattern was compiled with.
func (r *Regex) Syntax() *syntax.Syntax {
	return r.syn.Clone()
}

// Options returns the options, the pattern was compiled with.
func (r *Regex) Options() syntax.Options {
	return r.opts
}

// Encoding returns the encoding of the pattern and of all subjects.
func (r *Regex) Encoding() syntax.Encoding {
	return r.enc
}

// NumGroups returns the number of groups including group 0.
func (r *Regex) NumGroups() int {
	return r.numGroups
}

// NumCaptures returns the number of capture groups.
func (r *Regex) NumCaptures() int {
	return r.numGroups - 1
}

// NumNames returns the number of distinct group names.
func (r *Regex) NumNames() int {
	return len(r.names)
}

// NumCaptureHistories returns the number of groups, whose captures are recorded
// for the capture tree.
func (r *Regex) NumCaptureHistories() int {
	return len(r.history)
}

// Names returns a copy of the name table. Each name maps to its group indices in ascending order.
func (r *Regex) Names() map[string][]int {
	names := make(map[string][]int, len(r.names))
	for name, groups := range r.names {
		names[name] = slices.Clone(groups)
	}
	return names
}

// GroupIndices returns the group indices of a name, or nil if the name is unknown.
func (r *Regex) GroupIndices(name string) []int {
	return slices.Clone(r.names[name])
}

// Warnings returns the warnings, the engine reported for the pattern.
func (r *Regex) Warnings() []string {
	if r.check() != nil {
		return nil
	}
	return r.prog.Warnings()
}
