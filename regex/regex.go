package regex

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/magnetde/onig/syntax"
)

// Engine compiles patterns into programs.
// The options are the effective compile options including the capture group policy.
type Engine interface {
	Compile(pattern string, opts syntax.Option, syn *syntax.Syntax, enc syntax.Encoding) (Program, error)
}

// Program is a compiled pattern of an engine.
// Search and Match return -1 if no match exists.
type Program interface {
	NumGroups() int // number of groups including group 0
	Names() map[string][]int
	HistoryGroups() []int
	Search(subject []byte, start, rangeEnd int, opts syntax.Option, regs *Registers) (int, error)
	Match(subject []byte, at int, opts syntax.Option, regs *Registers) (int, error)
	Warnings() []string
	Release()
}

// Capture is a single capture of a group, recorded in the capture history.
type Capture struct {
	Group int
	Start int
	End   int
}

// Registers receive the positions of the groups of a match.
// Unmatched groups have the position -1.
type Registers struct {
	Beg     []int
	End     []int
	History []Capture
}

// Reset resizes the registers to n groups and marks all groups as unmatched.
func (r *Registers) Reset(n int) {
	r.Beg = growSlice(r.Beg, n, -1)
	r.End = growSlice(r.End, n, -1)
	r.History = r.History[:0]
}

// Regexp2Engine is the default engine.
// Patterns are parsed with the selected dialect and then executed by the backtracking engine
// of package regexp2.
type Regexp2Engine struct {
	// MatchTimeout limits the duration of a single engine call; zero means no limit.
	MatchTimeout time.Duration
}

var _ Engine = Regexp2Engine{}

// Compile parses the pattern and compiles the unanchored program.
func (e Regexp2Engine) Compile(pattern string, opts syntax.Option, syn *syntax.Syntax, enc syntax.Encoding) (Program, error) {
	if syn == nil {
		syn = syntax.Default()
	}
	if enc.Validate() != nil {
		return nil, newError(ErrNotSupportedEncoding, -1, "")
	}

	pre, err := newPreprocessor(pattern, opts, syn, enc)
	if err != nil {
		return nil, err
	}

	p := &program{
		pre:      pre,
		opts:     opts,
		ascii:    enc == syntax.ASCII,
		timeout:  e.MatchTimeout,
		variants: make(map[variant]*compiled),
	}

	if _, err := p.variant(variant{}); err != nil {
		return nil, err
	}

	return p, nil
}

// compiled is a variant of a program, compiled by the engine.
type compiled struct {
	re     *regexp2.Regexp
	source string
	groups []int // engine group number of each group; -1 if the group is not rendered
}

// program is the Program of the default engine.
// Variants are compiled lazily and cached, so searches with distinct registers may run concurrently.
type program struct {
	pre     *preprocessor
	opts    syntax.Option
	ascii   bool
	timeout time.Duration

	mu       sync.Mutex
	variants map[variant]*compiled
	released bool
}

var _ Program = (*program)(nil)

func (p *program) NumGroups() int {
	return p.pre.numGroups()
}

func (p *program) Names() map[string][]int {
	names := make(map[string][]int, len(p.pre.st.names))
	for name, groups := range p.pre.st.names {
		names[name] = append([]int(nil), groups...)
	}

	return names
}

func (p *program) HistoryGroups() []int {
	return append([]int(nil), p.pre.st.history...)
}

func (p *program) Warnings() []string {
	return append([]string(nil), p.pre.st.warnings...)
}

func (p *program) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.released = true
	p.variants = nil
}

// Dump returns the parsed pattern tree.
func (p *program) Dump() string {
	return p.pre.p.dump()
}

// Source returns the pattern in the syntax of the regexp2 engine.
func (p *program) Source() string {
	c, err := p.variant(variant{})
	if err != nil {
		return ""
	}

	return c.source
}

// variant returns the compiled variant, compiling it on first use.
func (p *program) variant(v variant) (*compiled, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return nil, newError(ErrInvalidArgument, -1, "")
	}

	if c, ok := p.variants[v]; ok {
		return c, nil
	}

	src, err := p.pre.render(v)
	if err != nil {
		return nil, err
	}

	re, err := compileSource(src, p.timeout)
	if err != nil {
		return nil, err
	}

	c := &compiled{
		re:     re,
		source: src,
		groups: make([]int, p.pre.numGroups()),
	}

	for i := 1; i < len(c.groups); i++ {
		c.groups[i] = re.GroupNumberFromName(groupName(i))
	}

	if v.minLen <= maxCachedMinLen {
		p.variants[v] = c
	}

	return c, nil
}

// compileSource compiles a rendered pattern with the engine.
// A rejected pattern is an invalid argument, that keeps the message of the engine.
func compileSource(src string, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		return nil, &Error{Code: ErrInvalidArgument, Pos: -1, Err: err}
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}

	return re, nil
}

// lineVariant returns the variant for the search options with the given mode.
func lineVariant(opts syntax.Option, mode matchMode) variant {
	return variant{
		notBOL: opts.Has(syntax.OptionNotBOL),
		notEOL: opts.Has(syntax.OptionNotEOL),
		mode:   mode,
	}
}

// Search searches the subject for a match, that starts between start and rangeEnd.
func (p *program) Search(subject []byte, start, rangeEnd int, opts syntax.Option, regs *Registers) (int, error) {
	if start < 0 || rangeEnd < start || rangeEnd > len(subject) {
		return -1, newError(ErrInvalidArgument, -1, "")
	}

	in := newInput(subject, p.ascii)
	from, to := in.runeIndex(start), in.runeIndex(rangeEnd)

	if p.opts.Has(syntax.OptionFindLongest) {
		return p.searchLongest(in, from, to, opts, regs)
	}

	if p.opts.Has(syntax.OptionFindNotEmpty) {
		c, err := p.variant(lineVariant(opts, modeNotEmpty))
		if err != nil {
			return -1, err
		}

		for pos := from; pos <= to; pos++ {
			m, err := find(c, in, pos)
			if err != nil {
				return -1, err
			}
			if m != nil {
				return p.fill(c, m, in, regs), nil
			}
		}

		return -1, nil
	}

	c, err := p.variant(lineVariant(opts, modeSearch))
	if err != nil {
		return -1, err
	}

	m, err := find(c, in, from)
	if err != nil {
		return -1, err
	}
	if m == nil || m.Index > to {
		return -1, nil
	}

	return p.fill(c, m, in, regs), nil
}

// searchLongest tries every start position and keeps the longest match.
// On ties, the match with the earliest start wins.
func (p *program) searchLongest(in *input, from, to int, opts syntax.Option, regs *Registers) (int, error) {
	var (
		best  *regexp2.Match
		bestC *compiled
	)
	bestLen := -1

	for pos := from; pos <= to; pos++ {
		c, m, err := p.longestAt(in, pos, opts)
		if err != nil {
			return -1, err
		}
		if m == nil {
			continue
		}

		if l := in.byteOffset(m.Index+m.Length) - in.byteOffset(m.Index); l > bestLen {
			best, bestC = m, c
			bestLen = l
		}
	}

	if best == nil {
		return -1, nil
	}

	return p.fill(bestC, best, in, regs), nil
}

// longestAt returns the longest match at the position pos.
// After every match, the pattern is tried again with a variant, that only accepts longer
// matches, so the engine also backtracks into alternatives and lazy quantifiers.
func (p *program) longestAt(in *input, pos int, opts syntax.Option) (*compiled, *regexp2.Match, error) {
	var (
		c *compiled
		m *regexp2.Match
	)

	v := lineVariant(opts, p.anchoredMode())

	for {
		vc, err := p.variant(v)
		if err != nil {
			return nil, nil, err
		}

		vm, err := find(vc, in, pos)
		if err != nil {
			return nil, nil, err
		}
		if vm == nil {
			return c, m, nil
		}

		c, m = vc, vm
		if pos+m.Length >= len(in.chars) {
			return c, m, nil
		}

		v.minLen = m.Length + 1
	}
}

// anchoredMode returns the mode of matches at a single position.
func (p *program) anchoredMode() matchMode {
	if p.opts.Has(syntax.OptionFindNotEmpty) {
		return modeNotEmpty
	}

	return modeAnchored
}

// Match matches the pattern at the position `at` and returns the length of the match.
func (p *program) Match(subject []byte, at int, opts syntax.Option, regs *Registers) (int, error) {
	if at < 0 || at > len(subject) {
		return -1, newError(ErrInvalidArgument, -1, "")
	}

	in := newInput(subject, p.ascii)
	pos := in.runeIndex(at)

	var (
		c   *compiled
		m   *regexp2.Match
		err error
	)

	if p.opts.Has(syntax.OptionFindLongest) {
		c, m, err = p.longestAt(in, pos, opts)
	} else {
		c, err = p.variant(lineVariant(opts, p.anchoredMode()))
		if err == nil {
			m, err = find(c, in, pos)
		}
	}

	if err != nil {
		return -1, err
	}
	if m == nil {
		return -1, nil
	}

	p.fill(c, m, in, regs)
	return in.byteOffset(m.Index+m.Length) - at, nil
}

// find runs the engine once. Every engine failure is a timeout.
func find(c *compiled, in *input, pos int) (*regexp2.Match, error) {
	m, err := c.re.FindRunesMatchStartingAt(in.chars, pos)
	if err != nil {
		return nil, newError(ErrRetryLimitInMatchOver, -1, "")
	}

	return m, nil
}

// fill copies the group positions and the capture history of the match into the registers
// and returns the start of the match.
func (p *program) fill(c *compiled, m *regexp2.Match, in *input, regs *Registers) int {
	start := in.byteOffset(m.Index)
	if regs == nil {
		return start
	}

	regs.Reset(len(c.groups))
	regs.Beg[0] = start
	regs.End[0] = in.byteOffset(m.Index + m.Length)

	for i := 1; i < len(c.groups); i++ {
		if c.groups[i] < 0 {
			continue
		}

		g := m.GroupByNumber(c.groups[i])
		if g == nil || len(g.Captures) == 0 {
			continue
		}

		regs.Beg[i] = in.byteOffset(g.Index)
		regs.End[i] = in.byteOffset(g.Index + g.Length)
	}

	for _, h := range p.pre.st.history {
		if c.groups[h] < 0 {
			continue
		}

		g := m.GroupByNumber(c.groups[h])
		if g == nil {
			continue
		}

		for _, cp := range g.Captures {
			regs.History = append(regs.History, Capture{
				Group: h,
				Start: in.byteOffset(cp.Index),
				End:   in.byteOffset(cp.Index + cp.Length),
			})
		}
	}

	return start
}

// input is a subject, decoded for the engine.
// Bytes, that are not part of a valid UTF-8 sequence, are mapped to the low surrogates U+DC80 to U+DCFF,
// so they never match a valid character.
type input struct {
	chars  []rune
	starts *charStarts // byte offsets of the characters and of the end; nil if each byte is a character
}

// newInput decodes the subject.
func newInput(subject []byte, ascii bool) *input {
	if ascii || isASCIIString(subject) {
		chars := make([]rune, len(subject))
		for i, b := range subject {
			chars[i] = rune(b)
		}

		return &input{chars: chars}
	}

	chars := make([]rune, 0, len(subject))
	starts := newCharStarts(len(subject))

	for i := 0; i < len(subject); {
		ch, size := utf8.DecodeRune(subject[i:])
		if ch == utf8.RuneError && size <= 1 {
			ch = 0xdc00 + rune(subject[i])
			size = 1
		}

		chars = append(chars, ch)
		starts.set(i)
		i += size
	}

	starts.set(len(subject))
	starts.index()

	return &input{
		chars:  chars,
		starts: starts,
	}
}

// byteOffset converts a character index into a byte offset.
func (in *input) byteOffset(i int) int {
	if in.starts == nil {
		return i
	}
	return in.starts.selectBit(i)
}

// runeIndex converts a byte offset on a character boundary into a character index.
func (in *input) runeIndex(b int) int {
	if in.starts == nil {
		return b
	}
	return in.starts.rank(b)
}
