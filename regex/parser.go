package regex

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/magnetde/onig/syntax"
)

// state represents the current parser state.
// It contains the dialect, the groups in the order of their opening parentheses,
// a mapping of group names to group numbers and all references, that are resolved
// after parsing.
type state struct {
	syn   *syntax.Syntax
	opts  syntax.Option // options of the whole pattern
	ascii bool

	groups   []*subPatternParam // indexed by the number of the opening parenthesis; groups[0] is unused
	names    map[string][]int
	named    bool
	backrefs []*backrefParams
	calls    []*callParams
	history  []int // groups, whose captures are recorded

	lookbehind int // number of enclosing lookbehinds
	warnings   []string
}

// init initializes the parser state.
func (st *state) init(syn *syntax.Syntax, opts syntax.Option, enc syntax.Encoding) {
	st.syn = syn
	st.opts = opts
	st.ascii = enc == syntax.ASCII
	st.groups = []*subPatternParam{nil}
	st.names = make(map[string][]int)
}

// op returns, if the dialect supports the operator.
func (st *state) op(o syntax.Operator) bool {
	return st.syn.Op.Has(o)
}

// bv returns, if the dialect has the behavior.
func (st *state) bv(b syntax.Behavior) bool {
	return st.syn.Behavior.Has(b)
}

// warn adds a warning.
func (st *state) warn(format string, args ...any) {
	st.warnings = append(st.warnings, fmt.Sprintf(format, args...))
}

// numGroups returns the number of groups opened so far.
func (st *state) numGroups() int {
	return len(st.groups) - 1
}

// openGroup opens a new group. If the group has no name, the name value may be empty.
// An error is returned if the group name already exists and the dialect does not allow it.
func (st *state) openGroup(s *source, name string, pos int) (*subPatternParam, error) {
	gid := len(st.groups)

	if name != "" {
		if len(st.names[name]) > 0 && !st.bv(syntax.BehaviorAllowMultiplexDefinitionName) {
			return nil, s.errorn(ErrMultiplexDefinedName, pos, name)
		}

		st.names[name] = append(st.names[name], gid)
		st.named = true
	}

	g := &subPatternParam{
		group: gid,
		name:  name,
		pos:   pos,
	}

	st.groups = append(st.groups, g)
	return g, nil
}

// atAlt returns, whether the next token is an alternation.
func (st *state) atAlt(s *source) bool {
	return (st.op(syntax.OpVbarAlt) && s.hasPrefix("|")) ||
		(st.op(syntax.OpEscVbarAlt) && s.hasPrefix(`\|`))
}

// matchAlt consumes an alternation token.
func (st *state) matchAlt(s *source) bool {
	return (st.op(syntax.OpVbarAlt) && s.matchString("|")) ||
		(st.op(syntax.OpEscVbarAlt) && s.matchString(`\|`))
}

// atClose returns, whether the next token closes a group.
func (st *state) atClose(s *source) bool {
	return (st.op(syntax.OpLparenSubexp) && s.hasPrefix(")")) ||
		(st.op(syntax.OpEscLparenSubexp) && s.hasPrefix(`\)`))
}

// matchClose consumes a token, that closes a group.
func (st *state) matchClose(s *source) bool {
	return (st.op(syntax.OpLparenSubexp) && s.matchString(")")) ||
		(st.op(syntax.OpEscLparenSubexp) && s.matchString(`\)`))
}

// matchOpen consumes a token, that opens a group.
func (st *state) matchOpen(s *source) bool {
	return (st.op(syntax.OpLparenSubexp) && s.matchString("(")) ||
		(st.op(syntax.OpEscLparenSubexp) && s.matchString(`\(`))
}

// literal creates a node for a character.
// If the case is ignored, a set of all case variants is returned instead.
func (st *state) literal(c rune, opts syntax.Option) *regexNode {
	if opts.Has(syntax.OptionIgnoreCase) {
		set := foldLiteral(c, st.ascii)
		if _, ok := set.single(); !ok {
			return newInNode(set)
		}
	}

	return newLiteral(c)
}

// parse parses a regex pattern into a subpattern object.
// The operators and the handling of ambiguous constructs are taken from the dialect.
// All errors have the codes and positions of the Oniguruma parser.
func parse(str string, opts syntax.Option, syn *syntax.Syntax, enc syntax.Encoding) (*subPattern, *state, error) {
	var st state
	st.init(syn, opts, enc)

	if enc == syntax.UTF8 && !utf8.ValidString(str) {
		pos := 0
		for pos < len(str) {
			r, size := utf8.DecodeRuneInString(str[pos:])
			if r == utf8.RuneError && size <= 1 {
				break
			}
			pos += size
		}

		return nil, nil, newError(ErrInvalidCodePointValue, pos, "")
	}

	var s source
	s.init(str, st.ascii)

	p, err := parseSub(&s, &st, opts, 0)
	if err != nil {
		return nil, nil, err
	}

	if err := st.resolve(&s, p); err != nil {
		return nil, nil, err
	}

	return p, &st, nil
}

// parseSub parses a regex alternation and is the primary parsing subroutine of "parse" to parse a regex string.
// If the alternation only contains one element, it is returned instead of a subpattern containing the alternation.
// Additionally, the alternation is simplified by extracting a common prefix.
func parseSub(s *source, st *state, opts syntax.Option, nested int) (*subPattern, error) {
	// parse an alternation: a|b|c

	var items []*subPattern

	for {
		t, err := parseInternal(s, st, opts, nested)
		if err != nil {
			return nil, err
		}

		items = append(items, t)

		if !st.matchAlt(s) {
			break
		}
	}

	if len(items) == 1 {
		return items[0], nil
	}

	sp := newSubpattern(st)

	// check if all items share a common prefix
	for {
		var prefix *regexNode
		hasPrefix := true

		for _, item := range items {
			if item.len() == 0 {
				hasPrefix = false
				break
			}

			if prefix == nil {
				prefix = item.get(0)
			} else if !item.get(0).equals(prefix) {
				hasPrefix = false
				break
			}
		}

		if hasPrefix {
			// all subitems start with a common "prefix".
			// move it out of the branch
			for _, item := range items {
				item.del(0)
			}
			sp.append(prefix)
			continue // check next one
		}

		break
	}

	sp.append(newBranchNode(items))
	return sp, nil
}

// parseInternal parses a sequence of items until an alternation, the end of the group or the end of the pattern.
// See the comment at the enum of opcodes for a list of possible items.
func parseInternal(s *source, st *state, opts syntax.Option, nested int) (*subPattern, error) {
	sp := newSubpattern(st)

	for {
		skipExtended(s, opts)

		if s.eof() || st.atAlt(s) || (nested > 0 && st.atClose(s)) {
			break // end of subpattern
		}

		start := s.tell()

		// a repeat operator without a target
		if _, ok, err := parseRepeat(s, st); err != nil {
			return nil, err
		} else if ok {
			if !st.bv(syntax.BehaviorContextIndepRepeatOps) {
				s.seek(start)
				sp.append(st.literal(readOperatorChar(s), opts))
				continue
			}
			if st.bv(syntax.BehaviorContextInvalidRepeatOps) {
				return nil, s.errorp(ErrTargetOfRepeatNotSpec, start)
			}

			continue // nothing to repeat
		}

		var item *regexNode

		c, _ := s.peek()

		switch {
		case st.matchOpen(s):
			node, newOpts, isolated, err := parseGroup(s, st, opts, nested+1, start)
			if err != nil {
				return nil, err
			}

			if isolated {
				// the options apply to the rest of the enclosing group, including following alternatives
				rest, err := parseSub(s, st, newOpts, nested)
				if err != nil {
					return nil, err
				}

				sp.data = append(sp.data, rest.data...)
				return sp, nil
			}

			if node == nil {
				continue // comment
			}

			item = node

		case c == ')' && st.op(syntax.OpLparenSubexp), c == '\\' && s.hasPrefix(`\)`) && st.op(syntax.OpEscLparenSubexp):
			// nested == 0: a close parenthesis without an open one
			if !st.bv(syntax.BehaviorAllowUnmatchedCloseSubexp) {
				return nil, s.errorp(ErrUnmatchedCloseParen, start)
			}

			item = st.literal(readOperatorChar(s), opts)

		case c == '[' && st.op(syntax.OpBracketCC):
			s.read()

			set, err := parseClass(s, st, opts, nested+1, start)
			if err != nil {
				return nil, err
			}

			if len(set) == 0 {
				item = newEmptyNode(opFailure)
			} else {
				item = newInNode(set)
			}

		case c == '.' && st.op(syntax.OpDotAnychar):
			s.read()
			item = newAnyNode(opts.Has(syntax.OptionMultiline))

		case c == '^' && st.op(syntax.OpLineAnchor):
			s.read()

			if sp.len() > 0 && !st.bv(syntax.BehaviorContextIndepAnchors) {
				item = st.literal(c, opts)
			} else if opts.Has(syntax.OptionSingleline) {
				item = newAtNode(atBeginBuf)
			} else {
				item = newAtNode(atBeginLine)
			}

		case c == '$' && st.op(syntax.OpLineAnchor):
			s.read()

			// without context independent anchors, '$' is an anchor only at the end of a subpattern
			if !st.bv(syntax.BehaviorContextIndepAnchors) && !(s.eof() || st.atAlt(s) || st.atClose(s)) {
				item = st.literal(c, opts)
			} else if opts.Has(syntax.OptionSingleline) {
				item = newAtNode(atSemiEndBuf)
			} else {
				item = newAtNode(atEndLine)
			}

		case c == '\\' && st.op(syntax.Op2EscCapitalQQuote) && s.matchString(`\Q`):

			quoted, _ := s.skipUntil(`\E`)
			if quoted == "" {
				continue
			}

			// a repeat operator only applies to the last character
			var qs source
			qs.init(quoted, st.ascii)
			for {
				qc, _ := qs.read()
				item = st.literal(qc, opts)
				if qs.eof() {
					break
				}
				sp.append(item)
			}

		case c == '\\' && !st.op(syntax.Op2IneffectiveEscape):
			s.read()

			node, err := parseEscape(s, st, opts, start)
			if err != nil {
				return nil, err
			}

			item = node

		default:
			s.read()
			item = st.literal(c, opts)
		}

		// check for repeat operators
		for {
			skipExtended(s, opts)

			here := s.tell()

			rep, ok, err := parseRepeat(s, st)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}

			if item.isAnchor() {
				if !st.bv(syntax.BehaviorContextIndepRepeatOps) {
					s.seek(here)
					break // the operator is read as a literal
				}
				if st.bv(syntax.BehaviorContextInvalidRepeatOps) {
					return nil, s.errorp(ErrTargetOfRepeatInvalid, here)
				}

				continue // ignore the operator
			}

			if item.isRepeat() && st.bv(syntax.BehaviorWarnRedundantNestedRepeat) {
				st.warn("redundant nested repeat operator")
			}

			item = rep.apply(st, item)
		}

		sp.append(item)
	}

	return sp, nil
}

// skipExtended skips whitespace and comments, if the extended pattern form is enabled.
func skipExtended(s *source, opts syntax.Option) {
	if !opts.Has(syntax.OptionExtend) {
		return
	}

	for {
		c, ok := s.peek()
		if !ok {
			return
		}

		if isWhitespace(c) {
			s.read()
		} else if c == '#' {
			s.skipUntil("\n")
		} else {
			return
		}
	}
}

// readOperatorChar reads a operator, that is used as a literal character.
// If the operator is escaped, the character following the backslash is returned.
func readOperatorChar(s *source) rune {
	c, _ := s.read()
	if c == '\\' {
		if n, ok := s.read(); ok {
			return n
		}
	}

	return c
}

// repeat describes a parsed repeat operator.
type repeat struct {
	min, max   int
	lazy       bool
	possessive bool
}

// apply creates a repeat node for the given target.
func (r repeat) apply(st *state, item *regexNode) *regexNode {
	p := newSubpattern(st)
	p.append(item)

	op := opMaxRepeat
	if r.lazy {
		op = opMinRepeat
	} else if r.possessive {
		op = opPossessiveRepeat
	}

	return newRepeatNode(op, r.min, r.max, p)
}

// parseRepeat parses a repeat operator at the current position.
// If no repeat operator exists, the second return value is false and the position is unchanged.
// An invalid interval is no repeat operator, if the dialect allows invalid intervals.
func parseRepeat(s *source, st *state) (repeat, bool, error) {
	var r repeat
	start := s.tell()

	interval := false

	switch {
	case st.op(syntax.OpAsteriskZeroInf) && s.matchString("*"),
		st.op(syntax.OpEscAsteriskZeroInf) && s.matchString(`\*`):
		r.min, r.max = 0, infinite
	case st.op(syntax.OpPlusOneInf) && s.matchString("+"),
		st.op(syntax.OpEscPlusOneInf) && s.matchString(`\+`):
		r.min, r.max = 1, infinite
	case st.op(syntax.OpQmarkZeroOne) && s.matchString("?"),
		st.op(syntax.OpEscQmarkZeroOne) && s.matchString(`\?`):
		r.min, r.max = 0, 1
	case st.op(syntax.OpBraceInterval) && s.matchString("{"):
		ok, err := parseInterval(s, st, &r, "}")
		if err != nil || !ok {
			s.seek(start)
			return r, false, err
		}
		interval = true
	case st.op(syntax.OpEscBraceInterval) && s.matchString(`\{`):
		ok, err := parseInterval(s, st, &r, `\}`)
		if err != nil || !ok {
			s.seek(start)
			return r, false, err
		}
		interval = true
	default:
		return r, false, nil
	}

	fixed := interval && r.min == r.max

	switch {
	case s.hasPrefix("?") && st.op(syntax.OpQmarkNonGreedy):
		if fixed && st.bv(syntax.BehaviorFixedIntervalIsGreedyOnly) {
			break // a{n}? is (?:a{n})?
		}

		s.read()
		r.lazy = true
	case s.hasPrefix("+"):
		if (!interval && st.op(syntax.Op2PlusPossessiveRepeat)) ||
			(interval && st.op(syntax.Op2PlusPossessiveInterval)) {
			s.read()
			r.possessive = true
		}
	}

	return r, true, nil
}

// parseInterval parses the interval {n,m} after the opening brace.
// If the interval is invalid and the dialect allows invalid intervals, the first return value is false.
func parseInterval(s *source, st *state, r *repeat, closing string) (bool, error) {
	start := s.tell() - len(closing)
	allowInvalid := st.bv(syntax.BehaviorAllowInvalidInterval)

	invalid := func() (bool, error) {
		if allowInvalid {
			return false, nil
		}
		if s.eof() {
			return false, s.errorp(ErrEndPatternAtLeftBrace, start)
		}
		return false, s.errorp(ErrInvalidRepeatRange, start)
	}

	lo, hasLo := s.nextInt(maxRepeat)
	hi := lo

	if s.match(',') {
		var hasHi bool
		hi, hasHi = s.nextInt(maxRepeat)

		if !hasLo {
			if !hasHi || !st.bv(syntax.BehaviorAllowIntervalLowAbbrev) {
				return invalid()
			}
			lo = 0
		}
		if !hasHi {
			hi = infinite
		}
	} else if !hasLo {
		return invalid()
	}

	if !s.matchString(closing) {
		return invalid()
	}

	if lo > maxRepeat || hi > maxRepeat {
		return false, s.errorp(ErrTooBigNumberForRepeatRange, start)
	}
	if hi != infinite && hi < lo {
		return false, s.errorp(ErrUpperSmallerThanLower, start)
	}

	r.min = lo
	r.max = hi

	return true, nil
}

// parseGroup parses a group after the opening parenthesis.
// If the group only contains options, like `(?i)`, then the third return value is true
// and the new options are returned, which apply to the rest of the enclosing group.
// Comments return a nil node.
func parseGroup(s *source, st *state, opts syntax.Option, nested int, start int) (*regexNode, syntax.Option, bool, error) {
	if nested > maxParseDepth {
		return nil, opts, false, s.errorp(ErrParseDepthLimitOver, start)
	}

	var param *subPatternParam
	var err error

	if st.op(syntax.Op2QmarkGroupEffect) && s.match('?') {
		c, ok := s.read()
		if !ok {
			return nil, opts, false, s.errorh(ErrEndPatternInGroup)
		}

		switch {
		case c == ':':
			param = &subPatternParam{pos: start}

		case c == '=' || c == '!':
			p, err := parseGroupBody(s, st, opts, nested)
			if err != nil {
				return nil, opts, false, err
			}

			op := opAssert
			if c == '!' {
				op = opAssertNot
			}
			return newAssertNode(op, dirAhead, p), opts, false, nil

		case c == '>':
			p, err := parseGroupBody(s, st, opts, nested)
			if err != nil {
				return nil, opts, false, err
			}

			return newAtomicGroupNode(p), opts, false, nil

		case c == '#':
			if _, ok := s.skipUntil(")"); !ok {
				return nil, opts, false, s.errorh(ErrEndPatternInGroup)
			}
			return nil, opts, false, nil

		case c == '<' && (s.hasPrefix("=") || s.hasPrefix("!")):
			neg := s.hasPrefix("!")
			s.read()

			st.lookbehind++
			p, err := parseGroupBody(s, st, opts, nested)
			st.lookbehind--
			if err != nil {
				return nil, opts, false, err
			}

			if !st.checkLookbehind(p) {
				return nil, opts, false, s.errorp(ErrInvalidLookBehind, start)
			}

			op := opAssert
			if neg {
				op = opAssertNot
			}
			return newAssertNode(op, dirBehind, p), opts, false, nil

		case (c == '<' || c == '\'') && st.op(syntax.Op2QmarkLtNamedGroup):
			param, err = parseNamedGroup(s, st, c, start)
			if err != nil {
				return nil, opts, false, err
			}

		case c == '@' && st.op(syntax.Op2AtmarkCaptureHistory):
			if d, ok := s.peek(); ok && (d == '<' || d == '\'') && st.op(syntax.Op2QmarkLtNamedGroup) {
				s.read()
				param, err = parseNamedGroup(s, st, d, start)
			} else {
				param, err = st.openGroup(s, "", start)
			}
			if err != nil {
				return nil, opts, false, err
			}

			param.history = true

		case st.op(syntax.Op2OptionPerl) || st.op(syntax.Op2OptionRuby):
			s.seek(s.tell() - s.clen(c))

			newOpts, scoped, err := parseFlags(s, st, opts)
			if err != nil {
				return nil, opts, false, err
			}
			if !scoped {
				return nil, newOpts, true, nil
			}

			opts = newOpts
			param = &subPatternParam{pos: start}

		default:
			return nil, opts, false, s.errorp(ErrUndefinedGroupOption, start)
		}
	} else {
		param, err = st.openGroup(s, "", start)
		if err != nil {
			return nil, opts, false, err
		}
	}

	p, err := parseGroupBody(s, st, opts, nested)
	if err != nil {
		return nil, opts, false, err
	}

	param.p = p
	return newSubPatternNode(param), opts, false, nil
}

// parseGroupBody parses the content of a group including the closing parenthesis.
func parseGroupBody(s *source, st *state, opts syntax.Option, nested int) (*subPattern, error) {
	p, err := parseSub(s, st, opts, nested)
	if err != nil {
		return nil, err
	}

	if !st.matchClose(s) {
		return nil, s.errorh(ErrEndPatternWithUnmatched)
	}

	return p, nil
}

// parseNamedGroup parses the name of a named group and opens the group.
func parseNamedGroup(s *source, st *state, delim rune, start int) (*subPatternParam, error) {
	namePos := s.tell()

	name, err := parseName(s, delim, true)
	if err != nil {
		return nil, err
	}

	return st.openGroup(s, name, namePos)
}

// parseName reads a group name until the closing delimiter.
// Names of definitions must not start with a digit. References may also be numbers with an optional sign.
func parseName(s *source, delim rune, definition bool) (string, error) {
	end := delim
	if delim == '<' {
		end = '>'
	}

	pos := s.tell()

	name, ok := s.skipUntil(string(end))
	if !ok {
		s.seek(pos)
		return "", s.errorn(ErrInvalidGroupName, pos, name)
	}
	if name == "" {
		return "", s.errorp(ErrEmptyGroupName, pos)
	}

	if !definition {
		ref := strings.TrimLeft(name, "+-")
		if len(name)-len(ref) <= 1 && ref != "" && strings.Trim(ref, "0123456789") == "" {
			return name, nil
		}

		// named reference with a recursion level, like \k<name+1>
		if i := strings.LastIndexAny(name, "+-"); i > 0 && strings.Trim(name[i+1:], "0123456789") == "" && i+1 < len(name) {
			name = name[:i]
		}
	}

	first, _ := utf8.DecodeRuneInString(name)
	if isDigit(first) || first == '+' || first == '-' {
		return "", s.errorn(ErrInvalidGroupName, pos, name)
	}
	for _, c := range name {
		if !isNameChar(c) {
			return "", s.errorn(ErrInvalidCharInGroupName, pos, name)
		}
	}

	return name, nil
}

// parseFlags parses the options of a group, like `(?i-m)` or `(?x:...)`.
// The second return value is true, if the options are scoped to a group.
// The letters are those of Perl ("imsx") or of Ruby ("imx").
func parseFlags(s *source, st *state, opts syntax.Option) (syntax.Option, bool, error) {
	perl := st.op(syntax.Op2OptionPerl)
	start := s.tell()

	set := func(o syntax.Option, on bool) {
		if on {
			opts |= o
		} else {
			opts &^= o
		}
	}

	neg := false
	for {
		c, ok := s.read()
		if !ok {
			return opts, false, s.errorh(ErrEndPatternInGroup)
		}

		switch {
		case c == ')':
			return opts, false, nil
		case c == ':':
			return opts, true, nil
		case c == '-' && !neg:
			neg = true
		case c == 'i':
			set(syntax.OptionIgnoreCase, !neg)
		case c == 'x':
			set(syntax.OptionExtend, !neg)
		case c == 'm' && perl:
			set(syntax.OptionSingleline, neg)
		case c == 's' && perl:
			set(syntax.OptionMultiline, !neg)
		case c == 'm':
			set(syntax.OptionMultiline, !neg)
		default:
			return opts, false, s.errorp(ErrUndefinedGroupOption, start)
		}
	}
}

// parseEscape parses an escape sequence outside of character classes after the backslash.
// `start` is the position of the backslash.
func parseEscape(s *source, st *state, opts syntax.Option, start int) (*regexNode, error) {
	c, ok := s.read()
	if !ok {
		return nil, s.errorp(ErrEndPatternAtEscape, start)
	}

	// character types and properties
	set, ok, err := parseTypeEscape(s, st, c, start)
	if err != nil {
		return nil, err
	}
	if ok {
		if opts.Has(syntax.OptionIgnoreCase) {
			set = set.fold(st.ascii)
		}
		return newInNode(set), nil
	}

	switch {
	case st.op(syntax.OpEscAZBufAnchor) && (c == 'A' || c == 'Z' || c == 'z'):
		switch c {
		case 'A':
			return newAtNode(atBeginBuf), nil
		case 'Z':
			return newAtNode(atSemiEndBuf), nil
		default:
			return newAtNode(atEndBuf), nil
		}

	case st.op(syntax.OpEscCapitalGBeginAnchor) && c == 'G':
		return newAtNode(atBeginPosition), nil

	case st.op(syntax.OpEscBWordBound) && (c == 'b' || c == 'B'):
		if c == 'b' {
			return newAtNode(atBoundary), nil
		}
		return newAtNode(atNonBoundary), nil

	case st.op(syntax.OpEscLtGtWordBeginEnd) && (c == '<' || c == '>'):
		if c == '<' {
			return newAtNode(atWordBegin), nil
		}
		return newAtNode(atWordEnd), nil

	case st.op(syntax.Op2EscGnuBufAnchor) && (c == '`' || c == '\''):
		if c == '`' {
			return newAtNode(atBeginBuf), nil
		}
		return newAtNode(atEndBuf), nil

	case st.op(syntax.OpDecimalBackref) && '1' <= c && c <= '9':
		s.seek(start + 1)
		n, _ := s.nextInt(maxBackrefNum)

		if n <= 9 || n <= st.numGroups() {
			if n > maxBackrefNum {
				return nil, s.errorp(ErrTooBigBackrefNumber, start)
			}

			return st.backref(&backrefParams{
				groups:     []int{n},
				numbered:   true,
				ignoreCase: opts.Has(syntax.OptionIgnoreCase),
				pos:        start,
			})
		}

		// not a backreference; it is either an octal number or a digit
		s.seek(start + 1)
		c, _ = s.read()

	case st.op(syntax.Op2EscKNamedBackref) && c == 'k':
		d, ok := s.peek()
		if ok && (d == '<' || d == '\'') {
			s.read()
			return parseBackrefName(s, st, opts, d, start)
		}

		st.warn("invalid back reference")

	case st.op(syntax.Op2EscGSubexpCall) && c == 'g':
		d, ok := s.peek()
		if ok && (d == '<' || d == '\'') {
			s.read()
			return parseCallName(s, st, d, start)
		}
	}

	r, ok, err := parseCharEscape(s, st, c, start, false)
	if err != nil {
		return nil, err
	}
	if ok {
		return st.literal(r, opts), nil
	}

	return st.literal(c, opts), nil
}

// backref registers a backreference.
func (st *state) backref(p *backrefParams) (*regexNode, error) {
	if st.lookbehind > 0 {
		return nil, newError(ErrInvalidLookBehind, p.pos, "")
	}

	st.backrefs = append(st.backrefs, p)
	return newBackrefNode(p), nil
}

// parseBackrefName parses a backreference like \k<name>, \k<1> or \k<-1>.
func parseBackrefName(s *source, st *state, opts syntax.Option, delim rune, start int) (*regexNode, error) {
	name, err := parseName(s, delim, false)
	if err != nil {
		return nil, err
	}

	p := &backrefParams{
		ignoreCase: opts.Has(syntax.OptionIgnoreCase),
		pos:        start,
	}

	if n, rel, ok := parseNumberRef(name); ok {
		switch {
		case rel > 0 || n == 0:
			return nil, s.errorn(ErrInvalidBackref, start, name)
		case rel < 0:
			n = st.numGroups() + 1 - n
			if n <= 0 {
				return nil, s.errorn(ErrInvalidBackref, start, name)
			}
		case n > maxBackrefNum:
			return nil, s.errorp(ErrTooBigBackrefNumber, start)
		}

		p.groups = []int{n}
		p.numbered = true
	} else {
		p.name = name
	}

	return st.backref(p)
}

// parseCallName parses a subexpression call like \g<name>, \g<1>, \g<-1> or \g<+1>.
func parseCallName(s *source, st *state, delim rune, start int) (*regexNode, error) {
	name, err := parseName(s, delim, false)
	if err != nil {
		return nil, err
	}

	if st.lookbehind > 0 {
		return nil, s.errorp(ErrInvalidLookBehind, start)
	}

	p := &callParams{
		pos: start,
	}

	if n, rel, ok := parseNumberRef(name); ok {
		switch {
		case rel < 0:
			n = st.numGroups() + 1 - n
		case rel > 0:
			n = st.numGroups() + n
		}
		if n < 0 || (rel != 0 && n == 0) {
			return nil, s.errorn(ErrInvalidBackref, start, name)
		}
		if n > maxBackrefNum {
			return nil, s.errorp(ErrTooBigNumber, start)
		}

		p.group = n
		p.name = name
		p.numbered = true
	} else {
		p.name = name
	}

	st.calls = append(st.calls, p)
	return newCallNode(p), nil
}

// parseNumberRef parses a numeric group reference with an optional sign.
// The second return value is the sign: -1 for "-n", 1 for "+n", otherwise 0.
func parseNumberRef(name string) (int, int, bool) {
	rel := 0
	switch {
	case strings.HasPrefix(name, "-"):
		rel = -1
		name = name[1:]
	case strings.HasPrefix(name, "+"):
		rel = 1
		name = name[1:]
	}

	if name == "" || strings.Trim(name, "0123456789") != "" {
		return 0, 0, false
	}

	n, err := strconv.Atoi(name)
	if err != nil {
		n = maxBackrefNum + 1
	}

	return n, rel, true
}

// parseTypeEscape parses character types like \w, \d, \s, \h and properties like \p{Alpha}.
// If the escape is no character type, the second return value is false.
func parseTypeEscape(s *source, st *state, c rune, start int) (charSet, bool, error) {
	switch {
	case st.op(syntax.OpEscWWord) && (c == 'w' || c == 'W'):
		return charType(typeWord, c == 'W', st.ascii), true, nil
	case st.op(syntax.OpEscDDigit) && (c == 'd' || c == 'D'):
		return charType(typeDigit, c == 'D', st.ascii), true, nil
	case st.op(syntax.OpEscSWhiteSpace) && (c == 's' || c == 'S'):
		return charType(typeSpace, c == 'S', st.ascii), true, nil
	case st.op(syntax.Op2EscHXDigit) && (c == 'h' || c == 'H'):
		return charType(typeXDigit, c == 'H', st.ascii), true, nil
	case st.op(syntax.Op2EscPBraceCharProperty) && (c == 'p' || c == 'P') && s.hasPrefix("{"):
		s.read()

		negate := c == 'P'
		if st.op(syntax.Op2EscPBraceCircumflexNot) && s.match('^') {
			negate = !negate
		}

		pos := s.tell()
		name, ok := s.skipUntil("}")
		if !ok {
			s.seek(pos)
			return nil, false, s.errorn(ErrInvalidCharPropertyName, start, name)
		}

		set, ok := propertyClass(name, st.ascii)
		if !ok {
			return nil, false, s.errorn(ErrInvalidCharPropertyName, start, name)
		}

		if negate {
			set = set.negate()
		}
		return set, true, nil
	default:
		return nil, false, nil
	}
}

// parseCharEscape parses escapes, that denote a single character, after the backslash.
// If the escape is no character escape, the second return value is false.
func parseCharEscape(s *source, st *state, c rune, start int, inClass bool) (rune, bool, error) {
	switch {
	case st.op(syntax.OpEscControlChars) && strings.ContainsRune("ntrfae", c):
		return map[rune]rune{'n': '\n', 't': '\t', 'r': '\r', 'f': '\f', 'a': '\a', 'e': 0x1b}[c], true, nil

	case c == 'v' && st.op(syntax.Op2EscVVtab) && st.op(syntax.OpEscControlChars):
		return '\v', true, nil

	case c == 'b' && inClass:
		return '\b', true, nil

	case c == 'c' && st.op(syntax.OpEscCControl):
		r, err := parseControl(s, st, start)
		return r, true, err

	case c == 'C' && st.op(syntax.Op2EscCapitalCBarControl):
		if !s.match('-') {
			if s.eof() {
				return 0, false, s.errorp(ErrEndPatternAtControl, start)
			}
			return 0, false, s.errorp(ErrControlCodeSyntax, start)
		}

		r, err := parseControl(s, st, start)
		return r, true, err

	case c == 'M' && st.op(syntax.Op2EscCapitalMBarMeta):
		if !s.match('-') {
			if s.eof() {
				return 0, false, s.errorp(ErrEndPatternAtMeta, start)
			}
			return 0, false, s.errorp(ErrMetaCodeSyntax, start)
		}

		m, ok := s.read()
		if !ok {
			return 0, false, s.errorp(ErrEndPatternAtMeta, start)
		}
		if m == '\\' {
			n, ok := s.read()
			if !ok {
				return 0, false, s.errorp(ErrEndPatternAtEscape, start)
			}

			r, ok, err := parseCharEscape(s, st, n, start, inClass)
			if err != nil {
				return 0, false, err
			}
			if ok {
				m = r
			} else {
				m = n
			}
		}

		r, err := st.rawByte(s, byte(m&0xff|0x80), start)
		return r, true, err

	case c == 'x' && st.op(syntax.OpEscXBraceHex8) && s.hasPrefix("{"):
		s.read()

		h := s.nextHex(9)
		if len(h) > 8 {
			return 0, false, s.errorp(ErrTooLongWideCharValue, start)
		}
		if h == "" || !s.match('}') {
			return 0, false, s.errorp(ErrInvalidCodePointValue, start)
		}

		v, _ := strconv.ParseUint(h, 16, 32)
		if v > utf8.MaxRune {
			return 0, false, s.errorp(ErrTooBigWideCharValue, start)
		}
		return rune(v), true, nil

	case c == 'x' && st.op(syntax.OpEscXHex2):
		h := s.nextHex(2)
		if h == "" {
			return 0, false, s.errorp(ErrInvalidCodePointValue, start)
		}

		v, _ := strconv.ParseUint(h, 16, 8)
		r, err := st.rawByte(s, byte(v), start)
		return r, true, err

	case c == 'u' && st.op(syntax.Op2EscUHex4):
		h := s.nextHex(4)
		if len(h) != 4 {
			return 0, false, s.errorp(ErrInvalidCodePointValue, start)
		}

		v, _ := strconv.ParseUint(h, 16, 16)
		return rune(v), true, nil

	case isOctDigit(c) && st.op(syntax.OpEscOctal3):
		s.seek(s.tell() - 1)

		o := s.nextOct(3)
		v, _ := strconv.ParseUint(o, 8, 16)
		if v > 0xff {
			return 0, false, s.errorp(ErrTooBigNumber, start)
		}

		r, err := st.rawByte(s, byte(v), start)
		return r, true, err
	}

	return 0, false, nil
}

// parseControl parses the character of a control escape like \cx or \C-x.
func parseControl(s *source, st *state, start int) (rune, error) {
	c, ok := s.read()
	if !ok {
		return 0, s.errorp(ErrEndPatternAtControl, start)
	}

	if c == '\\' {
		n, ok := s.read()
		if !ok {
			return 0, s.errorp(ErrEndPatternAtEscape, start)
		}

		r, ok, err := parseCharEscape(s, st, n, start, false)
		if err != nil {
			return 0, err
		}
		if ok {
			c = r
		} else {
			c = n
		}
	}

	if c == '?' {
		return 0x7f, nil
	}
	return c & 0x9f, nil
}

// rawByte converts a byte, given by an escape sequence, into a character.
// Under UTF-8, bytes above 0x7f must be followed by further \xHH escapes,
// that complete a multibyte sequence.
func (st *state) rawByte(s *source, b byte, start int) (rune, error) {
	if st.ascii || b < utf8.RuneSelf {
		return rune(b), nil
	}

	n := utf8SeqLen(b)
	if n < 2 {
		return 0, s.errorp(ErrTooShortMultiByteString, start)
	}

	buf := []byte{b}
	for len(buf) < n {
		save := s.tell()
		if !s.matchString(`\x`) {
			return 0, s.errorp(ErrTooShortMultiByteString, start)
		}

		h := s.nextHex(2)
		if len(h) != 2 {
			s.seek(save)
			return 0, s.errorp(ErrTooShortMultiByteString, start)
		}

		v, _ := strconv.ParseUint(h, 16, 8)
		buf = append(buf, byte(v))
	}

	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		return 0, s.errorp(ErrTooShortMultiByteString, start)
	}

	return r, nil
}

// parseClass parses a character class after the opening bracket.
// The result contains all characters of the class; negation, intersection and
// case folding are already applied.
func parseClass(s *source, st *state, opts syntax.Option, nested int, start int) (charSet, error) {
	if nested > maxParseDepth {
		return nil, s.errorp(ErrParseDepthLimitOver, start)
	}

	negate := s.match('^')

	var operands []charSet // left operands of "&&"
	var set charSet
	hasItems := false
	first := true

	for {
		if s.eof() {
			return nil, s.errorp(ErrPrematureEndOfCharClass, start)
		}

		if s.hasPrefix("]") {
			if !first {
				s.read()
				break
			}

			// ']' as the first character is a literal, if the class is closed later
			if !strings.Contains(s.rest()[1:], "]") {
				return nil, s.errorp(ErrEmptyCharClass, start)
			}
			if st.bv(syntax.BehaviorWarnCCOpNotEscaped) {
				st.warn("character class has ']' without escape")
			}
		}

		first = false

		if st.op(syntax.Op2CClassSetOp) && s.matchString("&&") {
			if hasItems {
				operands = append(operands, set)
			}

			set = nil
			hasItems = false
			continue
		}

		itemPos := s.tell()

		lo, cls, isSet, err := parseClassItem(s, st, opts, nested)
		if err != nil {
			return nil, err
		}

		hasItems = true

		if isSet {
			set = set.union(cls)

			if isRangeOp(s) {
				// a class can not start a range
				if !st.bv(syntax.BehaviorAllowDoubleRangeOpInCC) {
					return nil, s.errorp(ErrCharClassValueAtStart, itemPos)
				}
				if st.bv(syntax.BehaviorWarnCCOpNotEscaped) {
					st.warn("character class has '-' without escape")
				}

				s.read()
				set = set.union(charSet{'-', '-'})
			}
			continue
		}

		if !isRangeOp(s) {
			set = set.union(charSet{lo, lo})
			continue
		}

		s.read() // '-'

		hiPos := s.tell()

		hi, _, hiIsSet, err := parseClassItem(s, st, opts, nested)
		if err != nil {
			return nil, err
		}
		if hiIsSet {
			return nil, s.errorp(ErrCharClassValueAtEnd, hiPos)
		}

		if lo > hi {
			if !st.bv(syntax.BehaviorAllowEmptyRangeInCC) {
				return nil, s.errorp(ErrEmptyRangeInCharClass, itemPos)
			}
		} else {
			set = set.union(charSet{lo, hi})
		}

		if isRangeOp(s) {
			// a-b-c
			if !st.bv(syntax.BehaviorAllowDoubleRangeOpInCC) {
				return nil, s.errorh(ErrUnmatchedRangeSpecifier)
			}
			if st.bv(syntax.BehaviorWarnCCOpNotEscaped) {
				st.warn("character class has '-' without escape")
			}

			s.read()
			set = set.union(charSet{'-', '-'})
		}
	}

	if opts.Has(syntax.OptionIgnoreCase) {
		set = set.fold(st.ascii)
	}

	for _, o := range operands {
		if opts.Has(syntax.OptionIgnoreCase) {
			o = o.fold(st.ascii)
		}
		if hasItems {
			set = o.intersect(set)
		} else {
			set = o
			hasItems = true
		}
	}

	if negate {
		set = set.negate()

		if st.bv(syntax.BehaviorNotNewlineInNegativeCC) {
			set = set.intersect(charSet{'\n', '\n'}.negate())
		}
	}

	return set, nil
}

// isRangeOp returns true, if the next character is a '-', that is not followed by the end of the class.
func isRangeOp(s *source) bool {
	return s.hasPrefix("-") && !s.hasPrefix("-]") && len(s.rest()) > 1
}

// parseClassItem parses a single item of a character class.
// Items are either single characters or sets, like nested classes, POSIX brackets and character types.
func parseClassItem(s *source, st *state, opts syntax.Option, nested int) (rune, charSet, bool, error) {
	start := s.tell()

	c, _ := s.read()

	switch {
	case c == '[' && st.op(syntax.OpPosixBracket) && s.hasPrefix(":"):
		if set, ok, err := parsePosixBracket(s, st); err != nil {
			return 0, nil, false, err
		} else if ok {
			return 0, set, true, nil
		}

		if st.op(syntax.Op2CClassSetOp) {
			set, err := parseClass(s, st, opts, nested+1, start)
			return 0, set, true, err
		}

	case c == '[' && st.op(syntax.Op2CClassSetOp):
		set, err := parseClass(s, st, opts, nested+1, start)
		return 0, set, true, err

	case c == '\\' && st.bv(syntax.BehaviorBackslashEscapeInCC):
		e, ok := s.read()
		if !ok {
			return 0, nil, false, s.errorp(ErrEndPatternAtEscape, start)
		}

		set, ok, err := parseTypeEscape(s, st, e, start)
		if err != nil {
			return 0, nil, false, err
		}
		if ok {
			return 0, set, true, nil
		}

		r, ok, err := parseCharEscape(s, st, e, start, true)
		if err != nil {
			return 0, nil, false, err
		}
		if ok {
			return r, nil, false, nil
		}

		return e, nil, false, nil
	}

	return c, nil, false, nil
}

// parsePosixBracket parses a POSIX bracket like [:alpha:] or [:^alpha:] after the '['.
// If the text is no POSIX bracket, the position is unchanged and the second return value is false.
func parsePosixBracket(s *source, st *state) (charSet, bool, error) {
	start := s.tell() - 1
	rest := s.rest()

	end := strings.Index(rest, ":]")
	if end < 0 || strings.ContainsAny(rest[1:end], "[]") {
		return nil, false, nil
	}

	name := rest[1:end]
	negate := strings.HasPrefix(name, "^")
	if negate {
		name = name[1:]
	}

	set, ok := posixClass(name, st.ascii)
	if !ok || name == "any" {
		return nil, false, s.errorp(ErrInvalidPosixBracketType, start)
	}

	s.seek(s.tell() + end + 2)

	if negate {
		set = set.negate()
	}
	return set, true, nil
}
