package regex

import (
	"slices"

	"github.com/magnetde/onig/syntax"
)

// resolve finishes the parsed pattern.
// The groups are numbered by the capture policy and all references are resolved.
// Then the subexpression calls are checked for never ending recursions.
func (st *state) resolve(s *source, p *subPattern) error {
	onlyNamed := st.opts.Has(syntax.OptionDontCaptureGroup) ||
		(!st.opts.Has(syntax.OptionCaptureGroup) && st.bv(syntax.BehaviorCaptureOnlyNamedGroup) && st.named)

	// number the groups
	captures := []*subPatternParam{nil}
	names := make(map[string][]int)

	for _, g := range st.groups[1:] {
		if onlyNamed && g.name == "" {
			g.group = 0
			continue
		}

		g.group = len(captures)
		captures = append(captures, g)

		if g.name != "" {
			names[g.name] = append(names[g.name], g.group)
		}
	}

	st.groups = captures
	st.names = names

	count := len(captures) - 1

	for _, b := range st.backrefs {
		if b.numbered {
			if onlyNamed {
				return s.errorp(ErrNumberedBackrefNotAllowed, b.pos)
			}
			if b.groups[0] > count {
				return s.errorp(ErrInvalidBackref, b.pos)
			}
			continue
		}

		groups, ok := names[b.name]
		if !ok {
			return s.errorn(ErrUndefinedNameReference, b.pos, b.name)
		}

		b.groups = groups
	}

	for _, c := range st.calls {
		if c.numbered {
			if onlyNamed && c.group != 0 {
				return s.errorp(ErrNumberedBackrefNotAllowed, c.pos)
			}
			if c.group > count {
				return s.errorn(ErrUndefinedGroupReference, c.pos, c.name)
			}
			continue
		}

		groups, ok := names[c.name]
		if !ok {
			return s.errorn(ErrUndefinedNameReference, c.pos, c.name)
		}
		if len(groups) > 1 {
			return s.errorn(ErrMultiplexDefinitionNameCall, c.pos, c.name)
		}

		c.group = groups[0]
	}

	if err := st.collectHistory(s); err != nil {
		return err
	}

	return st.checkRecursion(s, p)
}

// collectHistory determines the groups, whose captures are recorded in the capture history.
// These are the groups marked with `(?@...)` and the targets of subexpression calls.
func (st *state) collectHistory(s *source) error {
	var history []int

	for _, g := range st.groups[1:] {
		if g.history {
			if g.group > maxHistoryGroup {
				return s.errorp(ErrGroupNumberTooBigForHistory, g.pos)
			}

			history = append(history, g.group)
		}
	}

	for _, c := range st.calls {
		// calls to groups, that can not be recorded, are still expanded
		if c.group > 0 && c.group <= maxHistoryGroup {
			history = append(history, c.group)
		}
	}

	slices.Sort(history)
	st.history = slices.Compact(history)

	return nil
}

// body returns the content of a group. Group 0 is the whole pattern.
func (st *state) body(root *subPattern, group int) *subPattern {
	if group == 0 {
		return root
	}
	return st.groups[group].p
}

// checkRecursion reports an error, if a called group can call itself without consuming
// characters, or if every path through a called group calls the group again.
func (st *state) checkRecursion(s *source, root *subPattern) error {
	if len(st.calls) == 0 {
		return nil
	}

	lengths := make(map[int]int)

	var targets []int
	for _, c := range st.calls {
		targets = append(targets, c.group)
	}
	slices.Sort(targets)
	targets = slices.Compact(targets)

	for _, g := range targets {
		// left recursion
		if st.reachesAtHead(root, st.body(root, g), g, lengths, map[int]bool{}) {
			return s.errorp(ErrNeverEndingRecursion, st.callPos(g))
		}

		// mandatory recursion
		if st.alwaysCalls(root, st.body(root, g), g, map[int]bool{}) {
			return s.errorp(ErrNeverEndingRecursion, st.callPos(g))
		}
	}

	return nil
}

// callPos returns the position of the first call to the group.
func (st *state) callPos(group int) int {
	for _, c := range st.calls {
		if c.group == group {
			return c.pos
		}
	}
	return 0
}

// reachesAtHead checks, if a call to `target` is reachable in p before any character is consumed.
func (st *state) reachesAtHead(root, p *subPattern, target int, lengths map[int]int, visiting map[int]bool) bool {
	for _, n := range p.data {
		switch n.opcode {
		case opCall:
			g := n.params.(*callParams).group
			if g == target {
				return true
			}
			if !visiting[g] {
				visiting[g] = true
				if st.reachesAtHead(root, st.body(root, g), target, lengths, visiting) {
					return true
				}
			}
		case opAssert, opAssertNot:
			// lookarounds do not consume characters, so the following node is still at the head
			continue
		default:
			for _, c := range n.children() {
				if st.reachesAtHead(root, c, target, lengths, visiting) {
					return true
				}
			}
		}

		if st.minLenNode(root, n, lengths, map[int]bool{}) > 0 {
			return false
		}
	}

	return false
}

// alwaysCalls checks, if every path through p calls the group `target`.
func (st *state) alwaysCalls(root, p *subPattern, target int, visiting map[int]bool) bool {
	for _, n := range p.data {
		if st.alwaysCallsNode(root, n, target, visiting) {
			return true
		}
	}
	return false
}

// alwaysCallsNode checks, if every path through the node calls the group `target`.
func (st *state) alwaysCallsNode(root *subPattern, n *regexNode, target int, visiting map[int]bool) bool {
	switch n.opcode {
	case opCall:
		g := n.params.(*callParams).group
		if g == target {
			return true
		}
		if visiting[g] {
			return false
		}

		visiting[g] = true
		defer delete(visiting, g)

		return st.alwaysCalls(root, st.body(root, g), target, visiting)
	case opBranch:
		for _, item := range n.params.([]*subPattern) {
			if !st.alwaysCalls(root, item, target, visiting) {
				return false
			}
		}
		return true
	case opMinRepeat, opMaxRepeat, opPossessiveRepeat:
		p := n.params.(repeatParams)
		return p.min > 0 && st.alwaysCalls(root, p.item, target, visiting)
	case opAssert:
		return st.alwaysCalls(root, n.params.(assertParams).p, target, visiting)
	case opSubpattern:
		return st.alwaysCalls(root, n.params.(*subPatternParam).p, target, visiting)
	case opAtomicGroup:
		return st.alwaysCalls(root, n.params.(*subPattern), target, visiting)
	default:
		return false
	}
}

// minLen returns the minimum number of characters, that p consumes.
// Recursive calls are counted as empty.
func (st *state) minLen(root, p *subPattern, lengths map[int]int, visiting map[int]bool) int {
	l := 0
	for _, n := range p.data {
		l += st.minLenNode(root, n, lengths, visiting)
	}
	return l
}

// minLenNode returns the minimum number of characters, that the node consumes.
func (st *state) minLenNode(root *subPattern, n *regexNode, lengths map[int]int, visiting map[int]bool) int {
	switch n.opcode {
	case opLiteral, opAny, opIn:
		return 1
	case opBranch:
		l := -1
		for _, item := range n.params.([]*subPattern) {
			if m := st.minLen(root, item, lengths, visiting); l < 0 || m < l {
				l = m
			}
		}
		return max(l, 0)
	case opMinRepeat, opMaxRepeat, opPossessiveRepeat:
		p := n.params.(repeatParams)
		if p.min == 0 {
			return 0
		}
		return p.min * st.minLen(root, p.item, lengths, visiting)
	case opSubpattern:
		return st.minLen(root, n.params.(*subPatternParam).p, lengths, visiting)
	case opAtomicGroup:
		return st.minLen(root, n.params.(*subPattern), lengths, visiting)
	case opCall:
		g := n.params.(*callParams).group
		if l, ok := lengths[g]; ok {
			return l
		}
		if visiting[g] {
			return 0
		}

		visiting[g] = true
		l := st.minLen(root, st.body(root, g), lengths, visiting)
		delete(visiting, g)

		lengths[g] = l
		return l
	default:
		return 0
	}
}

// checkLookbehind checks, that the content of a lookbehind has a fixed length.
// If the dialect allows it, the alternatives of a top level alternation may have different lengths.
func (st *state) checkLookbehind(p *subPattern) bool {
	for i, n := range p.data {
		if i == len(p.data)-1 && n.opcode == opBranch && st.bv(syntax.BehaviorDifferentLenAltLookBehind) {
			for _, item := range n.params.([]*subPattern) {
				if _, ok := fixedLen(item); !ok {
					return false
				}
			}
			continue
		}

		if _, ok := fixedLenNode(n); !ok {
			return false
		}
	}

	return true
}

// fixedLen returns the number of characters, that p always consumes.
// If the length is not fixed, the second return value is false.
func fixedLen(p *subPattern) (int, bool) {
	l := 0
	for _, n := range p.data {
		m, ok := fixedLenNode(n)
		if !ok {
			return 0, false
		}
		l += m
	}
	return l, true
}

// fixedLenNode returns the number of characters, that the node always consumes.
func fixedLenNode(n *regexNode) (int, bool) {
	switch n.opcode {
	case opLiteral, opAny, opIn:
		return 1, true
	case opAt, opAssert, opAssertNot, opFailure:
		return 0, true
	case opBranch:
		l := -1
		for _, item := range n.params.([]*subPattern) {
			m, ok := fixedLen(item)
			if !ok || (l >= 0 && m != l) {
				return 0, false
			}
			l = m
		}
		return max(l, 0), true
	case opMinRepeat, opMaxRepeat, opPossessiveRepeat:
		p := n.params.(repeatParams)
		if p.min != p.max {
			return 0, false
		}

		m, ok := fixedLen(p.item)
		return p.min * m, ok
	case opSubpattern:
		return fixedLen(n.params.(*subPatternParam).p)
	case opAtomicGroup:
		return fixedLen(n.params.(*subPattern))
	default:
		return 0, false
	}
}
