package regex

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// subPattern is a type, that represents a regex subpattern.
// It contains a list of regex nodes that represents a sequence of subpatterns.
type subPattern struct {
	state *state
	data  []*regexNode
}

// newSubpattern creates a new empty subpattern.
func newSubpattern(state *state) *subPattern {
	return &subPattern{
		state: state,
	}
}

// append adds a new regex node to the sequence of regex nodes of this subpattern.
func (p *subPattern) append(n *regexNode) {
	p.data = append(p.data, n)
}

// len returns the number of regex nodes of this subpattern.
func (p *subPattern) len() int {
	return len(p.data)
}

// get returns the i-th regex node of this subpattern.
func (p *subPattern) get(i int) *regexNode {
	i = p.index(i)
	return p.data[i]
}

// index returns `i` if it is a non-negative index, otherwise it will return `p.len() + i`.
// This allows, to pass negative indices.
func (p *subPattern) index(i int) int {
	if i < 0 {
		i += len(p.data)
	}
	return i
}

// del deletes the i-th item of this subpattern.
func (p *subPattern) del(i int) {
	i = p.index(i)
	p.data = slices.Delete(p.data, i, i+1)
}

// walk calls fn for every node of the subpattern, including nested nodes.
// If fn returns false, the children of the node are skipped.
// Calls are not followed.
func (p *subPattern) walk(fn func(n *regexNode) bool) {
	for _, n := range p.data {
		if !fn(n) {
			continue
		}

		for _, c := range n.children() {
			c.walk(fn)
		}
	}
}

// children returns the subpatterns, that are directly contained in the node.
func (n *regexNode) children() []*subPattern {
	switch n.opcode {
	case opAssert, opAssertNot:
		return []*subPattern{n.params.(assertParams).p}
	case opBranch:
		return n.params.([]*subPattern)
	case opMinRepeat, opMaxRepeat, opPossessiveRepeat:
		return []*subPattern{n.params.(repeatParams).item}
	case opSubpattern:
		return []*subPattern{n.params.(*subPatternParam).p}
	case opAtomicGroup:
		return []*subPattern{n.params.(*subPattern)}
	default:
		return nil
	}
}

// equals compares simple nodes, that contain no subpatterns.
// Nodes with subpatterns, groups or references are never equal.
func (n *regexNode) equals(o *regexNode) bool {
	if n.opcode != o.opcode {
		return false
	}

	switch n.opcode {
	case opLiteral:
		return n.c == o.c
	case opAny:
		return n.params.(bool) == o.params.(bool)
	case opAt:
		return n.params.(atcode) == o.params.(atcode)
	case opIn:
		return slices.Equal(n.params.(charSet), o.params.(charSet))
	default:
		return false
	}
}

// dump returns debug information about the parsed expression.
func (p *subPattern) dump() string {
	var b strings.Builder
	p.dumpPattern(&b, 0)
	return strings.TrimRight(b.String(), "\n ") // trim newlines and spaces at the end
}

// dumpPattern writes the debug information of this subpattern to the string builder.
// The `level` parameter is used to indent the debug information.
func (p *subPattern) dumpPattern(b *strings.Builder, level int) {
	for _, v := range p.data {
		b.WriteString(strings.Repeat("  ", level))
		b.WriteString(v.opcode.String())
		dumpNode(b, v, level)
	}
}

// dumpNode writes the debug information of the parameters, excluding the opcode for node 'n', to the string builder.
func dumpNode(b *strings.Builder, n *regexNode, level int) {
	write := func(v ...any) {
		for i, a := range v {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(fmt.Sprint(a))
		}
	}

	writeln := func(v ...any) {
		write(v...)
		b.WriteByte('\n')
	}

	writeParams := func(av ...any) {
		nl := false
		for _, a := range av {
			if sp, ok := a.(*subPattern); ok {
				if !nl {
					writeln()
				}

				sp.dumpPattern(b, level+1)
				nl = true
			} else {
				if !nl {
					write(" ")
				}
				write(a)
				nl = false
			}
		}
		if !nl {
			writeln()
		}
	}

	switch n.opcode {
	case opAssert, opAssertNot:
		p := n.params.(assertParams)
		writeParams(p.dir, p.p)
	case opAny:
		if n.params.(bool) {
			writeParams("NEWLINE")
		} else {
			writeParams("None")
		}
	case opAt:
		at := n.params.(atcode)
		writeParams(at.String())
	case opBranch:
		items := n.params.([]*subPattern)

		writeln()
		for i, a := range items {
			if i != 0 {
				writeln(strings.Repeat("  ", level) + "OR")
			}
			a.dumpPattern(b, level+1)
		}
	case opBackref:
		p := n.params.(*backrefParams)
		writeParams(fmt.Sprint(p.groups))
	case opCall:
		p := n.params.(*callParams)
		writeParams(p.group)
	case opIn:
		set := n.params.(charSet)
		writeln()

		for i := 0; i < len(set); i += 2 {
			write(strings.Repeat("  ", level+1))
			if set[i] == set[i+1] {
				writeln("LITERAL", set[i])
			} else {
				writeln("RANGE", fmt.Sprintf("(%d, %d)", set[i], set[i+1]))
			}
		}
	case opLiteral:
		writeln("", n.c)
	case opMinRepeat, opMaxRepeat, opPossessiveRepeat:
		p := n.params.(repeatParams)

		var maxval string
		if p.max != infinite {
			maxval = strconv.Itoa(p.max)
		} else {
			maxval = "MAXREPEAT"
		}
		writeParams(p.min, maxval, p.item)
	case opSubpattern:
		p := n.params.(*subPatternParam)

		var group string
		if p.group > 0 {
			group = strconv.Itoa(p.group)
		} else {
			group = "None"
		}
		if p.history {
			group += " HISTORY"
		}
		writeParams(group, p.p)
	case opAtomicGroup:
		p := n.params.(*subPattern)

		writeln()
		p.dumpPattern(b, level+1)
	case opFailure:
		writeln()
	}
}

// subPatternWriter is a type to write the regex pattern in the syntax of the regexp2 engine.
// It uses a `strings.Builder` and provides functions to write subpatterns, regex nodes, integers, and literals.
// Subexpression calls are expanded inline, until the maximum depth is reached.
type subPatternWriter struct {
	strings.Builder

	st     *state
	root   *subPattern
	notBOL bool
	notEOL bool
	word   string // class of word characters

	depth    int   // maximum number of nested expansions of the same group
	active   []int // number of current expansions per group
	overflow bool  // the program exceeds maxProgramSize
}

// writePattern writes the subpattern to the subpattern writer.
func (w *subPatternWriter) writePattern(p *subPattern) {
	for _, item := range p.data {
		if w.overflow {
			return
		}

		w.writeNode(item)
	}

	if w.Len() > maxProgramSize {
		w.overflow = true
	}
}

// writeNode transforms the regex node into a regular expression string.
func (w *subPatternWriter) writeNode(n *regexNode) {
	switch n.opcode {
	case opAny:
		if n.params.(bool) {
			w.WriteString(`[\s\S]`)
		} else {
			w.WriteString(`[^\n]`)
		}
	case opAssert, opAssertNot:
		p := n.params.(assertParams)

		w.WriteString("(?")

		if p.dir < 0 {
			w.WriteByte('<')
		}
		if n.opcode == opAssert {
			w.WriteByte('=')
		} else {
			w.WriteByte('!')
		}

		w.writePattern(p.p)
		w.WriteByte(')')
	case opAt:
		w.writeAnchor(n.params.(atcode))
	case opBranch:
		items := n.params.([]*subPattern)

		w.WriteString("(?:")
		for i, item := range items {
			if i > 0 {
				w.WriteByte('|')
			}
			w.writePattern(item)
		}
		w.WriteByte(')')
	case opBackref:
		p := n.params.(*backrefParams)

		if p.ignoreCase {
			w.WriteString("(?i:")
		} else if len(p.groups) > 1 {
			w.WriteString("(?:")
		}

		// the last defined group of a name is tried first
		for i := len(p.groups) - 1; i >= 0; i-- {
			if i < len(p.groups)-1 {
				w.WriteByte('|')
			}
			w.WriteString(`\k<`)
			w.WriteString(groupName(p.groups[i]))
			w.WriteByte('>')
		}

		if p.ignoreCase || len(p.groups) > 1 {
			w.WriteByte(')')
		}
	case opCall:
		w.writeCall(n.params.(*callParams).group)
	case opIn:
		w.writeSet(n.params.(charSet))
	case opLiteral:
		w.writeLiteral(n.c)
	case opMinRepeat, opMaxRepeat, opPossessiveRepeat:
		p := n.params.(repeatParams)

		if n.opcode == opPossessiveRepeat {
			w.WriteString("(?>")
		}

		w.WriteString("(?:")
		w.writePattern(p.item)
		w.WriteByte(')')

		switch {
		case p.min == 0 && p.max == 1:
			w.WriteByte('?')
		case p.min == 0 && p.max == infinite:
			w.WriteByte('*')
		case p.min == 1 && p.max == infinite:
			w.WriteByte('+')
		default:
			w.WriteByte('{')
			w.writeInt(p.min)
			if p.max != p.min {
				w.WriteByte(',')
				if p.max != infinite {
					w.writeInt(p.max)
				}
			}
			w.WriteByte('}')
		}

		switch n.opcode {
		case opMinRepeat:
			w.WriteByte('?')
		case opPossessiveRepeat:
			w.WriteByte(')')
		}
	case opSubpattern:
		p := n.params.(*subPatternParam)

		if p.group <= 0 {
			w.WriteString("(?:")
			w.writePattern(p.p)
			w.WriteByte(')')
			break
		}

		if w.active[p.group] >= w.depth {
			w.WriteString("(?!)")
			break
		}

		w.active[p.group]++

		w.WriteString("(?<")
		w.WriteString(groupName(p.group))
		w.WriteByte('>')
		w.writePattern(p.p)
		w.WriteByte(')')

		w.active[p.group]--
	case opAtomicGroup:
		p := n.params.(*subPattern)

		w.WriteString("(?>")
		w.writePattern(p)
		w.WriteByte(')')
	case opFailure:
		w.WriteString("(?!)")
	}
}

// writeCall expands a subexpression call.
// Group 0 is the whole pattern.
func (w *subPatternWriter) writeCall(group int) {
	if group == 0 {
		if w.active[0] >= w.depth {
			w.WriteString("(?!)")
			return
		}

		w.active[0]++
		w.WriteString("(?:")
		w.writePattern(w.root)
		w.WriteByte(')')
		w.active[0]--
		return
	}

	w.writeNode(newSubPatternNode(w.st.groups[group]))
}

// writeAnchor writes a position assertion.
// The line anchors respect the options NOTBOL and NOTEOL. Word boundaries use the word class
// of the encoding, because the engine does not know it.
func (w *subPatternWriter) writeAnchor(at atcode) {
	switch at {
	case atBeginLine:
		if w.notBOL {
			w.WriteString(`(?<=\n)(?!\z)`)
		} else {
			w.WriteString(`(?:\A|(?<=\n)(?!\z))`)
		}
	case atEndLine:
		if w.notEOL {
			w.WriteString(`(?=\n)`)
		} else {
			w.WriteString(`(?=\n|\z)`)
		}
	case atSemiEndBuf:
		if w.notEOL {
			w.WriteString(`(?=\n\z)`)
		} else {
			w.WriteString(`(?=\n?\z)`)
		}
	case atBeginBuf:
		w.WriteString(`\A`)
	case atEndBuf:
		w.WriteString(`\z`)
	case atBeginPosition:
		w.WriteString(`\G`)
	case atBoundary:
		w.WriteString("(?:(?<=" + w.word + ")(?!" + w.word + ")|(?<!" + w.word + ")(?=" + w.word + "))")
	case atNonBoundary:
		w.WriteString("(?:(?<=" + w.word + ")(?=" + w.word + ")|(?<!" + w.word + ")(?!" + w.word + "))")
	case atWordBegin:
		w.WriteString("(?<!" + w.word + ")(?=" + w.word + ")")
	case atWordEnd:
		w.WriteString("(?<=" + w.word + ")(?!" + w.word + ")")
	}
}

// writeSet writes a character set as a class.
// An empty set never matches.
func (w *subPatternWriter) writeSet(set charSet) {
	if len(set) == 0 {
		w.WriteString("(?!)")
		return
	}

	w.WriteString(setString(set))
}

// setString returns the class syntax of a character set.
func setString(set charSet) string {
	var w subPatternWriter

	w.WriteByte('[')
	for i := 0; i < len(set); i += 2 {
		w.writeLiteral(set[i])
		if set[i+1] != set[i] {
			if set[i+1] > set[i]+1 {
				w.WriteByte('-')
			}
			w.writeLiteral(set[i+1])
		}
	}
	w.WriteByte(']')

	return w.String()
}

// groupName returns the name of a capture group in the rendered pattern.
// Groups are always named, so the engine can not reorder them.
func groupName(group int) string {
	return "g" + strconv.Itoa(group)
}

// writeInt writes the integer to the subpattern writer.
func (w *subPatternWriter) writeInt(i int) {
	w.WriteString(strconv.Itoa(i))
}

// writeLiteral writes the literal to the subpattern writer.
// The value is appended in hexadecimal format, as it is clear and unambiguous
// without introducing any scoping errors in the parser of the regex engine.
// It will have either the format "\x..", "\u...." or the character itself,
// because the engine has no escape for characters outside of the basic plane.
func (w *subPatternWriter) writeLiteral(r rune) {
	s := strconv.FormatInt(int64(r), 16)

	switch {
	case r <= 0xff:
		w.WriteString(`\x`)
		if len(s) < 2 {
			w.WriteByte('0')
		}
		w.WriteString(s)
	case r <= 0xffff:
		w.WriteString(`\u`)
		w.WriteString(strings.Repeat("0", 4-len(s)))
		w.WriteString(s)
	default:
		w.WriteRune(r)
	}
}
