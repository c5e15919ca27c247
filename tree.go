package onig

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/magnetde/onig/regex"
)

// CaptureTreeNode is a node of a capture tree.
// The root is group 0 with the span of the whole match.
type CaptureTreeNode struct {
	Group    int
	Start    int
	End      int
	Children []*CaptureTreeNode
}

// CaptureTree rebuilds the capture tree of the last match from the capture history.
// Every capture of a history group becomes a node; a node's children are the captures made
// within its span, ordered by their start.
//
// CaptureTree returns nil, if the pattern has no history groups (neither subexpression calls
// nor groups marked with "(?@...)"), or if the last search did not find a match.
// The returned tree does not share memory with the region.
func (r *Region) CaptureTree() *CaptureTreeNode {
	if !r.matched || !r.tree {
		return nil
	}

	root := &CaptureTreeNode{
		Group: 0,
		Start: r.regs.Beg[0],
		End:   r.regs.End[0],
	}

	history := slices.Clone(r.regs.History)
	slices.SortStableFunc(history, func(a, b regex.Capture) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(b.End, a.End); c != 0 {
			return c
		}
		return cmp.Compare(a.Group, b.Group)
	})

	stack := []*CaptureTreeNode{root}

	for _, c := range history {
		n := &CaptureTreeNode{
			Group: c.Group,
			Start: c.Start,
			End:   c.End,
		}

		for len(stack) > 1 && !stack[len(stack)-1].contains(n) {
			stack = stack[:len(stack)-1]
		}

		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, n)
		stack = append(stack, n)
	}

	return root
}

// contains reports whether the span of n lies within the span of the node.
func (t *CaptureTreeNode) contains(n *CaptureTreeNode) bool {
	return t.Start <= n.Start && n.End <= t.End
}

// Walk calls fn for every node of the tree in depth-first order.
// The traversal stops, if fn returns false.
func (t *CaptureTreeNode) Walk(fn func(n *CaptureTreeNode, depth int) bool) {
	t.walk(fn, 0)
}

func (t *CaptureTreeNode) walk(fn func(n *CaptureTreeNode, depth int) bool, depth int) bool {
	if !fn(t, depth) {
		return false
	}

	for _, c := range t.Children {
		if !c.walk(fn, depth+1) {
			return false
		}
	}

	return true
}

// String returns the tree in the form "0(0,4)[1(0,2) 1(2,4)]".
func (t *CaptureTreeNode) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *CaptureTreeNode) write(b *strings.Builder) {
	b.WriteString(strconv.Itoa(t.Group))
	b.WriteByte('(')
	b.WriteString(strconv.Itoa(t.Start))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(t.End))
	b.WriteByte(')')

	if len(t.Children) == 0 {
		return
	}

	b.WriteByte('[')
	for i, c := range t.Children {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.write(b)
	}
	b.WriteByte(']')
}
