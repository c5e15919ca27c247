package regex

// regexNode represents a node in the parsed regex tree.
type regexNode struct {
	opcode opcode // regex operator
	c      rune   // literals are the most common node, so add an extra field for them
	params any    // extra parameters; may be nil
}

// Extra types, when more than one field exists in the extra parameters:

// assertParams represents the parameters for the "ASSERT" and "ASSERT_NOT" operators.
type assertParams struct {
	dir int
	p   *subPattern
}

// repeatParams represents the parameters for the repeat operators.
// A maximum of `infinite` denotes an unbounded repetition.
type repeatParams struct {
	min  int
	max  int
	item *subPattern
}

// subPatternParam represents the parameters for the "SUBPATTERN" operator.
// Non-capturing groups have a group number of 0.
type subPatternParam struct {
	group   int
	name    string
	history bool // the group was marked with (?@...)
	pos     int
	p       *subPattern
}

// backrefParams represents the parameters for the "BACKREF" operator.
// A backreference to a name, that is defined multiple times, refers to all of its groups.
type backrefParams struct {
	groups     []int
	name       string
	numbered   bool
	ignoreCase bool
	pos        int
}

// callParams represents the parameters for the "CALL" operator.
// Calls to names are resolved after parsing, so forward references are possible.
type callParams struct {
	group    int
	name     string
	numbered bool
	pos      int
}

// newEmptyNode creates a new node with a given opcode and no extra parameters.
// The only valid operator is FAILURE.
func newEmptyNode(op opcode) *regexNode {
	return &regexNode{
		opcode: op,
	}
}

// newLiteral creates a new node with operator "LITERAL".
func newLiteral(c rune) *regexNode {
	return &regexNode{
		opcode: opLiteral,
		c:      c,
	}
}

// newAnyNode creates a new node with operator "ANY".
// If `newline` is set, the node also matches a newline.
func newAnyNode(newline bool) *regexNode {
	return &regexNode{
		opcode: opAny,
		params: newline,
	}
}

// newAssertNode creates a new node, that holds assert parameters.
// Valid operators are ASSERT and ASSERT_NOT.
func newAssertNode(op opcode, dir int, p *subPattern) *regexNode {
	return &regexNode{
		opcode: op,
		params: assertParams{
			dir: dir,
			p:   p,
		},
	}
}

// newAtNode creates a new node, that holds an AT code.
// The only valid operator is AT.
func newAtNode(at atcode) *regexNode {
	return &regexNode{
		opcode: opAt,
		params: at,
	}
}

// newBranchNode creates a new node, that holds a slice of alternatives.
// The only valid operator is BRANCH.
func newBranchNode(items []*subPattern) *regexNode {
	return &regexNode{
		opcode: opBranch,
		params: items,
	}
}

// newBackrefNode creates a new node, that holds a group reference.
// The only valid operator is BACKREF.
func newBackrefNode(p *backrefParams) *regexNode {
	return &regexNode{
		opcode: opBackref,
		params: p,
	}
}

// newCallNode creates a new node, that holds a subexpression call.
// The only valid operator is CALL.
func newCallNode(p *callParams) *regexNode {
	return &regexNode{
		opcode: opCall,
		params: p,
	}
}

// newInNode creates a new node, that holds a character set.
// The only valid operator is IN.
func newInNode(set charSet) *regexNode {
	return &regexNode{
		opcode: opIn,
		params: set,
	}
}

// newRepeatNode creates a new node, that holds the parameters of a repetition.
// Valid operators are MIN_REPEAT, MAX_REPEAT and POSSESSIVE_REPEAT.
func newRepeatNode(op opcode, min, max int, item *subPattern) *regexNode {
	return &regexNode{
		opcode: op,
		params: repeatParams{
			min:  min,
			max:  max,
			item: item,
		},
	}
}

// newSubPatternNode creates a new node, that holds a group.
// The only valid operator is SUBPATTERN.
func newSubPatternNode(p *subPatternParam) *regexNode {
	return &regexNode{
		opcode: opSubpattern,
		params: p,
	}
}

// newAtomicGroupNode creates a new node, that holds a atomic group.
// The only valid operator is ATOMIC_GROUP.
func newAtomicGroupNode(p *subPattern) *regexNode {
	return &regexNode{
		opcode: opAtomicGroup,
		params: p,
	}
}

// isRepeat returns true, if the node is a repetition.
func (n *regexNode) isRepeat() bool {
	switch n.opcode {
	case opMinRepeat, opMaxRepeat, opPossessiveRepeat:
		return true
	default:
		return false
	}
}

// isAnchor returns true, if the node matches a position instead of characters.
// Anchors may not be the target of a repetition.
func (n *regexNode) isAnchor() bool {
	switch n.opcode {
	case opAt, opAssert, opAssertNot:
		return true
	default:
		return false
	}
}
