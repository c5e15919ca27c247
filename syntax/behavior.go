package syntax

import (
	"math/bits"
	"strconv"
	"strings"
)

// Behavior is a set of switches, that decide how ambiguous or malformed
// constructs of a dialect are handled.
type Behavior uint32

// Available behaviors.
const (
	BehaviorContextIndepRepeatOps        Behavior = 1 << 0  // a* is valid at the start of a pattern or group
	BehaviorContextInvalidRepeatOps      Behavior = 1 << 1  // error for invalid repeat operators
	BehaviorAllowUnmatchedCloseSubexp    Behavior = 1 << 2  // an unmatched ')' is a literal
	BehaviorAllowInvalidInterval         Behavior = 1 << 3  // invalid {...} is a literal
	BehaviorAllowIntervalLowAbbrev       Behavior = 1 << 4  // {,n} => {0,n}
	BehaviorStrictCheckBackref           Behavior = 1 << 5  // /(\1)/,/\1()/ ..
	BehaviorDifferentLenAltLookBehind    Behavior = 1 << 6  // (?<=a|bc)
	BehaviorCaptureOnlyNamedGroup        Behavior = 1 << 7  // plain groups do not capture, when named groups exist
	BehaviorAllowMultiplexDefinitionName Behavior = 1 << 8  // (?<x>)(?<x>)
	BehaviorFixedIntervalIsGreedyOnly    Behavior = 1 << 9  // a{n}?, a{n}+ repeat the interval
	BehaviorNotNewlineInNegativeCC       Behavior = 1 << 20 // [^...] does not match newline
	BehaviorBackslashEscapeInCC          Behavior = 1 << 21 // [..\w..] etc..
	BehaviorAllowEmptyRangeInCC          Behavior = 1 << 22 // [b-a] is empty
	BehaviorAllowDoubleRangeOpInCC       Behavior = 1 << 23 // [a-b-c]: the second '-' is a literal
	BehaviorWarnCCOpNotEscaped           Behavior = 1 << 24 // [,-,]
	BehaviorWarnRedundantNestedRepeat    Behavior = 1 << 25 // (?:a*)+
	BehaviorContextIndepAnchors          Behavior = 1 << 31 // ^ and $ are anchors everywhere
)

const allBehaviors = BehaviorContextIndepRepeatOps | BehaviorContextInvalidRepeatOps |
	BehaviorAllowUnmatchedCloseSubexp | BehaviorAllowInvalidInterval | BehaviorAllowIntervalLowAbbrev |
	BehaviorStrictCheckBackref | BehaviorDifferentLenAltLookBehind | BehaviorCaptureOnlyNamedGroup |
	BehaviorAllowMultiplexDefinitionName | BehaviorFixedIntervalIsGreedyOnly |
	BehaviorNotNewlineInNegativeCC | BehaviorBackslashEscapeInCC | BehaviorAllowEmptyRangeInCC |
	BehaviorAllowDoubleRangeOpInCC | BehaviorWarnCCOpNotEscaped | BehaviorWarnRedundantNestedRepeat |
	BehaviorContextIndepAnchors

var behaviorNames = map[Behavior]string{
	BehaviorContextIndepRepeatOps:        "CONTEXT_INDEP_REPEAT_OPS",
	BehaviorContextInvalidRepeatOps:      "CONTEXT_INVALID_REPEAT_OPS",
	BehaviorAllowUnmatchedCloseSubexp:    "ALLOW_UNMATCHED_CLOSE_SUBEXP",
	BehaviorAllowInvalidInterval:         "ALLOW_INVALID_INTERVAL",
	BehaviorAllowIntervalLowAbbrev:       "ALLOW_INTERVAL_LOW_ABBREV",
	BehaviorStrictCheckBackref:           "STRICT_CHECK_BACKREF",
	BehaviorDifferentLenAltLookBehind:    "DIFFERENT_LEN_ALT_LOOK_BEHIND",
	BehaviorCaptureOnlyNamedGroup:        "CAPTURE_ONLY_NAMED_GROUP",
	BehaviorAllowMultiplexDefinitionName: "ALLOW_MULTIPLEX_DEFINITION_NAME",
	BehaviorFixedIntervalIsGreedyOnly:    "FIXED_INTERVAL_IS_GREEDY_ONLY",
	BehaviorNotNewlineInNegativeCC:       "NOT_NEWLINE_IN_NEGATIVE_CC",
	BehaviorBackslashEscapeInCC:          "BACKSLASH_ESCAPE_IN_CC",
	BehaviorAllowEmptyRangeInCC:          "ALLOW_EMPTY_RANGE_IN_CC",
	BehaviorAllowDoubleRangeOpInCC:       "ALLOW_DOUBLE_RANGE_OP_IN_CC",
	BehaviorWarnCCOpNotEscaped:           "WARN_CC_OP_NOT_ESCAPED",
	BehaviorWarnRedundantNestedRepeat:    "WARN_REDUNDANT_NESTED_REPEAT",
	BehaviorContextIndepAnchors:          "CONTEXT_INDEP_ANCHORS",
}

// Has reports whether all behaviors of b2 are contained in b.
func (b Behavior) Has(b2 Behavior) bool {
	return b&b2 == b2
}

// With returns the union of both behavior sets.
func (b Behavior) With(b2 Behavior) Behavior {
	return b | b2
}

// Without returns the behavior set b without the behaviors of b2.
func (b Behavior) Without(b2 Behavior) Behavior {
	return b &^ b2
}

func (b Behavior) unknown() Behavior {
	return b &^ allBehaviors
}

// String returns the behavior names joined by "|".
func (b Behavior) String() string {
	if b == 0 {
		return "0"
	}

	var names []string
	for v := uint32(b); v != 0; v &= v - 1 {
		bit := Behavior(1) << bits.TrailingZeros32(v)
		if name, ok := behaviorNames[bit]; ok {
			names = append(names, name)
		} else {
			names = append(names, "0x"+strconv.FormatUint(uint64(bit), 16))
		}
	}

	return strings.Join(names, "|")
}
