package syntax

import (
	"math/bits"
	"strconv"
	"strings"
)

// Operator is a set of pattern operators recognized by a dialect.
// The low 32 bits correspond to the engine's first operator word,
// the high 32 bits to its second operator word.
type Operator uint64

// Operators of the first word.
const (
	OpDotAnychar Operator = 1 << (iota + 1) // .
	OpAsteriskZeroInf                       // *
	OpEscAsteriskZeroInf                    // \*
	OpPlusOneInf                            // +
	OpEscPlusOneInf                         // \+
	OpQmarkZeroOne                          // ?
	OpEscQmarkZeroOne                       // \?
	OpBraceInterval                         // {lower,upper}
	OpEscBraceInterval                      // \{lower,upper\}
	OpVbarAlt                               // |
	OpEscVbarAlt                            // \|
	OpLparenSubexp                          // (...)
	OpEscLparenSubexp                       // \(...\)
	OpEscAZBufAnchor                        // \A, \Z, \z
	OpEscCapitalGBeginAnchor                // \G
	OpDecimalBackref                        // \num
	OpBracketCC                             // [...]
	OpEscWWord                              // \w, \W
	OpEscLtGtWordBeginEnd                   // \<, \>
	OpEscBWordBound                         // \b, \B
	OpEscSWhiteSpace                        // \s, \S
	OpEscDDigit                             // \d, \D
	OpLineAnchor                            // ^, $
	OpPosixBracket                          // [:xxxx:]
	OpQmarkNonGreedy                        // ??,*?,+?,{n,m}?
	OpEscControlChars                       // \n,\r,\t,\a ...
	OpEscCControl                           // \cx
	OpEscOctal3                             // \OOO
	OpEscXHex2                              // \xHH
	OpEscXBraceHex8                         // \x{7HHHHHHH}
)

// Operators of the second word.
const (
	Op2EscCapitalQQuote         Operator = 1 << (32 + iota) // \Q...\E
	Op2QmarkGroupEffect                                     // (?...)
	Op2OptionPerl                                           // (?imsx),(?-imsx)
	Op2OptionRuby                                           // (?imx), (?-imx)
	Op2PlusPossessiveRepeat                                 // ?+,*+,++
	Op2PlusPossessiveInterval                               // {n,m}+
	Op2CClassSetOp                                          // [...&&..[..]..]
	Op2QmarkLtNamedGroup                                    // (?<name>...)
	Op2EscKNamedBackref                                     // \k<name>
	Op2EscGSubexpCall                                       // \g<name>, \g<n>
	Op2AtmarkCaptureHistory                                 // (?@..),(?@<x>..)
	Op2EscCapitalCBarControl                                // \C-x
	Op2EscCapitalMBarMeta                                   // \M-x
	Op2EscVVtab                                             // \v as VTAB
	Op2EscUHex4                                             // \uHHHH
	Op2EscGnuBufAnchor                                      // \`, \'
	Op2EscPBraceCharProperty                                // \p{...}, \P{...}
	Op2EscPBraceCircumflexNot                               // \p{^...}, \P{^...}
	_                                                       // reserved
	Op2EscHXDigit                                           // \h, \H
	Op2IneffectiveEscape                                    // \
)

const (
	allOperators1 = OpEscXBraceHex8<<1 - OpDotAnychar             // bits 1..30
	allOperators2 = Op2IneffectiveEscape<<1 - Op2EscCapitalQQuote // bits 32..52
	allOperators  = (allOperators1 | allOperators2) &^ (Op2EscHXDigit >> 1)
)

// operatorNames maps each operator bit to its name.
var operatorNames = map[Operator]string{
	OpDotAnychar:             "DOT_ANYCHAR",
	OpAsteriskZeroInf:        "ASTERISK_ZERO_INF",
	OpEscAsteriskZeroInf:     "ESC_ASTERISK_ZERO_INF",
	OpPlusOneInf:             "PLUS_ONE_INF",
	OpEscPlusOneInf:          "ESC_PLUS_ONE_INF",
	OpQmarkZeroOne:           "QMARK_ZERO_ONE",
	OpEscQmarkZeroOne:        "ESC_QMARK_ZERO_ONE",
	OpBraceInterval:          "BRACE_INTERVAL",
	OpEscBraceInterval:       "ESC_BRACE_INTERVAL",
	OpVbarAlt:                "VBAR_ALT",
	OpEscVbarAlt:             "ESC_VBAR_ALT",
	OpLparenSubexp:           "LPAREN_SUBEXP",
	OpEscLparenSubexp:        "ESC_LPAREN_SUBEXP",
	OpEscAZBufAnchor:         "ESC_AZ_BUF_ANCHOR",
	OpEscCapitalGBeginAnchor: "ESC_CAPITAL_G_BEGIN_ANCHOR",
	OpDecimalBackref:         "DECIMAL_BACKREF",
	OpBracketCC:              "BRACKET_CC",
	OpEscWWord:               "ESC_W_WORD",
	OpEscLtGtWordBeginEnd:    "ESC_LTGT_WORD_BEGIN_END",
	OpEscBWordBound:          "ESC_B_WORD_BOUND",
	OpEscSWhiteSpace:         "ESC_S_WHITE_SPACE",
	OpEscDDigit:              "ESC_D_DIGIT",
	OpLineAnchor:             "LINE_ANCHOR",
	OpPosixBracket:           "POSIX_BRACKET",
	OpQmarkNonGreedy:         "QMARK_NON_GREEDY",
	OpEscControlChars:        "ESC_CONTROL_CHARS",
	OpEscCControl:            "ESC_C_CONTROL",
	OpEscOctal3:              "ESC_OCTAL3",
	OpEscXHex2:               "ESC_X_HEX2",
	OpEscXBraceHex8:          "ESC_X_BRACE_HEX8",

	Op2EscCapitalQQuote:       "ESC_CAPITAL_Q_QUOTE",
	Op2QmarkGroupEffect:       "QMARK_GROUP_EFFECT",
	Op2OptionPerl:             "OPTION_PERL",
	Op2OptionRuby:             "OPTION_RUBY",
	Op2PlusPossessiveRepeat:   "PLUS_POSSESSIVE_REPEAT",
	Op2PlusPossessiveInterval: "PLUS_POSSESSIVE_INTERVAL",
	Op2CClassSetOp:            "CCLASS_SET_OP",
	Op2QmarkLtNamedGroup:      "QMARK_LT_NAMED_GROUP",
	Op2EscKNamedBackref:       "ESC_K_NAMED_BACKREF",
	Op2EscGSubexpCall:         "ESC_G_SUBEXP_CALL",
	Op2AtmarkCaptureHistory:   "ATMARK_CAPTURE_HISTORY",
	Op2EscCapitalCBarControl:  "ESC_CAPITAL_C_BAR_CONTROL",
	Op2EscCapitalMBarMeta:     "ESC_CAPITAL_M_BAR_META",
	Op2EscVVtab:               "ESC_V_VTAB",
	Op2EscUHex4:               "ESC_U_HEX4",
	Op2EscGnuBufAnchor:        "ESC_GNU_BUF_ANCHOR",
	Op2EscPBraceCharProperty:  "ESC_P_BRACE_CHAR_PROPERTY",
	Op2EscPBraceCircumflexNot: "ESC_P_BRACE_CIRCUMFLEX_NOT",
	Op2EscHXDigit:             "ESC_H_XDIGIT",
	Op2IneffectiveEscape:      "INEFFECTIVE_ESCAPE",
}

// Has reports whether all operators of o2 are contained in o.
func (o Operator) Has(o2 Operator) bool {
	return o&o2 == o2
}

// With returns the union of both operator sets.
func (o Operator) With(o2 Operator) Operator {
	return o | o2
}

// Without returns the operator set o without the operators of o2.
func (o Operator) Without(o2 Operator) Operator {
	return o &^ o2
}

// Op returns the first operator word.
func (o Operator) Op() uint32 {
	return uint32(o)
}

// Op2 returns the second operator word.
func (o Operator) Op2() uint32 {
	return uint32(o >> 32)
}

// unknown returns the bits, that do not denote any operator.
func (o Operator) unknown() Operator {
	return o &^ allOperators
}

// String returns the operator names joined by "|".
func (o Operator) String() string {
	if o == 0 {
		return "0"
	}

	var names []string
	for v := uint64(o); v != 0; v &= v - 1 {
		bit := Operator(1) << bits.TrailingZeros64(v)
		if name, ok := operatorNames[bit]; ok {
			names = append(names, name)
		} else {
			names = append(names, "0x"+strconv.FormatUint(uint64(bit), 16))
		}
	}

	return strings.Join(names, "|")
}
