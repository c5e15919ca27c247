package regex

// Generate string representations of constants.
// To install stringer: go install golang.org/x/tools/cmd/stringer@latest
//go:generate stringer -type=opcode,atcode -linecomment -output=constants_string.go

const (
	// maxRepeat is the largest bound of an interval.
	maxRepeat = 100000

	// infinite is the upper bound of unbounded repetitions.
	infinite = -1

	// maxBackrefNum is the largest group number, that may be referenced.
	maxBackrefNum = 1000

	// maxParseDepth is the maximum nesting depth of groups and classes.
	maxParseDepth = 4096

	// maxHistoryGroup is the largest group index, that may record a capture history.
	maxHistoryGroup = 31

	// maxCallDepth is the initial expansion depth of recursive subexpression calls.
	maxCallDepth = 20

	// maxCachedMinLen is the largest minimum length of a longest-match variant, that is cached.
	maxCachedMinLen = 16

	// maxProgramSize is the maximum size of a rendered program in bytes.
	maxProgramSize = 1 << 20
)

// opcode is the type used for regex operators.
type opcode uint32

// Parsable regex operators:
//
//   - FAILURE: never matches; `(?!)`
//   - ANY: matches any character except newline; `.`
//   - ASSERT: positive lookahead or lookbehind; `(?=...)` or `(?<=...)`
//   - ASSERT_NOT: negative lookahead or lookbehind; `(?!...)` or `(?<!...)`
//   - AT: positional matches; `^`, `$`, `\A`, `\z`, `\Z`, `\G`, `\b`, `\B`, `\<`, `\>`
//   - BRANCH: list of subpatterns separated by `|`
//   - BACKREF: reference to the text of captured groups; `\1`, `\k<name>`
//   - CALL: subexpression call; `\g<name>`, `\g<1>`
//   - IN: character class; `[...]`, `\w`, `\p{...}` or a case folded literal
//   - LITERAL: a single character
//   - MIN_REPEAT: non-greedy repetition; `??`, `*?`, `+?`, `{...}?`
//   - MAX_REPEAT: greedy repetition; `?`, `*`, `+`, `{...}`
//   - SUBPATTERN: capturing or non-capturing group; `(...)`, `(?<name>...)`, `(?:...)`
//   - ATOMIC_GROUP: group without backtracking; `(?>...)`
//   - POSSESSIVE_REPEAT: possessive repetition; `?+`, `*+`, `++`, `{...}+`
const (
	opFailure          opcode = iota // FAILURE
	opAny                            // ANY
	opAssert                         // ASSERT
	opAssertNot                      // ASSERT_NOT
	opAt                             // AT
	opBranch                         // BRANCH
	opBackref                        // BACKREF
	opCall                           // CALL
	opIn                             // IN
	opLiteral                        // LITERAL
	opMinRepeat                      // MIN_REPEAT
	opMaxRepeat                      // MAX_REPEAT
	opSubpattern                     // SUBPATTERN
	opAtomicGroup                    // ATOMIC_GROUP
	opPossessiveRepeat               // POSSESSIVE_REPEAT
)

// atcode is the type to specify positions.
type atcode uint32

// Available regex positions.
const (
	atBeginLine       atcode = iota // AT_BEGIN_LINE
	atEndLine                       // AT_END_LINE
	atBeginBuf                      // AT_BEGIN_BUF
	atEndBuf                        // AT_END_BUF
	atSemiEndBuf                    // AT_SEMI_END_BUF
	atBeginPosition                 // AT_BEGIN_POSITION
	atBoundary                      // AT_BOUNDARY
	atNonBoundary                   // AT_NON_BOUNDARY
	atWordBegin                     // AT_WORD_BEGIN
	atWordEnd                       // AT_WORD_END
)

// Directions of assertions.
const (
	dirAhead  = 1
	dirBehind = -1
)
