package regex

import (
	"strconv"
	"strings"
)

// Error codes of the engine. Negative values denote errors, the values are
// those of the Oniguruma API.
const (
	ErrMismatch = -1

	ErrMemory                  = -5
	ErrMatchStackLimitOver     = -15
	ErrParseDepthLimitOver     = -16
	ErrRetryLimitInMatchOver   = -17
	ErrInvalidArgument         = -30
	ErrEndPatternAtLeftBrace   = -100
	ErrEndPatternAtLeftBracket = -101
	ErrEmptyCharClass          = -102
	ErrPrematureEndOfCharClass = -103
	ErrEndPatternAtEscape      = -104
	ErrEndPatternAtMeta        = -105
	ErrEndPatternAtControl     = -106
	ErrMetaCodeSyntax          = -108
	ErrControlCodeSyntax       = -109
	ErrCharClassValueAtEnd     = -110
	ErrCharClassValueAtStart   = -111
	ErrUnmatchedRangeSpecifier = -112
	ErrTargetOfRepeatNotSpec   = -113
	ErrTargetOfRepeatInvalid   = -114
	ErrNestedRepeatOperator    = -115
	ErrUnmatchedCloseParen     = -116
	ErrEndPatternWithUnmatched = -117
	ErrEndPatternInGroup       = -118
	ErrUndefinedGroupOption    = -119
	ErrInvalidPosixBracketType = -121
	ErrInvalidLookBehind       = -122
	ErrInvalidRepeatRange      = -123

	ErrTooBigNumber                = -200
	ErrTooBigNumberForRepeatRange  = -201
	ErrUpperSmallerThanLower       = -202
	ErrEmptyRangeInCharClass       = -203
	ErrTooShortMultiByteString     = -206
	ErrTooBigBackrefNumber         = -207
	ErrInvalidBackref              = -208
	ErrNumberedBackrefNotAllowed   = -209
	ErrTooLongWideCharValue        = -212
	ErrEmptyGroupName              = -214
	ErrInvalidGroupName            = -215
	ErrInvalidCharInGroupName      = -216
	ErrUndefinedNameReference      = -217
	ErrUndefinedGroupReference     = -218
	ErrMultiplexDefinedName        = -219
	ErrMultiplexDefinitionNameCall = -220
	ErrNeverEndingRecursion        = -221
	ErrGroupNumberTooBigForHistory = -222
	ErrInvalidCharPropertyName     = -223

	ErrInvalidCodePointValue      = -400
	ErrTooBigWideCharValue        = -401
	ErrNotSupportedEncoding       = -402
	ErrInvalidCombinationOfOption = -403
)

var errorMessages = map[int]string{
	ErrMismatch:                    "mismatch",
	ErrMemory:                      "fail to memory allocation",
	ErrMatchStackLimitOver:         "match-stack limit over",
	ErrParseDepthLimitOver:         "parse depth limit over",
	ErrRetryLimitInMatchOver:       "retry-limit-in-match over",
	ErrInvalidArgument:             "invalid argument",
	ErrEndPatternAtLeftBrace:       "end pattern at left brace",
	ErrEndPatternAtLeftBracket:     "end pattern at left bracket",
	ErrEmptyCharClass:              "empty char-class",
	ErrPrematureEndOfCharClass:     "premature end of char-class",
	ErrEndPatternAtEscape:          "end pattern at escape",
	ErrEndPatternAtMeta:            "end pattern at meta",
	ErrEndPatternAtControl:         "end pattern at control",
	ErrMetaCodeSyntax:              "invalid meta-code syntax",
	ErrControlCodeSyntax:           "invalid control-code syntax",
	ErrCharClassValueAtEnd:         "char-class value at end of range",
	ErrCharClassValueAtStart:       "char-class value at start of range",
	ErrUnmatchedRangeSpecifier:     "unmatched range specifier in char-class",
	ErrTargetOfRepeatNotSpec:       "target of repeat operator is not specified",
	ErrTargetOfRepeatInvalid:       "target of repeat operator is invalid",
	ErrNestedRepeatOperator:        "nested repeat operator",
	ErrUnmatchedCloseParen:         "unmatched close parenthesis",
	ErrEndPatternWithUnmatched:     "end pattern with unmatched parenthesis",
	ErrEndPatternInGroup:           "end pattern in group",
	ErrUndefinedGroupOption:        "undefined group option",
	ErrInvalidPosixBracketType:     "invalid POSIX bracket type",
	ErrInvalidLookBehind:           "invalid pattern in look-behind",
	ErrInvalidRepeatRange:          "invalid repeat range {lower,upper}",
	ErrTooBigNumber:                "too big number",
	ErrTooBigNumberForRepeatRange:  "too big number for repeat range",
	ErrUpperSmallerThanLower:       "upper is smaller than lower in repeat range",
	ErrEmptyRangeInCharClass:       "empty range in char class",
	ErrTooShortMultiByteString:     "too short multibyte code string",
	ErrTooBigBackrefNumber:         "too big backref number",
	ErrInvalidBackref:              "invalid backref number/name",
	ErrNumberedBackrefNotAllowed:   "numbered backref/call is not allowed. (use name)",
	ErrTooLongWideCharValue:        "too long wide-char value",
	ErrEmptyGroupName:              "group name is empty",
	ErrInvalidGroupName:            "invalid group name <%n>",
	ErrInvalidCharInGroupName:      "invalid char in group name <%n>",
	ErrUndefinedNameReference:      "undefined name <%n> reference",
	ErrUndefinedGroupReference:     "undefined group <%n> reference",
	ErrMultiplexDefinedName:        "multiplex defined name <%n>",
	ErrMultiplexDefinitionNameCall: "multiplex definition name <%n> call",
	ErrNeverEndingRecursion:        "never ending recursion",
	ErrGroupNumberTooBigForHistory: "group number is too big for capture history",
	ErrInvalidCharPropertyName:     "invalid character property name {%n}",
	ErrInvalidCodePointValue:       "invalid code point value",
	ErrTooBigWideCharValue:         "too big wide-char value",
	ErrNotSupportedEncoding:        "not supported encoding combination",
	ErrInvalidCombinationOfOption:  "invalid combination of options",
}

// ErrorMessage returns the message for an error code.
// The placeholder "%n" of the message is replaced by arg.
func ErrorMessage(code int, arg string) string {
	msg, ok := errorMessages[code]
	if !ok {
		return "undefined error code " + strconv.Itoa(code)
	}

	return strings.Replace(msg, "%n", arg, 1)
}

// Error is an error reported by an engine.
type Error struct {
	Code int    // error code
	Pos  int    // byte offset into the pattern; -1 if the error has no position
	Arg  string // argument of the message, for example a group name
	Err  error  // failure of the underlying engine, if any
}

// newError creates a new error at the given position.
func newError(code, pos int, arg string) *Error {
	return &Error{
		Code: code,
		Pos:  pos,
		Arg:  arg,
	}
}

// Error returns the message of the error code.
// The message of the underlying engine failure is appended.
func (e *Error) Error() string {
	msg := ErrorMessage(e.Code, e.Arg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target is an engine error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
