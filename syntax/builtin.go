package syntax

import (
	"slices"
	"strings"
)

const (
	posixCommonOp = OpDotAnychar | OpPosixBracket | OpDecimalBackref | OpBracketCC |
		OpAsteriskZeroInf | OpLineAnchor | OpEscControlChars

	gnuRegexOp = OpDotAnychar | OpBracketCC | OpPosixBracket | OpDecimalBackref |
		OpBraceInterval | OpLparenSubexp | OpVbarAlt | OpAsteriskZeroInf | OpPlusOneInf |
		OpQmarkZeroOne | OpEscAZBufAnchor | OpEscCapitalGBeginAnchor | OpEscWWord |
		OpEscBWordBound | OpEscLtGtWordBeginEnd | OpEscSWhiteSpace | OpEscDDigit | OpLineAnchor

	gnuRegexBV = BehaviorContextIndepAnchors | BehaviorContextIndepRepeatOps |
		BehaviorContextInvalidRepeatOps | BehaviorAllowInvalidInterval |
		BehaviorBackslashEscapeInCC | BehaviorAllowDoubleRangeOpInCC

	perlOp = (gnuRegexOp | OpQmarkNonGreedy | OpEscOctal3 | OpEscXHex2 | OpEscXBraceHex8 |
		OpEscControlChars | OpEscCControl) &^ OpEscLtGtWordBeginEnd

	javaOp = (gnuRegexOp | OpQmarkNonGreedy | OpEscControlChars | OpEscCControl |
		OpEscOctal3 | OpEscXHex2) &^ OpEscLtGtWordBeginEnd
)

// Built-in dialects. They are only handed out as copies.
var (
	asis = Syntax{
		Op: Op2IneffectiveEscape,
	}

	posixBasic = Syntax{
		Op:      posixCommonOp | OpEscLparenSubexp | OpEscBraceInterval,
		Options: OptionSingleline | OptionMultiline,
	}

	posixExtended = Syntax{
		Op: posixCommonOp | OpLparenSubexp | OpBraceInterval | OpPlusOneInf |
			OpQmarkZeroOne | OpVbarAlt,
		Behavior: BehaviorContextIndepAnchors | BehaviorContextIndepRepeatOps |
			BehaviorContextInvalidRepeatOps | BehaviorAllowUnmatchedCloseSubexp |
			BehaviorAllowDoubleRangeOpInCC,
		Options: OptionSingleline | OptionMultiline,
	}

	emacs = Syntax{
		Op: OpDotAnychar | OpBracketCC | OpEscBraceInterval | OpEscLparenSubexp |
			OpEscVbarAlt | OpAsteriskZeroInf | OpPlusOneInf | OpQmarkZeroOne |
			OpDecimalBackref | OpLineAnchor | OpEscControlChars | Op2EscGnuBufAnchor,
		Behavior: BehaviorAllowEmptyRangeInCC,
	}

	grep = Syntax{
		Op: OpDotAnychar | OpBracketCC | OpPosixBracket | OpEscBraceInterval |
			OpEscLparenSubexp | OpEscVbarAlt | OpAsteriskZeroInf | OpEscPlusOneInf |
			OpEscQmarkZeroOne | OpLineAnchor | OpEscWWord | OpEscBWordBound |
			OpEscLtGtWordBeginEnd | OpDecimalBackref,
		Behavior: BehaviorAllowEmptyRangeInCC | BehaviorNotNewlineInNegativeCC,
	}

	gnuRegex = Syntax{
		Op:       gnuRegexOp,
		Behavior: gnuRegexBV,
	}

	java = Syntax{
		Op: javaOp | Op2EscCapitalQQuote | Op2QmarkGroupEffect | Op2OptionPerl |
			Op2PlusPossessiveRepeat | Op2PlusPossessiveInterval | Op2CClassSetOp |
			Op2EscVVtab | Op2EscUHex4 | Op2EscPBraceCharProperty,
		Behavior: gnuRegexBV | BehaviorDifferentLenAltLookBehind,
		Options:  OptionSingleline,
	}

	perl = Syntax{
		Op: perlOp | Op2EscCapitalQQuote | Op2QmarkGroupEffect | Op2OptionPerl |
			Op2EscPBraceCharProperty | Op2EscPBraceCircumflexNot,
		Behavior: gnuRegexBV,
		Options:  OptionSingleline,
	}

	perlNG = Syntax{
		Op: perlOp | Op2EscCapitalQQuote | Op2QmarkGroupEffect | Op2OptionPerl |
			Op2EscPBraceCharProperty | Op2EscPBraceCircumflexNot |
			Op2QmarkLtNamedGroup | Op2EscKNamedBackref | Op2EscGSubexpCall,
		Behavior: gnuRegexBV | BehaviorCaptureOnlyNamedGroup | BehaviorAllowMultiplexDefinitionName,
		Options:  OptionSingleline,
	}

	ruby = Syntax{
		Op: perlOp | Op2QmarkGroupEffect | Op2OptionRuby | Op2QmarkLtNamedGroup |
			Op2EscKNamedBackref | Op2EscGSubexpCall | Op2EscPBraceCharProperty |
			Op2EscPBraceCircumflexNot | Op2PlusPossessiveRepeat | Op2CClassSetOp |
			Op2EscCapitalCBarControl | Op2EscCapitalMBarMeta | Op2EscVVtab | Op2EscHXDigit,
		Behavior: gnuRegexBV | BehaviorAllowIntervalLowAbbrev | BehaviorDifferentLenAltLookBehind |
			BehaviorCaptureOnlyNamedGroup | BehaviorAllowMultiplexDefinitionName |
			BehaviorFixedIntervalIsGreedyOnly | BehaviorWarnCCOpNotEscaped |
			BehaviorWarnRedundantNestedRepeat,
	}

	oniguruma = Syntax{
		Op:       ruby.Op | Op2EscCapitalQQuote | Op2AtmarkCaptureHistory,
		Behavior: ruby.Behavior,
	}
)

var builtins = map[string]*Syntax{
	"asis":           &asis,
	"posix_basic":    &posixBasic,
	"posix_extended": &posixExtended,
	"emacs":          &emacs,
	"grep":           &grep,
	"gnu_regex":      &gnuRegex,
	"java":           &java,
	"perl":           &perl,
	"perl_ng":        &perlNG,
	"ruby":           &ruby,
	"oniguruma":      &oniguruma,
}

// ASIS returns the dialect that treats the whole pattern as a literal text.
func ASIS() *Syntax { return asis.Clone() }

// PosixBasic returns the POSIX basic regular expression dialect.
func PosixBasic() *Syntax { return posixBasic.Clone() }

// PosixExtended returns the POSIX extended regular expression dialect.
func PosixExtended() *Syntax { return posixExtended.Clone() }

func Emacs() *Syntax    { return emacs.Clone() }
func Grep() *Syntax     { return grep.Clone() }
func GnuRegex() *Syntax { return gnuRegex.Clone() }
func Java() *Syntax     { return java.Clone() }
func Perl() *Syntax     { return perl.Clone() }

// PerlNG returns Perl with named groups, named backreferences and subexpression calls.
func PerlNG() *Syntax { return perlNG.Clone() }

func Ruby() *Syntax { return ruby.Clone() }

// Oniguruma returns the native dialect of the engine: Ruby with \Q...\E quoting and capture history groups.
func Oniguruma() *Syntax { return oniguruma.Clone() }

// Default returns the default dialect, which is Ruby.
func Default() *Syntax {
	return ruby.Clone()
}

// Builtin returns a copy of the built-in dialect with the given name.
// Names are case insensitive and may use '-' instead of '_', for example "perl_ng" or "POSIX-Basic".
func Builtin(name string) (*Syntax, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")

	s, ok := builtins[name]
	if !ok {
		return nil, false
	}

	return s.Clone(), true
}

// Builtins returns the sorted names of all built-in dialects.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}
