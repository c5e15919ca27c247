package regex

import (
	"fmt"
	"regexp/syntax"
	"strings"
	"sync"
	"unicode"
)

const (
	minFold        = 0x0041
	maxFoldUnicode = 0x1e943
	maxFoldASCII   = 'z'
)

// charSet is a set of characters.
// It holds sorted, non-overlapping and non-adjacent pairs of inclusive ranges.
type charSet []rune

// newCharSet creates a set from unordered pairs of ranges.
func newCharSet(pairs ...rune) charSet {
	r := make([]rune, len(pairs))
	copy(r, pairs)
	return charSet(cleanClass(r))
}

// union returns the union of both sets.
func (s charSet) union(o charSet) charSet {
	r := make([]rune, 0, len(s)+len(o))
	r = append(r, s...)
	r = append(r, o...)
	return charSet(cleanClass(r))
}

// negate returns the complement of the set within all Unicode code points.
func (s charSet) negate() charSet {
	var r charSet
	next := rune(0)
	for i := 0; i < len(s); i += 2 {
		if s[i] > next {
			r = append(r, next, s[i]-1)
		}
		next = s[i+1] + 1
	}
	if next <= unicode.MaxRune {
		r = append(r, next, unicode.MaxRune)
	}

	return r
}

// intersect returns the intersection of both sets.
func (s charSet) intersect(o charSet) charSet {
	return s.negate().union(o.negate()).negate()
}

// fold returns the set including all case variants of its characters.
func (s charSet) fold(ascii bool) charSet {
	var r []rune
	for i := 0; i < len(s); i += 2 {
		r = append(r, foldedRanges(s[i], s[i+1], ascii)...)
	}

	return charSet(cleanClass(r))
}

// contains checks, if the character is in the set.
func (s charSet) contains(c rune) bool {
	for i := 0; i < len(s); i += 2 {
		if inRange(s[i], s[i+1], c) {
			return true
		}
	}
	return false
}

// single returns the only character of the set, if the set contains exactly one character.
func (s charSet) single() (rune, bool) {
	if len(s) == 2 && s[0] == s[1] {
		return s[0], true
	}
	return 0, false
}

// isFull checks, if the set contains all code points.
func (s charSet) isFull() bool {
	return len(s) == 2 && s[0] == 0 && s[1] == unicode.MaxRune
}

// foldLiteral returns the case variants of c, including c.
// If c has no other case, the returned set contains only c.
func foldLiteral(c rune, ascii bool) charSet {
	return newCharSet(c, c).fold(ascii)
}

// namedClass describes a named character class for both encodings.
// The sources are character classes in the syntax of package `regexp/syntax`.
type namedClass struct {
	unicode string
	ascii   string
}

// namedClasses are the POSIX bracket names, that are also valid property names.
var namedClasses = map[string]namedClass{
	"alnum":  {`[\pL\pM\p{Nd}]`, `[[:alnum:]]`},
	"alpha":  {`[\pL\pM]`, `[[:alpha:]]`},
	"ascii":  {`[\x00-\x7f]`, `[\x00-\x7f]`},
	"blank":  {`[\p{Zs}\t]`, `[[:blank:]]`},
	"cntrl":  {`[\p{Cc}\p{Cf}]`, `[[:cntrl:]]`},
	"digit":  {`[\p{Nd}]`, `[[:digit:]]`},
	"graph":  {`[^\pZ\t-\r\x{85}\p{Cc}\p{Cs}]`, `[[:graph:]]`},
	"lower":  {`[\p{Ll}]`, `[[:lower:]]`},
	"print":  {`[^\p{Zl}\p{Zp}\t-\r\x{85}\p{Cc}\p{Cs}]`, `[[:print:]]`},
	"punct":  {"[\\pP$+<=>^`|~]", `[[:punct:]]`},
	"space":  {`[\t-\r \x{85}\pZ]`, `[[:space:]]`},
	"upper":  {`[\p{Lu}]`, `[[:upper:]]`},
	"xdigit": {`[0-9A-Fa-f]`, `[0-9A-Fa-f]`},
	"word":   {`[\pL\pM\p{Nd}\p{Pc}]`, `[[:word:]]`},
	"any":    {`[\x00-\x{10FFFF}]`, `[\x00-\x{10FFFF}]`},
}

// Long names of general categories.
var categoryAliases = map[string]string{
	"letter":               "L",
	"uppercaseletter":      "Lu",
	"lowercaseletter":      "Ll",
	"titlecaseletter":      "Lt",
	"modifierletter":       "Lm",
	"otherletter":          "Lo",
	"mark":                 "M",
	"nonspacingmark":       "Mn",
	"spacingmark":          "Mc",
	"enclosingmark":        "Me",
	"number":               "N",
	"decimalnumber":        "Nd",
	"letternumber":         "Nl",
	"othernumber":          "No",
	"punctuation":          "P",
	"connectorpunctuation": "Pc",
	"dashpunctuation":      "Pd",
	"openpunctuation":      "Ps",
	"closepunctuation":     "Pe",
	"initialpunctuation":   "Pi",
	"finalpunctuation":     "Pf",
	"otherpunctuation":     "Po",
	"symbol":               "S",
	"mathsymbol":           "Sm",
	"currencysymbol":       "Sc",
	"modifiersymbol":       "Sk",
	"othersymbol":          "So",
	"separator":            "Z",
	"spaceseparator":       "Zs",
	"lineseparator":        "Zl",
	"paragraphseparator":   "Zp",
	"other":                "C",
	"control":              "Cc",
	"format":               "Cf",
	"privateuse":           "Co",
	"surrogate":            "Cs",
}

var (
	propertyOnce  sync.Once
	propertyNames map[string]string // normalized name -> name of a unicode table

	classCache sync.Map // source -> charSet
)

// normalizePropertyName removes spaces, hyphens and underscores from the name and converts it to lower case.
func normalizePropertyName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		default:
			return unicode.ToLower(r)
		}
	}, name)
}

// initPropertyNames builds the lookup table of the unicode categories and scripts.
func initPropertyNames() {
	propertyNames = make(map[string]string)

	for name := range unicode.Categories {
		propertyNames[normalizePropertyName(name)] = name
	}
	for name := range unicode.Scripts {
		propertyNames[normalizePropertyName(name)] = name
	}
	for alias, name := range categoryAliases {
		propertyNames[alias] = name
	}
}

// buildClass returns the ranges of a character class in the syntax of package `regexp/syntax`.
// The results are cached, because computing large classes is expensive.
func buildClass(src string) charSet {
	if s, ok := classCache.Load(src); ok {
		return s.(charSet)
	}

	re, err := syntax.Parse(src, syntax.Perl)
	if err != nil {
		panic(fmt.Sprintf("invalid class %s: %v", src, err))
	}

	var set charSet
	switch re.Op {
	case syntax.OpCharClass:
		set = newCharSet(re.Rune...)
	case syntax.OpLiteral:
		for _, c := range re.Rune {
			set = set.union(charSet{c, c})
		}
	case syntax.OpAnyChar:
		set = charSet{0, unicode.MaxRune}
	default:
		panic(fmt.Sprintf("expected regex syntax type %s, got %s", syntax.OpCharClass, re.Op))
	}

	classCache.Store(src, set)
	return set
}

// posixClass returns the set of a POSIX bracket name like "alpha".
func posixClass(name string, ascii bool) (charSet, bool) {
	c, ok := namedClasses[name]
	if !ok {
		return nil, false
	}

	if ascii {
		return buildClass(c.ascii), true
	}
	return buildClass(c.unicode), true
}

// propertyClass returns the set of a character property like "Greek" or "Lu".
// Property names are case insensitive and may contain spaces, hyphens and underscores.
// Under the ASCII encoding, only the POSIX bracket names are valid.
func propertyClass(name string, ascii bool) (charSet, bool) {
	n := normalizePropertyName(name)

	if set, ok := posixClass(n, ascii); ok {
		return set, true
	}
	if ascii {
		return nil, false
	}

	propertyOnce.Do(initPropertyNames)

	table, ok := propertyNames[n]
	if !ok {
		return nil, false
	}

	return buildClass(`[\p{` + table + `}]`), true
}

// Character types of the escapes \w, \d, \s and \h.
const (
	typeWord   = "word"
	typeDigit  = "digit"
	typeSpace  = "space"
	typeXDigit = "xdigit"
)

// charType returns the set of a character type escape.
func charType(name string, negate, ascii bool) charSet {
	set, _ := posixClass(name, ascii)
	if negate {
		return set.negate()
	}
	return set
}
