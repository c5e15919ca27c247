package syntax

import (
	"math/bits"
	"strconv"
	"strings"
)

// Option is a set of compile-time or search-time flags.
// The bit values are those of the engine's option word.
type Option uint32

// Available options.
const (
	OptionNone Option = 0

	// compile time
	OptionIgnoreCase       Option = 1 << 0
	OptionExtend           Option = 1 << 1 // extended pattern form
	OptionMultiline        Option = 1 << 2 // '.' matches newline
	OptionSingleline       Option = 1 << 3 // '^' -> '\A', '$' -> '\Z'
	OptionFindLongest      Option = 1 << 4
	OptionFindNotEmpty     Option = 1 << 5
	OptionNegateSingleline Option = 1 << 6 // clears OptionSingleline, that is enabled by a dialect

	// search time
	OptionDontCaptureGroup Option = 1 << 7  // only named groups capture
	OptionCaptureGroup     Option = 1 << 8  // named and plain groups capture
	OptionNotBOL           Option = 1 << 9  // the subject head is not the beginning of a line
	OptionNotEOL           Option = 1 << 10 // the subject end is not the end of a line
)

// Namespaces of options.
const (
	CompileOptions = OptionIgnoreCase | OptionExtend | OptionMultiline | OptionSingleline |
		OptionFindLongest | OptionFindNotEmpty | OptionNegateSingleline
	SearchOptions = OptionNotBOL | OptionNotEOL | OptionCaptureGroup | OptionDontCaptureGroup

	// CapturePolicy contains the options, that decide which groups capture.
	CapturePolicy = OptionCaptureGroup | OptionDontCaptureGroup
)

var optionNames = []struct {
	opt  Option
	name string
}{
	{OptionIgnoreCase, "IGNORECASE"},
	{OptionExtend, "EXTEND"},
	{OptionMultiline, "MULTILINE"},
	{OptionSingleline, "SINGLELINE"},
	{OptionFindLongest, "FIND_LONGEST"},
	{OptionFindNotEmpty, "FIND_NOT_EMPTY"},
	{OptionNegateSingleline, "NEGATE_SINGLELINE"},
	{OptionDontCaptureGroup, "DONT_CAPTURE_GROUP"},
	{OptionCaptureGroup, "CAPTURE_GROUP"},
	{OptionNotBOL, "NOTBOL"},
	{OptionNotEOL, "NOTEOL"},
}

// OptionByName returns the option with the given name, for example "IGNORECASE".
func OptionByName(name string) (Option, bool) {
	name = strings.ToUpper(name)
	for _, o := range optionNames {
		if o.name == name {
			return o.opt, true
		}
	}

	return 0, false
}

// Has reports whether all options of o2 are set in o.
func (o Option) Has(o2 Option) bool {
	return o&o2 == o2
}

// String returns the option names joined by "|".
func (o Option) String() string {
	if o == 0 {
		return "NONE"
	}

	var names []string
	for v := uint32(o); v != 0; v &= v - 1 {
		bit := Option(1) << bits.TrailingZeros32(v)

		name := "0x" + strconv.FormatUint(uint64(bit), 16)
		for _, n := range optionNames {
			if n.opt == bit {
				name = n.name
				break
			}
		}

		names = append(names, name)
	}

	return strings.Join(names, "|")
}

// Options holds the two disjoint option namespaces.
type Options struct {
	Compile Option
	Search  Option
}

// Validate checks, that every option is given in its namespace and that no
// conflicting options are set.
func (o Options) Validate() error {
	if bad := o.Compile &^ CompileOptions; bad != 0 {
		return configErrorf("option %s is not a compile time option", bad)
	}
	if err := ValidateSearch(o.Search); err != nil {
		return err
	}

	return nil
}

// ValidateSearch checks a set of search time options.
func ValidateSearch(o Option) error {
	if bad := o &^ SearchOptions; bad != 0 {
		return configErrorf("option %s is not a search time option", bad)
	}
	if o.Has(CapturePolicy) {
		return configErrorf("options CAPTURE_GROUP and DONT_CAPTURE_GROUP are mutually exclusive")
	}

	return nil
}

// Effective returns the compile options, that result from combining the
// options with the implicit options of the dialect.
// NEGATE_SINGLELINE cancels SINGLELINE regardless of where it came from.
func (o Options) Effective(syn *Syntax) Option {
	opt := o.Compile
	if syn != nil {
		opt |= syn.Options
	}
	if opt&OptionNegateSingleline != 0 {
		opt &^= OptionSingleline
	}

	return opt | o.Search&CapturePolicy
}
