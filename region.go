package onig

import (
	"slices"

	"github.com/magnetde/onig/regex"
)

// Region receives the group positions of a search.
// A Region may be reused for many searches; every search overwrites it completely.
// Unmatched groups have the position -1.
type Region struct {
	regs    regex.Registers
	subject []byte
	names   map[string][]int
	tree    bool   // the pattern records a capture history
	matched bool   // the last search found a match
	gen     uint64 // incremented by every search and by Clear
}

// NewRegion returns an empty region.
func NewRegion() *Region {
	return &Region{}
}

// Len returns the number of groups of the last search including group 0.
// A new or cleared region has the length 0.
func (r *Region) Len() int {
	return len(r.regs.Beg)
}

// Matched reports whether the last search found a match.
func (r *Region) Matched() bool {
	return r.matched
}

// Pos returns the position of group i. The last return value is false, if the group
// did not participate in the match or does not exist.
func (r *Region) Pos(i int) (start, end int, ok bool) {
	if i < 0 || i >= len(r.regs.Beg) || r.regs.Beg[i] < 0 {
		return -1, -1, false
	}
	return r.regs.Beg[i], r.regs.End[i], true
}

// Clear resets the region to the empty state.
// Captures of the region become invalid.
func (r *Region) Clear() {
	r.regs.Beg = r.regs.Beg[:0]
	r.regs.End = r.regs.End[:0]
	r.regs.History = r.regs.History[:0]
	r.subject = nil
	r.names = nil
	r.tree = false
	r.matched = false
	r.gen++
}

// reset prepares the region for a search of the regex.
// All groups are set to the unmatched sentinel.
func (r *Region) reset(re *Regex, subject []byte) {
	r.regs.Reset(re.numGroups)
	r.subject = subject
	r.names = re.names
	r.tree = len(re.history) > 0
	r.matched = false
	r.gen++
}

// clone returns a copy of the region, that shares only the subject and the name table.
func (r *Region) clone() *Region {
	return &Region{
		regs: regex.Registers{
			Beg:     slices.Clone(r.regs.Beg),
			End:     slices.Clone(r.regs.End),
			History: slices.Clone(r.regs.History),
		},
		subject: r.subject,
		names:   r.names,
		tree:    r.tree,
		matched: r.matched,
	}
}

// unmatch sets all groups to the unmatched sentinel.
func (r *Region) unmatch() {
	r.regs.Reset(len(r.regs.Beg))
	r.matched = false
}

// validate checks, that the engine filled the region with valid positions.
func (r *Region) validate(numGroups int) bool {
	if len(r.regs.Beg) != numGroups || len(r.regs.End) != numGroups {
		return false
	}

	n := len(r.subject)

	for i, b := range r.regs.Beg {
		e := r.regs.End[i]
		if b < 0 && e < 0 && i > 0 {
			continue
		}
		if b < 0 || b > e || e > n {
			return false
		}
	}

	for _, c := range r.regs.History {
		if c.Group < 1 || c.Group >= numGroups || c.Start < 0 || c.Start > c.End || c.End > n {
			return false
		}
	}

	return true
}

// Captures returns a view of the groups of the last match, bound to the subject of the search.
// It returns nil, if the last search did not find a match.
// The view becomes invalid, when the region is searched again or cleared.
func (r *Region) Captures() *Captures {
	if !r.matched {
		return nil
	}

	return &Captures{
		subject: r.subject,
		region:  r,
		gen:     r.gen,
	}
}
