package onig

import (
	"github.com/magnetde/onig/syntax"
)

// Search searches the subject for a match, that starts between start and rangeEnd (both inclusive).
// The match itself may extend up to the end of the subject, and lookbehinds, word boundaries
// and line anchors see the whole subject.
//
// On a match, Search returns the start of the match and true and fills the region.
// If no match exists, it returns -1 and false and every group of the region is unmatched.
// A nil region is allowed.
func (r *Regex) Search(subject []byte, start, rangeEnd int, opts syntax.Option, region *Region) (int, bool, error) {
	if err := r.check(); err != nil {
		return -1, false, err
	}
	if region == nil {
		region = new(Region)
	}

	region.reset(r, subject)

	if err := r.checkRange(subject, start, rangeEnd); err != nil {
		return -1, false, err
	}

	opts, err := r.searchOptions(opts)
	if err != nil {
		return -1, false, err
	}

	pos, err := r.prog.Search(subject, start, rangeEnd, opts, &region.regs)
	if err != nil {
		region.unmatch()
		return -1, false, searchError(err)
	}
	if pos < 0 {
		region.unmatch()
		return -1, false, nil
	}

	if !region.validate(r.numGroups) || region.regs.Beg[0] != pos || pos < start || pos > rangeEnd {
		region.unmatch()
		return -1, false, searchError(errRegionInvalid)
	}

	region.matched = true
	return pos, true, nil
}

// Match matches the pattern at the position `at` of the subject.
// On a match, it returns the length of the match in bytes and true.
func (r *Regex) Match(subject []byte, at int, opts syntax.Option, region *Region) (int, bool, error) {
	if err := r.check(); err != nil {
		return -1, false, err
	}
	if region == nil {
		region = new(Region)
	}

	region.reset(r, subject)

	if err := r.checkRange(subject, at, at); err != nil {
		return -1, false, err
	}

	opts, err := r.searchOptions(opts)
	if err != nil {
		return -1, false, err
	}

	n, err := r.prog.Match(subject, at, opts, &region.regs)
	if err != nil {
		region.unmatch()
		return -1, false, searchError(err)
	}
	if n < 0 {
		region.unmatch()
		return -1, false, nil
	}

	if !region.validate(r.numGroups) || region.regs.Beg[0] != at || region.regs.End[0] != at+n {
		region.unmatch()
		return -1, false, searchError(errRegionInvalid)
	}

	region.matched = true
	return n, true, nil
}

// checkRange checks the search bounds.
// Both bounds must lie on character boundaries of the encoding.
func (r *Regex) checkRange(subject []byte, start, rangeEnd int) error {
	if start < 0 || start > rangeEnd || rangeEnd > len(subject) {
		return configErrorf("invalid search range [%d, %d] for a subject of length %d", start, rangeEnd, len(subject))
	}
	if !r.enc.IsBoundary(subject, start) {
		return configErrorf("start %d is not at a character boundary", start)
	}
	if !r.enc.IsBoundary(subject, rangeEnd) {
		return configErrorf("range end %d is not at a character boundary", rangeEnd)
	}

	return nil
}

// searchOptions validates the search options and combines them with the default search options.
// The capture group policy may be repeated, but it cannot be changed after compilation.
func (r *Regex) searchOptions(opts syntax.Option) (syntax.Option, error) {
	if err := syntax.ValidateSearch(opts); err != nil {
		return 0, err
	}

	if p := opts & syntax.CapturePolicy; p != 0 && p != r.policy {
		return 0, configErrorf("capture group policy %s differs from the compile time policy", p)
	}

	return opts&^syntax.CapturePolicy | r.searchOpts, nil
}

// IsMatch reports whether the pattern matches the whole subject.
func (r *Regex) IsMatch(subject string) bool {
	n, ok, err := r.Match([]byte(subject), 0, 0, nil)
	return err == nil && ok && n == len(subject)
}

// Find returns the position of the first match in the subject.
func (r *Regex) Find(subject string) (start, end int, ok bool) {
	var region Region

	b := []byte(subject)
	if _, ok, err := r.Search(b, 0, len(b), 0, &region); err != nil || !ok {
		return -1, -1, false
	}

	return region.Pos(0)
}

// Captures searches the whole subject and returns the groups of the first match.
// It returns nil, if no match exists or the search fails.
func (r *Regex) Captures(subject []byte) *Captures {
	region := new(Region)

	if _, ok, err := r.Search(subject, 0, len(subject), 0, region); err != nil || !ok {
		return nil
	}

	return region.Captures()
}
