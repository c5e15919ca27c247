package onig

// Each calls fn for every successive non-overlapping match in the subject.
// If n >= 0, at most n matches are visited. The iteration stops early, if fn returns false.
//
// An empty match directly after the previous match is skipped. After an empty match,
// the search continues one character later.
// The Captures passed to fn are valid only during the call.
func (r *Regex) Each(subject []byte, n int, fn func(c *Captures) bool) error {
	return r.EachFrom(subject, 0, n, fn)
}

// EachFrom is like Each, but the first match is searched at the offset start.
// Anchors such as ^ and \A still refer to the beginning of the subject.
func (r *Regex) EachFrom(subject []byte, start, n int, fn func(c *Captures) bool) error {
	if err := r.check(); err != nil {
		return err
	}
	if err := r.checkRange(subject, start, len(subject)); err != nil {
		return err
	}

	if n < 0 {
		n = len(subject) + 1
	}

	region := new(Region)
	end := len(subject)
	prevMatchEnd := -1

	for pos, i := start, 0; i < n && pos <= end; {
		_, ok, err := r.Search(subject, pos, end, 0, region)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		beg, stop, _ := region.Pos(0)

		accept := true
		if stop == pos {
			// empty match
			if beg == prevMatchEnd {
				accept = false
			}
			pos += charLen(r.enc, subject, pos)
		} else {
			pos = stop
		}
		prevMatchEnd = stop

		if accept {
			i++
			if !fn(region.Captures()) {
				break
			}
		}
	}

	return nil
}

// FindAll returns the group positions of all successive matches.
// Each element holds the start and end of every group, -1 for unmatched groups.
// If n >= 0, at most n matches are returned.
func (r *Regex) FindAll(subject []byte, n int) ([][]int, error) {
	var res [][]int

	err := r.Each(subject, n, func(c *Captures) bool {
		m := make([]int, 0, 2*c.Len())
		for _, p := range c.Positions() {
			m = append(m, p[0], p[1])
		}

		res = append(res, m)
		return true
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// FindAllString returns the text of all successive matches.
// If n >= 0, at most n matches are returned.
func (r *Regex) FindAllString(subject string, n int) ([]string, error) {
	var res []string

	err := r.Each([]byte(subject), n, func(c *Captures) bool {
		s, _ := c.GetString(0)
		res = append(res, s)
		return true
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
