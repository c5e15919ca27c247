package onig

// Captures is a read-only view of the groups of a match.
// It borrows the subject and the region of the search. Once the region is searched
// again or cleared, the view is stale: it reports every group as absent.
type Captures struct {
	subject []byte
	region  *Region
	gen     uint64
}

// Valid reports whether the view still refers to the match, it was created for.
func (c *Captures) Valid() bool {
	return c != nil && c.region != nil && c.region.gen == c.gen && c.region.matched
}

// Len returns the number of groups including group 0, or 0 if the view is stale.
func (c *Captures) Len() int {
	if !c.Valid() {
		return 0
	}
	return c.region.Len()
}

// Pos returns the position of group i.
func (c *Captures) Pos(i int) (start, end int, ok bool) {
	if !c.Valid() {
		return -1, -1, false
	}
	return c.region.Pos(i)
}

// Get returns the bytes of the subject matched by group i.
// The returned slice shares memory with the subject.
func (c *Captures) Get(i int) ([]byte, bool) {
	start, end, ok := c.Pos(i)
	if !ok {
		return nil, false
	}
	return c.subject[start:end:end], true
}

// GetString returns the text matched by group i.
func (c *Captures) GetString(i int) (string, bool) {
	b, ok := c.Get(i)
	return string(b), ok
}

// NameIndices returns the group indices of a name in ascending order.
func (c *Captures) NameIndices(name string) []int {
	if !c.Valid() {
		return nil
	}
	return append([]int(nil), c.region.names[name]...)
}

// Name returns an iterator over all groups with the given name.
// The groups are visited in ascending order.
func (c *Captures) Name(name string) NameIter {
	return NameIter{
		c:       c,
		indices: c.NameIndices(name),
		pos:     -1,
	}
}

// NamedGet returns the bytes of the last matched group with the given name.
// With duplicate names, this is the group, a backreference to the name refers to.
func (c *Captures) NamedGet(name string) ([]byte, bool) {
	indices := c.NameIndices(name)
	for i := len(indices) - 1; i >= 0; i-- {
		if b, ok := c.Get(indices[i]); ok {
			return b, true
		}
	}
	return nil, false
}

// All returns the bytes of all groups. Unmatched groups are nil.
func (c *Captures) All() [][]byte {
	n := c.Len()
	if n == 0 {
		return nil
	}

	all := make([][]byte, n)
	for i := range all {
		all[i], _ = c.Get(i)
	}
	return all
}

// Positions returns the positions of all groups. Unmatched groups have the position -1.
func (c *Captures) Positions() [][2]int {
	n := c.Len()
	if n == 0 {
		return nil
	}

	pos := make([][2]int, n)
	for i := range pos {
		pos[i][0], pos[i][1], _ = c.Pos(i)
	}
	return pos
}

// CaptureTree returns the capture tree of the match. See Region.CaptureTree.
func (c *Captures) CaptureTree() *CaptureTreeNode {
	if !c.Valid() {
		return nil
	}
	return c.region.CaptureTree()
}

// Clone returns a view on a copy of the region. The copy is not affected,
// when the original region is searched again. Clone returns nil, if the view is stale.
func (c *Captures) Clone() *Captures {
	if !c.Valid() {
		return nil
	}
	return c.region.clone().Captures()
}

// NameIter iterates over the groups of a name.
// It is a value and may be copied to restart the iteration.
//
//	it := caps.Name("x")
//	for it.Next() {
//		i, b, ok := it.Group()
//		...
//	}
type NameIter struct {
	c       *Captures
	indices []int
	pos     int
}

// Next advances the iterator. It returns false, if no groups are left.
func (it *NameIter) Next() bool {
	if it.pos+1 >= len(it.indices) {
		it.pos = len(it.indices)
		return false
	}

	it.pos++
	return true
}

// Group returns the index and the bytes of the current group.
// The last return value is false, if the group did not participate in the match.
func (it *NameIter) Group() (index int, b []byte, ok bool) {
	if it.pos < 0 || it.pos >= len(it.indices) {
		return -1, nil, false
	}

	index = it.indices[it.pos]
	b, ok = it.c.Get(index)
	return index, b, ok
}

// Len returns the number of groups with the name.
func (it *NameIter) Len() int {
	return len(it.indices)
}

// Reset restarts the iteration.
func (it *NameIter) Reset() {
	it.pos = -1
}
