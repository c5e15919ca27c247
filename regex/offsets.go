package regex

import (
	"math/bits"
	"sort"
)

// charStarts is a bit set of the byte offsets, at which the characters of a subject start.
// It answers rank and select queries, that convert between byte offsets and character indices.
type charStarts struct {
	words []uint64
	ranks []int // number of set bits before each word
}

// newCharStarts returns an empty set for the byte offsets 0 to n.
func newCharStarts(n int) *charStarts {
	return &charStarts{words: make([]uint64, n/64+1)}
}

func (c *charStarts) set(i int) {
	c.words[i/64] |= 1 << (i % 64)
}

// index builds the rank directory. It must be called after the last call of set.
func (c *charStarts) index() {
	c.ranks = make([]int, len(c.words))

	n := 0
	for i, w := range c.words {
		c.ranks[i] = n
		n += bits.OnesCount64(w)
	}
}

// rank returns the number of set bits before the offset i.
func (c *charStarts) rank(i int) int {
	w := i / 64
	return c.ranks[w] + bits.OnesCount64(c.words[w]&(1<<(i%64)-1))
}

// selectBit returns the offset of the set bit with the rank k.
func (c *charStarts) selectBit(k int) int {
	w := sort.Search(len(c.ranks), func(i int) bool { return c.ranks[i] > k }) - 1

	word := c.words[w]
	for r := k - c.ranks[w]; r > 0; r-- {
		word &= word - 1 // clear the lowest bit
	}

	return w*64 + bits.TrailingZeros64(word)
}
