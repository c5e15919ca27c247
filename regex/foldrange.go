package regex

import (
	"cmp"
	"slices"
	"unicode"
)

// foldedRanges returns the sorted and merged ranges of all cases of the characters lo to hi.
// If ascii is true, only ASCII letters have other cases.
func foldedRanges(lo, hi rune, ascii bool) []rune {
	fold, maxFold := simpleFold, rune(maxFoldUnicode)
	if ascii {
		fold, maxFold = simpleFoldASCII, maxFoldASCII
	}

	var r []rune

	// characters outside of [minFold, maxFold] have no other cases
	if lo <= minFold && hi >= maxFold || hi < minFold || lo > maxFold {
		return appendRange(r, lo, hi)
	}
	if lo < minFold {
		r = appendRange(r, lo, minFold-1)
		lo = minFold
	}
	if hi > maxFold {
		r = appendRange(r, maxFold+1, hi)
		hi = maxFold
	}

	for c := lo; c <= hi; c++ {
		r = appendRange(r, c, c)
		for f := fold(c); f != c; f = fold(f) {
			r = appendRange(r, f, f)
		}
	}

	return cleanClass(r)
}

// appendRange appends the range lo-hi to the class r.
// The range is merged into one of the last two ranges, if it overlaps or abuts them,
// so folding an alphabet grows one range per case.
func appendRange(r []rune, lo, hi rune) []rune {
	n := len(r)
	for i := 2; i <= 4 && i <= n; i += 2 {
		rlo, rhi := r[n-i], r[n-i+1]
		if lo <= rhi+1 && rlo <= hi+1 {
			r[n-i] = min(lo, rlo)
			r[n-i+1] = max(hi, rhi)
			return r
		}
	}

	return append(r, lo, hi)
}

// simpleFold is unicode.SimpleFold with an additional orbit for the ligatures
// U+FB05 and U+FB06, that fold to the same string.
func simpleFold(c rune) rune {
	switch c {
	case '\ufb05':
		return '\ufb06'
	case '\ufb06':
		return '\ufb05'
	default:
		return unicode.SimpleFold(c)
	}
}

// simpleFoldASCII is unicode.SimpleFold limited to ASCII letters.
func simpleFoldASCII(c rune) rune {
	switch {
	case inRange('A', 'Z', c):
		return c - 'A' + 'a'
	case inRange('a', 'z', c):
		return c - 'a' + 'A'
	default:
		return c
	}
}

// cleanClass sorts the ranges of the class r (pairs of lo and hi) and merges
// overlapping and abutting ranges.
func cleanClass(r []rune) []rune {
	if len(r) < 4 {
		return r
	}

	pairs := make([][2]rune, len(r)/2)
	for i := range pairs {
		pairs[i] = [2]rune{r[2*i], r[2*i+1]}
	}

	slices.SortFunc(pairs, func(a, b [2]rune) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(b[1], a[1])
	})

	r = r[:0]
	for _, p := range pairs {
		if n := len(r); n > 0 && p[0] <= r[n-1]+1 {
			r[n-1] = max(r[n-1], p[1])
			continue
		}
		r = append(r, p[0], p[1])
	}

	return r
}
