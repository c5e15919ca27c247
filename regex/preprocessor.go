package regex

import (
	"strconv"

	"github.com/magnetde/onig/syntax"
)

// matchMode determines, how a program variant is anchored.
type matchMode uint8

const (
	modeSearch   matchMode = iota // unanchored search
	modeAnchored                  // match at the start position only
	modeNotEmpty                  // match at the start position only and reject empty matches
)

// variant identifies one rendering of a pattern.
// The search options NOTBOL and NOTEOL change the rendering of the line anchors,
// so every combination is a separate program of the engine.
type variant struct {
	notBOL bool
	notEOL bool
	mode   matchMode
	minLen int // minimum length of a match in characters; 0 for no limit
}

// preprocessor holds a parsed pattern and renders it in the syntax of the regexp2 engine.
type preprocessor struct {
	p     *subPattern
	st    *state
	word  string // class of word characters of the encoding
	depth int    // expansion depth of recursive calls
}

// newPreprocessor parses the pattern with the given dialect.
func newPreprocessor(pattern string, opts syntax.Option, syn *syntax.Syntax, enc syntax.Encoding) (*preprocessor, error) {
	sp, st, err := parse(pattern, opts, syn, enc)
	if err != nil {
		return nil, err
	}

	p := &preprocessor{
		p:     sp,
		st:    st,
		word:  setString(charType(typeWord, false, st.ascii)),
		depth: maxCallDepth,
	}

	return p, nil
}

// numGroups returns the number of groups including group 0.
func (p *preprocessor) numGroups() int {
	return len(p.st.groups)
}

// render returns the pattern of the variant.
// If the program grows too large, because recursive calls are expanded, the expansion depth
// is reduced and the pattern is rendered again. The reduced depth is kept for later variants.
func (p *preprocessor) render(v variant) (string, error) {
	for {
		w := subPatternWriter{
			st:     p.st,
			root:   p.p,
			notBOL: v.notBOL,
			notEOL: v.notEOL,
			word:   p.word,
			depth:  p.depth,
			active: make([]int, p.numGroups()),
		}

		if v.mode != modeSearch {
			w.WriteString(`\G(?:`)
		}

		w.writePattern(p.p)

		switch v.mode {
		case modeAnchored:
			w.WriteByte(')')
		case modeNotEmpty:
			w.WriteString(`)(?!\G)`)
		}

		if v.minLen > 0 && v.mode != modeSearch {
			w.WriteString(`(?<=\G[\s\S]{`)
			w.WriteString(strconv.Itoa(v.minLen))
			w.WriteString(`,})`)
		}

		if !w.overflow {
			return w.String(), nil
		}

		if len(p.st.calls) == 0 || p.depth <= 1 {
			return "", newError(ErrMemory, 0, "")
		}

		p.depth /= 2
	}
}
