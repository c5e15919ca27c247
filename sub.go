package onig

import (
	"strings"
)

// replacer writes the replacement of a match.
type replacer interface {
	replace(b *strings.Builder, c *Captures)
}

// templateReplacer expands a parsed template.
type templateReplacer []templateRule

// functionReplacer writes the result of a function.
type functionReplacer func(c *Captures) string

var (
	_ replacer = templateReplacer(nil)
	_ replacer = functionReplacer(nil)
)

func (rules templateReplacer) replace(b *strings.Builder, c *Captures) {
	for _, t := range rules {
		if t.isLiteral() {
			b.WriteString(t.literal)
			continue
		}

		// the last matched group of a name wins
		for i := len(t.groups) - 1; i >= 0; i-- {
			if g, ok := c.Get(t.groups[i]); ok {
				b.Write(g)
				break
			}
		}
	}
}

func (f functionReplacer) replace(b *strings.Builder, c *Captures) {
	b.WriteString(f(c))
}

// ReplaceAll replaces all matches in the subject with the template.
// See parseTemplate for the syntax of the template.
func (r *Regex) ReplaceAll(subject, template string) (string, error) {
	var rep templateReplacer

	if !strings.ContainsRune(template, '\\') {
		rep = templateReplacer{{literal: template}}
	} else {
		rules, err := parseTemplate(r, template)
		if err != nil {
			return "", err
		}

		rep = rules
	}

	return r.replaceAll(subject, rep)
}

// Expand returns the template with the group references replaced by the groups of c.
// See parseTemplate for the syntax of the template.
func (r *Regex) Expand(template string, c *Captures) (string, error) {
	if err := r.check(); err != nil {
		return "", err
	}

	rules, err := parseTemplate(r, template)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	templateReplacer(rules).replace(&b, c)

	return b.String(), nil
}

// ReplaceAllFunc replaces all matches in the subject with the result of fn.
// The Captures passed to fn are valid only during the call.
func (r *Regex) ReplaceAllFunc(subject string, fn func(c *Captures) string) (string, error) {
	return r.replaceAll(subject, functionReplacer(fn))
}

func (r *Regex) replaceAll(subject string, rep replacer) (string, error) {
	var b strings.Builder
	beg := 0

	err := r.Each([]byte(subject), -1, func(c *Captures) bool {
		start, end, _ := c.Pos(0)

		b.WriteString(subject[beg:start])
		rep.replace(&b, c)

		beg = end
		return true
	})
	if err != nil {
		return "", err
	}

	b.WriteString(subject[beg:])

	return b.String(), nil
}
