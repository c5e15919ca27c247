package onig

import (
	"strconv"
	"strings"
)

// templateRule is a part of a replacement template.
type templateRule struct {
	literal string
	groups  []int // referenced groups; nil if the rule is a literal
}

func (t *templateRule) isLiteral() bool {
	return t.groups == nil
}

// parseTemplate parses a replacement template.
// The template may contain the references \0 to \9 and \k<name>, where \k<name> refers
// to the last matched group of the name. The sequence \\ is a single backslash.
// Any other backslash is kept literally.
func parseTemplate(r *Regex, template string) ([]templateRule, error) {
	var rules []templateRule

	addLiteral := func(s string) {
		if s == "" {
			return
		}

		if len(rules) > 0 {
			last := &rules[len(rules)-1]
			if last.isLiteral() { // concat consecutive literals
				last.literal += s
				return
			}
		}

		rules = append(rules, templateRule{literal: s})
	}

	addGroup := func(i int) error {
		if i >= r.numGroups {
			return configErrorf("invalid group reference %d", i)
		}

		rules = append(rules, templateRule{groups: []int{i}})
		return nil
	}

	for len(template) > 0 {
		before, rest, ok := strings.Cut(template, `\`)
		if !ok {
			break
		}

		addLiteral(before)
		template = rest

		if template == "" {
			addLiteral(`\`)
			break
		}

		c := template[0]
		template = template[1:]

		switch {
		case c == '\\':
			addLiteral(`\`)
		case isDigit(c):
			if err := addGroup(int(c - '0')); err != nil {
				return nil, err
			}
		case c == 'k' && strings.HasPrefix(template, "<"):
			name, rest, ok := strings.Cut(template[1:], ">")
			if !ok {
				return nil, configErrorf("missing >, unterminated name")
			}
			if name == "" {
				return nil, configErrorf("missing group name")
			}

			template = rest

			if i, err := strconv.Atoi(name); err == nil && i >= 0 {
				if err := addGroup(i); err != nil {
					return nil, err
				}
				break
			}

			groups, ok := r.names[name]
			if !ok {
				return nil, configErrorf("unknown group name <%s>", name)
			}

			rules = append(rules, templateRule{groups: groups})
		default:
			addLiteral(`\`)
			addLiteral(string(c))
		}
	}

	addLiteral(template)

	return rules, nil
}
