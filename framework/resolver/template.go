package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/km-arc/go-container/framework/errors"
)

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// Template is a parsed string expression: literal text and {entry}
// placeholders in order.
type Template struct {
	literals []string
	entries  []string
}

// ParseTemplate splits expression once so it can be expanded many times.
func ParseTemplate(expression string) Template {
	var t Template
	last := 0
	for _, m := range placeholder.FindAllStringSubmatchIndex(expression, -1) {
		t.literals = append(t.literals, expression[last:m[0]])
		t.entries = append(t.entries, expression[m[2]:m[3]])
		last = m[1]
	}
	t.literals = append(t.literals, expression[last:])
	return t
}

// Entries lists the placeholder names in order of appearance.
func (t Template) Entries() []string {
	return append([]string(nil), t.entries...)
}

// Expand replaces every placeholder with the formatted value of its entry.
// owner names the entry the expression belongs to in errors.
func (t Template) Expand(get func(name string) (any, error), owner string) (string, error) {
	var b strings.Builder
	for i, name := range t.entries {
		b.WriteString(t.literals[i])
		v, err := get(name)
		if err != nil {
			return "", errors.Dependency(err, "placeholder {%s} of string expression '%s'", name, owner)
		}
		b.WriteString(fmt.Sprint(v))
	}
	b.WriteString(t.literals[len(t.literals)-1])
	return b.String(), nil
}
