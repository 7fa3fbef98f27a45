// Package contain builds the table of CSS contain values and registers it as
// utility classes.
//
// Valid values follow the property grammar:
//
//	none | strict | content | [ size || inline-size || layout || style || paint ]
//
// plus global values. size and inline-size are mutually exclusive.
package contain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"containcss/theme"
)

// Combination is a non-empty set of keywords kept in declaration order.
type Combination []Keyword

// Name returns class name suffix, e.g. "size-layout-paint".
func (c Combination) Name() string {
	return c.join("-")
}

// Value returns property value, e.g. "size layout paint".
func (c Combination) Value() string {
	return c.join(" ")
}

// Valid reports whether combination may be used as contain value.
func (c Combination) Valid() bool {
	if len(c) == 0 {
		return false
	}
	var size, inline bool
	for _, k := range c {
		switch k {
		case KeywordSize:
			size = true
		case KeywordInlineSize:
			inline = true
		}
	}
	return !(size && inline)
}

func (c Combination) join(sep string) string {
	parts := make([]string, len(c))
	for i, k := range c {
		parts[i] = k.String()
	}
	return strings.Join(parts, sep)
}

// fixed entries, always present and always first.
var named = [][2]string{
	{"none", "none"},

	{"strict", "size layout paint style"},
	{"content", "layout paint style"},

	{"inherit", "inherit"},
	{"initial", "initial"},
	{"revert", "revert"},
	{"revert-layer", "revert-layer"},
	{"unset", "unset"},
}

// fromMask selects keywords whose bit is set in mask, bit i is i-th keyword.
func fromMask(mask int) Combination {
	var c Combination
	for i := range keywordCount {
		if mask&(1<<i) != 0 {
			c = append(c, Keyword(i))
		}
	}
	return c
}

// Combinations returns every valid keyword combination in mask order.
func Combinations() []Combination {
	var out []Combination
	for mask := 1; mask < 1<<keywordCount; mask++ {
		if c := fromMask(mask); c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// Generate builds the complete table of contain values: named entries first,
// then every valid combination unless its name is already taken.
func Generate() *theme.Tokens {
	values := theme.TokensOf(named...)
	for _, c := range Combinations() {
		values.Insert(c.Name(), c.Value())
	}
	return values
}

var defaults = sync.OnceValue(Generate)

// Default returns a copy of the generated table, callers are free to modify it.
func Default() *theme.Tokens {
	return defaults().Clone()
}

// CheckValue reports why value cannot be used for the contain property. It
// accepts any single named value or distinct keywords separated by spaces.
func CheckValue(value string) error {
	fields := strings.Fields(value)
	switch {
	case len(fields) == 0:
		return errors.New("empty value")
	case len(fields) == 1 && slices.ContainsFunc(named, func(e [2]string) bool { return e[0] == fields[0] }):
		return nil
	}

	var c Combination
	for _, f := range fields {
		k, err := ParseKeyword(f)
		if err != nil {
			return err
		}
		if slices.Contains(c, k) {
			return fmt.Errorf("%s repeated", k)
		}
		c = append(c, k)
	}
	if !c.Valid() {
		return errors.New("size and inline-size are mutually exclusive")
	}
	return nil
}
