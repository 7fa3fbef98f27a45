package contain

import (
	"fmt"
	"strings"
)

// Keyword is a single flag of the CSS contain property.
// Declaration order below is part of the generated class names and must not
// be changed or derived from sorting.
type Keyword int

const (
	KeywordSize Keyword = iota
	KeywordInlineSize
	KeywordLayout
	KeywordStyle
	KeywordPaint
)

const keywordCount = int(KeywordPaint) + 1

var keywordNames = [keywordCount]string{
	KeywordSize:       "size",
	KeywordInlineSize: "inline-size",
	KeywordLayout:     "layout",
	KeywordStyle:      "style",
	KeywordPaint:      "paint",
}

// ErrInvalidKeyword is returned by ParseKeyword for unknown names.
var ErrInvalidKeyword = fmt.Errorf("not a valid contain keyword, try [%s]", strings.Join(KeywordNames(), ", "))

// String implements fmt.Stringer.
func (k Keyword) String() string {
	if k.IsValid() {
		return keywordNames[k]
	}
	return fmt.Sprintf("Keyword(%d)", int(k))
}

// IsValid reports whether k is one of the declared keywords.
func (k Keyword) IsValid() bool {
	return k >= KeywordSize && k <= KeywordPaint
}

// KeywordNames returns names of all keywords in declaration order.
func KeywordNames() []string {
	out := make([]string, keywordCount)
	copy(out, keywordNames[:])
	return out
}

// ParseKeyword attempts to convert a string to a Keyword.
func ParseKeyword(name string) (Keyword, error) {
	for i, n := range keywordNames {
		if n == name {
			return Keyword(i), nil
		}
	}
	return Keyword(0), fmt.Errorf("%s is %w", name, ErrInvalidKeyword)
}
