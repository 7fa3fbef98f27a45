package css

import (
	"fmt"
	"strings"
)

// OutputStyle selects stylesheet serialization format.
type OutputStyle int

const (
	// StyleExpanded puts every declaration on its own line.
	StyleExpanded OutputStyle = iota
	// StyleCompact puts every rule on a single line without optional whitespace.
	StyleCompact
)

var styleNames = map[OutputStyle]string{
	StyleExpanded: "expanded",
	StyleCompact:  "compact",
}

// OutputStyleNames returns names accepted by ParseOutputStyle.
func OutputStyleNames() []string {
	return []string{styleNames[StyleExpanded], styleNames[StyleCompact]}
}

// String implements fmt.Stringer.
func (s OutputStyle) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OutputStyle(%d)", int(s))
}

// ParseOutputStyle converts name (case insensitive) to OutputStyle.
func ParseOutputStyle(name string) (OutputStyle, error) {
	for s, n := range styleNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return StyleExpanded, fmt.Errorf("%q is not a valid output style, try [%s]", name, strings.Join(OutputStyleNames(), ", "))
}
