// Package plugin defines the narrow surface between utility plugins and the
// build pipeline hosting them.
package plugin

import (
	"strings"

	"containcss/theme"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

// Utility is a rule plugin asks host to emit. Selector is expected to be a
// single class selector (".name"), host applies prefix and escaping.
type Utility struct {
	Selector     string
	Declarations []Declaration
}

// Class returns class name targeted by the utility selector.
func (u Utility) Class() string {
	return strings.TrimPrefix(u.Selector, ".")
}

// API is what host makes available to plugin handlers.
type API interface {
	// Theme returns effective tokens for key after configuration has been
	// applied, nil when key is unknown.
	Theme(key string) *theme.Tokens
	// AddUtilities registers utilities in the order given.
	AddUtilities(utilities ...Utility)
}

// Plugin is registered with host before build.
type Plugin struct {
	Name string
	// Theme is published as defaults under its keys, configuration may
	// override or extend it.
	Theme map[string]*theme.Tokens
	// Handler is called once per build.
	Handler func(api API)
}
