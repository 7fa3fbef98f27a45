package config

import (
	"fmt"
	"slices"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"containcss/theme"
)

// additionalChecks validates what struct tags cannot express: class prefix
// syntax and theme token contents.
func additionalChecks(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}

	if p := cfg.Build.Prefix; p != "" && !validClassPart(p) {
		sl.ReportError(p, "prefix", "Prefix", "class_prefix", "")
	}

	for _, section := range []struct {
		name   string
		tokens map[string]*theme.Tokens
	}{
		{"override", cfg.Build.Theme.Override},
		{"extend", cfg.Build.Theme.Extend},
	} {
		keys := make([]string, 0, len(section.tokens))
		for key := range section.tokens {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		for _, key := range keys {
			for name, value := range section.tokens[key].All() {
				field := fmt.Sprintf("theme.%s.%s.%s", section.name, key, name)
				if !validClassPart(name) {
					sl.ReportError(name, field, "Theme", "class_name", "")
				}
				if strings.TrimSpace(value) == "" {
					sl.ReportError(value, field, "Theme", "required", "")
				}
			}
		}
	}
}

// validClassPart reports whether s could be used in a class name without
// escaping.
func validClassPart(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
