package contain

import (
	"go.uber.org/zap"

	"containcss/plugin"
	"containcss/theme"
)

const (
	// ThemeKey is where default table is published.
	ThemeKey = "contain"
	// Property is CSS property every utility sets.
	Property = "contain"
	// ClassPrefix starts every generated class name.
	ClassPrefix = "contain-"
)

// Plugin returns utility plugin exposing the contain table as theme key
// "contain" and registering ".contain-<name>" for every entry of the
// effective table.
func Plugin(log *zap.Logger) plugin.Plugin {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("contain")

	return plugin.Plugin{
		Name:  "contain",
		Theme: map[string]*theme.Tokens{ThemeKey: Default()},
		Handler: func(api plugin.API) {
			values := api.Theme(ThemeKey)
			if values.Len() == 0 {
				log.Debug("Theme has no contain values, using defaults")
				values = Default()
			}
			for name, value := range values.All() {
				if err := CheckValue(value); err != nil {
					log.Warn("Theme value is not a valid contain value",
						zap.String("name", name), zap.String("value", value), zap.Error(err))
				}
			}
			api.AddUtilities(Utilities(values)...)
			log.Debug("Registered contain utilities", zap.Int("count", values.Len()))
		},
	}
}

// Utilities converts table into utilities preserving its order.
func Utilities(values *theme.Tokens) []plugin.Utility {
	out := make([]plugin.Utility, 0, values.Len())
	for name, value := range values.All() {
		out = append(out, plugin.Utility{
			Selector:     "." + ClassPrefix + name,
			Declarations: []plugin.Declaration{{Property: Property, Value: value}},
		})
	}
	return out
}
