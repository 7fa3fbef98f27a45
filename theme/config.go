package theme

import "slices"

// Config is the theme section of configuration. Both maps are keyed by theme
// key (for example "contain").
type Config struct {
	// Override replaces whatever plugins publish for a key.
	Override map[string]*Tokens `yaml:"override"`
	// Extend is merged on top of override or plugin defaults, its values win.
	Extend map[string]*Tokens `yaml:"extend"`
}

// Resolve computes effective tokens for key. Base is Override[key] when
// configured, otherwise union of defaults (first publisher wins a name).
// Extend[key] is merged last. Returns nil when nothing is known about key.
// Result never aliases configuration or defaults.
func (c *Config) Resolve(key string, defaults ...*Tokens) *Tokens {
	var base *Tokens

	if c != nil {
		if o, ok := c.Override[key]; ok && o != nil {
			base = o.Clone()
		}
	}
	if base == nil {
		for _, d := range defaults {
			if d == nil {
				continue
			}
			if base == nil {
				base = NewTokens()
			}
			for k, v := range d.All() {
				base.Insert(k, v)
			}
		}
	}

	if c != nil {
		if e, ok := c.Extend[key]; ok && e != nil {
			if base == nil {
				base = NewTokens()
			}
			base.Extend(e)
		}
	}
	return base
}

// Keys returns sorted theme keys mentioned in configuration.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Override)+len(c.Extend))
	var keys []string
	for _, m := range []map[string]*Tokens{c.Override, c.Extend} {
		for k := range m {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	return keys
}
