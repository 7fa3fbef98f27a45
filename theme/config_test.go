package theme

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	yaml "gopkg.in/yaml.v3"
)

func TestConfig_Resolve(t *testing.T) {
	defaults := TokensOf([2]string{"none", "none"}, [2]string{"strict", "strict"})
	other := TokensOf([2]string{"strict", "size"}, [2]string{"paint", "paint"})

	tests := []struct {
		name     string
		cfg      *Config
		defaults []*Tokens
		want     *Tokens
	}{
		{
			name:     "nil config uses defaults",
			defaults: []*Tokens{defaults},
			want:     defaults,
		},
		{
			name:     "first publisher wins",
			cfg:      &Config{},
			defaults: []*Tokens{defaults, other},
			want:     TokensOf([2]string{"none", "none"}, [2]string{"strict", "strict"}, [2]string{"paint", "paint"}),
		},
		{
			name: "override replaces",
			cfg: &Config{Override: map[string]*Tokens{
				"contain": TokensOf([2]string{"custom", "layout paint"}),
			}},
			defaults: []*Tokens{defaults},
			want:     TokensOf([2]string{"custom", "layout paint"}),
		},
		{
			name: "extend merges",
			cfg: &Config{Extend: map[string]*Tokens{
				"contain": TokensOf([2]string{"custom", "layout"}, [2]string{"none", "paint"}),
			}},
			defaults: []*Tokens{defaults},
			want:     TokensOf([2]string{"none", "paint"}, [2]string{"strict", "strict"}, [2]string{"custom", "layout"}),
		},
		{
			name: "override then extend",
			cfg: &Config{
				Override: map[string]*Tokens{"contain": TokensOf([2]string{"a", "size"})},
				Extend:   map[string]*Tokens{"contain": TokensOf([2]string{"b", "paint"})},
			},
			defaults: []*Tokens{defaults},
			want:     TokensOf([2]string{"a", "size"}, [2]string{"b", "paint"}),
		},
		{
			name: "other keys ignored",
			cfg: &Config{Override: map[string]*Tokens{
				"spacing": TokensOf([2]string{"1", "0.25rem"}),
			}},
			defaults: []*Tokens{defaults},
			want:     defaults,
		},
		{
			name: "extend without defaults",
			cfg: &Config{Extend: map[string]*Tokens{
				"contain": TokensOf([2]string{"b", "paint"}),
			}},
			want: TokensOf([2]string{"b", "paint"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Resolve("contain", tt.defaults...)
			if !got.Equal(tt.want) {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConfig_ResolveUnknown(t *testing.T) {
	var cfg Config
	if got := cfg.Resolve("contain"); got != nil {
		t.Errorf("Resolve() = %s, want nil", got)
	}
	if got := cfg.Resolve("contain", nil); got != nil {
		t.Errorf("Resolve(nil) = %s, want nil", got)
	}
}

func TestConfig_ResolveDoesNotAlias(t *testing.T) {
	defaults := TokensOf([2]string{"none", "none"})
	override := TokensOf([2]string{"custom", "paint"})
	cfg := &Config{Override: map[string]*Tokens{"contain": override}}

	got := cfg.Resolve("contain", defaults)
	got.Set("custom", "size")
	if v, _ := override.Get("custom"); v != "paint" {
		t.Errorf("override changed through result: %q", v)
	}

	got = (&Config{}).Resolve("contain", defaults)
	got.Set("extra", "size")
	if defaults.Len() != 1 {
		t.Errorf("defaults changed through result: %s", defaults)
	}
}

func TestConfig_YAML(t *testing.T) {
	doc := `
override:
  contain:
    custom: layout paint
    another: size style
extend:
  spacing:
    huge: 10rem
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]string{"custom", "another"}, cfg.Override["contain"].Names()); diff != "" {
		t.Errorf("override order mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"contain", "spacing"}, cfg.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}
