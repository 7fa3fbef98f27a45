package contain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestGenerate_Size(t *testing.T) {
	values := Generate()
	if values.Len() != 31 {
		t.Fatalf("Generate() produced %d entries, want 31", values.Len())
	}
	if got := len(Combinations()); got != 23 {
		t.Errorf("Combinations() produced %d entries, want 23", got)
	}
}

func TestGenerate_Order(t *testing.T) {
	want := []string{
		"none", "strict", "content",
		"inherit", "initial", "revert", "revert-layer", "unset",
		"size",
		"inline-size",
		"layout",
		"size-layout",
		"inline-size-layout",
		"style",
		"size-style",
		"inline-size-style",
		"layout-style",
		"size-layout-style",
		"inline-size-layout-style",
		"paint",
		"size-paint",
		"inline-size-paint",
		"layout-paint",
		"size-layout-paint",
		"inline-size-layout-paint",
		"style-paint",
		"size-style-paint",
		"inline-size-style-paint",
		"layout-style-paint",
		"size-layout-style-paint",
		"inline-size-layout-style-paint",
	}
	if diff := cmp.Diff(want, Generate().Names()); diff != "" {
		t.Errorf("Generate() names mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Values(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"none", "none"},
		{"strict", "size layout paint style"},
		{"content", "layout paint style"},
		{"inherit", "inherit"},
		{"initial", "initial"},
		{"revert", "revert"},
		{"revert-layer", "revert-layer"},
		{"unset", "unset"},
		{"size", "size"},
		{"inline-size", "inline-size"},
		{"size-layout", "size layout"},
		{"inline-size-layout", "inline-size layout"},
		{"layout-paint", "layout paint"},
		{"layout-style-paint", "layout style paint"},
		{"inline-size-layout-style-paint", "inline-size layout style paint"},
	}

	values := Generate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := values.Get(tt.name)
			if !ok {
				t.Fatalf("entry %q is missing", tt.name)
			}
			if got != tt.want {
				t.Errorf("entry %q = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestGenerate_SizeAndInlineSizeExclusive(t *testing.T) {
	values := Generate()
	for _, name := range []string{"size-inline-size", "size-inline-size-layout", "size-inline-size-layout-style-paint"} {
		if _, ok := values.Get(name); ok {
			t.Errorf("entry %q must not exist", name)
		}
	}
	for name, value := range values.All() {
		if value == "" {
			t.Errorf("entry %q has empty value", name)
		}
		fields := strings.Fields(value)
		var size, inline bool
		for _, f := range fields {
			size = size || f == "size"
			inline = inline || f == "inline-size"
		}
		if size && inline {
			t.Errorf("entry %q = %q has both size and inline-size", name, value)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	first, second := Generate(), Generate()
	if !first.Equal(second) {
		t.Errorf("Generate() is not deterministic:\n%s\n%s", first, second)
	}
	if !Default().Equal(first) {
		t.Error("Default() differs from Generate()")
	}
}

func TestDefault_ReturnsCopy(t *testing.T) {
	d := Default()
	d.Set("none", "changed")
	d.Set("custom", "layout")

	again := Default()
	if v, _ := again.Get("none"); v != "none" {
		t.Errorf("Default() was modified through returned copy, none = %q", v)
	}
	if again.Len() != 31 {
		t.Errorf("Default() has %d entries after modification of a copy", again.Len())
	}
}

func TestCombination_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mask := rapid.IntRange(1, 1<<keywordCount-1).Draw(t, "mask")
		c := fromMask(mask)

		both := mask&1 != 0 && mask&2 != 0
		if c.Valid() == both {
			t.Fatalf("mask %05b: Valid() = %v", mask, c.Valid())
		}
		if got, want := len(strings.Split(c.Name(), "-")), len(c)+strings.Count(c.Value(), "inline-size"); got != want {
			t.Fatalf("mask %05b: name %q has %d parts, want %d", mask, c.Name(), got, want)
		}
		if strings.ReplaceAll(c.Value(), " ", "-") != c.Name() {
			t.Fatalf("mask %05b: name %q does not match value %q", mask, c.Name(), c.Value())
		}
		for i := 1; i < len(c); i++ {
			if c[i-1] >= c[i] {
				t.Fatalf("mask %05b: keywords out of declaration order: %v", mask, c)
			}
		}
	})
}

func TestCombination_Empty(t *testing.T) {
	if (Combination{}).Valid() {
		t.Error("empty combination must not be valid")
	}
}

func TestParseKeyword(t *testing.T) {
	for i, name := range KeywordNames() {
		got, err := ParseKeyword(name)
		if err != nil {
			t.Fatalf("ParseKeyword(%q) error = %v", name, err)
		}
		if got != Keyword(i) || got.String() != name {
			t.Errorf("ParseKeyword(%q) = %v, want %v", name, got, Keyword(i))
		}
	}
	_, err := ParseKeyword("strict")
	if !errors.Is(err, ErrInvalidKeyword) {
		t.Errorf("ParseKeyword(strict) error = %v, strict is a shorthand", err)
	}
	if got := Keyword(42).String(); got != "Keyword(42)" {
		t.Errorf("Keyword(42).String() = %q", got)
	}
}

func TestCheckValue(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"none", true},
		{"strict", true},
		{"revert-layer", true},
		{"size layout paint style", true},
		{"  inline-size   paint ", true},
		{"", false},
		{"layout none", false},
		{"layout layout", false},
		{"size inline-size", false},
		{"sizes", false},
	}
	for _, tt := range tests {
		if err := CheckValue(tt.value); (err == nil) != tt.ok {
			t.Errorf("CheckValue(%q) error = %v, want ok %v", tt.value, err, tt.ok)
		}
	}

	for name, value := range Default().All() {
		if err := CheckValue(value); err != nil {
			t.Errorf("default %s = %q rejected: %v", name, value, err)
		}
	}
}

func TestKeywordNames_Order(t *testing.T) {
	want := []string{"size", "inline-size", "layout", "style", "paint"}
	if diff := cmp.Diff(want, KeywordNames()); diff != "" {
		t.Errorf("KeywordNames() mismatch (-want +got):\n%s", diff)
	}
}
