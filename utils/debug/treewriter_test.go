package debug

import (
	"maps"
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "test", want: "test\n"},
		{name: "depth 1", depth: 1, format: "indented", want: "  indented\n"},
		{name: "depth 2", depth: 2, format: "double indent", want: "    double indent\n"},
		{name: "with formatting", depth: 1, format: "Tokens (%d)", args: []any{31}, want: "  Tokens (31)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tw := NewTreeWriter()
	tw.TextBlock(1, "strict", "size layout paint style")
	tw.TextBlock(0, "empty", "")

	want := "  strict: \"size layout paint style\"\nempty: \"\"\n"
	if got := tw.String(); got != want {
		t.Errorf("TextBlock() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Pairs(t *testing.T) {
	tw := NewTreeWriter()
	m := map[string]string{"none": "none"}
	tw.Pairs(2, maps.All(m))

	if got, want := tw.String(), "    none: \"none\"\n"; got != want {
		t.Errorf("Pairs() = %q, want %q", got, want)
	}
}
