// Package debug has helpers producing human readable dumps for logs and reports.
package debug

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

const indent = "  "

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes "label: value" with value quoted so that empty strings and
// whitespace stay visible.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Pairs writes every label/value pair from seq as a TextBlock.
func (tw TreeWriter) Pairs(depth int, seq iter.Seq2[string, string]) {
	for label, value := range seq {
		tw.TextBlock(depth, label, value)
	}
}

func (tw TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(indent)
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return `""`
	}
	return strconv.Quote(raw)
}
