// Package content extracts class name candidates from project sources so only
// utilities actually used get emitted.
package content

import (
	"maps"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/maruel/natural"
)

// Candidates is a set of tokens which may name utility classes.
type Candidates struct {
	set map[string]struct{}
}

// NewCandidates returns set holding given tokens.
func NewCandidates(tokens ...string) *Candidates {
	c := &Candidates{set: make(map[string]struct{}, len(tokens))}
	for _, t := range tokens {
		c.Add(t)
	}
	return c
}

// Add puts token into set, empty tokens are ignored.
func (c *Candidates) Add(token string) {
	if token == "" {
		return
	}
	c.set[token] = struct{}{}
}

// Has reports whether token was seen. Nil set has nothing.
func (c *Candidates) Has(token string) bool {
	if c == nil {
		return false
	}
	_, ok := c.set[token]
	return ok
}

// Len returns number of distinct tokens.
func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.set)
}

// Merge adds every token from other.
func (c *Candidates) Merge(other *Candidates) {
	if other == nil {
		return
	}
	for t := range other.set {
		c.set[t] = struct{}{}
	}
}

// Sorted returns tokens in natural order.
func (c *Candidates) Sorted() []string {
	if c == nil {
		return nil
	}
	keys := slices.Collect(maps.Keys(c.set))
	sort.Sort(natural.StringSlice(keys))
	return keys
}

// isSeparator reports runes which never appear inside class names in markup
// or code.
func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '"', '\'', '`', '<', '>', '=', ';', ',', '{', '}', '(', ')', '\\':
		return true
	}
	return false
}

// Extract splits text into candidates and adds them to c. Tokens ending with
// sentence punctuation are added both as is and trimmed.
func (c *Candidates) Extract(text string) {
	for _, tok := range strings.FieldsFunc(text, isSeparator) {
		c.Add(tok)
		if trimmed := strings.TrimRight(tok, ".:!?"); trimmed != tok {
			c.Add(trimmed)
		}
	}
}
