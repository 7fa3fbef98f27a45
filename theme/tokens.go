// Package theme holds design tokens plugins publish and configuration may
// override or extend before utilities are generated.
package theme

import (
	"fmt"
	"iter"

	"github.com/elliotchance/orderedmap/v3"
	yaml "gopkg.in/yaml.v3"

	"containcss/utils/debug"
)

// Tokens is an insertion ordered mapping of token names to CSS values. Zero
// value is ready to use. Iteration always follows insertion order, including
// tokens decoded from YAML (document order).
type Tokens struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewTokens returns empty Tokens.
func NewTokens() *Tokens {
	return &Tokens{m: orderedmap.NewOrderedMap[string, string]()}
}

// TokensOf builds Tokens from name/value pairs of a static table. Later
// duplicates overwrite earlier values.
func TokensOf(pairs ...[2]string) *Tokens {
	t := NewTokens()
	for _, p := range pairs {
		t.Set(p[0], p[1])
	}
	return t
}

func (t *Tokens) lazy() {
	if t.m == nil {
		t.m = orderedmap.NewOrderedMap[string, string]()
	}
}

// Insert adds name only when it is not present yet and reports whether it did.
// Existing values are never overwritten.
func (t *Tokens) Insert(name, value string) bool {
	t.lazy()
	if _, ok := t.m.Get(name); ok {
		return false
	}
	t.m.Set(name, value)
	return true
}

// Set adds or overwrites name. Overwritten names keep their original position.
func (t *Tokens) Set(name, value string) {
	t.lazy()
	t.m.Set(name, value)
}

// Get returns value for name.
func (t *Tokens) Get(name string) (string, bool) {
	if t == nil || t.m == nil {
		return "", false
	}
	return t.m.Get(name)
}

// Len returns number of tokens. Nil Tokens are empty.
func (t *Tokens) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Len()
}

// All iterates over tokens in insertion order.
func (t *Tokens) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if t == nil || t.m == nil {
			return
		}
		for k, v := range t.m.AllFromFront() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Names returns token names in insertion order.
func (t *Tokens) Names() []string {
	names := make([]string, 0, t.Len())
	for k := range t.All() {
		names = append(names, k)
	}
	return names
}

// Clone returns independent copy. Clone of nil is nil.
func (t *Tokens) Clone() *Tokens {
	if t == nil {
		return nil
	}
	c := NewTokens()
	for k, v := range t.All() {
		c.m.Set(k, v)
	}
	return c
}

// Extend merges other into t, values from other win.
func (t *Tokens) Extend(other *Tokens) {
	for k, v := range other.All() {
		t.Set(k, v)
	}
}

// Equal reports whether both have the same tokens in the same order.
func (t *Tokens) Equal(other *Tokens) bool {
	if t.Len() != other.Len() {
		return false
	}
	next, stop := iter.Pull2(other.All())
	defer stop()
	for k, v := range t.All() {
		nk, nv, ok := next()
		if !ok || k != nk || v != nv {
			return false
		}
	}
	return true
}

// String returns readable dump of tokens for logs and debug reports.
func (t *Tokens) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Tokens (%d)", t.Len())
	tw.Pairs(1, t.All())
	return tw.String()
}

// MarshalYAML keeps token order in produced document.
func (t *Tokens) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range t.All() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes mapping of scalars preserving document order. Null
// decodes into empty Tokens.
func (t *Tokens) UnmarshalYAML(node *yaml.Node) error {
	t.m = orderedmap.NewOrderedMap[string, string]()

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: tokens must be a mapping of names to values", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: token name must be a scalar", key.Line)
		}
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of token %q must be a scalar", val.Line, key.Value)
		}
		if !t.Insert(key.Value, val.Value) {
			return fmt.Errorf("line %d: duplicate token %q", key.Line, key.Value)
		}
	}
	return nil
}
