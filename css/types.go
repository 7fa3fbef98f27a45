package css

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeClass escapes class name for use in a selector. Letters, digits, '-'
// and '_' are kept, anything else is backslash escaped. Leading digit is
// escaped as code point.
func EscapeClass(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		switch {
		case i == 0 && unicode.IsDigit(r):
			fmt.Fprintf(&b, `\%x `, r)
		case r == '-' || r == '_' || r > unicode.MaxASCII || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeClass reverses simple backslash escapes produced by EscapeClass.
func UnescapeClass(sel string) string {
	if !strings.ContainsRune(sel, '\\') {
		return sel
	}
	var b strings.Builder
	escaped := false
	for _, r := range sel {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// MediaQuery represents @media query condition. It is kept verbatim.
type MediaQuery struct {
	Raw string
}

// Value is a property value as written, tokens joined with normalized
// whitespace (e.g. "layout paint", "1.2em").
type Value struct {
	Raw string
}

// Important reports whether value carries !important.
func (v Value) Important() bool {
	return strings.HasSuffix(strings.ReplaceAll(v.Raw, " ", ""), "!important")
}

// Selector represents a parsed CSS selector. Element and Class are filled only
// for simple selectors (element, .class, element.class).
type Selector struct {
	Raw     string // Original selector string
	Element string // Element name (e.g., "p", "h1") or empty for class-only
	Class   string // Class name without dot and escapes (e.g., "contain-none") or empty
}

// IsSimple returns true if this is a simple selector (element, class, or element.class).
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.Class != ""
}

// ClassSelector builds selector for a single class name, escaping it.
func ClassSelector(class string) Selector {
	return Selector{Raw: "." + EscapeClass(class), Class: class}
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    Value
}

// Rule is a selector with its declarations in source order.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
}

// Set replaces value of the last declaration of name or appends a new one.
func (r *Rule) Set(name string, v Value) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == name {
			r.Declarations[i].Value = v
			return
		}
	}
	r.Declarations = append(r.Declarations, Declaration{Property: name, Value: v})
}

// FontFace is an @font-face block, descriptors are kept in source order.
type FontFace struct {
	Descriptors []Declaration
}

// Directive is a build pipeline at-rule such as "@tailwind utilities". Host
// replaces directives with generated rules.
type Directive struct {
	Name   string // at-rule name without '@', e.g. "tailwind"
	Params string // e.g. "utilities"
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one field is non-nil.
type StylesheetItem struct {
	Rule       *Rule       // A plain rule (selector + declarations)
	MediaBlock *MediaBlock // A @media block containing nested rules
	FontFace   *FontFace   // A @font-face declaration
	Import     *string     // An @import URL
	Directive  *Directive  // A pipeline directive
	Verbatim   *string     // Any other at-rule, passed through as written
}

// MediaBlock represents a @media block with its query and nested rules.
type MediaBlock struct {
	Query MediaQuery
	Rules []Rule
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Items    []StylesheetItem // All top-level items in source order
	Warnings []string         // Warnings for unsupported features
}

// Imports returns all @import URLs from the stylesheet in source order.
func (s *Stylesheet) Imports() []string {
	var urls []string
	for _, item := range s.Items {
		if item.Import != nil {
			urls = append(urls, *item.Import)
		}
	}
	return urls
}

// Rules returns all top-level rules in source order. Rules nested in @media
// blocks are not included.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	for _, item := range s.Items {
		if item.Rule != nil {
			rules = append(rules, *item.Rule)
		}
	}
	return rules
}

// WriteTo writes the stylesheet to w in source order using expanded style,
// implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	return s.Write(w, StyleExpanded)
}

// Write writes the stylesheet to w in source order using requested style.
func (s *Stylesheet) Write(w io.Writer, style OutputStyle) (int64, error) {
	f := formatterFor(style)

	var total int64
	for i, item := range s.Items {
		var n int
		var err error

		switch {
		case item.Import != nil:
			n, err = fmt.Fprintf(w, "@import url(\"%s\");\n", cssEscapeDoubleQuoted(*item.Import))
		case item.FontFace != nil:
			n, err = f.fontFace(w, item.FontFace)
		case item.MediaBlock != nil:
			n, err = f.mediaBlock(w, item.MediaBlock)
		case item.Rule != nil:
			n, err = f.rule(w, item.Rule, "")
		case item.Directive != nil:
			n, err = fmt.Fprintf(w, "@%s %s;\n", item.Directive.Name, item.Directive.Params)
		case item.Verbatim != nil:
			n, err = fmt.Fprintln(w, *item.Verbatim)
		}

		total += int64(n)
		if err != nil {
			return total, err
		}

		if i < len(s.Items)-1 && f.separator != "" {
			n, err = fmt.Fprint(w, f.separator)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// formatter holds punctuation for an output style.
type formatter struct {
	open      string // after selector
	indent    string // before declaration, multiplied by depth
	colon     string
	end       string // after declaration
	close     string
	separator string // between top-level items
}

func formatterFor(style OutputStyle) formatter {
	if style == StyleCompact {
		return formatter{open: "{", colon: ":", end: ";", close: "}\n"}
	}
	return formatter{open: " {\n", indent: "  ", colon: ": ", end: ";\n", close: "}\n", separator: "\n"}
}

// rule writes a single CSS rule to w with given leading indentation.
func (f formatter) rule(w io.Writer, rule *Rule, lead string) (int, error) {
	return f.block(w, rule.Selector.Raw, rule.Declarations, lead)
}

func (f formatter) block(w io.Writer, head string, decls []Declaration, lead string) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s%s", lead, head, f.open)
	total += n
	if err != nil {
		return total, err
	}

	for i, d := range decls {
		end := f.end
		if f.indent == "" && i == len(decls)-1 {
			// compact style drops the last semicolon
			end = ""
		}
		n, err = fmt.Fprintf(w, "%s%s%s%s%s%s", lead, f.indent, d.Property, f.colon, d.Value.Raw, end)
		total += n
		if err != nil {
			return total, err
		}
	}

	closing := f.close
	if lead != "" && f.indent != "" {
		closing = lead + f.close
	}
	n, err = fmt.Fprint(w, closing)
	total += n
	return total, err
}

// fontFace writes an @font-face block to w.
func (f formatter) fontFace(w io.Writer, ff *FontFace) (int, error) {
	return f.block(w, "@font-face", ff.Descriptors, "")
}

// mediaBlock writes an @media block to w.
func (f formatter) mediaBlock(w io.Writer, mb *MediaBlock) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@media %s%s", mb.Query.Raw, f.open)
	total += n
	if err != nil {
		return total, err
	}

	inner := f
	if f.indent == "" {
		// compact media block stays on one line
		inner.close = "}"
	}
	for i := range mb.Rules {
		n, err = inner.rule(w, &mb.Rules[i], f.indent)
		total += n
		if err != nil {
			return total, err
		}
		if i < len(mb.Rules)-1 && f.separator != "" {
			n, err = fmt.Fprint(w, f.separator)
			total += n
			if err != nil {
				return total, err
			}
		}
	}

	n, err = fmt.Fprint(w, f.close)
	total += n
	return total, err
}
