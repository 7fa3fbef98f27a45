package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"containcss/css"
)

// valueOf returns the last declared value of name, the one browsers apply.
func valueOf(r css.Rule, name string) (css.Value, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == name {
			return r.Declarations[i].Value, true
		}
	}
	return css.Value{}, false
}

func TestParser_ClassSelector(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`.contain-strict { contain: size layout paint style; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	rule := rules[0]
	if rule.Selector.Element != "" {
		t.Errorf("expected no element, got '%s'", rule.Selector.Element)
	}
	if rule.Selector.Class != "contain-strict" {
		t.Errorf("expected class 'contain-strict', got '%s'", rule.Selector.Class)
	}

	val, ok := valueOf(rule, "contain")
	if !ok {
		t.Fatal("expected contain property")
	}
	if val.Raw != "size layout paint style" {
		t.Errorf("expected raw 'size layout paint style', got '%s'", val.Raw)
	}
	if val.Important() {
		t.Errorf("unexpected !important in %+v", val)
	}
}

func TestParser_ElementSelector(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	sheet := p.Parse([]byte(`p { text-indent: 1em; }`), "inline")

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Selector.Element != "p" {
		t.Errorf("expected element 'p', got '%s'", rules[0].Selector.Element)
	}
	if val, _ := valueOf(rules[0], "text-indent"); val.Raw != "1em" {
		t.Errorf("expected 1em, got %q", val.Raw)
	}
}

func TestParser_GroupedSelectors(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`h1 ,  .card { contain: content; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	sel := rules[0].Selector
	if sel.Raw != "h1, .card" {
		t.Errorf("expected normalized group 'h1, .card', got %q", sel.Raw)
	}
	if sel.IsSimple() {
		t.Errorf("grouped selector should not be simple: %+v", sel)
	}
}

func TestParser_DeclarationOrder(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`.x { margin: 0; margin-top: 1px; --gap: 2px; contain: none; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	var props []string
	for _, d := range rules[0].Declarations {
		props = append(props, d.Property)
	}
	if got := strings.Join(props, ","); got != "margin,margin-top,--gap,contain" {
		t.Errorf("declaration order = %s", got)
	}

	var sb strings.Builder
	if _, err := sheet.Write(&sb, css.StyleCompact); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sb.String(), ".x{margin:0;margin-top:1px;") {
		t.Errorf("output reordered declarations: %q", sb.String())
	}
}

func TestParser_ComplexSelectorKeptVerbatim(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`.list > li:hover { color: red; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	sel := rules[0].Selector
	if sel.IsSimple() {
		t.Errorf("complex selector should not be simple: %+v", sel)
	}
	if !strings.Contains(sel.Raw, "li") {
		t.Errorf("selector raw lost: %q", sel.Raw)
	}
}

func TestParser_EscapedClass(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`.contain-a\/b { contain: layout; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Selector.Class != "contain-a/b" {
		t.Errorf("expected unescaped class 'contain-a/b', got %q", rules[0].Selector.Class)
	}
}

func TestParser_Directives(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	input := `@tailwind base;
@tailwind utilities;
.page { contain: none; }
`
	sheet := p.Parse([]byte(input))

	var directives []css.Directive
	for _, item := range sheet.Items {
		if item.Directive != nil {
			directives = append(directives, *item.Directive)
		}
	}
	if len(directives) != 2 {
		t.Fatalf("expected 2 directives, got %d", len(directives))
	}
	if directives[0].Name != "tailwind" || directives[0].Params != "base" {
		t.Errorf("unexpected first directive: %+v", directives[0])
	}
	if directives[1].Params != "utilities" {
		t.Errorf("unexpected second directive: %+v", directives[1])
	}
	if len(sheet.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(sheet.Items))
	}
}

func TestParser_Import(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`@import url("base.css"); @import 'fonts.css';`))

	imports := sheet.Imports()
	if len(imports) != 2 || imports[0] != "base.css" || imports[1] != "fonts.css" {
		t.Errorf("unexpected imports: %v", imports)
	}
}

func TestParser_MediaBlock(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`@media screen and (min-width: 640px) { .a { contain: paint; } .b { contain: size; } }`))

	if len(sheet.Items) != 1 || sheet.Items[0].MediaBlock == nil {
		t.Fatalf("expected single media block, got %+v", sheet.Items)
	}
	mb := sheet.Items[0].MediaBlock
	if q := mb.Query.Raw; !strings.HasPrefix(q, "screen") || !strings.Contains(q, "min-width") {
		t.Errorf("media query not kept: %q", q)
	}
	if len(mb.Rules) != 2 {
		t.Errorf("expected 2 rules in media block, got %d", len(mb.Rules))
	}
}

func TestParser_FontFace(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`@font-face { font-family: "Body Font"; src: url(body.woff2); font-weight: 400; font-display: swap; }`))

	if len(sheet.Items) != 1 || sheet.Items[0].FontFace == nil {
		t.Fatalf("expected single font face, got %+v", sheet.Items)
	}
	ff := sheet.Items[0].FontFace
	if d := ff.Descriptors[0]; d.Property != "font-family" || d.Value.Raw != `"Body Font"` {
		t.Errorf("unexpected family descriptor: %+v", d)
	}
	if n := len(ff.Descriptors); n != 4 {
		t.Fatalf("expected every descriptor kept, got %d", n)
	}
	if d := ff.Descriptors[3]; d.Property != "font-display" || d.Value.Raw != "swap" {
		t.Errorf("unexpected last descriptor: %+v", d)
	}
}

func TestParser_OtherAtRulesKept(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	sheet := p.Parse([]byte(`@charset "utf-8";
@keyframes spin { from { opacity: 0; } to { opacity: 1; } }
.x { contain: none; }`))

	if len(sheet.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", sheet.Warnings)
	}
	if len(sheet.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(sheet.Items))
	}
	if v := sheet.Items[0].Verbatim; v == nil || *v != `@charset "utf-8";` {
		t.Errorf("charset not kept: %v", v)
	}
	v := sheet.Items[1].Verbatim
	if v == nil {
		t.Fatalf("keyframes not kept: %+v", sheet.Items[1])
	}
	for _, part := range []string{"@keyframes spin {", "from {", "opacity: 0;", "to {", "opacity: 1;"} {
		if !strings.Contains(*v, part) {
			t.Errorf("keyframes %q misses %q", *v, part)
		}
	}
	if strings.Count(*v, "{") != strings.Count(*v, "}") {
		t.Errorf("unbalanced braces in %q", *v)
	}
	if len(sheet.Rules()) != 1 {
		t.Errorf("expected rule after kept block to survive, got %d rules", len(sheet.Rules()))
	}
}

func TestParser_NestedAtRuleInMedia(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`@media print { @supports (contain: paint) { .a { contain: paint; } } .b { contain: size; } }`))

	if len(sheet.Warnings) != 1 {
		t.Errorf("expected single warning, got %v", sheet.Warnings)
	}
	if len(sheet.Items) != 1 || sheet.Items[0].MediaBlock == nil {
		t.Fatalf("expected single media block, got %+v", sheet.Items)
	}
	rules := sheet.Items[0].MediaBlock.Rules
	if len(rules) != 1 || rules[0].Selector.Class != "b" {
		t.Errorf("unexpected media rules: %+v", rules)
	}
}

func TestParser_Important(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`.x { contain: none !important; }`))

	v, ok := valueOf(sheet.Rules()[0], "contain")
	if !ok || !v.Important() {
		t.Errorf("expected !important value, got %+v", v)
	}
}

func TestParser_MediaBlockCompactRoundTrip(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse([]byte(`@media (min-width: 10px) { .a { color: red } .b { contain: paint } }`))

	var sb strings.Builder
	if _, err := sheet.Write(&sb, css.StyleCompact); err != nil {
		t.Fatal(err)
	}
	if want := "@media (min-width:10px){.a{color:red}.b{contain:paint}}\n"; sb.String() != want {
		t.Errorf("compact output = %q, want %q", sb.String(), want)
	}
}
