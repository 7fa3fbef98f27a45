package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses input stylesheets into structured items.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// directives host knows how to expand
var directiveNames = map[string]struct{}{
	"@tailwind": {},
}

// Parse parses CSS text into a Stylesheet. Plain rules, @media, @font-face,
// @import and pipeline directives are structured, any other at-rule is kept
// verbatim. The optional source identifies what is being parsed in logs.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	lex := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := lex.Next()
		values := lex.Values()

		switch gt {
		case css.ErrorGrammar:
			if err := lex.Err(); err != nil && !errors.Is(err, io.EOF) {
				sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			sheet.Items = append(sheet.Items, p.atBlock(lex, sheet, strings.ToLower(string(data)), values))

		case css.AtRuleGrammar:
			name := strings.ToLower(string(data))
			switch {
			case name == "@import":
				if url := extractImportURL(values); url != "" {
					sheet.Items = append(sheet.Items, StylesheetItem{Import: &url})
					p.log.Debug("Parsed @import", zap.String("url", url))
				}
			case isDirective(name):
				d := &Directive{Name: strings.TrimPrefix(name, "@"), Params: joinTokens(values)}
				sheet.Items = append(sheet.Items, StylesheetItem{Directive: d})
				p.log.Debug("Parsed directive", zap.String("name", d.Name), zap.String("params", d.Params))
			default:
				raw := atRuleHead(data, values) + ";"
				sheet.Items = append(sheet.Items, StylesheetItem{Verbatim: &raw})
			}

		case css.BeginRulesetGrammar:
			r := p.ruleset(lex, data, values)
			sheet.Items = append(sheet.Items, StylesheetItem{Rule: &r})
		}
	}
}

func isDirective(atRule string) bool {
	_, ok := directiveNames[atRule]
	return ok
}

func (p *Parser) atBlock(lex *css.Parser, sheet *Stylesheet, name string, values []css.Token) StylesheetItem {
	switch name {
	case "@media":
		mb := &MediaBlock{Query: parseMediaQuery(values)}
		mb.Rules = p.mediaRules(lex, sheet)
		p.log.Debug("Parsed @media block", zap.String("query", mb.Query.Raw), zap.Int("rules", len(mb.Rules)))
		return StylesheetItem{MediaBlock: mb}
	case "@font-face":
		return StylesheetItem{FontFace: &FontFace{Descriptors: p.declarations(lex)}}
	}
	raw := p.verbatim(lex, atRuleHead([]byte(name), values))
	p.log.Debug("Keeping @-rule as is", zap.String("rule", name))
	return StylesheetItem{Verbatim: &raw}
}

func (p *Parser) ruleset(lex *css.Parser, data []byte, values []css.Token) Rule {
	return Rule{
		Selector:     p.parseSelector(selectorText(data, values)),
		Declarations: p.declarations(lex),
	}
}

// atRuleHead is at-rule name followed by its prelude.
func atRuleHead(name []byte, values []css.Token) string {
	if prelude := joinTokens(values); prelude != "" {
		return string(name) + " " + prelude
	}
	return string(name)
}

// verbatim re-serializes the rest of at-rule block which starts with head.
// Whitespace is normalized, everything else is kept as written.
func (p *Parser) verbatim(lex *css.Parser, head string) string {
	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteString(" {")
	for depth := 1; depth > 0; {
		gt, _, data := lex.Next()
		values := lex.Values()
		switch gt {
		case css.ErrorGrammar:
			sb.WriteString(strings.Repeat(" }", depth))
			return sb.String()
		case css.BeginAtRuleGrammar:
			sb.WriteString(" " + atRuleHead(data, values) + " {")
			depth++
		case css.BeginRulesetGrammar:
			sb.WriteString(" " + selectorText(data, values) + " {")
			depth++
		case css.QualifiedRuleGrammar:
			sb.WriteString(" " + selectorText(data, values) + ",")
		case css.AtRuleGrammar:
			sb.WriteString(" " + atRuleHead(data, values) + ";")
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			sb.WriteString(" " + string(data) + ": " + joinTokens(values) + ";")
		case css.TokenGrammar:
			if t := strings.TrimSpace(string(data)); t != "" {
				sb.WriteString(" " + t)
			}
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			sb.WriteString(" }")
			depth--
		}
	}
	return sb.String()
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			// url(something) - the token data is the full url(...) string
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// joinTokens builds raw text from tokens collapsing whitespace runs.
func joinTokens(tokens []css.Token) string {
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(rawParts, ""))
}

// selectorText builds selector from ruleset prelude. Grouped selectors are
// kept together, normalized to ", " separators.
func selectorText(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var parts []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// declarations reads declarations until the end of current block.
func (p *Parser) declarations(lex *css.Parser) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := lex.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar, css.EndAtRuleGrammar:
			return decls

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if values := lex.Values(); len(values) > 0 {
				decls = append(decls, Declaration{Property: string(data), Value: p.parsePropertyValue(values)})
			}
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func (p *Parser) parsePropertyValue(tokens []css.Token) Value {
	return Value{Raw: joinTokens(tokens)}
}

// parseSelector parses a single selector string. Only simple selectors
// (element, .class, element.class) get Element and Class filled, everything
// else is kept verbatim in Raw.
func (p *Parser) parseSelector(selStr string) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	if hasUnescaped(selStr, " \t\n+~>[:*#,") {
		return sel
	}

	if element, class, found := cutUnescaped(selStr, '.'); found {
		if hasUnescaped(class, ".") {
			// compound class selector, keep verbatim
			return sel
		}
		sel.Element = element
		sel.Class = UnescapeClass(class)
	} else {
		sel.Element = selStr
	}
	return sel
}

// hasUnescaped reports whether s has any of chars outside of backslash escapes.
func hasUnescaped(s, chars string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if strings.IndexByte(chars, s[i]) >= 0 {
			return true
		}
	}
	return false
}

// cutUnescaped is strings.Cut which ignores backslash escaped separators.
func cutUnescaped(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// parseMediaQuery keeps media query verbatim.
func parseMediaQuery(tokens []css.Token) MediaQuery {
	return MediaQuery{Raw: joinTokens(tokens)}
}

// mediaRules reads rules inside @media block. Nested at-rules are not
// supported there and are dropped with a warning.
func (p *Parser) mediaRules(lex *css.Parser, sheet *Stylesheet) []Rule {
	var rules []Rule
	for {
		gt, _, data := lex.Next()
		values := lex.Values()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules

		case css.BeginRulesetGrammar:
			rules = append(rules, p.ruleset(lex, data, values))

		case css.BeginAtRuleGrammar:
			dropped := p.verbatim(lex, atRuleHead(data, values))
			sheet.Warnings = append(sheet.Warnings, "nested at-rule in @media dropped: "+dropped)
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
