// Package build hosts utility plugins. It resolves theme values, runs plugin
// handlers, keeps utilities actually used by content and splices them into the
// input stylesheet.
package build

import (
	"context"
	"slices"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
	"go.uber.org/zap"

	"containcss/content"
	"containcss/css"
	"containcss/plugin"
	"containcss/theme"
)

// Options changes what engine emits.
type Options struct {
	// Prefix is prepended to every generated class name.
	Prefix string
	// Important adds !important to every declaration.
	Important bool
	// EmitAll disables content filtering.
	EmitAll bool
	// Safelist holds classes (with prefix) emitted regardless of content.
	Safelist []string
}

// Engine is the plugin host.
type Engine struct {
	log     *zap.Logger
	theme   *theme.Config
	opts    Options
	plugins []plugin.Plugin
}

// NewEngine creates engine for plugins in registration order. Nil cfg means
// plugin defaults are used as is.
func NewEngine(log *zap.Logger, cfg *theme.Config, opts Options, plugins ...plugin.Plugin) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		log:     log.Named("engine"),
		theme:   cfg,
		opts:    opts,
		plugins: plugins,
	}
}

// Theme returns effective tokens for key: configured override or union of
// plugin defaults, with configured extension merged on top. Result is a copy.
func (e *Engine) Theme(key string) *theme.Tokens {
	var defaults []*theme.Tokens
	for _, p := range e.plugins {
		if t, ok := p.Theme[key]; ok {
			defaults = append(defaults, t)
		}
	}
	return e.theme.Resolve(key, defaults...)
}

// pluginAPI binds registration to a single plugin for logging.
type pluginAPI struct {
	engine    *Engine
	name      string
	utilities *orderedmap.OrderedMap[string, plugin.Utility]
}

func (a *pluginAPI) Theme(key string) *theme.Tokens {
	return a.engine.Theme(key)
}

// AddUtilities keeps first position of a selector, later declarations win.
func (a *pluginAPI) AddUtilities(utilities ...plugin.Utility) {
	for _, u := range utilities {
		if !a.utilities.Set(u.Selector, u) {
			a.engine.log.Debug("Utility redefined", zap.String("plugin", a.name), zap.String("selector", u.Selector))
		}
	}
}

// published reports whether any plugin publishes defaults for theme key.
func (e *Engine) published(key string) bool {
	return slices.ContainsFunc(e.plugins, func(p plugin.Plugin) bool {
		_, ok := p.Theme[key]
		return ok
	})
}

// Utilities runs every plugin handler once and returns registered utilities
// in registration order.
func (e *Engine) Utilities() []plugin.Utility {
	for _, key := range e.theme.Keys() {
		if !e.published(key) {
			e.log.Warn("Configured theme key is not published by any plugin", zap.String("key", key))
		}
	}

	registered := orderedmap.NewOrderedMap[string, plugin.Utility]()
	for _, p := range e.plugins {
		if p.Handler == nil {
			continue
		}
		p.Handler(&pluginAPI{engine: e, name: p.Name, utilities: registered})
	}

	return slices.Collect(registered.Values())
}

// Rules converts registered utilities into CSS rules keeping only those used
// by content or safelisted, unless EmitAll is requested.
func (e *Engine) Rules(candidates *content.Candidates) []css.Rule {
	utilities := e.Utilities()

	if !e.opts.EmitAll && candidates.Len() == 0 && len(e.opts.Safelist) == 0 {
		e.log.Warn("No content candidates and no safelist, nothing will be emitted",
			zap.Int("registered", len(utilities)))
		return nil
	}

	safe := make(map[string]bool, len(e.opts.Safelist))
	for _, class := range e.opts.Safelist {
		safe[class] = false
	}

	rules := make([]css.Rule, 0, len(utilities))
	for _, u := range utilities {
		class := e.opts.Prefix + u.Class()
		_, safelisted := safe[class]
		if safelisted {
			safe[class] = true
		}
		if !e.opts.EmitAll && !safelisted && !candidates.Has(class) {
			continue
		}
		rules = append(rules, e.rule(class, u))
	}

	for _, class := range e.opts.Safelist {
		if !safe[class] {
			e.log.Warn("Safelisted class is not provided by any plugin", zap.String("class", class))
		}
	}

	e.log.Debug("Utilities selected", zap.Int("registered", len(utilities)), zap.Int("emitted", len(rules)))
	return rules
}

func (e *Engine) rule(class string, u plugin.Utility) css.Rule {
	r := css.Rule{Selector: css.ClassSelector(class), Declarations: make([]css.Declaration, 0, len(u.Declarations))}
	for _, d := range u.Declarations {
		v := css.Value{Raw: d.Value}
		if e.opts.Important && !v.Important() {
			v.Raw += " !important"
		}
		r.Set(d.Property, v)
	}
	return r
}

// DefaultInput is used when no input stylesheet is given.
const DefaultInput = "@tailwind utilities;\n"

// Compile produces output stylesheet: the first "@tailwind utilities"
// directive of input is replaced by emitted rules, other "@tailwind" layers
// are dropped since no plugin provides them. Without the directive rules are
// appended. Nil input is the same as DefaultInput.
func (e *Engine) Compile(ctx context.Context, input *css.Stylesheet, candidates *content.Candidates) (*css.Stylesheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input == nil {
		input = css.NewParser(e.log).Parse([]byte(DefaultInput))
	}

	rules := e.Rules(candidates)
	items := make([]css.StylesheetItem, 0, len(rules))
	emitted := make(map[string]bool, len(rules))
	for i := range rules {
		items = append(items, css.StylesheetItem{Rule: &rules[i]})
		emitted[rules[i].Selector.Class] = true
	}
	for _, r := range input.Rules() {
		if sel := r.Selector; sel.IsSimple() && sel.Element == "" && emitted[sel.Class] {
			e.log.Warn("Input stylesheet already defines generated class", zap.String("selector", sel.Raw))
		}
	}

	out := &css.Stylesheet{
		Items:    make([]css.StylesheetItem, 0, len(input.Items)+len(items)),
		Warnings: slices.Clone(input.Warnings),
	}

	spliced := false
	for _, item := range input.Items {
		d := item.Directive
		if d == nil || d.Name != "tailwind" {
			out.Items = append(out.Items, item)
			continue
		}
		switch layer := strings.TrimSpace(d.Params); {
		case layer != "utilities":
			e.log.Debug("Dropping layer, no plugin provides it", zap.String("layer", layer))
		case spliced:
			e.log.Warn("Repeated utilities directive ignored")
		default:
			out.Items = append(out.Items, items...)
			spliced = true
		}
	}
	if !spliced {
		e.log.Warn("Input has no utilities directive, appending utilities at the end")
		out.Items = append(out.Items, items...)
	}
	return out, nil
}
