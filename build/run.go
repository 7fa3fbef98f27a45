package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"containcss/config"
	"containcss/contain"
	"containcss/content"
	"containcss/css"
	"containcss/plugin"
	"containcss/state"
	"containcss/theme"
)

// Plugins returns every utility plugin the program hosts.
func Plugins(log *zap.Logger) []plugin.Plugin {
	return []plugin.Plugin{contain.Plugin(log)}
}

// Flags returns flags of the build command. Flags keep parsed values so a
// fresh set is needed for every command instance.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input stylesheet `FILE`, replaces configured one"},
		&cli.StringSliceFlag{Name: "content", Usage: "content `SOURCE` to look for class names in (file, directory, glob, zip), may be repeated"},
		&cli.StringSliceFlag{Name: "safelist", Usage: "`CLASS` to emit regardless of content, may be repeated"},
		&cli.BoolFlag{Name: "all", Usage: "emit every utility, do not look at content"},
		&cli.StringFlag{Name: "prefix", Usage: "`PREFIX` for generated class names"},
		&cli.BoolFlag{Name: "important", Usage: "mark every generated declaration !important"},
		&cli.StringFlag{Name: "style", Usage: "output `STYLE` (supported: " + strings.Join(css.OutputStyleNames(), ", ") + ")"},
	}
}

// ListFlags returns flags of the list command.
func ListFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "sort", Usage: "sort names in natural order instead of generation order"},
		&cli.BoolFlag{Name: "default", Usage: "ignore configured theme, list built-in values"},
	}
}

// applyFlags superimposes command line on configuration.
func applyFlags(cmd *cli.Command, conf *config.BuildConfig) {
	if cmd.IsSet("input") {
		conf.Input = cmd.String("input")
	}
	if cmd.IsSet("content") {
		conf.Content = cmd.StringSlice("content")
	}
	if cmd.IsSet("safelist") {
		conf.Safelist = append(slices.Clone(conf.Safelist), cmd.StringSlice("safelist")...)
	}
	if cmd.IsSet("all") {
		conf.EmitAll = cmd.Bool("all")
	}
	if cmd.IsSet("prefix") {
		conf.Prefix = cmd.String("prefix")
	}
	if cmd.IsSet("important") {
		conf.Important = cmd.Bool("important")
	}
	if cmd.IsSet("style") {
		conf.Style = cmd.String("style")
	}
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// Run is the build command action.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Logger("build")

	conf := env.Cfg.Build
	applyFlags(cmd, &conf)

	style, err := css.ParseOutputStyle(conf.Style)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(0)
	if len(dst) == 0 {
		dst = conf.Output
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	input, source := []byte(DefaultInput), "default"
	if len(conf.Input) > 0 {
		if input, err = os.ReadFile(conf.Input); err != nil {
			return fmt.Errorf("unable to read input stylesheet: %w", err)
		}
		source = conf.Input
	}
	env.Rpt.StoreData("input.css", input)

	// console log shares STDOUT with the result
	progress := log.Info
	if len(dst) == 0 {
		progress = log.Debug
	}

	progress("Build starting", zap.String("input", source), zap.Strings("content", conf.Content), zap.Stringer("style", style))
	defer func(start time.Time) {
		progress("Build completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	candidates, err := content.NewScanner(log).Scan(ctx, conf.Content, conf.Raw)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("unable to scan content: %w", err)
	}
	env.Rpt.StoreData("candidates.txt", []byte(strings.Join(candidates.Sorted(), "\n")))

	engine := NewEngine(log, &conf.Theme, Options{
		Prefix:    conf.Prefix,
		Important: conf.Important,
		EmitAll:   conf.EmitAll,
		Safelist:  conf.Safelist,
	}, Plugins(log)...)

	sheet := css.NewParser(log).Parse(input, source)
	for _, w := range sheet.Warnings {
		log.Warn("Input stylesheet", zap.String("source", source), zap.String("problem", w))
	}
	if imports := sheet.Imports(); len(imports) > 0 {
		log.Debug("Input imports are kept as is, not inlined", zap.Strings("imports", imports))
	}

	result, err := engine.Compile(ctx, sheet, candidates)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := result.Write(&buf, style); err != nil {
		return fmt.Errorf("unable to format stylesheet: %w", err)
	}

	if err := env.Rpt.StoreYAML("theme/"+contain.ThemeKey+".yaml", engine.Theme(contain.ThemeKey)); err != nil {
		log.Warn("Unable to store theme in report", zap.Error(err))
	}
	env.Rpt.StoreData("result.css", buf.Bytes())

	if err := writeResult(cmd, dst, buf.Bytes()); err != nil {
		return err
	}
	if len(dst) == 0 {
		dst = "STDOUT"
	}
	progress("Stylesheet written", zap.String("to", dst),
		zap.Int("rules", len(result.Rules())), zap.String("size", humanize.Bytes(uint64(buf.Len()))))
	return nil
}

func writeResult(cmd *cli.Command, dst string, data []byte) error {
	if len(dst) == 0 {
		if _, err := output(cmd).Write(data); err != nil {
			return fmt.Errorf("unable to write stylesheet: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}
	return nil
}

// List is the list command action, it prints effective contain values as
// "name<TAB>value" lines.
func List(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Logger("list")

	var values *theme.Tokens
	if cmd.Bool("default") {
		values = contain.Default()
	} else {
		values = NewEngine(log, &env.Cfg.Build.Theme, Options{}, Plugins(log)...).Theme(contain.ThemeKey)
		if values.Len() == 0 {
			values = contain.Default()
		}
	}

	names := values.Names()
	if cmd.Bool("sort") {
		sort.Sort(natural.StringSlice(names))
	}

	w := output(cmd)
	for _, name := range names {
		value, _ := values.Get(name)
		if _, err := fmt.Fprintf(w, "%s\t%s\n", name, value); err != nil {
			return fmt.Errorf("unable to write list: %w", err)
		}
	}
	log.Debug("Listed values", zap.Int("count", len(names)), zap.Bool("customized", !values.Equal(contain.Default())))
	return nil
}
