package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"containcss/misc"
)

// LoggerConfig describes single log destination.
type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// PanicLog returns name of runtime crash output file kept next to file log.
// Empty when no file destination is configured.
func (conf *LoggingConfig) PanicLog() string {
	if len(conf.FileLogger.Destination) == 0 {
		return ""
	}
	return filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log")
}

// Prepare returns program logger. Console gets info and warnings on STDOUT and
// errors on STDERR, file gets everything from configured level up. With debug
// report requested file logging is forced to debug level and lands in report.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	cores := consoleCores(conf.ConsoleLogger.Level)

	level, mode := conf.FileLogger.Level, conf.FileLogger.Mode
	if rpt != nil {
		level, mode = "debug", "overwrite"
	}

	var redirected string
	if lvl, ok := levelOf(level); ok {
		capturePanics(conf.PanicLog(), mode, rpt)

		f, err := openLog(conf.FileLogger.Destination, mode)
		if err != nil {
			if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
				return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
			}
			redirected = f.Name()
		}
		rpt.Store("final.log", f.Name())
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), lvl))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named(misc.GetAppName())
	if len(redirected) > 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log, nil
}

func levelOf(name string) (zapcore.Level, bool) {
	switch name {
	case "debug":
		return zapcore.DebugLevel, true
	case "normal":
		return zapcore.InfoLevel, true
	}
	return zapcore.InvalidLevel, false
}

func consoleCores(name string) []zapcore.Core {
	lowest, ok := levelOf(name)
	if !ok {
		return nil
	}
	return []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stdout)), zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lowest <= lvl && lvl < zapcore.ErrorLevel
			})),
		zapcore.NewCore(terseErrors{zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stderr))}, zapcore.Lock(os.Stderr),
			zapcore.ErrorLevel),
	}
}

func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if _, off := os.LookupEnv("NO_COLOR"); !off && colorConsole(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

func openLog(fname, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(fname, flags, 0644)
}

// capturePanics directs runtime crash output to name, or to a temporary file
// when it is not writable.
func capturePanics(name, mode string, rpt *Report) {
	f, err := openLog(name, mode)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err != nil {
			return
		}
	}
	defer f.Close()
	if err := debug.SetCrashOutput(f, debug.CrashOptions{}); err == nil {
		rpt.Store("panic.log", f.Name())
	}
}

// terseErrors keeps console error lines short: wrapped errors are flattened
// to their message so no verbose stack goes to the terminal.
type terseErrors struct {
	zapcore.Encoder
}

func (c terseErrors) Clone() zapcore.Encoder {
	return terseErrors{c.Encoder.Clone()}
}

func (c terseErrors) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	flat := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		if e, ok := f.Interface.(error); ok && f.Type == zapcore.ErrorType {
			f.Interface = errors.New(e.Error())
		}
		flat[i] = f
	}
	return c.Encoder.EncodeEntry(ent, flat)
}
