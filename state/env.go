// Package state carries per-run program state through context.
package state

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"containcss/config"
)

type envKey struct{}

// LocalEnv is what a command runs with: configuration, logger and optional
// debug report.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	started    time.Time
	undoStdLog func()
}

// ContextWithEnv attaches fresh environment to ctx.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{started: time.Now()})
}

// EnvFromContext panics when ctx carries no environment, every command runs
// under one.
func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	panic("localenv not found in context")
}

// Uptime returns time passed since environment was created.
func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.started)
}

// Logger returns program logger with names appended, no-op until logging is
// configured.
func (e *LocalEnv) Logger(names ...string) *zap.Logger {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	for _, n := range names {
		log = log.Named(n)
	}
	return log
}

// CaptureStdLog sends standard library log output to program logger until
// Close.
func (e *LocalEnv) CaptureStdLog() {
	if e.Log == nil || e.undoStdLog != nil {
		return
	}
	e.undoStdLog = zap.RedirectStdLog(e.Log)
}

// Close flushes logger, releases standard log and finalizes debug report.
// Crash output file left empty next to file log is removed. After Close
// errors can only go to STDERR.
func (e *LocalEnv) Close() (err error) {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.undoStdLog != nil {
		e.undoStdLog()
		e.undoStdLog = nil
	}

	if er := e.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
	}

	if e.Cfg == nil {
		return err
	}
	if name := e.Cfg.Logging.PanicLog(); len(name) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		if fi, er := os.Stat(name); er == nil && fi.Size() == 0 {
			if er := os.Remove(name); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", name, er))
			}
		}
	}
	return err
}
