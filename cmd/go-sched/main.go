package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-sched/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// main delegates to runMain so deferred closers run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain executes the command line and maps the outcome to an exit code.
func runMain() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, app := newRootCmd()
	defer app.close()

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		_, _ = fmt.Fprintln(stderr, err)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs the default JSON logger on w and, when a log file is
// configured, on a rotating file as well. The returned closer may be nil.
func setupLogging(w io.Writer, cfg config.LogSettings, debugMode bool) io.Closer {
	writers := []io.Writer{w}
	var rotator *lumberjack.Logger

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), config.DirPermLogs); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogDir, cfg.File, err)
		} else {
			rotator = &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
			}
			writers = append(writers, rotator)
		}
	}

	debugMode = debugMode || cfg.Debug
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if rotator == nil {
		return nil
	}
	return rotator
}
