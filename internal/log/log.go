package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	charmlog "github.com/charmbracelet/log/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Setup routes the default slog logger to a rotating JSON log file.
func Setup(logFile string, debug bool) {
	initOnce.Do(func() {
		logRotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // Max size in MB
			MaxBackups: 0,  // Number of backups
			MaxAge:     30, // Days
			Compress:   false,
		}

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}

		logger := slog.NewJSONHandler(logRotator, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})

		slog.SetDefault(slog.New(logger))
		initialized.Store(true)
	})
}

// SetupConsole routes the default slog logger to w using a human readable
// format. Used by the non-interactive commands.
func SetupConsole(w io.Writer, debug bool) {
	initOnce.Do(func() {
		level := charmlog.InfoLevel
		if debug {
			level = charmlog.DebugLevel
		}
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Level:           level,
			Prefix:          "chatter",
		})
		slog.SetDefault(slog.New(handler))
		initialized.Store(true)
	})
}

func Initialized() bool {
	return initialized.Load()
}

// RecoverPanic logs a panic in a goroutine and runs cleanup instead of
// crashing the terminal.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		slog.Error("panic recovered", "goroutine", name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		if !Initialized() {
			fmt.Fprintf(os.Stderr, "panic in %s: %v\n", name, r)
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
