// Package logging provides the program logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggingConfig configures SetupLogging.
type LoggingConfig struct {
	LogFilePath string
	MaxSizeMB   int
	MaxBackups  int
	Console     io.Writer
	Program     string
	Level       int
}

// ProgramLogger prints formatted messages to the console and the log file.
//
// D messages are only written when their level is at or below the configured
// debug level.
type ProgramLogger struct {
	zl    zerolog.Logger
	mu    sync.RWMutex
	level int
	file  io.Closer
}

// Nop returns a logger which discards everything.
func Nop() *ProgramLogger {
	return &ProgramLogger{zl: zerolog.Nop(), level: -1}
}

// New returns a logger writing console-formatted lines to w.
func New(w io.Writer, level int) *ProgramLogger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return &ProgramLogger{zl: zerolog.New(cw).With().Timestamp().Logger(), level: level}
}

// SetupLogging returns a logger writing to the console and to a size-rotated log file.
func SetupLogging(cfg LoggingConfig) (*ProgramLogger, error) {
	writers := make([]io.Writer, 0, 2)

	if cfg.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: cfg.Console, TimeFormat: time.TimeOnly})
	}

	var lj *lumberjack.Logger
	if cfg.LogFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory for %q: %w", cfg.LogFilePath, err)
		}
		lj = &lumberjack.Logger{
			Filename:   cfg.LogFilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		writers = append(writers, lj)
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("program", cfg.Program).
		Logger()

	pl := &ProgramLogger{zl: zl, level: cfg.Level}
	if lj != nil {
		pl.file = lj
	}
	return pl, nil
}

// SetLevel sets the debug level used by D.
func (pl *ProgramLogger) SetLevel(l int) {
	pl.mu.Lock()
	pl.level = l
	pl.mu.Unlock()
}

// Level returns the current debug level.
func (pl *ProgramLogger) Level() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return pl.level
}

// Close closes the log file, if any.
func (pl *ProgramLogger) Close() error {
	if pl.file == nil {
		return nil
	}
	return pl.file.Close()
}

// I logs an info message.
func (pl *ProgramLogger) I(format string, args ...any) {
	pl.zl.Info().Msgf(format, args...)
}

// S logs a success message.
func (pl *ProgramLogger) S(format string, args ...any) {
	pl.zl.Info().Bool("ok", true).Msgf(format, args...)
}

// W logs a warning.
func (pl *ProgramLogger) W(format string, args ...any) {
	pl.zl.Warn().Msgf(format, args...)
}

// E logs an error.
func (pl *ProgramLogger) E(format string, args ...any) {
	pl.zl.Error().Msgf(format, args...)
}

// D logs a debug message if l is within the configured debug level.
func (pl *ProgramLogger) D(l int, format string, args ...any) {
	if l > pl.Level() {
		return
	}
	pl.zl.Debug().Int("lvl", l).Msgf(format, args...)
}
