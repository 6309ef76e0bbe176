// Package logging provides categorized logging for gurusender on top of zap.
// Every line goes to the configured log file as plain text with a timestamp,
// and optionally to extra sinks such as the shell's log view or stderr.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config and logger setup
	CategoryCampaign Category = "campaign" // Send runs, per-row outcomes
	CategoryDispatch Category = "dispatch" // Link opening, browser automation
	CategorySettings Category = "settings" // Banned-word list edits
	CategoryConfig   Category = "config"   // Config reloads
)

// TimeLayout is the timestamp format of every log line.
const TimeLayout = "2006-01-02 15:04:05"

// Options configures New.
type Options struct {
	Level string      // debug, info, warn, error; empty means info
	File  string      // log file path; empty disables the file sink
	Sinks []io.Writer // extra destinations, written under a lock
}

// Logger owns the zap core and the open log file.
type Logger struct {
	root  *zap.Logger
	level zap.AtomicLevel
	file  *os.File

	closeOnce sync.Once
}

// ParseLevel maps a config level name to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// EncoderConfig returns the plain-text line layout shared by all sinks.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "category",
		MessageKey:       "msg",
		StacktraceKey:    "",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: "  ",
	}
}

// New builds a logger writing to opts.File and opts.Sinks.
func New(opts Options) (*Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var (
		syncers []zapcore.WriteSyncer
		file    *os.File
	)
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		file, err = os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		syncers = append(syncers, file)
	}
	for _, w := range opts.Sinks {
		if w != nil {
			syncers = append(syncers, zapcore.Lock(zapcore.AddSync(w)))
		}
	}

	level := zap.NewAtomicLevelAt(lvl)
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(EncoderConfig()),
		zapcore.NewMultiWriteSyncer(syncers...),
		level,
	)

	return &Logger{root: zap.New(core), level: level, file: file}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{root: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// Get returns the sub-logger for a category.
func (l *Logger) Get(category Category) *zap.Logger {
	return l.root.Named(string(category))
}

// SetLevel changes the level of every category at once.
func (l *Logger) SetLevel(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(lvl)
	return nil
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level { return l.level.Level() }

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		// Terminal sinks reject fsync, so only the file is synced.
		_ = l.root.Sync()
		if l.file != nil {
			err = errors.Join(l.file.Sync(), l.file.Close())
		}
	})
	return err
}
