// Package logging builds the process logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Verbose selects a colored console logger at debug level.
	Verbose bool
	// Level is debug, info, warn or error. Ignored when Verbose is set.
	Level string
	// File, when set, receives a JSON copy of every entry at debug level.
	File string
}

// New builds a logger writing to stderr, plus File when set. The returned
// cleanup flushes and closes the outputs.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
	}

	var (
		encoder zapcore.Encoder
		enabler zapcore.LevelEnabler = level
	)
	if opts.Verbose {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
		enabler = zapcore.DebugLevel
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), enabler),
	}

	var file *os.File
	if opts.File != "" {
		core, f, err := fileCore(opts.File)
		if err != nil {
			return nil, nil, err
		}
		file = f
		cores = append(cores, core)
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	cleanup := func() {
		_ = logger.Sync()
		if file != nil {
			file.Close()
		}
	}
	return logger, cleanup, nil
}

// Quiet returns a logger that only writes to File, or a no-op logger when no
// file is set. The TUI owns the terminal while it runs.
func Quiet(opts Options) (*zap.Logger, func(), error) {
	if opts.File == "" {
		return zap.NewNop(), func() {}, nil
	}
	core, f, err := fileCore(opts.File)
	if err != nil {
		return nil, nil, err
	}
	logger := zap.New(core, zap.AddCaller())
	return logger, func() {
		_ = logger.Sync()
		f.Close()
	}, nil
}

// fileCore opens path for appending and returns a debug-level JSON core on it.
func fileCore(path string) (zapcore.Core, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(f),
		zapcore.DebugLevel,
	)
	return core, f, nil
}
