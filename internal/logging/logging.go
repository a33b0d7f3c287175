package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level string
	File  string
	// Quiet discards output when no file is configured. Set while the TUI
	// owns the terminal.
	Quiet bool
}

// New builds a logger. The returned close func releases the log file, if any.
func New(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: opts.File == "",
		FullTimestamp:    true,
	})

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	closeFn := func() error { return nil }
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		logger.SetOutput(f)
		closeFn = f.Close
	case opts.Quiet:
		logger.SetOutput(io.Discard)
	default:
		logger.SetOutput(os.Stderr)
	}
	return logger, closeFn, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
