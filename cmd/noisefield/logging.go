package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "noisefield.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging returns a logger writing to dir/noisefield.log when debug is
// set, and a discarding logger otherwise. The terminal is in raw mode while
// the loop runs, so nothing may go to stdout or stderr.
func setupLogging(dir string, debug bool) (*slog.Logger, *os.File, error) {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(dir, fmt.Sprintf("noisefield_%s.log", time.Now().Format("20060102_150405")))
		if err := os.Rename(path, rotated); err != nil {
			return nil, nil, fmt.Errorf("rotate log: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("noisefield: logging started", "pid", os.Getpid())
	return logger, f, nil
}
