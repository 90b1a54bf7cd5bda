package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
)

const (
	fileName   = "reel.log"
	maxSizeMB  = 5
	maxBackups = 3
)

// Setup creates a slog.Logger that writes to a rotating log file in stateDir,
// or in StateDir() when stateDir is empty. The caller is responsible for
// closing the returned writer.
func Setup(stateDir string) (*slog.Logger, io.Closer, error) {
	if stateDir == "" {
		var err error
		stateDir, err = StateDir()
		if err != nil {
			return nil, nil, fmt.Errorf("state dir: %w", err)
		}
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create state dir: %w", err)
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(stateDir, fileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), w, nil
}

// StateDir returns the path to the reel state directory (~/.config/reel/state)
func StateDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reel", "state"), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
