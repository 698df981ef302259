package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// The TUI owns stdout, so all logging goes to a rotated file under the
// user's data directory.

// New creates a file-backed logger at path. An empty path resolves to the
// default location.
func New(path string) (*zap.Logger, error) {
	if path == "" {
		p, err := DefaultLogPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
		MaxAge:     14, // days
	})

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, zap.InfoLevel)
	return zap.New(core), nil
}

// DefaultLogPath resolves the log file path in priority order:
// 1. JONAS_LOG_FILE environment variable
// 2. $XDG_STATE_HOME/jonas/jonas.log
// 3. ~/.local/state/jonas/jonas.log
func DefaultLogPath() (string, error) {
	if p := os.Getenv("JONAS_LOG_FILE"); p != "" {
		return p, ensureDir(p)
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateHome = filepath.Join(home, ".local", "state")
	}

	p := filepath.Join(stateHome, "jonas", "jonas.log")
	return p, ensureDir(p)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
