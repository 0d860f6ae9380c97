package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

// New builds the operational logger. Entries go to the given file and to
// stderr; the file is what the /log command excerpts.
func New(logPath string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, apperrors.Wrap(err, "failed to create log directory")
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath, "stderr"}
	cfg.ErrorOutputPaths = []string{logPath, "stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build logger")
	}
	return logger, nil
}

// Tail returns the last n lines of the log file.
func Tail(logPath string, n int) (string, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.Unavailable("log file does not exist yet")
		}
		return "", apperrors.Wrap(err, "failed to read log file")
	}

	lines := strings.Split(string(bytes.TrimRight(data, "\n")), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n"), nil
}
