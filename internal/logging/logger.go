// Package logging configures runtime JSONL logging output.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	appDirName  = "kikitori"
	logFileName = "log.jsonl"

	maxLogMB      = 5
	maxLogBackups = 3

	redacted = "[redacted]"
)

// Runtime is the process logger and the file it writes to.
type Runtime struct {
	Logger *slog.Logger
	Path   string
	closer io.Closer
}

// Close releases the log file.
func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// New opens the rotating JSONL log in the XDG state directory.
func New() (Runtime, error) {
	path, err := resolveLogPath()
	if err != nil {
		return Runtime{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, err
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogMB,
		MaxBackups: maxLogBackups,
		Compress:   true,
	}
	return Runtime{Logger: NewJSON(sink, levelFromEnv()), Path: path, closer: sink}, nil
}

// NewJSON builds the JSON logger used for every sink, including tests.
// Attributes whose key names a secret are replaced before encoding.
func NewJSON(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSecrets,
	}))
}

func redactSecrets(_ []string, attr slog.Attr) slog.Attr {
	if kind := attr.Value.Kind(); kind != slog.KindString && kind != slog.KindAny {
		return attr
	}
	key := strings.ToLower(attr.Key)
	for _, secret := range []string{"api_key", "apikey", "credential", "authorization", "token"} {
		if strings.Contains(key, secret) {
			return slog.String(attr.Key, redacted)
		}
	}
	return attr
}

// StateDir returns the kikitori directory under XDG_STATE_HOME, or under
// ~/.local/state when that is unset.
func StateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state", appDirName), nil
}

func resolveLogPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// levelFromEnv reads KIKITORI_LOG_LEVEL; unknown values keep info.
func levelFromEnv() slog.Level {
	var level slog.Level
	raw := strings.TrimSpace(os.Getenv("KIKITORI_LOG_LEVEL"))
	if raw == "" || level.UnmarshalText([]byte(raw)) != nil {
		return slog.LevelInfo
	}
	return level
}
