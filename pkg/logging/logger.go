// Package logging provides the shared, leveled logger for webpilot
// components. Output goes to stderr and, when a home directory is available,
// to a per-run file under ~/.webpilot/logs/.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// runID identifies this process's log file. It is distinct from test session
// IDs: one process may execute many sessions.
var runID = uuid.New().String()

// New builds the root logger. Level comes from LOG_LEVEL (DEBUG, INFO, WARN,
// ERROR), defaulting to info. File logging is best-effort; when the log
// directory cannot be created the logger silently sticks to stderr.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		logger.SetLevel(logrus.DebugLevel)
	case "WARN":
		logger.SetLevel(logrus.WarnLevel)
	case "ERROR":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if file, err := openRunLogFile(); err == nil {
		logger.SetOutput(io.MultiWriter(os.Stderr, file))
	}

	return logger
}

// Component returns a logger entry tagged with the component name, so every
// line carries its origin ("component=executor").
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}

// RunID returns the identifier baked into this process's log file name.
func RunID() string {
	return runID
}

// LogPath returns the per-run log file path, creating the directory if
// needed.
func LogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".webpilot", "logs")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return filepath.Join(dir, runID+".log"), nil
}

func openRunLogFile() (*os.File, error) {
	path, err := LogPath()
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}
