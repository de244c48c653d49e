// Package logging sets up the session log file. The terminal itself
// belongs to the renderer, so nothing may log to stdout while a session
// runs.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// LogFilePath builds a log file path using OS-appropriate separators.
func LogFilePath(logsDir string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("vox.%s.log", sessionStart.Format("20060102_150405")),
	)
}

// Setup opens a per-session log file. The returned closer flushes and
// closes it; callers defer it on every exit path.
func Setup(logsDir, level string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if nil != err {
		lvl = zerolog.InfoLevel
	}

	if err := os.MkdirAll(logsDir, 0o755); nil != err {
		return zerolog.Nop(), func() {}, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.Create(LogFilePath(logsDir, time.Now()))
	if nil != err {
		return zerolog.Nop(), func() {}, fmt.Errorf("unable to create log file: %w", err)
	}

	logger := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return logger, func() { f.Close() }, nil
}
