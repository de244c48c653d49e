package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	start := time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
	got := LogFilePath("logs", start)
	assert.Equal(t, filepath.Join("logs", "vox.20240309_143005.log"), got)
}

func TestSetupWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	log, closeLog, err := Setup(dir, "debug")
	require.NoError(t, err)

	log.Info().Str("part", "test").Msg("hello")
	closeLog()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "test", line["part"])
	assert.NotEmpty(t, line["time"])
}

func TestSetupUnknownLevelFallsBack(t *testing.T) {
	dir := t.TempDir()
	log, closeLog, err := Setup(dir, "chatty")
	require.NoError(t, err)
	defer closeLog()

	log.Debug().Msg("suppressed")
	log.Info().Msg("kept")
}
