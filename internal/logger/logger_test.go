package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "pdfpages.log")

	require.NoError(t, Init(Options{Level: "debug", File: file, MaxSizeMB: 1, Console: &buf}))
	defer Close()

	l := With("run-1", "split")
	l.Info().Int("part", 2).Msg("created split")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "created split", ev["message"])
	assert.Equal(t, "run-1", ev["run_id"])
	assert.Equal(t, "split", ev["pipeline"])
	assert.EqualValues(t, 2, ev["part"])

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "created split")
}

func TestInit_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "warn", Console: &buf}))
	defer Close()

	Get().Info().Msg("hidden")
	Get().Warn().Msg("shown")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown"))
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "loud", Console: &buf}))
	defer Close()

	Get().Debug().Msg("dropped")
	Get().Info().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
