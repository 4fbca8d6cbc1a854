package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   Level
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestConfigure_WritesJSONWithComponent(t *testing.T) {
	// GIVEN: A JSON logger at info writing to a buffer
	// WHEN: Logging through a component child at info and debug
	// THEN: Only the info line is written, tagged with the component
	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	l := With("engine")
	l.Debug().Msg("hidden")
	l.Info().Str("year_id", "y1").Msg("lesson placed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "engine", rec["component"])
	assert.Equal(t, "y1", rec["year_id"])
	assert.Equal(t, "lesson placed", rec["message"])
	assert.Contains(t, rec, "time")
}

func TestError_UsesConfiguredLogger(t *testing.T) {
	// GIVEN: A logger configured at error level
	// WHEN: Logging through the package-level Error
	// THEN: The line lands in the configured output
	var buf bytes.Buffer
	Configure(Config{Level: ErrorLevel, Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Error().Str("path", "config.yaml").Msg("failed to load configuration")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, "config.yaml", rec["path"])
}
