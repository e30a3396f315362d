package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	orig := os.Stdout
	defer func() { os.Stdout = orig }()

	r, w, err := os.Pipe()
	require.NoError(t, err, "failed to create stdout pipe")
	os.Stdout = w

	fn()

	err = w.Close()
	require.NoError(t, err, "failed to close stdout pipe")

	out, err := io.ReadAll(r)
	require.NoError(t, err, "failed to read stdout pipe")

	return string(out)
}

func TestLogger_parseLevelString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"Debug level", "DEBUG", slog.LevelDebug},
		{"Debug level lowercase", "debug", slog.LevelDebug},
		{"Info level", "info", slog.LevelInfo},
		{"Warn level", "warn", slog.LevelWarn},
		{"Error level", "error", slog.LevelError},
		{"Unknown level falls back to info", "nope", slog.LevelInfo},
		{"Empty level falls back to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, parseLevelString(tt.input))
		})
	}
}

func TestLogger_New(t *testing.T) {
	t.Run("dev environment", func(t *testing.T) {
		l, err := New(EnvDevelopment, LevelInfo)

		require.NoError(t, err)
		require.NotNil(t, l)
	})

	t.Run("prod environment", func(t *testing.T) {
		l, err := New(EnvProduction, LevelInfo)

		require.NoError(t, err)
		require.NotNil(t, l)
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := New("staging", LevelInfo)

		require.Error(t, err, "unknown environment must be rejected explicitly")
	})
}

func TestLogger_JSONOutput(t *testing.T) {
	out := captureStdout(t, func() {
		l := NewJSONLogger(LevelInfo)
		l.Info("test message", "key", "value")
	})

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &record), "prod logger must emit valid JSON")
	require.Equal(t, "test message", record["msg"])
	require.Equal(t, "value", record["key"])
	require.Equal(t, "INFO", record["level"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	out := captureStdout(t, func() {
		l := NewLogger(LevelError)
		l.Info("should be dropped")
	})

	require.Empty(t, out, "info message should not pass error-level logger")
}

func TestLogger_NoOp(t *testing.T) {
	out := captureStdout(t, func() {
		l := NewNoOpLogger()
		l.Error("should be dropped")
	})

	require.Empty(t, out, "noop logger should write nothing")
}
