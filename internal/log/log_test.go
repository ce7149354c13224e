package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/KaramelBytes/profile_data/internal/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		expected    slog.Level
		expectError bool
	}{
		"error level":      {input: "error", expected: slog.LevelError},
		"warn level":       {input: "warn", expected: slog.LevelWarn},
		"warning level":    {input: "warning", expected: slog.LevelWarn},
		"info level":       {input: "info", expected: slog.LevelInfo},
		"debug level":      {input: "debug", expected: slog.LevelDebug},
		"case insensitive": {input: "INFO", expected: slog.LevelInfo},
		"unknown level":    {input: "unknown", expectError: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lvl, err := log.ParseLevel(tc.input)
			if tc.expectError {
				require.ErrorIs(t, err, log.ErrUnknownLogLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, lvl)
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		expected    log.Format
		expectError bool
	}{
		"text format":      {input: "text", expected: log.FormatText},
		"logfmt format":    {input: "logfmt", expected: log.FormatLogfmt},
		"json format":      {input: "json", expected: log.FormatJSON},
		"case insensitive": {input: "JSON", expected: log.FormatJSON},
		"unknown format":   {input: "xml", expectError: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f, err := log.ParseFormat(tc.input)
			if tc.expectError {
				require.ErrorIs(t, err, log.ErrUnknownLogFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f)
		})
	}
}

func TestNewHandlerFromStrings(t *testing.T) {
	t.Parallel()

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h, err := log.NewHandlerFromStrings(&buf, "info", "json")
		require.NoError(t, err)

		slog.New(h).Info("loaded table", "rows", 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "loaded table", entry["msg"])
		assert.InDelta(t, 3, entry["rows"], 0)
	})

	t.Run("level filtering", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h, err := log.NewHandlerFromStrings(&buf, "warn", "logfmt")
		require.NoError(t, err)

		assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))

		slog.New(h).Info("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("text output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h, err := log.NewHandlerFromStrings(&buf, "debug", "text")
		require.NoError(t, err)

		slog.New(h).Debug("profiling", "file", "a.csv")
		assert.Contains(t, buf.String(), "profiling")
		assert.Contains(t, buf.String(), "a.csv")
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Parallel()

		_, err := log.NewHandlerFromStrings(&bytes.Buffer{}, "loud", "json")
		require.ErrorIs(t, err, log.ErrInvalidArgument)
		require.ErrorIs(t, err, log.ErrUnknownLogLevel)
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()

		_, err := log.NewHandlerFromStrings(&bytes.Buffer{}, "info", "xml")
		require.ErrorIs(t, err, log.ErrInvalidArgument)
		require.ErrorIs(t, err, log.ErrUnknownLogFormat)
	})
}

func TestConfig(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "test"}
	cfg := log.NewConfig()
	cfg.RegisterFlags(cmd.Flags())
	require.NoError(t, cfg.RegisterCompletions(cmd))

	require.NoError(t, cmd.Flags().Parse([]string{"--log-level", "debug", "--log-format", "json"}))
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	var buf bytes.Buffer
	h, err := cfg.NewHandler(&buf)
	require.NoError(t, err)
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestDefaultFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, log.FormatLogfmt, log.DefaultFormat(&bytes.Buffer{}))

	cfg := log.NewConfig()
	cfg.Level = "info"
	var buf bytes.Buffer
	h, err := cfg.NewHandler(&buf)
	require.NoError(t, err)

	slog.New(h).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
