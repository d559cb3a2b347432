package ui_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/serverwrap/pkg/ui"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		name     string
		format   ui.Format
		expected string
	}{
		{"auto format", ui.FormatAuto, "auto"},
		{"terminal format", ui.FormatTerminal, "term"},
		{"text format", ui.FormatText, "text"},
		{"unknown format", ui.Format(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.String())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ui.Format
		wantErr  bool
	}{
		{name: "parse auto", input: "auto", expected: ui.FormatAuto},
		{name: "parse empty string as auto", input: "", expected: ui.FormatAuto},
		{name: "parse term", input: "term", expected: ui.FormatTerminal},
		{name: "parse uppercase terminal", input: "TERMINAL", expected: ui.FormatTerminal},
		{name: "parse plain", input: "plain", expected: ui.FormatText},
		{name: "parse invalid format", input: "json", expected: ui.FormatAuto, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	t.Run("buffer is plain text", func(t *testing.T) {
		assert.Equal(t, ui.FormatText, ui.DetectFormat(&bytes.Buffer{}))
	})

	t.Run("NO_COLOR wins", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		assert.Equal(t, ui.FormatText, ui.FormatAuto.Resolve(&bytes.Buffer{}))
	})

	t.Run("explicit format is kept", func(t *testing.T) {
		assert.Equal(t, ui.FormatTerminal, ui.FormatTerminal.Resolve(&bytes.Buffer{}))
		assert.True(t, ui.FormatTerminal.Color())
		assert.False(t, ui.FormatText.Color())
	})
}

func TestRenderCacheTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ui.RenderCacheTable(&buf, ui.FormatText, nil, false))
		assert.Equal(t, "Cache is empty\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		var buf bytes.Buffer
		rows := []ui.CacheRow{{
			Destination: "mods",
			Key:         "sodium",
			File:        "sodium-0.5.3.jar",
			Token:       "sha512:0123456789abcdef0123456789abcdef",
			UpdatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Check:       "ok",
		}}
		require.NoError(t, ui.RenderCacheTable(&buf, ui.FormatText, rows, true))

		out := buf.String()
		assert.Contains(t, out, "DESTINATION")
		assert.Contains(t, out, "CHECK")
		assert.Contains(t, out, "sodium-0.5.3.jar")
		assert.Contains(t, out, "sha512:0123456789abcdef01...")
		assert.Contains(t, out, "ok")
	})
}
