package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/lorebook/internal/config"
)

func TestDisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LogConfig{Enabled: false, Level: "debug"}, &buf)
	require.NoError(t, err)

	log.Warn().Msg("should not appear")
	assert.Empty(t, buf.String())
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LogConfig{Enabled: true, Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info().Msg("quiet")
	log.Warn().Str("uid", "01X").Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, `"message":"loud"`)
	assert.Contains(t, out, `"uid":"01X"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LogConfig{Enabled: true, Level: "info", Format: "console"}, &buf)
	require.NoError(t, err)

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Enabled: true, Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}
