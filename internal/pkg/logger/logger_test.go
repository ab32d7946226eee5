package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	return event
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(Config{Level: "info", Pretty: true}) })

	t.Run("should tag events with the service", func(t *testing.T) {
		req := require.New(t)
		buf := &bytes.Buffer{}

		lgr := Configure(Config{Level: "warn", Output: buf, Service: "filechat"})
		lgr.Warn().Msg("careful")

		event := decodeLine(t, buf)
		req.Equal("filechat", event["service"])
		req.Equal("careful", event["message"])
		req.Equal(zerolog.WarnLevel, zerolog.GlobalLevel())
	})

	t.Run("should fall back to info for unknown levels", func(t *testing.T) {
		Configure(Config{Level: "loud", Output: &bytes.Buffer{}})

		require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("should route Error through the configured logger", func(t *testing.T) {
		req := require.New(t)
		buf := &bytes.Buffer{}
		Configure(Config{Level: "info", Output: buf})

		Error().Msg("broken")

		event := decodeLine(t, buf)
		req.Equal("error", event["level"])
		req.Equal("broken", event["message"])
	})
}

func TestWithComponent(t *testing.T) {
	req := require.New(t)
	buf := &bytes.Buffer{}
	parent := zerolog.New(buf).With().Str("service", "filechat").Logger()

	component := WithComponent(parent, "messages")
	component.Info().Msg("sent")

	event := decodeLine(t, buf)
	req.Equal("messages", event["component"])
	req.Equal("filechat", event["service"])
}
