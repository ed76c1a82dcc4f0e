package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"WARNING":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"bogus":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestInitWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(Config{})

	Info().Str("session_id", "s1").Msg("hello")
	Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, `"session_id":"s1"`)
	assert.Contains(t, out, `"message":"hello"`)
	assert.NotContains(t, out, "hidden")
}
