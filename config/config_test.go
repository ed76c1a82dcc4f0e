package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 9000, cfg.ClickHouseNativePort)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, 60*time.Second, cfg.InferenceTimeout)
	assert.Equal(t, uint32(5), cfg.BreakerFailures)
	assert.False(t, cfg.ReleaseMode)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET_KEY": "", "OPENAI_API_KEY": "k"}},
		{"bad port", map[string]string{"CLICKHOUSE_NATIVE_PORT": "nine"}},
		{"bad timeout", map[string]string{"INFERENCE_TIMEOUT": "soon"}},
		{"unknown provider", map[string]string{"LLM_PROVIDER": "markov"}},
		{"anthropic without key", map[string]string{"LLM_PROVIDER": ProviderAnthropic, "ANTHROPIC_API_KEY": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "secret")
			t.Setenv("OPENAI_API_KEY", "sk-test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadOllamaNeedsNoKey(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_PROVIDER", ProviderOllama)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
}
