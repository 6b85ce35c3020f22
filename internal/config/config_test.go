package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("SAFETY_INTENTS", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CHAT_CONTEXT_WINDOW_SIZE", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg := Load()
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "none", cfg.AIProvider)
	assert.Equal(t, 5, cfg.ChatContextWindowSize)
	assert.Equal(t, []string{"suicide", "self-harm"}, cfg.SafetyIntents)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("AI_PROVIDER", "OpenRouter")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("REDIS_DB", "notanumber")

	cfg := Load()
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "openrouter", cfg.AIProvider)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 0, cfg.RedisDB)
}
