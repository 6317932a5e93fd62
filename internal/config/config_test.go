package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ai-tutor-backend", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 512, cfg.RAG.ChunkSize)
	assert.Equal(t, "tutoring.message.persist", cfg.RabbitMQ.MessagePersistQueue)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("RAG_TOP_K", "10")
	t.Setenv("MYSQL_DB", "tutor_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 10, cfg.RAG.TopK)
	assert.Contains(t, cfg.MySQLDSN(), "/tutor_test?")
}

func TestLoadBadEnvIntFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
}

func TestHTTPAddr(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "8888")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8888", cfg.HTTPAddr())
}
