package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_DB", "")
	t.Setenv("ALLOW_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://127.0.0.1:27017", cfg.MongoURI)
	assert.Equal(t, "gramly", cfg.MongoDB)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.NotEmpty(t, cfg.AllowOrigins)
}

func TestLoadSplitsOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALLOW_ORIGINS", "http://a.example, http://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowOrigins)
}
