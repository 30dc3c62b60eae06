package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "clipforge", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8090", cfg.App.Addr())
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "ffmpeg", cfg.Sandbox.FFmpegPath)
	assert.False(t, cfg.Remote.Enabled)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CLIPFORGE_APP_PORT", "9999")
	t.Setenv("CLIPFORGE_MODEL_PROVIDER", "openai")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.App.Port)
	assert.Equal(t, "openai", cfg.Model.Provider)
}

func TestValidateRejectsBadProvider(t *testing.T) {
	t.Setenv("CLIPFORGE_MODEL_PROVIDER", "psychic")
	_, err := Load()
	assert.Error(t, err)
}
