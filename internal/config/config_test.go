package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndsborki/loadout-bot/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("DISCORD_APP_ID", "12345")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Discord.Token)
	assert.Equal(t, "database/builds.json", cfg.Storage.BuildsPath)
	assert.Equal(t, "database", cfg.Storage.RefDataDir)
	assert.Equal(t, "images", cfg.Storage.ImagesDir)
	assert.Equal(t, "logs/bot.log", cfg.Storage.LogPath)
	assert.Equal(t, "restart_message.txt", cfg.Storage.RestartMarkerPath)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_APP_ID", "12345")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRequiresAppID(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("DISCORD_APP_ID", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestAllowedUsers(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_USERS", "100,200,300")
	t.Setenv("ADMIN_ID", "100")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsAllowed("200"))
	assert.False(t, cfg.IsAllowed("400"))
	assert.Equal(t, "100", cfg.Access.AdminID)
}

func TestAllowedUsersEmpty(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_USERS", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsAllowed("100"))
}
