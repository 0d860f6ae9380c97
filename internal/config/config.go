package config

import (
	"github.com/caarlos0/env/v11"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Access  AccessConfig
	Storage StorageConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string `env:"DISCORD_TOKEN"`
	AppID   string `env:"DISCORD_APP_ID"`
	GuildID string `env:"DISCORD_GUILD_ID"` // Optional: for guild-specific commands
}

// AccessConfig holds the static allow-list
type AccessConfig struct {
	// AllowedUsers are user IDs permitted to use privileged commands
	AllowedUsers []string `env:"ALLOWED_USERS" envSeparator:","`

	// AdminID receives log excerpts and operational notices
	AdminID string `env:"ADMIN_ID"`
}

// StorageConfig holds file layout configuration
type StorageConfig struct {
	// BuildsPath is the JSON array file holding all build records
	BuildsPath string `env:"BUILDS_PATH" envDefault:"database/builds.json"`

	// RefDataDir holds types.json and the per-type module files
	RefDataDir string `env:"REFDATA_DIR" envDefault:"database"`

	// ImagesDir holds one image per build record
	ImagesDir string `env:"IMAGES_DIR" envDefault:"images"`

	// LogPath is the operational log file the /log command excerpts
	LogPath string `env:"LOG_PATH" envDefault:"logs/bot.log"`

	// RestartMarkerPath records a user ID to notify after a restart
	RestartMarkerPath string `env:"RESTART_MARKER_PATH" envDefault:"restart_message.txt"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse environment")
	}

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, apperrors.InvalidArgument("DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		return nil, apperrors.InvalidArgument("DISCORD_APP_ID is required")
	}

	return cfg, nil
}

// IsAllowed reports whether the user is on the static allow-list
func (c *Config) IsAllowed(userID string) bool {
	for _, id := range c.Access.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
