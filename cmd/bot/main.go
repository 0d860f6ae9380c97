package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ndsborki/loadout-bot/internal/bot"
	"github.com/ndsborki/loadout-bot/internal/config"
	"github.com/ndsborki/loadout-bot/internal/discord"
	"github.com/ndsborki/loadout-bot/internal/images"
	"github.com/ndsborki/loadout-bot/internal/logging"
	"github.com/ndsborki/loadout-bot/internal/refdata"
	"github.com/ndsborki/loadout-bot/internal/repositories/builds"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Storage.LogPath)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	token := cfg.Discord.Token
	logger.Info("starting loadout bot",
		zap.String("token", fmt.Sprintf("%s...%s", token[:min(8, len(token))], token[max(0, len(token)-4):])),
		zap.String("app_id", cfg.Discord.AppID),
		zap.String("guild_id", cfg.Discord.GuildID))

	ctx := context.Background()

	// Load the read-only reference catalog
	refCatalog, err := refdata.Load(ctx, cfg.Storage.RefDataDir)
	if err != nil {
		logger.Fatal("failed to load reference catalog", zap.Error(err))
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create Discord session", zap.Error(err))
	}
	dg.Identify.Intents |= discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	adapter, err := discord.NewAdapter(&discord.Config{
		Session: dg,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("failed to create Discord adapter", zap.Error(err))
	}

	core, err := bot.New(&bot.Config{
		Repository:        builds.NewFileRepository(cfg.Storage.BuildsPath),
		RefCatalog:        refCatalog,
		Images:            images.NewStore(cfg.Storage.ImagesDir),
		Messenger:         adapter,
		Logger:            logger,
		Allowed:           cfg.IsAllowed,
		AdminID:           cfg.Access.AdminID,
		LogPath:           cfg.Storage.LogPath,
		RestartMarkerPath: cfg.Storage.RestartMarkerPath,
	})
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	if err := adapter.Bind(core); err != nil {
		logger.Fatal("failed to bind event handler", zap.Error(err))
	}

	// Open connection to Discord
	if err := dg.Open(); err != nil {
		logger.Fatal("failed to open Discord connection", zap.Error(err))
	}
	defer func() {
		if closeErr := dg.Close(); closeErr != nil {
			logger.Warn("failed to close Discord connection", zap.Error(closeErr))
		}
	}()

	// Register commands; empty guild ID means global commands
	if err := adapter.RegisterCommands(cfg.Discord.AppID, cfg.Discord.GuildID); err != nil {
		logger.Error("failed to register commands", zap.Error(err))
		return
	}
	if cfg.Discord.GuildID != "" {
		logger.Info("registered guild commands", zap.String("guild_id", cfg.Discord.GuildID))
	} else {
		logger.Info("registered global commands (may take up to an hour to propagate)")
	}

	// Deliver the one-shot post-restart confirmation, if owed
	core.NotifyRestart(ctx)

	fmt.Println("Bot is now running. Press CTRL-C to exit.")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	fmt.Println("Shutting down...")
}
