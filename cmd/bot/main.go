package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/avolkhin/sqlarena/internal/app"
	"github.com/avolkhin/sqlarena/internal/bot"
	"github.com/avolkhin/sqlarena/internal/clock"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	metaStore, err := app.NewStore(cfg.Database.DSN, cfg.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer metaStore.Close()

	tokens, err := app.NewTokenManager(cfg.Auth.RedisURL, cfg.Auth.TokenKeyTemplate)
	if err != nil {
		logger.Error.Fatalf("Failed to create token manager: %v", err)
	}
	defer tokens.Close()

	b, err := bot.New(cfg, metaStore, clock.New(cfg.Clock.OffsetHours), tokens)
	if err != nil {
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Println("Bot initialized successfully")
	if err := b.Start(); err != nil {
		logger.Error.Fatalf("Bot error: %v", err)
	}
}
