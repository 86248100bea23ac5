package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"

	"whitelist-bot/internal/bot"
	"whitelist-bot/internal/config"
	"whitelist-bot/internal/db"
	"whitelist-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logg := logger.New("whitelistbot", cfg.LogDebug)

	database, err := db.New(cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer database.Close()

	if err := db.RunMigrations(database.Conn, logg, "db_scripts/init.sql", "db_scripts/admin.sql"); err != nil {
		logg.Fatal().Err(err).Msg("cannot run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accountRepo := db.NewAccountRepository(database.Conn)
	adminRepo := db.NewAdminRepository(database.Conn)

	if err := adminRepo.Seed(ctx, cfg.AdminChatIDs); err != nil {
		logg.Fatal().Err(err).Msg("cannot seed admin list")
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logg.Fatal().Err(err).Msg("cannot create telegram bot")
	}

	gateway := bot.NewTelegramGateway(botAPI)
	service := bot.New(botAPI, gateway, accountRepo, adminRepo, logg)

	logg.Info().Str("username", botAPI.Self.UserName).Msg("bot started")

	service.Start(ctx)

	logg.Info().Msg("bot stopped")
}
