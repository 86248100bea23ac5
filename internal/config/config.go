package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	BotToken     string  `env:"BOT_TOKEN,required,notEmpty"`
	AdminChatIDs []int64 `env:"ADMIN_CHAT_IDS,required,notEmpty"`
	DBUser       string  `env:"DB_USER,required,notEmpty"`
	DBPassword   string  `env:"DB_PASSWORD,required,notEmpty"`
	DBName       string  `env:"DB_NAME,required,notEmpty"`
	DBHost       string  `env:"DB_HOST" envDefault:"localhost"`
	DBPort       string  `env:"DB_PORT" envDefault:"5432"`
	LogDebug     bool    `env:"LOG_DEBUG" envDefault:"false"`
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if len(cfg.AdminChatIDs) == 0 {
		return nil, fmt.Errorf("config.Load: ADMIN_CHAT_IDS must contain at least one chat id")
	}

	return cfg, nil
}
