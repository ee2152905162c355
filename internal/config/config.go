package config

import (
	"log"
	"os"
	"strings"
)

type Config struct {
	DBPath        string
	TelegramToken string
}

func Load() Config {
	return Config{
		DBPath:        dbPath(),
		TelegramToken: botToken(),
	}
}

func dbPath() string {
	if p := strings.TrimSpace(os.Getenv("QUIT_DIARY_DB")); p != "" {
		return p
	}
	return defaultDBPath
}

func botToken() string {
	if data, err := os.ReadFile("/run/secrets/telegram_bot_token"); err == nil {
		token := strings.TrimSpace(string(data))
		if token != "" {
			return token
		}
	}
	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if token != "" {
		return token
	}
	log.Fatal("bot token not found: neither the docker secret nor TELEGRAM_BOT_TOKEN is set")
	return ""
}

const defaultDBPath = "quit.db"
