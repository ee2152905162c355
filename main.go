package main

import (
	"telegram-quit-diary/internal/config"
	"telegram-quit-diary/internal/handlers"
	"telegram-quit-diary/internal/storage"
	"telegram-quit-diary/internal/timer"
	"telegram-quit-diary/internal/tracker"
	"telegram-quit-diary/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	_ = godotenv.Load() // TELEGRAM_BOT_TOKEN, QUIT_DIARY_DB

	cfg := config.Load()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	utils.Must(err)

	db, err := storage.New(cfg.DBPath)
	utils.Must(err)

	timers := timer.New(clockwork.NewRealClock())
	utils.Must(timers.Run())
	defer timers.Shutdown()

	h := handlers.New(bot, db, tracker.New(db), timers)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := bot.GetUpdatesChan(updateConfig)

	for upd := range updates {
		if upd.Message != nil {
			h.HandleMessage(upd.Message)
		}
		if upd.CallbackQuery != nil {
			h.HandleCallback(upd.CallbackQuery)
		}
	}
}
