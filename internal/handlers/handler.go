package handlers

import (
	"log"
	"time"

	"telegram-quit-diary/internal/models"
	"telegram-quit-diary/internal/storage"
	"telegram-quit-diary/internal/timer"
	"telegram-quit-diary/internal/tracker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// countdownDuration is how long the craving timer runs before the episode
// counts as resisted.
const countdownDuration = 5 * time.Minute

// BotAPI is the slice of the telegram client the handlers use.
// *tgbotapi.BotAPI satisfies it; tests use a fake.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	Bot     BotAPI
	DB      *storage.DB
	Tracker *tracker.Tracker
	Timers  *timer.Manager
}

func New(bot BotAPI, db *storage.DB, trk *tracker.Tracker, timers *timer.Manager) *Handler {
	return &Handler{Bot: bot, DB: db, Tracker: trk, Timers: timers}
}

func (h *Handler) HandleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		h.HandleCommand(chatID, msg.Command())
		return
	}

	switch msg.Text {
	case kbSmoked:
		h.startSlipFlow(chatID)
	case kbCraving:
		h.startCravingFlow(chatID)
	case kbStats:
		h.HandleStats(chatID)
	case kbMilestones:
		h.HandleMilestones(chatID)
	case kbSettings:
		h.HandleSettings(chatID)
	default:
		h.HandleText(msg)
	}
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Println("send failed:", err)
	}
}

// reportError turns a tracker error into a user-facing message. Validation
// errors are the user's to fix; anything else means the write may not have
// been persisted.
func (h *Handler) reportError(chatID int64, err error) {
	if _, ok := err.(*models.ValidationError); ok {
		h.send(chatID, "That value doesn't look right: "+err.Error())
		return
	}
	log.Println("storage error:", err)
	h.send(chatID, msgStorageTrouble)
}

func (h *Handler) setState(chatID int64, st models.State) {
	if err := h.DB.SetUserState(chatID, st); err != nil {
		log.Println("set state failed:", err)
	}
}

func (h *Handler) setDraft(chatID int64, d *storage.Draft) {
	if err := h.DB.SetDraft(chatID, d); err != nil {
		log.Println("set draft failed:", err)
	}
}

func (h *Handler) resetFlow(chatID int64) {
	h.setState(chatID, models.StateIdle)
	h.setDraft(chatID, &storage.Draft{})
}
