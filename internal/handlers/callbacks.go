package handlers

import (
	"log"
	"strconv"
	"strings"
	"time"

	"telegram-quit-diary/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data tags.
const (
	cbTriggerPrefix = "trig:"
	cbMoodPrefix    = "mood:"
	cbIntensity     = "int:"

	// crave buttons carry the countdown message id so a stale button from a
	// superseded countdown cannot stop the current one
	cbCraveResistedPrefix = "crave:resisted:"
	cbCraveSmokedPrefix   = "crave:smoked:"

	cbSetQuitDate = "set:quitdate"
	cbSetPerDay   = "set:perday"
	cbSetPrice    = "set:price"
	cbSetPerPack  = "set:perpack"
	cbSetTZ       = "set:tz"
	cbClearData   = "set:clear"
	cbWipeYes     = "wipe:yes"
	cbWipeNo      = "wipe:no"
)

func triggerKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models.TriggerTypes)/2)
	for i := 0; i < len(models.TriggerTypes); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(triggerLabels[models.TriggerTypes[i]], cbTriggerPrefix+string(models.TriggerTypes[i])),
		}
		if i+1 < len(models.TriggerTypes) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(triggerLabels[models.TriggerTypes[i+1]], cbTriggerPrefix+string(models.TriggerTypes[i+1])))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func moodKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models.MoodTypes)/2)
	for i := 0; i < len(models.MoodTypes); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(moodLabels[models.MoodTypes[i]], cbMoodPrefix+string(models.MoodTypes[i])),
		}
		if i+1 < len(models.MoodTypes) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(moodLabels[models.MoodTypes[i+1]], cbMoodPrefix+string(models.MoodTypes[i+1])))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func intensityKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 10; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(i), cbIntensity+strconv.Itoa(i)))
		if len(row) == 5 {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, 5)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func craveKeyboard(token string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I resisted", cbCraveResistedPrefix+token),
			tgbotapi.NewInlineKeyboardButtonData("💨 I gave in", cbCraveSmokedPrefix+token),
		),
	)
}

func (h *Handler) HandleCallback(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	data := cq.Data

	// always answer the callback to clear the client spinner
	_, _ = h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))

	switch {
	case strings.HasPrefix(data, cbTriggerPrefix):
		h.handleTriggerChosen(chatID, models.TriggerType(strings.TrimPrefix(data, cbTriggerPrefix)))
	case strings.HasPrefix(data, cbMoodPrefix):
		h.handleMoodChosen(chatID, models.MoodType(strings.TrimPrefix(data, cbMoodPrefix)))
	case strings.HasPrefix(data, cbIntensity):
		n, err := strconv.Atoi(strings.TrimPrefix(data, cbIntensity))
		if err != nil {
			return
		}
		h.handleIntensityChosen(chatID, n)
	case strings.HasPrefix(data, cbCraveResistedPrefix):
		h.Timers.Stop(chatID, strings.TrimPrefix(data, cbCraveResistedPrefix), false)
	case strings.HasPrefix(data, cbCraveSmokedPrefix):
		h.Timers.Stop(chatID, strings.TrimPrefix(data, cbCraveSmokedPrefix), true)
	case data == cbSetQuitDate:
		h.setState(chatID, models.StateSetupQuitDate)
		h.send(chatID, "Send the quit date as YYYY-MM-DD.")
	case data == cbSetPerDay:
		h.setState(chatID, models.StateSetupPerDay)
		h.send(chatID, "How many cigarettes did you smoke per day before quitting? (1–50)")
	case data == cbSetPrice:
		h.setState(chatID, models.StateSetupPrice)
		h.send(chatID, "What does a pack cost? (1–50, steps of 0.5)")
	case data == cbSetPerPack:
		h.setState(chatID, models.StateSetupPerPack)
		h.send(chatID, "How many cigarettes in a pack? (10–30)")
	case data == cbSetTZ:
		h.setState(chatID, models.StateSetupTZ)
		h.send(chatID, "Send your timezone, e.g. Europe/Berlin.")
	case data == cbClearData:
		h.confirmClearData(chatID)
	case data == cbWipeYes:
		if err := h.DB.ClearData(chatID); err != nil {
			h.reportError(chatID, err)
			return
		}
		h.send(chatID, "All data cleared. /start begins a fresh attempt.")
	case data == cbWipeNo:
		h.send(chatID, msgCancelled)
	}
}

func (h *Handler) confirmClearData(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, delete everything", cbWipeYes),
			tgbotapi.NewInlineKeyboardButtonData("No", cbWipeNo),
		),
	)
	reply := tgbotapi.NewMessage(chatID, "Delete the whole journal and settings? This cannot be undone.")
	reply.ReplyMarkup = kb
	_, _ = h.Bot.Send(reply)
}

// ---------------- slip flow --------------------

func (h *Handler) handleTriggerChosen(chatID int64, trigger models.TriggerType) {
	if !trigger.Valid() {
		return
	}
	draft, err := h.DB.GetDraft(chatID)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	draft.Trigger = trigger
	h.setDraft(chatID, draft)
	h.setState(chatID, models.StateSlipMood)

	reply := tgbotapi.NewMessage(chatID, msgAskMood)
	reply.ReplyMarkup = moodKeyboard()
	_, _ = h.Bot.Send(reply)
}

func (h *Handler) handleMoodChosen(chatID int64, mood models.MoodType) {
	if !mood.Valid() {
		return
	}
	draft, err := h.DB.GetDraft(chatID)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	draft.Mood = mood
	h.setDraft(chatID, draft)
	h.setState(chatID, models.StateSlipLocation)
	h.send(chatID, msgAskLocation)
}

// ---------------- craving flow --------------------

func (h *Handler) handleIntensityChosen(chatID int64, intensity int) {
	if intensity < 1 || intensity > 10 {
		return
	}
	now := time.Now()
	draft, err := h.DB.GetDraft(chatID)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	draft.Intensity = intensity
	draft.StartedAt = now.Unix()
	h.setDraft(chatID, draft)

	// the buttons embed the message's own id, so it is sent bare first and
	// the keyboard attached once the id is known
	sent, err := h.Bot.Send(tgbotapi.NewMessage(chatID, formatCountdown(countdownDuration)))
	if err != nil {
		log.Println("send failed:", err)
		return
	}
	msgID := sent.MessageID
	token := strconv.Itoa(msgID)
	_, _ = h.Bot.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, craveKeyboard(token)))

	h.Timers.Start(chatID, token, countdownDuration,
		func(remaining time.Duration) {
			// refresh the countdown twice a minute, not on every tick
			if int(remaining.Seconds())%30 != 0 {
				return
			}
			edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, formatCountdown(remaining), craveKeyboard(token))
			_, _ = h.Bot.Request(edit)
		},
		func(elapsed time.Duration, smoked, expired bool) {
			h.finishCraving(chatID, msgID, elapsed, smoked, expired)
		},
	)
}

// finishCraving runs exactly once per countdown, whether it expired or was
// stopped by a button.
func (h *Handler) finishCraving(chatID int64, msgID int, elapsed time.Duration, smoked, expired bool) {
	var final string
	switch {
	case expired:
		final = "⏰ Timer done — the craving peak is behind you. Well held!"
	case smoked:
		final = "Logged. One slip doesn't undo your progress — keep going."
	default:
		final = "💪 You resisted. Logged."
	}
	edit := tgbotapi.NewEditMessageText(chatID, msgID, final)
	_, _ = h.Bot.Request(edit)

	draft, err := h.DB.GetDraft(chatID)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	draft.Smoked = smoked
	draft.EndedAt = draft.StartedAt + int64(elapsed.Seconds())
	h.setDraft(chatID, draft)
	h.setState(chatID, models.StateCravingCoping)
	h.send(chatID, msgAskCoping)
}
