package handlers

import (
	"time"

	"telegram-quit-diary/internal/models"
	"telegram-quit-diary/internal/stats"
	"telegram-quit-diary/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) HandleCommand(chatID int64, cmd string) {
	switch cmd {
	case "start":
		h.HandleStart(chatID)
	case "smoked":
		h.startSlipFlow(chatID)
	case "craving":
		h.startCravingFlow(chatID)
	case "stats":
		h.HandleStats(chatID)
	case "milestones":
		h.HandleMilestones(chatID)
	case "settings":
		h.HandleSettings(chatID)
	case "cancel":
		h.resetFlow(chatID)
		h.send(chatID, msgCancelled)
	case "skip":
		// /skip is only meaningful inside a flow; HandleText deals with it.
		h.handleSkip(chatID)
	}
}

// ---------------- /start --------------------

func (h *Handler) HandleStart(chatID int64) {
	if _, err := h.Tracker.EnsureSettings(chatID, time.Now()); err != nil {
		h.reportError(chatID, err)
	}

	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(kbSmoked),
			tgbotapi.NewKeyboardButton(kbCraving),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(kbStats),
			tgbotapi.NewKeyboardButton(kbMilestones),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(kbSettings),
		),
	)

	reply := tgbotapi.NewMessage(chatID, msgMainMenu)
	reply.ReplyMarkup = kb
	_, _ = h.Bot.Send(reply)
}

// ---------------- dashboards --------------------

func (h *Handler) HandleStats(chatID int64) {
	snap, err := h.Tracker.DashboardStats(chatID, time.Now())
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	h.send(chatID, formatSnapshot(snap))
}

func (h *Handler) HandleMilestones(chatID int64) {
	now := time.Now()
	states, err := h.Tracker.MilestoneStatus(chatID, now)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	settings, err := h.Tracker.Settings(chatID, now)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	h.send(chatID, formatMilestones(states, stats.HoursSinceQuit(settings.QuitTime(), now)))
}

// ---------------- /settings --------------------

func (h *Handler) HandleSettings(chatID int64) {
	settings, err := h.Tracker.Settings(chatID, time.Now())
	if err != nil {
		h.reportError(chatID, err)
		return
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Quit date", cbSetQuitDate),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cigarettes per day", cbSetPerDay),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Price per pack", cbSetPrice),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cigarettes per pack", cbSetPerPack),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Timezone", cbSetTZ),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Clear all data", cbClearData),
		),
	)

	reply := tgbotapi.NewMessage(chatID, formatSettings(settings))
	reply.ReplyMarkup = kb
	_, _ = h.Bot.Send(reply)
}

// ---------------- flow starters --------------------

func (h *Handler) startSlipFlow(chatID int64) {
	// the craving flow shares the draft; starting a slip mid-countdown would
	// clobber it and the countdown's completion would record nothing
	if h.Timers.Active(chatID) {
		h.send(chatID, "A craving timer is running — finish it first, then log the cigarette with \""+kbSmoked+"\".")
		return
	}
	h.setDraft(chatID, &storage.Draft{})
	h.setState(chatID, models.StateSlipTrigger)

	reply := tgbotapi.NewMessage(chatID, msgAskTrigger)
	reply.ReplyMarkup = triggerKeyboard()
	_, _ = h.Bot.Send(reply)
}

func (h *Handler) startCravingFlow(chatID int64) {
	if h.Timers.Active(chatID) {
		h.send(chatID, "A craving timer is already running — hang in there.")
		return
	}
	h.setDraft(chatID, &storage.Draft{})
	h.setState(chatID, models.StateCravingIntensity)

	reply := tgbotapi.NewMessage(chatID, msgAskIntensity)
	reply.ReplyMarkup = intensityKeyboard()
	_, _ = h.Bot.Send(reply)
}
