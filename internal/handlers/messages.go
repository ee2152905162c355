package handlers

import (
	"strconv"
	"strings"
	"time"

	"telegram-quit-diary/internal/models"
	"telegram-quit-diary/internal/storage"
	"telegram-quit-diary/internal/tracker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleText consumes free-text input according to the persisted
// conversation state.
func (h *Handler) HandleText(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, err := h.DB.GetUserState(chatID)
	if err != nil || state == models.StateIdle {
		return
	}
	h.dispatchText(chatID, state, strings.TrimSpace(msg.Text))
}

// handleSkip treats /skip as an empty answer for the optional steps.
func (h *Handler) handleSkip(chatID int64) {
	state, err := h.DB.GetUserState(chatID)
	if err != nil {
		return
	}
	switch state {
	case models.StateSlipLocation, models.StateSlipNotes, models.StateCravingCoping:
		h.dispatchText(chatID, state, "")
	}
}

func (h *Handler) dispatchText(chatID int64, state models.State, text string) {
	switch state {
	case models.StateSlipLocation:
		draft, err := h.DB.GetDraft(chatID)
		if err != nil {
			h.reportError(chatID, err)
			return
		}
		draft.Location = text
		h.setDraft(chatID, draft)
		h.setState(chatID, models.StateSlipNotes)
		h.send(chatID, msgAskNotes)

	case models.StateSlipNotes:
		draft, err := h.DB.GetDraft(chatID)
		if err != nil {
			h.reportError(chatID, err)
			return
		}
		h.recordSlip(chatID, draft, text)

	case models.StateCravingCoping:
		draft, err := h.DB.GetDraft(chatID)
		if err != nil {
			h.reportError(chatID, err)
			return
		}
		h.recordCraving(chatID, draft, text)

	case models.StateSetupQuitDate:
		h.applyQuitDate(chatID, text)
	case models.StateSetupPerDay:
		h.applyIntSetting(chatID, text, "cigarettes per day", func(p *tracker.SettingsPatch, v int) { p.CigarettesPerDay = &v })
	case models.StateSetupPerPack:
		h.applyIntSetting(chatID, text, "cigarettes per pack", func(p *tracker.SettingsPatch, v int) { p.CigarettesPerPack = &v })
	case models.StateSetupPrice:
		h.applyPrice(chatID, text)
	case models.StateSetupTZ:
		h.applyPatch(chatID, tracker.SettingsPatch{TZ: &text})
	}
}

// ---------------- recording --------------------

func (h *Handler) recordSlip(chatID int64, draft *storage.Draft, notes string) {
	now := time.Now()
	_, err := h.Tracker.RecordSmokingEvent(chatID, tracker.SmokingEventInput{
		Trigger:  draft.Trigger,
		Mood:     draft.Mood,
		Location: draft.Location,
		Notes:    notes,
	}, now)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	h.resetFlow(chatID)

	snap, err := h.Tracker.DashboardStats(chatID, now)
	if err != nil {
		h.send(chatID, "Logged.")
		return
	}
	h.send(chatID, "Logged. The streak restarts tomorrow — "+
		strconv.Itoa(snap.CigarettesAvoided)+" cigarettes avoided still stand.")
}

func (h *Handler) recordCraving(chatID int64, draft *storage.Draft, coping string) {
	now := time.Now()
	duration := int(draft.EndedAt - draft.StartedAt)
	if duration < 0 {
		duration = 0
	}
	_, err := h.Tracker.RecordCraving(chatID, tracker.CravingInput{
		Timestamp:      time.Unix(draft.StartedAt, 0),
		Intensity:      draft.Intensity,
		DurationSecs:   duration,
		CopingStrategy: coping,
		WasSuccessful:  !draft.Smoked,
	}, now)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	smoked := draft.Smoked
	h.resetFlow(chatID)

	snap, err := h.Tracker.DashboardStats(chatID, now)
	if err != nil {
		h.send(chatID, "Craving logged.")
		return
	}
	reply := "Craving logged. You've resisted " +
		strconv.FormatFloat(snap.CravingSuccessRate, 'f', 0, 64) + "% of them."
	if smoked {
		reply += " Use \"" + kbSmoked + "\" to log the cigarette itself."
	}
	h.send(chatID, reply)
}

// ---------------- settings input --------------------

func (h *Handler) applyQuitDate(chatID int64, text string) {
	now := time.Now()
	settings, err := h.Tracker.Settings(chatID, now)
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	day, err := time.ParseInLocation("2006-01-02", text, settings.Location())
	if err != nil {
		h.send(chatID, "I need a date like 2026-08-01.")
		return
	}
	h.applyPatch(chatID, tracker.SettingsPatch{QuitDate: &day})
}

func (h *Handler) applyIntSetting(chatID int64, text, what string, set func(*tracker.SettingsPatch, int)) {
	v, err := strconv.Atoi(text)
	if err != nil {
		h.send(chatID, "I need a whole number for "+what+".")
		return
	}
	var patch tracker.SettingsPatch
	set(&patch, v)
	h.applyPatch(chatID, patch)
}

func (h *Handler) applyPrice(chatID int64, text string) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		h.send(chatID, "I need a price like 7.5.")
		return
	}
	h.applyPatch(chatID, tracker.SettingsPatch{PricePerPack: &v})
}

func (h *Handler) applyPatch(chatID int64, patch tracker.SettingsPatch) {
	settings, err := h.Tracker.UpdateSettings(chatID, patch, time.Now())
	if err != nil {
		h.reportError(chatID, err)
		return
	}
	h.setState(chatID, models.StateIdle)
	h.send(chatID, "Saved.\n\n"+formatSettings(settings))
}
