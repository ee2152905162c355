package handlers

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-quit-diary/internal/models"
	"telegram-quit-diary/internal/storage"
	"telegram-quit-diary/internal/timer"
	"telegram-quit-diary/internal/tracker"
)

// fakeBot records outgoing traffic and hands out sequential message ids.
type fakeBot struct {
	sent  []tgbotapi.Chattable
	msgID int
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	f.msgID++
	return tgbotapi.Message{MessageID: f.msgID}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newTestHandler(t *testing.T) (*Handler, *storage.DB, *clockwork.FakeClock) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := clockwork.NewFakeClock()
	timers := timer.New(clock)
	h := New(&fakeBot{}, db, tracker.New(db), timers)
	return h, db, clock
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}
}

func callback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

// startCountdown drives the craving flow to a running timer and returns the
// countdown message's token.
func startCountdown(t *testing.T, h *Handler, chatID int64, intensity int) string {
	t.Helper()
	h.HandleMessage(textMessage(chatID, kbCraving))
	h.HandleCallback(callback(chatID, cbIntensity+strconv.Itoa(intensity)))
	if !h.Timers.Active(chatID) {
		t.Fatal("countdown not running after intensity was chosen")
	}
	// the countdown message is the second send in the flow
	return strconv.Itoa(h.Bot.(*fakeBot).msgID)
}

func TestSlipFlowRecordsEvent(t *testing.T) {
	h, db, _ := newTestHandler(t)

	h.HandleMessage(textMessage(1, kbSmoked))
	h.HandleCallback(callback(1, cbTriggerPrefix+string(models.TriggerSocial)))
	h.HandleCallback(callback(1, cbMoodPrefix+string(models.MoodStressed)))
	h.HandleMessage(textMessage(1, "office balcony"))
	h.HandleMessage(textMessage(1, "long meeting"))

	events, err := db.SmokingEvents(1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.Trigger != models.TriggerSocial || got.Mood != models.MoodStressed {
		t.Fatalf("enum fields mangled: %+v", got)
	}
	if got.Location != "office balcony" || got.Notes != "long meeting" {
		t.Fatalf("text fields mangled: %+v", got)
	}

	if st, _ := db.GetUserState(1); st != models.StateIdle {
		t.Fatalf("state after recording = %q, want idle", st)
	}
}

func TestSlipFlowBlockedDuringCountdown(t *testing.T) {
	h, db, clock := newTestHandler(t)

	startCountdown(t, h, 1, 7)

	// logging a cigarette now must not clobber the craving draft
	h.HandleMessage(textMessage(1, kbSmoked))

	if !h.Timers.Active(1) {
		t.Fatal("countdown died when the slip flow was attempted")
	}
	if st, _ := db.GetUserState(1); st == models.StateSlipTrigger {
		t.Fatal("slip flow started while a countdown was running")
	}
	draft, err := db.GetDraft(1)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if draft.Intensity != 7 || draft.StartedAt == 0 {
		t.Fatalf("craving draft clobbered: %+v", draft)
	}

	// the countdown still completes and records exactly one craving
	clock.Advance(countdownDuration)
	h.Timers.Tick()
	if st, _ := db.GetUserState(1); st != models.StateCravingCoping {
		t.Fatalf("state after expiry = %q, want coping prompt", st)
	}
	h.HandleMessage(textMessage(1, "deep breaths"))

	cravings, err := db.Cravings(1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cravings) != 1 {
		t.Fatalf("expected exactly 1 craving, got %d", len(cravings))
	}
	got := cravings[0]
	if got.Intensity != 7 || !got.WasSuccessful {
		t.Fatalf("craving fields mangled: %+v", got)
	}
	if got.DurationSecs != int(countdownDuration.Seconds()) {
		t.Fatalf("duration = %d, want %d", got.DurationSecs, int(countdownDuration.Seconds()))
	}
}

func TestStaleCravingButtonIgnored(t *testing.T) {
	h, db, _ := newTestHandler(t)

	token := startCountdown(t, h, 1, 5)

	// a button from some earlier countdown message must be a no-op
	h.HandleCallback(callback(1, cbCraveResistedPrefix+"999"))
	if !h.Timers.Active(1) {
		t.Fatal("stale button stopped the running countdown")
	}
	if st, _ := db.GetUserState(1); st == models.StateCravingCoping {
		t.Fatal("stale button advanced the flow to the coping prompt")
	}

	// the real button still works
	h.HandleCallback(callback(1, cbCraveResistedPrefix+token))
	if h.Timers.Active(1) {
		t.Fatal("matching button did not stop the countdown")
	}
	if st, _ := db.GetUserState(1); st != models.StateCravingCoping {
		t.Fatalf("state = %q, want coping prompt", st)
	}

	h.HandleMessage(textMessage(1, "chewed gum"))
	cravings, err := db.Cravings(1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cravings) != 1 || !cravings[0].WasSuccessful {
		t.Fatalf("expected one resisted craving, got %+v", cravings)
	}
}

func TestStorageErrorMessageSaysNotSaved(t *testing.T) {
	h, _, _ := newTestHandler(t)

	h.reportError(1, errors.New("disk full"))

	bot := h.Bot.(*fakeBot)
	if len(bot.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(bot.sent))
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", bot.sent[0])
	}
	// nothing is retained on a failed write; the text must say so and ask
	// for the input again, not promise the entry is kept
	if !strings.Contains(msg.Text, "not stored") || !strings.Contains(msg.Text, "again") {
		t.Fatalf("message does not tell the user to re-enter: %q", msg.Text)
	}
	if strings.Contains(msg.Text, "kept") {
		t.Fatalf("message still claims the entry is kept: %q", msg.Text)
	}
}
