package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"telegram-quit-diary/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSmokingEventRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ts := time.Date(2026, 8, 10, 14, 30, 0, 0, time.UTC)

	e := &models.SmokingEvent{
		ChatID:    7,
		Timestamp: ts,
		Trigger:   models.TriggerAlcohol,
		Location:  "bar",
		Mood:      models.MoodRelaxed,
		Notes:     "after two beers",
	}
	if err := db.InsertSmokingEvent(e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if e.ID == "" {
		t.Fatal("insert did not assign an id")
	}

	events, err := db.SmokingEvents(7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.ID != e.ID || got.ChatID != 7 || got.Timestamp.Unix() != ts.Unix() {
		t.Fatalf("identity fields mangled: %+v", got)
	}
	if got.Trigger != models.TriggerAlcohol || got.Mood != models.MoodRelaxed {
		t.Fatalf("enum tags mangled: trigger=%q mood=%q", got.Trigger, got.Mood)
	}
	if got.Location != "bar" || got.Notes != "after two beers" {
		t.Fatalf("text fields mangled: %+v", got)
	}
}

func TestSmokingEventsInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	// timestamps deliberately out of order: stored order is insertion order
	stamps := []time.Time{
		time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 8, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 9, 12, 0, 0, 0, time.UTC),
	}
	var ids []string
	for _, ts := range stamps {
		e := &models.SmokingEvent{ChatID: 1, Timestamp: ts, Trigger: models.TriggerHabit, Mood: models.MoodNeutral}
		if err := db.InsertSmokingEvent(e); err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, e.ID)
	}

	events, err := db.SmokingEvents(1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.ID != ids[i] {
			t.Fatalf("order broken at %d: got %s, want %s", i, e.ID, ids[i])
		}
	}

	count, err := db.SmokingEventCount(1)
	if err != nil || count != 3 {
		t.Fatalf("count = %d (%v), want 3", count, err)
	}
}

func TestInsertSmokingEventValidates(t *testing.T) {
	db := openTestDB(t)
	e := &models.SmokingEvent{ChatID: 1, Timestamp: time.Now(), Trigger: "Nope", Mood: models.MoodNeutral}
	var verr *models.ValidationError
	if err := db.InsertSmokingEvent(e); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	events, _ := db.SmokingEvents(1)
	if len(events) != 0 {
		t.Fatal("rejected event was stored anyway")
	}
}

func TestCravingRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ts := time.Date(2026, 8, 10, 20, 0, 0, 0, time.UTC)

	for _, successful := range []bool{true, false} {
		e := &models.CravingEvent{
			ChatID:         3,
			Timestamp:      ts,
			Intensity:      8,
			DurationSecs:   300,
			CopingStrategy: "went for a walk",
			WasSuccessful:  successful,
		}
		if err := db.InsertCraving(e); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	cravings, err := db.Cravings(3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cravings) != 2 {
		t.Fatalf("expected 2 cravings, got %d", len(cravings))
	}
	if !cravings[0].WasSuccessful || cravings[1].WasSuccessful {
		t.Fatalf("outcome flags mangled: %+v", cravings)
	}
	got := cravings[0]
	if got.Intensity != 8 || got.DurationSecs != 300 || got.CopingStrategy != "went for a walk" {
		t.Fatalf("fields mangled: %+v", got)
	}
	if got.Timestamp.Unix() != ts.Unix() {
		t.Fatalf("timestamp mangled: %v", got.Timestamp)
	}
}

func TestInsertCravingValidates(t *testing.T) {
	db := openTestDB(t)
	var verr *models.ValidationError
	err := db.InsertCraving(&models.CravingEvent{ChatID: 1, Timestamp: time.Now(), Intensity: 11})
	if !errors.As(err, &verr) || verr.Field != "intensity" {
		t.Fatalf("expected intensity validation error, got %v", err)
	}
	err = db.InsertCraving(&models.CravingEvent{ChatID: 1, Timestamp: time.Now(), Intensity: 5, DurationSecs: -1})
	if !errors.As(err, &verr) || verr.Field != "duration" {
		t.Fatalf("expected duration validation error, got %v", err)
	}
}

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 8, 11, 12, 0, 0, 0, time.UTC)

	s, err := db.GetSettings(99, now)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.QuitDate != now.Unix() {
		t.Fatalf("default quit date = %d, want now (%d)", s.QuitDate, now.Unix())
	}
	if s.CigarettesPerDay != models.DefaultCigarettesPerDay ||
		s.PricePerPack != models.DefaultPricePerPack ||
		s.CigarettesPerPack != models.DefaultCigarettesPerPack {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestSettingsReadAfterWrite(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 8, 11, 12, 0, 0, 0, time.UTC)

	s := &models.Settings{
		ChatID:            5,
		QuitDate:          now.AddDate(0, 0, -7).Unix(),
		CigarettesPerDay:  15,
		PricePerPack:      9.5,
		CigarettesPerPack: 25,
		TZ:                "Europe/Berlin",
	}
	if err := db.UpsertSettings(s); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetSettings(5, now)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != *s {
		t.Fatalf("read-after-write mismatch:\n got %+v\nwant %+v", got, s)
	}

	// second upsert overwrites in place
	s.PricePerPack = 10.0
	if err := db.UpsertSettings(s); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, _ = db.GetSettings(5, now)
	if got.PricePerPack != 10.0 || got.CigarettesPerDay != 15 {
		t.Fatalf("partial overwrite: %+v", got)
	}
}

func TestUserStateRoundTrip(t *testing.T) {
	db := openTestDB(t)

	st, err := db.GetUserState(1)
	if err != nil || st != models.StateIdle {
		t.Fatalf("fresh chat state = %q (%v), want idle", st, err)
	}
	if err := db.SetUserState(1, models.StateSlipMood); err != nil {
		t.Fatalf("set: %v", err)
	}
	st, _ = db.GetUserState(1)
	if st != models.StateSlipMood {
		t.Fatalf("state = %q, want %q", st, models.StateSlipMood)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	db := openTestDB(t)

	draft, err := db.GetDraft(1)
	if err != nil || draft == nil {
		t.Fatalf("fresh draft: %v", err)
	}

	want := &Draft{Trigger: models.TriggerSocial, Mood: models.MoodHappy, Intensity: 7, StartedAt: 1000, EndedAt: 1300, Smoked: true}
	if err := db.SetDraft(1, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := db.GetDraft(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != *want {
		t.Fatalf("draft mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestClearData(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 8, 11, 12, 0, 0, 0, time.UTC)

	_ = db.InsertSmokingEvent(&models.SmokingEvent{ChatID: 1, Timestamp: now, Trigger: models.TriggerStress, Mood: models.MoodSad})
	_ = db.InsertCraving(&models.CravingEvent{ChatID: 1, Timestamp: now, Intensity: 5})
	_ = db.UpsertSettings(models.DefaultSettings(1, now))
	_ = db.SetUserState(1, models.StateSlipNotes)

	// another chat's data must survive
	_ = db.InsertSmokingEvent(&models.SmokingEvent{ChatID: 2, Timestamp: now, Trigger: models.TriggerStress, Mood: models.MoodSad})

	if err := db.ClearData(1); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if events, _ := db.SmokingEvents(1); len(events) != 0 {
		t.Fatal("smoking events survived clear")
	}
	if cravings, _ := db.Cravings(1); len(cravings) != 0 {
		t.Fatal("cravings survived clear")
	}
	if st, _ := db.GetUserState(1); st != models.StateIdle {
		t.Fatal("state survived clear")
	}
	if events, _ := db.SmokingEvents(2); len(events) != 1 {
		t.Fatal("clear leaked into another chat")
	}
}
