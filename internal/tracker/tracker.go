// Package tracker is the engine surface the presentation layer talks to:
// record events, compute dashboards, update configuration. It owns no state
// of its own — every computation is a fresh read through the store.
package tracker

import (
	"log"
	"time"

	"telegram-quit-diary/internal/models"
	"telegram-quit-diary/internal/stats"
)

// Store is the persistence contract the tracker needs. *storage.DB satisfies
// it; tests use stubs. GetSettings must return usable settings (defaults)
// even when it also returns an error.
type Store interface {
	InsertSmokingEvent(e *models.SmokingEvent) error
	InsertCraving(e *models.CravingEvent) error
	SmokingEvents(chatID int64) ([]models.SmokingEvent, error)
	Cravings(chatID int64) ([]models.CravingEvent, error)
	GetSettings(chatID int64, now time.Time) (*models.Settings, error)
	UpsertSettings(s *models.Settings) error
}

type Tracker struct {
	store Store
}

func New(store Store) *Tracker {
	return &Tracker{store: store}
}

// SmokingEventInput carries the user-supplied fields for one relapse.
// A zero Timestamp means "now"; backdating is allowed, future is not.
type SmokingEventInput struct {
	Timestamp time.Time
	Trigger   models.TriggerType
	Location  string
	Mood      models.MoodType
	Notes     string
}

// RecordSmokingEvent validates and appends one relapse, returning the stored
// event with its assigned id.
func (t *Tracker) RecordSmokingEvent(chatID int64, in SmokingEventInput, now time.Time) (*models.SmokingEvent, error) {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}
	if ts.After(now) {
		return nil, &models.ValidationError{Field: "timestamp", Reason: "must not be in the future"}
	}
	e := &models.SmokingEvent{
		ChatID:    chatID,
		Timestamp: ts,
		Trigger:   in.Trigger,
		Location:  in.Location,
		Mood:      in.Mood,
		Notes:     in.Notes,
	}
	if err := t.store.InsertSmokingEvent(e); err != nil {
		return nil, err
	}
	return e, nil
}

// CravingInput carries the user-supplied fields for one craving episode.
type CravingInput struct {
	Timestamp      time.Time
	Intensity      int
	DurationSecs   int
	CopingStrategy string
	WasSuccessful  bool
}

// RecordCraving validates and appends one craving episode.
func (t *Tracker) RecordCraving(chatID int64, in CravingInput, now time.Time) (*models.CravingEvent, error) {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}
	if ts.After(now) {
		return nil, &models.ValidationError{Field: "timestamp", Reason: "must not be in the future"}
	}
	e := &models.CravingEvent{
		ChatID:         chatID,
		Timestamp:      ts,
		Intensity:      in.Intensity,
		DurationSecs:   in.DurationSecs,
		CopingStrategy: in.CopingStrategy,
		WasSuccessful:  in.WasSuccessful,
	}
	if err := t.store.InsertCraving(e); err != nil {
		return nil, err
	}
	return e, nil
}

// DashboardStats reads the current state and derives the full dashboard.
// Read failures degrade: a broken log is shown as empty and broken settings
// as defaults, so the dashboard stays reachable with reduced history.
func (t *Tracker) DashboardStats(chatID int64, now time.Time) (stats.Snapshot, error) {
	settings, err := t.store.GetSettings(chatID, now)
	if err != nil {
		log.Println("settings read failed, using defaults:", err)
	}
	smokes, err := t.store.SmokingEvents(chatID)
	if err != nil {
		log.Println("smoking log read failed, treating as empty:", err)
		smokes = nil
	}
	cravings, err := t.store.Cravings(chatID)
	if err != nil {
		log.Println("craving log read failed, treating as empty:", err)
		cravings = nil
	}
	return stats.BuildSnapshot(settings, smokes, cravings, now), nil
}

// MilestoneStatus evaluates the fixed milestone catalog for the chat.
// Degrades like DashboardStats.
func (t *Tracker) MilestoneStatus(chatID int64, now time.Time) ([]stats.MilestoneState, error) {
	settings, err := t.store.GetSettings(chatID, now)
	if err != nil {
		log.Println("settings read failed, using defaults:", err)
	}
	return stats.MilestoneStatus(stats.HoursSinceQuit(settings.QuitTime(), now)), nil
}

// Settings returns the chat's current configuration.
func (t *Tracker) Settings(chatID int64, now time.Time) (*models.Settings, error) {
	return t.store.GetSettings(chatID, now)
}

// EnsureSettings creates the default configuration row on first contact so
// later reads never race a missing row.
func (t *Tracker) EnsureSettings(chatID int64, now time.Time) (*models.Settings, error) {
	settings, err := t.store.GetSettings(chatID, now)
	if err != nil {
		return nil, err
	}
	if err := t.store.UpsertSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SettingsPatch is a partial configuration update; nil fields keep their
// stored value.
type SettingsPatch struct {
	QuitDate          *time.Time
	CigarettesPerDay  *int
	PricePerPack      *float64
	CigarettesPerPack *int
	TZ                *string
}

// UpdateSettings applies a patch. Every changed field is validated against
// its policy bound before anything is written; the write itself is a single
// atomic upsert.
func (t *Tracker) UpdateSettings(chatID int64, patch SettingsPatch, now time.Time) (*models.Settings, error) {
	settings, err := t.store.GetSettings(chatID, now)
	if err != nil {
		return nil, err
	}
	if patch.QuitDate != nil {
		settings.QuitDate = patch.QuitDate.Unix()
	}
	if patch.CigarettesPerDay != nil {
		settings.CigarettesPerDay = *patch.CigarettesPerDay
	}
	if patch.PricePerPack != nil {
		settings.PricePerPack = *patch.PricePerPack
	}
	if patch.CigarettesPerPack != nil {
		settings.CigarettesPerPack = *patch.CigarettesPerPack
	}
	if patch.TZ != nil {
		settings.TZ = *patch.TZ
	}
	if err := settings.Validate(now); err != nil {
		return nil, err
	}
	if err := t.store.UpsertSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}
