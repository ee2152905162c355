package models

import (
	"fmt"
	"time"
)

// TriggerType classifies what prompted a smoking event. The string values
// are the stable tags stored on disk — do not rename.
type TriggerType string

const (
	TriggerStress  TriggerType = "Stress"
	TriggerSocial  TriggerType = "Social"
	TriggerBoredom TriggerType = "Boredom"
	TriggerHabit   TriggerType = "Habit"
	TriggerAlcohol TriggerType = "Alcohol"
	TriggerBreak   TriggerType = "Break"
)

// TriggerTypes lists all triggers in display order.
var TriggerTypes = []TriggerType{
	TriggerStress, TriggerSocial, TriggerBoredom,
	TriggerHabit, TriggerAlcohol, TriggerBreak,
}

func (t TriggerType) Valid() bool {
	switch t {
	case TriggerStress, TriggerSocial, TriggerBoredom,
		TriggerHabit, TriggerAlcohol, TriggerBreak:
		return true
	}
	return false
}

// MoodType records how the user felt at the time of the event.
// Stored as stable string tags.
type MoodType string

const (
	MoodHappy    MoodType = "Happy"
	MoodStressed MoodType = "Stressed"
	MoodAnxious  MoodType = "Anxious"
	MoodRelaxed  MoodType = "Relaxed"
	MoodSad      MoodType = "Sad"
	MoodNeutral  MoodType = "Neutral"
)

// MoodTypes lists all moods in display order.
var MoodTypes = []MoodType{
	MoodHappy, MoodStressed, MoodAnxious,
	MoodRelaxed, MoodSad, MoodNeutral,
}

func (m MoodType) Valid() bool {
	switch m {
	case MoodHappy, MoodStressed, MoodAnxious,
		MoodRelaxed, MoodSad, MoodNeutral:
		return true
	}
	return false
}

// ValidationError reports a field whose value is outside its policy bounds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// SmokingEvent is one logged relapse. Immutable once stored: the log is
// append-only, no edit or delete exists.
type SmokingEvent struct {
	ID        string      `db:"id"         json:"id"`
	ChatID    int64       `db:"chat_id"    json:"chat_id"`
	Timestamp time.Time   `db:"ts"         json:"ts"`
	Trigger   TriggerType `db:"trigger"    json:"trigger"`
	Location  string      `db:"location"   json:"location"` // may be empty
	Mood      MoodType    `db:"mood"       json:"mood"`
	Notes     string      `db:"notes"      json:"notes"` // may be empty
}

func (e *SmokingEvent) Validate() error {
	if !e.Trigger.Valid() {
		return &ValidationError{Field: "trigger", Reason: "unknown trigger type " + string(e.Trigger)}
	}
	if !e.Mood.Valid() {
		return &ValidationError{Field: "mood", Reason: "unknown mood type " + string(e.Mood)}
	}
	return nil
}

// CravingEvent is one logged craving episode and its outcome.
// Immutable once stored.
type CravingEvent struct {
	ID             string    `db:"id"        json:"id"`
	ChatID         int64     `db:"chat_id"   json:"chat_id"`
	Timestamp      time.Time `db:"ts"        json:"ts"`
	Intensity      int       `db:"intensity" json:"intensity"` // 1..10
	DurationSecs   int       `db:"duration"  json:"duration"`  // episode length, seconds
	CopingStrategy string    `db:"coping"    json:"coping"`
	WasSuccessful  bool      `db:"success"   json:"success"` // false -> the user smoked
}

func (e *CravingEvent) Validate() error {
	if e.Intensity < 1 || e.Intensity > 10 {
		return &ValidationError{Field: "intensity", Reason: "must be between 1 and 10"}
	}
	if e.DurationSecs < 0 {
		return &ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	return nil
}

// Settings policy bounds and defaults.
const (
	DefaultCigarettesPerDay  = 10
	DefaultPricePerPack      = 8.0
	DefaultCigarettesPerPack = 20
	DefaultTZ                = "UTC"

	MinCigarettesPerDay  = 1
	MaxCigarettesPerDay  = 50
	MinPricePerPack      = 1.0
	MaxPricePerPack      = 50.0
	MinCigarettesPerPack = 10
	MaxCigarettesPerPack = 30
)

// Settings holds the quit configuration for one chat.
type Settings struct {
	ChatID            int64   `db:"chat_id"             json:"chat_id"`
	QuitDate          int64   `db:"quit_date"           json:"quit_date"` // unix seconds
	CigarettesPerDay  int     `db:"cigarettes_per_day"  json:"cigarettes_per_day"`
	PricePerPack      float64 `db:"price_per_pack"      json:"price_per_pack"`
	CigarettesPerPack int     `db:"cigarettes_per_pack" json:"cigarettes_per_pack"`
	TZ                string  `db:"tz"                  json:"tz"`
}

// DefaultSettings returns the first-run configuration for a chat.
func DefaultSettings(chatID int64, now time.Time) *Settings {
	return &Settings{
		ChatID:            chatID,
		QuitDate:          now.Unix(),
		CigarettesPerDay:  DefaultCigarettesPerDay,
		PricePerPack:      DefaultPricePerPack,
		CigarettesPerPack: DefaultCigarettesPerPack,
		TZ:                DefaultTZ,
	}
}

// QuitTime returns the quit date as a time.Time.
func (s *Settings) QuitTime() time.Time { return time.Unix(s.QuitDate, 0) }

// Location resolves the chat's timezone, falling back to UTC on a bad name.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.TZ)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

// Validate checks every field against its policy bound. now guards against
// quit dates in the future.
func (s *Settings) Validate(now time.Time) error {
	if s.QuitDate > now.Unix() {
		return &ValidationError{Field: "quitDate", Reason: "must not be in the future"}
	}
	if s.CigarettesPerDay < MinCigarettesPerDay || s.CigarettesPerDay > MaxCigarettesPerDay {
		return &ValidationError{Field: "cigarettesPerDay", Reason: "must be between 1 and 50"}
	}
	if s.PricePerPack < MinPricePerPack || s.PricePerPack > MaxPricePerPack {
		return &ValidationError{Field: "pricePerPack", Reason: "must be between 1 and 50"}
	}
	if halves := s.PricePerPack * 2; halves != float64(int64(halves)) {
		return &ValidationError{Field: "pricePerPack", Reason: "must be a multiple of 0.5"}
	}
	if s.CigarettesPerPack < MinCigarettesPerPack || s.CigarettesPerPack > MaxCigarettesPerPack {
		return &ValidationError{Field: "cigarettesPerPack", Reason: "must be between 10 and 30"}
	}
	if _, err := time.LoadLocation(s.TZ); err != nil {
		return &ValidationError{Field: "tz", Reason: "unknown timezone " + s.TZ}
	}
	return nil
}
