package stats

import (
	"time"

	"telegram-quit-diary/internal/models"
)

// Snapshot is the dashboard aggregate: every derived number the bot shows,
// computed in one pass from the same state so they cannot drift apart.
type Snapshot struct {
	DaysSinceQuit      int
	HoursSinceQuit     int
	CurrentStreak      int
	CigarettesAvoided  int
	MoneySaved         float64
	CravingSuccessRate float64
	CravingsToday      int
	SmokedCount        int
	CravingCount       int
}

// BuildSnapshot derives the dashboard from configuration, the event log and
// the current instant. Pure: no I/O, no mutation.
func BuildSnapshot(settings *models.Settings, smokes []models.SmokingEvent, cravings []models.CravingEvent, now time.Time) Snapshot {
	loc := settings.Location()
	quit := settings.QuitTime()

	days := DaysSinceQuit(quit, now, loc)
	avoided := CigarettesAvoided(days, settings.CigarettesPerDay, len(smokes))

	return Snapshot{
		DaysSinceQuit:      days,
		HoursSinceQuit:     HoursSinceQuit(quit, now),
		CurrentStreak:      CurrentStreak(smokes, quit, now, loc),
		CigarettesAvoided:  avoided,
		MoneySaved:         MoneySaved(avoided, settings.CigarettesPerPack, settings.PricePerPack),
		CravingSuccessRate: CravingSuccessRate(cravings),
		CravingsToday:      CravingsToday(cravings, now, loc),
		SmokedCount:        len(smokes),
		CravingCount:       len(cravings),
	}
}
