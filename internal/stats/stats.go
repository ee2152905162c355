package stats

import (
	"math"
	"time"

	"telegram-quit-diary/internal/models"
)

// dayAtLocation truncates an instant to midnight of its calendar day in the
// given timezone. Day identity everywhere in this package is calendar-day
// identity, not a 24-hour window.
func dayAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func dayKey(value time.Time, location *time.Location) string {
	return dayAtLocation(value, location).Format("2006-01-02")
}

// DaysSinceQuit counts whole calendar days between the quit date and now.
// Never negative.
func DaysSinceQuit(quitDate, now time.Time, location *time.Location) int {
	quitDay := dayAtLocation(quitDate, location)
	today := dayAtLocation(now, location)
	// Round absorbs DST days that are 23 or 25 hours long.
	days := int(math.Round(today.Sub(quitDay).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// HoursSinceQuit is the whole elapsed wall-clock hours since the quit date.
// Never negative.
func HoursSinceQuit(quitDate, now time.Time) int {
	hours := int(now.Sub(quitDate).Hours())
	if hours < 0 {
		return 0
	}
	return hours
}

// CigarettesAvoided estimates cigarettes not smoked: the pre-quit daily rate
// projected over the smoke-free days, minus every relapse ever logged.
// sessionCount is deliberately the all-time count, including events dated
// before the quit date. Floored at zero.
func CigarettesAvoided(days, cigarettesPerDay, sessionCount int) int {
	avoided := days*cigarettesPerDay - sessionCount
	if avoided < 0 {
		return 0
	}
	return avoided
}

// MoneySaved converts avoided cigarettes into currency at the configured
// pack price.
func MoneySaved(avoided, cigarettesPerPack int, pricePerPack float64) float64 {
	if cigarettesPerPack <= 0 {
		return 0
	}
	return float64(avoided) / float64(cigarettesPerPack) * pricePerPack
}

// CurrentStreak counts consecutive smoke-free calendar days, scanning
// backward from today. Today never counts toward the streak (it is still in
// progress), but a relapse today still ends the scan at zero. The scan never
// goes past the quit date's calendar day.
func CurrentStreak(events []models.SmokingEvent, quitDate, now time.Time, location *time.Location) int {
	today := dayAtLocation(now, location)
	quitDay := dayAtLocation(quitDate, location)

	eventDays := make(map[string]bool, len(events))
	for _, e := range events {
		eventDays[dayKey(e.Timestamp, location)] = true
	}

	streak := 0
	for day := today; !day.Before(quitDay); day = day.AddDate(0, 0, -1) {
		if eventDays[day.Format("2006-01-02")] {
			break
		}
		if day.Before(today) {
			streak++
		}
	}
	return streak
}

// MilestoneState pairs a catalog milestone with whether it has been reached.
type MilestoneState struct {
	Milestone models.Milestone
	Achieved  bool
}

// MilestoneStatus evaluates the full catalog in its fixed order.
func MilestoneStatus(hoursSinceQuit int) []MilestoneState {
	res := make([]MilestoneState, 0, len(models.Milestones))
	for _, m := range models.Milestones {
		res = append(res, MilestoneState{
			Milestone: m,
			Achieved:  hoursSinceQuit >= m.HoursRequired,
		})
	}
	return res
}

// CravingSuccessRate is the percentage of cravings resisted, 0 for an empty
// log.
func CravingSuccessRate(cravings []models.CravingEvent) float64 {
	if len(cravings) == 0 {
		return 0
	}
	resisted := 0
	for _, c := range cravings {
		if c.WasSuccessful {
			resisted++
		}
	}
	return float64(resisted) / float64(len(cravings)) * 100
}

// CravingsToday counts craving episodes on the current calendar day.
func CravingsToday(cravings []models.CravingEvent, now time.Time, location *time.Location) int {
	today := dayKey(now, location)
	count := 0
	for _, c := range cravings {
		if dayKey(c.Timestamp, location) == today {
			count++
		}
	}
	return count
}
