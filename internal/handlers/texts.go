package handlers

import (
	"fmt"
	"strings"
	"time"

	"telegram-quit-diary/internal/models"
	"telegram-quit-diary/internal/stats"
)

// Main reply keyboard.
const (
	kbSmoked     = "🚬 I smoked"
	kbCraving    = "🔥 Craving"
	kbStats      = "📊 Stats"
	kbMilestones = "🏆 Milestones"
	kbSettings   = "⚙️ Settings"
)

// Shared prompts.
const (
	msgMainMenu       = "What's up? Log a slip, ride out a craving, or check your progress."
	msgAskLocation    = "Where were you? Send a short answer or /skip."
	msgAskNotes       = "Anything to note about it? Send text or /skip."
	msgAskCoping      = "What helped you through it? Send text or /skip."
	msgAskIntensity   = "How strong is the craving?"
	msgAskTrigger     = "What triggered it?"
	msgAskMood        = "How were you feeling?"
	msgStorageTrouble = "I couldn't save that — the entry was not stored. Please enter it again."
	msgCancelled      = "Okay, cancelled."
)

// Presentation metadata for the domain enums lives here, keyed by the stable
// tag. The models package stays free of emoji.
var triggerLabels = map[models.TriggerType]string{
	models.TriggerStress:  "😤 Stress",
	models.TriggerSocial:  "🍻 Social",
	models.TriggerBoredom: "🥱 Boredom",
	models.TriggerHabit:   "🔁 Habit",
	models.TriggerAlcohol: "🍷 Alcohol",
	models.TriggerBreak:   "☕ Break",
}

var moodLabels = map[models.MoodType]string{
	models.MoodHappy:    "😊 Happy",
	models.MoodStressed: "😣 Stressed",
	models.MoodAnxious:  "😰 Anxious",
	models.MoodRelaxed:  "😌 Relaxed",
	models.MoodSad:      "😢 Sad",
	models.MoodNeutral:  "😐 Neutral",
}

var milestoneIcons = map[string]string{
	"heart":  "❤️",
	"blood":  "🩸",
	"senses": "👃",
	"lungs":  "🫁",
	"body":   "💪",
	"mind":   "🧠",
}

func formatSnapshot(s stats.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Your progress\n\n")
	fmt.Fprintf(&b, "🗓 Smoke-free days: %d\n", s.DaysSinceQuit)
	fmt.Fprintf(&b, "🔥 Current streak: %d day(s)\n", s.CurrentStreak)
	fmt.Fprintf(&b, "🚭 Cigarettes avoided: %d\n", s.CigarettesAvoided)
	fmt.Fprintf(&b, "💰 Money saved: %.2f\n", s.MoneySaved)
	fmt.Fprintf(&b, "💪 Cravings resisted: %.0f%%\n", s.CravingSuccessRate)
	fmt.Fprintf(&b, "⏱ Cravings today: %d\n", s.CravingsToday)
	return b.String()
}

func formatMilestones(states []stats.MilestoneState, hours int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Health milestones (%d h smoke-free)\n\n", hours)
	for _, st := range states {
		mark := "⬜"
		if st.Achieved {
			mark = "✅"
		}
		icon := milestoneIcons[st.Milestone.Category]
		fmt.Fprintf(&b, "%s %s %s — %s\n", mark, icon, st.Milestone.Title, st.Milestone.Description)
	}
	return b.String()
}

func formatSettings(s *models.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚙️ Settings\n\n")
	fmt.Fprintf(&b, "Quit date: %s\n", s.QuitTime().In(s.Location()).Format("2006-01-02"))
	fmt.Fprintf(&b, "Cigarettes per day (before): %d\n", s.CigarettesPerDay)
	fmt.Fprintf(&b, "Price per pack: %.2f\n", s.PricePerPack)
	fmt.Fprintf(&b, "Cigarettes per pack: %d\n", s.CigarettesPerPack)
	fmt.Fprintf(&b, "Timezone: %s\n", s.TZ)
	return b.String()
}

func formatCountdown(remaining time.Duration) string {
	total := int(remaining.Round(time.Second).Seconds())
	return fmt.Sprintf("🔥 Hold on — %d:%02d left. It will pass.", total/60, total%60)
}
