package models

// Milestone is a fixed health-recovery checkpoint keyed by whole hours
// since the quit date. The catalog ships with the bot and is never stored
// per user.
type Milestone struct {
	Title         string
	Description   string
	HoursRequired int
	Category      string
}

// Milestones is the fixed, ordered catalog from the first minutes of a quit
// attempt out to one year.
var Milestones = []Milestone{
	{
		Title:         "Heart rate normalizes",
		Description:   "Within 20 minutes your heart rate and blood pressure drop back toward normal.",
		HoursRequired: 0,
		Category:      "heart",
	},
	{
		Title:         "Carbon monoxide clears",
		Description:   "After 12 hours the carbon monoxide level in your blood returns to normal.",
		HoursRequired: 12,
		Category:      "blood",
	},
	{
		Title:         "Heart attack risk drops",
		Description:   "After 24 hours your risk of a heart attack already begins to decrease.",
		HoursRequired: 24,
		Category:      "heart",
	},
	{
		Title:         "Taste and smell return",
		Description:   "After 48 hours nerve endings regrow and food starts to taste better.",
		HoursRequired: 48,
		Category:      "senses",
	},
	{
		Title:         "Breathing gets easier",
		Description:   "After 72 hours bronchial tubes relax and nicotine has left your body.",
		HoursRequired: 72,
		Category:      "lungs",
	},
	{
		Title:         "Circulation improves",
		Description:   "After 2 weeks walking and exercise become noticeably easier.",
		HoursRequired: 336,
		Category:      "body",
	},
	{
		Title:         "Lung function up",
		Description:   "After 1 month coughing and shortness of breath decrease.",
		HoursRequired: 720,
		Category:      "lungs",
	},
	{
		Title:         "Cravings fade",
		Description:   "After 3 months circulation keeps improving and cravings grow rare.",
		HoursRequired: 2160,
		Category:      "mind",
	},
	{
		Title:         "One smoke-free year",
		Description:   "After 1 year your risk of coronary heart disease is half that of a smoker.",
		HoursRequired: 8760,
		Category:      "heart",
	},
}
