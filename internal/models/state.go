package models

// State is the persisted conversation state for a chat. The handlers store
// it between updates so multi-step flows survive restarts.
type State string

const (
	StateIdle State = ""

	// "I smoked" flow
	StateSlipTrigger  State = "slip_trigger"
	StateSlipMood     State = "slip_mood"
	StateSlipLocation State = "slip_location"
	StateSlipNotes    State = "slip_notes"

	// craving flow
	StateCravingIntensity State = "craving_intensity"
	StateCravingCoping    State = "craving_coping"

	// settings submenus, each waiting for one text value
	StateSetupQuitDate State = "setup_quit_date"
	StateSetupPerDay   State = "setup_per_day"
	StateSetupPrice    State = "setup_price"
	StateSetupPerPack  State = "setup_per_pack"
	StateSetupTZ       State = "setup_tz"
)
