package models

// SavedSplit is a tip split the user chose to keep.
// It records the inputs and the derived per-person values at the time of saving.
type SavedSplit struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// Label is the human-readable name for the split.
	// Auto-generated from the amounts when the user leaves it blank.
	Label string

	// Bill is the bill amount before tip.
	Bill float64

	// TipPercent is the tip percentage applied to Bill.
	TipPercent float64

	// People is the head count the split was divided by.
	// Always at least 1; the effective count is stored, not the raw input.
	People int

	// TipPerPerson is each person's share of the tip, at full precision.
	TipPerPerson float64

	// TotalPerPerson is each person's share of bill plus tip, at full precision.
	TotalPerPerson float64

	// Rules is the name of the validation rule set the split was made under.
	Rules string

	// CreatedAt is the Unix timestamp when the split was saved.
	CreatedAt int64
}

// Session is the server-side record of one open form.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// CreatedAt is the Unix timestamp when the session was started.
	CreatedAt int64
}
