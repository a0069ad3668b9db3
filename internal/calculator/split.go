// Package calculator holds the pure tip-split math: the per-person formula,
// the validation rules for each input field, and display formatting.
package calculator

// Input is the numeric form of the three user-entered values.
type Input struct {
	Bill       float64 `json:"bill"`
	TipPercent float64 `json:"tip_percent"`
	People     int     `json:"people"`
}

// Result is the per-person share derived from an Input.
// Values keep full precision; round only for display.
type Result struct {
	TipPerPerson   float64
	TotalPerPerson float64
}

// IsZero reports whether both per-person values are zero.
func (r Result) IsZero() bool {
	return r.TipPerPerson == 0 && r.TotalPerPerson == 0
}

// EffectivePeople returns the divisor used for the split. Counts below one
// are floored to one so a split never divides by zero.
func EffectivePeople(people int) int {
	if people > 0 {
		return people
	}
	return 1
}

// Compute splits the bill and tip evenly.
// Based on the algorithm: tip = bill × pct / 100, total = bill + tip, both divided by people.
func Compute(in Input) Result {
	people := float64(EffectivePeople(in.People))
	tip := in.Bill * in.TipPercent / 100
	total := in.Bill + tip

	return Result{
		TipPerPerson:   tip / people,
		TotalPerPerson: total / people,
	}
}
