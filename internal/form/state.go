package form

import (
	"fmt"

	"github.com/mmynk/tipsplit/internal/calculator"
)

// State is the serialisable form of a Calculator, stored between requests
// by the session stores. The derived result is not stored; it is rebuilt
// on Restore from Input, the last values that parsed.
type State struct {
	Rules        string           `json:"rules"`
	Bill         string           `json:"bill"`
	Tip          string           `json:"tip"`
	People       string           `json:"people"`
	Input        calculator.Input `json:"input"`
	ActivePreset *float64         `json:"active_preset,omitempty"`
}

// State returns the raw inputs, the last parsed values and the preset marker.
func (c *Calculator) State() State {
	s := State{
		Rules:  c.rules.Name,
		Bill:   c.billRaw,
		Tip:    c.tipRaw,
		People: c.peopleRaw,
		Input:  c.input,
	}
	if p, ok := c.ActivePreset(); ok {
		s.ActivePreset = &p
	}
	return s
}

// Restore rebuilds a Calculator by replaying the stored raw text over the
// stored parsed values. Raw text that does not parse restores as a field
// error and keeps the stale value, so the result matches the saved form.
func Restore(s State) (*Calculator, error) {
	rules, err := calculator.RulesByName(s.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to restore form: %w", err)
	}
	c := New(rules)
	c.input = s.Input
	c.recompute()
	c.SetBill(s.Bill)
	c.SetCustomTip(s.Tip)
	c.SetPeople(s.People)
	if s.ActivePreset != nil {
		if err := c.SelectPreset(*s.ActivePreset); err != nil {
			return nil, fmt.Errorf("failed to restore form: %w", err)
		}
	}
	return c, nil
}
