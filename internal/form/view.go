package form

import (
	"strconv"

	"github.com/mmynk/tipsplit/internal/calculator"
)

// View is a render-ready snapshot of a Calculator.
type View struct {
	Bill   string `json:"bill"`
	Tip    string `json:"tip"`
	People string `json:"people"`

	TipPerPerson   float64 `json:"tip_per_person"`
	TotalPerPerson float64 `json:"total_per_person"`

	// Display values: "$" prefix, two decimals.
	TipPerPersonDisplay   string `json:"tip_per_person_display"`
	TotalPerPersonDisplay string `json:"total_per_person_display"`

	Errors       map[string]string `json:"errors,omitempty"`
	ActivePreset *float64          `json:"active_preset,omitempty"`
	Presets      []float64         `json:"presets"`
	CanReset     bool              `json:"can_reset"`
	Rules        string            `json:"rules"`
}

// View captures the current state for rendering.
func (c *Calculator) View() View {
	v := View{
		Bill:                  c.billRaw,
		Tip:                   c.tipRaw,
		People:                c.peopleRaw,
		TipPerPerson:          c.result.TipPerPerson,
		TotalPerPerson:        c.result.TotalPerPerson,
		TipPerPersonDisplay:   calculator.FormatCurrency(c.result.TipPerPerson),
		TotalPerPersonDisplay: calculator.FormatCurrency(c.result.TotalPerPerson),
		Presets:               calculator.Presets(),
		CanReset:              c.CanReset(),
		Rules:                 c.rules.Name,
	}
	if errs := c.Errors(); len(errs) > 0 {
		v.Errors = make(map[string]string, len(errs))
		for f, msg := range errs {
			v.Errors[string(f)] = msg
		}
	}
	if p, ok := c.ActivePreset(); ok {
		v.ActivePreset = &p
	}
	return v
}

// IsActive reports whether pct is the highlighted preset. Used by templates.
func (v View) IsActive(pct float64) bool {
	return v.ActivePreset != nil && *v.ActivePreset == pct
}

// Error returns the message for field, or "".
func (v View) Error(field string) string {
	return v.Errors[field]
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
