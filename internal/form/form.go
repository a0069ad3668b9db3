// Package form holds the state of one tip-split form: the raw text of each
// input, the active preset marker, field errors, and the derived per-person
// result. Every mutation recomputes the result immediately; there is no
// separate submit step.
//
// A Calculator is not safe for concurrent use. Callers that share one across
// goroutines (the session-backed server, for example) serialise access.
package form

import (
	"errors"
	"fmt"

	"github.com/mmynk/tipsplit/internal/calculator"
)

// ErrUnknownPreset is returned when selecting a percentage that is not a preset.
var ErrUnknownPreset = errors.New("tip percentage is not a preset")

// Default raw values shown on first load and after a reset.
const (
	DefaultBill   = "0"
	DefaultTip    = "0"
	DefaultPeople = "1"
)

// Calculator is the stateful split form.
type Calculator struct {
	rules calculator.Rules

	billRaw   string
	tipRaw    string
	peopleRaw string

	// last successfully parsed values
	input calculator.Input

	activePreset *float64
	parseErrs    calculator.FieldErrors
	result       calculator.Result
}

// New returns a Calculator at its defaults, validated with rules.
func New(rules calculator.Rules) *Calculator {
	c := &Calculator{rules: rules}
	c.clear()
	return c
}

func (c *Calculator) clear() {
	c.billRaw = DefaultBill
	c.tipRaw = DefaultTip
	c.peopleRaw = DefaultPeople
	c.input = calculator.Input{Bill: 0, TipPercent: 0, People: 1}
	c.activePreset = nil
	c.parseErrs = calculator.FieldErrors{}
	c.result = calculator.Result{}
}

// Rules returns the validation rules in use.
func (c *Calculator) Rules() calculator.Rules {
	return c.rules
}

// SetBill records a keystroke in the bill field.
func (c *Calculator) SetBill(raw string) {
	c.billRaw = raw
	v, err := calculator.ParseAmount(raw)
	if err != nil {
		c.parseErrs[calculator.FieldBill] = calculator.InvalidBillMessage
		return
	}
	delete(c.parseErrs, calculator.FieldBill)
	c.input.Bill = v
	c.recompute()
}

// SetCustomTip records a keystroke in the custom tip field. Editing the
// custom field clears the active preset.
func (c *Calculator) SetCustomTip(raw string) {
	c.activePreset = nil
	c.tipRaw = raw
	v, err := calculator.ParsePercent(raw)
	if err != nil {
		c.parseErrs[calculator.FieldTip] = calculator.InvalidTipMessage
		return
	}
	delete(c.parseErrs, calculator.FieldTip)
	c.input.TipPercent = v
	c.recompute()
}

// FocusCustomTip clears the active preset marker without changing the tip.
func (c *Calculator) FocusCustomTip() {
	c.activePreset = nil
}

// SelectPreset sets the tip to one of the preset percentages and marks it active.
func (c *Calculator) SelectPreset(pct float64) error {
	if !calculator.IsPreset(pct) {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, calculator.FormatPercent(pct))
	}
	p := pct
	c.activePreset = &p
	c.tipRaw = formatNumber(pct)
	delete(c.parseErrs, calculator.FieldTip)
	c.input.TipPercent = pct
	c.recompute()
	return nil
}

// SetPeople records a keystroke in the people field.
func (c *Calculator) SetPeople(raw string) {
	c.peopleRaw = raw
	n, err := calculator.ParsePeople(raw)
	if err != nil {
		c.parseErrs[calculator.FieldPeople] = calculator.InvalidPeopleMessage
		return
	}
	delete(c.parseErrs, calculator.FieldPeople)
	c.input.People = n
	c.recompute()
}

func (c *Calculator) recompute() {
	c.result = calculator.Compute(c.input)
}

// Input returns the last successfully parsed values.
func (c *Calculator) Input() calculator.Input {
	return c.input
}

// Result returns the derived per-person values. When a field holds text
// that is not a number, the result reflects the last parseable value.
func (c *Calculator) Result() calculator.Result {
	return c.result
}

// Errors returns the current message for each failing field. A field that
// does not parse reports that instead of its minimum-value rule.
func (c *Calculator) Errors() calculator.FieldErrors {
	errs := c.rules.Validate(c.input)
	for f, msg := range c.parseErrs {
		errs[f] = msg
	}
	return errs
}

// Valid reports whether every field passes validation.
func (c *Calculator) Valid() bool {
	return len(c.Errors()) == 0
}

// ActivePreset returns the highlighted preset, if any.
func (c *Calculator) ActivePreset() (float64, bool) {
	if c.activePreset == nil {
		return 0, false
	}
	return *c.activePreset, true
}

// CanReset reports whether Reset would do anything. It is false while the
// derived result is zero.
func (c *Calculator) CanReset() bool {
	return !c.result.IsZero()
}

// Reset restores every field and the preset marker to their defaults.
// It is a no-op returning false while the result is already zero.
func (c *Calculator) Reset() bool {
	if !c.CanReset() {
		return false
	}
	c.clear()
	return true
}
