package form

import (
	"errors"
	"fmt"

	"github.com/mmynk/tipsplit/internal/calculator"
)

// ErrUnknownEvent is returned by Apply for an unrecognised event kind.
var ErrUnknownEvent = errors.New("unknown form event")

// EventKind names one user interaction with the form.
type EventKind string

const (
	EventSetBill        EventKind = "set_bill"
	EventSetCustomTip   EventKind = "set_custom_tip"
	EventFocusCustomTip EventKind = "focus_custom_tip"
	EventSelectPreset   EventKind = "select_preset"
	EventSetPeople      EventKind = "set_people"
	EventReset          EventKind = "reset"
)

// Event is a single input event from the presentation layer. Value carries
// the raw field text, or the preset percentage for EventSelectPreset.
type Event struct {
	Kind  EventKind `json:"kind"`
	Value string    `json:"value,omitempty"`
}

// Apply dispatches e to the matching mutation. Field validation failures are
// not errors; they show up in Errors. Only malformed events fail.
func (c *Calculator) Apply(e Event) error {
	switch e.Kind {
	case EventSetBill:
		c.SetBill(e.Value)
	case EventSetCustomTip:
		c.SetCustomTip(e.Value)
	case EventFocusCustomTip:
		c.FocusCustomTip()
	case EventSelectPreset:
		pct, err := calculator.ParsePercent(e.Value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnknownPreset, err)
		}
		return c.SelectPreset(pct)
	case EventSetPeople:
		c.SetPeople(e.Value)
	case EventReset:
		c.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Kind)
	}
	return nil
}
