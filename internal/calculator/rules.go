package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidInput is matched by every field validation failure.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownRules is returned by RulesByName for an unrecognised rule set.
var ErrUnknownRules = errors.New("unknown rule set")

// Field identifies one of the three form inputs.
type Field string

const (
	FieldBill   Field = "bill"
	FieldTip    Field = "tip"
	FieldPeople Field = "people"
)

// Fields lists the inputs in display order.
var Fields = []Field{FieldBill, FieldTip, FieldPeople}

// FieldError is a validation failure scoped to one field.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match any field error.
func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

// FieldErrors maps a field to its current validation message.
// An empty map means every field passed.
type FieldErrors map[Field]string

// Err returns nil when there are no errors, otherwise a combined error
// that matches ErrInvalidInput.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	errs := make([]error, 0, len(fe))
	for _, f := range Fields {
		if msg, ok := fe[f]; ok {
			errs = append(errs, &FieldError{Field: f, Message: msg})
		}
	}
	return errors.Join(errs...)
}

// Rules holds the minimum accepted value of each field and the message
// shown when it is violated.
type Rules struct {
	Name string

	// MinBill is exclusive when BillExclusive is set, inclusive otherwise.
	MinBill       float64
	BillExclusive bool
	BillMessage   string

	MinTip     float64
	TipMessage string

	MinPeople     int
	PeopleMessage string
}

// LenientRules is the canonical rule set: bill > 0, tip >= 0, people >= 1.
var LenientRules = Rules{
	Name:          "lenient",
	MinBill:       0,
	BillExclusive: true,
	BillMessage:   "Must be > 0",
	MinTip:        0,
	TipMessage:    "Min 0%",
	MinPeople:     1,
	PeopleMessage: "Must be > 0",
}

// StrictRules requires a bill of at least $0.50 and a tip of at least 1%.
var StrictRules = Rules{
	Name:          "strict",
	MinBill:       0.5,
	BillMessage:   "Bill must be at least $0.50",
	MinTip:        1,
	TipMessage:    "Tip must be at least 1%",
	MinPeople:     1,
	PeopleMessage: "At least 1 person is required",
}

var rulesByName = map[string]Rules{
	LenientRules.Name: LenientRules,
	StrictRules.Name:  StrictRules,
}

// RulesByName looks up a rule set. An empty name selects LenientRules.
func RulesByName(name string) (Rules, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return LenientRules, nil
	}
	r, ok := rulesByName[name]
	if !ok {
		return Rules{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownRules, name, strings.Join(RuleNames(), ", "))
	}
	return r, nil
}

// RuleNames returns the registered rule set names, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(rulesByName))
	for n := range rulesByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CheckBill returns the bill message if bill violates the minimum.
func (r Rules) CheckBill(bill float64) (string, bool) {
	if r.BillExclusive && bill <= r.MinBill {
		return r.BillMessage, false
	}
	if !r.BillExclusive && bill < r.MinBill {
		return r.BillMessage, false
	}
	return "", true
}

// CheckTip returns the tip message if pct is below the minimum.
func (r Rules) CheckTip(pct float64) (string, bool) {
	if pct < r.MinTip {
		return r.TipMessage, false
	}
	return "", true
}

// CheckPeople returns the people message if people is below the minimum.
func (r Rules) CheckPeople(people int) (string, bool) {
	if people < r.MinPeople {
		return r.PeopleMessage, false
	}
	return "", true
}

// Validate checks each field independently. A failing field never
// prevents the others from being checked.
func (r Rules) Validate(in Input) FieldErrors {
	errs := FieldErrors{}
	if msg, ok := r.CheckBill(in.Bill); !ok {
		errs[FieldBill] = msg
	}
	if msg, ok := r.CheckTip(in.TipPercent); !ok {
		errs[FieldTip] = msg
	}
	if msg, ok := r.CheckPeople(in.People); !ok {
		errs[FieldPeople] = msg
	}
	return errs
}
