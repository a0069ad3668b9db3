// Package api defines the request and response messages of the
// tipsplit.v1.TipService RPC surface.
package api

// View is the render-ready state of one form session.
type View struct {
	Bill   string `json:"bill"`
	Tip    string `json:"tip"`
	People string `json:"people"`

	TipPerPerson          float64 `json:"tip_per_person"`
	TotalPerPerson        float64 `json:"total_per_person"`
	TipPerPersonDisplay   string  `json:"tip_per_person_display"`
	TotalPerPersonDisplay string  `json:"total_per_person_display"`

	Errors       map[string]string `json:"errors,omitempty"`
	ActivePreset *float64          `json:"active_preset,omitempty"`
	Presets      []float64         `json:"presets"`
	CanReset     bool              `json:"can_reset"`
	Rules        string            `json:"rules"`
}

// Split is a saved split as returned to clients.
type Split struct {
	ID                    string  `json:"id"`
	Label                 string  `json:"label"`
	Bill                  float64 `json:"bill"`
	TipPercent            float64 `json:"tip_percent"`
	People                int     `json:"people"`
	TipPerPerson          float64 `json:"tip_per_person"`
	TotalPerPerson        float64 `json:"total_per_person"`
	TipPerPersonDisplay   string  `json:"tip_per_person_display"`
	TotalPerPersonDisplay string  `json:"total_per_person_display"`
	Rules                 string  `json:"rules"`
	CreatedAt             int64   `json:"created_at"`
}

type CalculateRequest struct {
	Bill       float64 `json:"bill"`
	TipPercent float64 `json:"tip_percent"`
	People     int     `json:"people"`
	// Rules selects the validation rule set; empty means "lenient".
	Rules string `json:"rules,omitempty"`
}

type CalculateResponse struct {
	TipPerPerson          float64           `json:"tip_per_person"`
	TotalPerPerson        float64           `json:"total_per_person"`
	TipPerPersonDisplay   string            `json:"tip_per_person_display"`
	TotalPerPersonDisplay string            `json:"total_per_person_display"`
	EffectivePeople       int               `json:"effective_people"`
	Errors                map[string]string `json:"errors,omitempty"`
}

type ListPresetsRequest struct{}

type ListPresetsResponse struct {
	Presets []float64 `json:"presets"`
}

type StartSessionRequest struct {
	Rules string `json:"rules,omitempty"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	CreatedAt int64  `json:"created_at"`
	View      View   `json:"view"`
}

type EndSessionRequest struct{}

type EndSessionResponse struct{}

// ApplyEventRequest carries one form event. Kind is one of set_bill,
// set_custom_tip, focus_custom_tip, select_preset, set_people, reset.
type ApplyEventRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
}

type ApplyEventResponse struct {
	View View `json:"view"`
}

type GetViewRequest struct{}

type GetViewResponse struct {
	View View `json:"view"`
}

type SaveSplitRequest struct {
	Label string `json:"label,omitempty"`
}

type SaveSplitResponse struct {
	Split Split `json:"split"`
}

type ListSplitsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ListSplitsResponse struct {
	Splits []Split `json:"splits"`
}

type GetSplitRequest struct {
	ID string `json:"id"`
}

type GetSplitResponse struct {
	Split Split `json:"split"`
}

type DeleteSplitRequest struct {
	ID string `json:"id"`
}

type DeleteSplitResponse struct{}
