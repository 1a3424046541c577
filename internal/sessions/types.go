package sessions

import "go-chi-calculator/internal/calculator"

// ActionRequest names one engine action. Value carries the digit for
// "digit" and the operator name for "operator".
type ActionRequest struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// ActionsRequest is the JSON body for POST /sessions/{id}/actions.
type ActionsRequest struct {
	Actions []ActionRequest `json:"actions"`
}

// KeysRequest is the JSON body for POST /sessions/{id}/keys.
type KeysRequest struct {
	Keys []string `json:"keys"`
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	ID           string                       `json:"id"`
	State        calculator.StateView         `json:"state"`
	Calculations []calculator.CalculationView `json:"calculations,omitempty"`
	Ignored      []string                     `json:"ignored,omitempty"`
}
