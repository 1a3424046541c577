package calculator

// CalcRequest is the JSON body for one-shot binary operations.
type CalcRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CalcResponse is the JSON response for one-shot binary operations. Result is
// rendered text so that Infinity and NaN can be returned.
type CalcResponse struct {
	Operation  string  `json:"operation"`
	A          float64 `json:"a"`
	B          float64 `json:"b"`
	Expression string  `json:"expression"`
	Result     string  `json:"result"`
}

// ReplayRequest is the JSON body for POST /calculator/replay.
type ReplayRequest struct {
	Keys []string `json:"keys"`
}

// ReplayResponse is the JSON response for POST /calculator/replay.
type ReplayResponse struct {
	State        StateView         `json:"state"`
	Calculations []CalculationView `json:"calculations"`
	Ignored      []string          `json:"ignored,omitempty"`
}

// StateView is the read-only rendering of an engine State.
type StateView struct {
	Display           string  `json:"display"`
	Pending           string  `json:"pending,omitempty"` // "<stored> <symbol>"
	StoredValue       *string `json:"stored_value,omitempty"`
	Operator          string  `json:"operator,omitempty"`
	WaitingForOperand bool    `json:"waiting_for_operand"`
	LastAction        Kind    `json:"last_action,omitempty"`
}

func NewStateView(s State) StateView {
	v := StateView{
		Display:           s.DisplayValue,
		Pending:           s.PendingHint(),
		Operator:          s.Operator.Name(),
		WaitingForOperand: s.WaitingForOperand,
		LastAction:        s.LastAction,
	}
	if s.StoredValue != nil {
		stored := FormatNumber(*s.StoredValue)
		v.StoredValue = &stored
	}
	return v
}

// CalculationView is the JSON rendering of a Calculation.
type CalculationView struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Operation  string `json:"operation"`
}

func NewCalculationView(c Calculation) CalculationView {
	return CalculationView{
		Expression: c.Expression,
		Result:     FormatNumber(c.Result),
		Operation:  c.Operator.Name(),
	}
}

// NewCalculationViews renders cs, never returning nil.
func NewCalculationViews(cs []Calculation) []CalculationView {
	out := make([]CalculationView, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCalculationView(c))
	}
	return out
}
