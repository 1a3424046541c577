package calculator

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind tags the most recent action for transient UI feedback.
type Kind string

const (
	KindNone     Kind = ""
	KindNumber   Kind = "number"
	KindDecimal  Kind = "decimal"
	KindClear    Kind = "clear"
	KindDelete   Kind = "delete"
	KindOperator Kind = "operator"
	KindPercent  Kind = "percent"
	KindEquals   Kind = "equals"
)

// State is the full interaction state of an Engine.
//
// StoredValue and Operator are either both unset or both set. CurrentValue is
// nil until the first operator of a chain has been pressed.
type State struct {
	DisplayValue      string
	CurrentValue      *float64
	StoredValue       *float64
	Operator          Operator
	WaitingForOperand bool
	LastAction        Kind
}

// InitialState is the state of a freshly constructed engine.
func InitialState() State {
	return State{DisplayValue: "0"}
}

// PendingHint renders the "<stored> <symbol>" line shown above the display,
// or "" when no operation is pending.
func (s State) PendingHint() string {
	if s.StoredValue == nil {
		return ""
	}
	return FormatNumber(*s.StoredValue) + " " + s.Operator.Symbol()
}

func (s State) clone() State {
	s.CurrentValue = copyFloat(s.CurrentValue)
	s.StoredValue = copyFloat(s.StoredValue)
	return s
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Calculation is emitted whenever a binary operation completes, either by
// chaining another operator or by pressing equals.
type Calculation struct {
	Expression string
	Result     float64
	Operator   Operator
}

// Option configures an Engine.
type Option func(*Engine)

// WithCalculationHandler registers the receiver of completed calculations.
func WithCalculationHandler(fn func(Calculation)) Option {
	return func(e *Engine) {
		e.onCalculation = fn
	}
}

// WithChangeHandler registers a callback invoked with a snapshot after every
// transition that was not a no-op.
func WithChangeHandler(fn func(State)) Option {
	return func(e *Engine) {
		e.onChange = fn
	}
}

// WithState starts the engine from a previously exported state.
func WithState(s State) Option {
	return func(e *Engine) {
		e.state = s.clone()
		if e.state.DisplayValue == "" {
			e.state.DisplayValue = "0"
		}
	}
}

// Engine is the calculator input state machine. It is not safe for
// concurrent use; callers serialise actions.
type Engine struct {
	state         State
	onCalculation func(Calculation)
	onChange      func(State)
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{state: InitialState()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	return e.state.clone()
}

// InputDigit enters d (0-9). Digits outside that range are ignored.
func (e *Engine) InputDigit(d int) {
	if d < 0 || d > 9 {
		return
	}
	digit := strconv.Itoa(d)

	s := &e.state
	switch {
	case s.WaitingForOperand:
		s.DisplayValue = digit
		s.WaitingForOperand = false
	case s.DisplayValue == "0":
		s.DisplayValue = digit
	default:
		s.DisplayValue += digit
	}
	s.LastAction = KindNumber
	e.changed()
}

// InputDecimal appends a decimal point unless the display already has one.
func (e *Engine) InputDecimal() {
	s := &e.state
	if s.WaitingForOperand {
		s.DisplayValue = "0."
		s.WaitingForOperand = false
	} else if !strings.Contains(s.DisplayValue, ".") {
		s.DisplayValue += "."
	}
	s.LastAction = KindDecimal
	e.changed()
}

// ClearAll resets the engine to its initial values.
func (e *Engine) ClearAll() {
	e.state = State{DisplayValue: "0", LastAction: KindClear}
	e.changed()
}

// ClearEntry resets only the display; a pending chain survives.
func (e *Engine) ClearEntry() {
	e.state.DisplayValue = "0"
	e.state.LastAction = KindClear
	e.changed()
}

// DeleteLastChar removes the last character of the display. It does nothing
// right after an operator, equals or percent.
func (e *Engine) DeleteLastChar() {
	s := &e.state
	if s.WaitingForOperand {
		return
	}

	_, size := utf8.DecodeLastRuneInString(s.DisplayValue)
	s.DisplayValue = s.DisplayValue[:len(s.DisplayValue)-size]
	if s.DisplayValue == "" {
		s.DisplayValue = "0"
	}
	s.LastAction = KindDelete
	e.changed()
}

// Percentage divides the displayed value by 100. The next digit starts a
// new number.
func (e *Engine) Percentage() {
	s := &e.state
	s.DisplayValue = FormatNumber(ParseDisplay(s.DisplayValue) / 100)
	s.WaitingForOperand = true
	s.LastAction = KindPercent
	e.changed()
}

// PerformOperation applies the pending operator, if any, to the accumulator
// and the displayed operand, then makes next the pending operator. Every
// intermediate step of a chain after the first operator is emitted as its
// own Calculation.
func (e *Engine) PerformOperation(next Operator) {
	s := &e.state
	operand := ParseDisplay(s.DisplayValue)

	var completed *Calculation
	if s.CurrentValue == nil {
		s.CurrentValue = &operand
	} else if s.Operator != NoOperator {
		result := Apply(s.Operator, *s.CurrentValue, operand)
		s.CurrentValue = &result
		s.DisplayValue = FormatNumber(result)

		if s.StoredValue != nil {
			completed = &Calculation{
				Expression: expression(*s.StoredValue, s.Operator, operand),
				Result:     result,
				Operator:   s.Operator,
			}
		}
	}

	// The stored value is the operand as typed, captured before the result
	// replaced the display.
	stored := operand
	s.StoredValue = &stored
	s.Operator = next
	s.WaitingForOperand = true
	s.LastAction = KindOperator

	if completed != nil {
		e.emit(*completed)
	}
	e.changed()
}

// Equals completes the pending operation. Without an accumulator and a
// pending operator it does nothing.
func (e *Engine) Equals() {
	s := &e.state
	if s.CurrentValue == nil || s.Operator == NoOperator {
		return
	}

	operand := ParseDisplay(s.DisplayValue)
	result := Apply(s.Operator, *s.CurrentValue, operand)
	calc := Calculation{
		Expression: expression(*s.CurrentValue, s.Operator, operand),
		Result:     result,
		Operator:   s.Operator,
	}

	e.state = State{
		DisplayValue:      FormatNumber(result),
		WaitingForOperand: true,
		LastAction:        KindEquals,
	}

	e.emit(calc)
	e.changed()
}

// Dispatch applies a single Action.
func (e *Engine) Dispatch(a Action) {
	switch a.Type {
	case ActionDigit:
		e.InputDigit(a.Digit)
	case ActionDecimal:
		e.InputDecimal()
	case ActionClear:
		e.ClearAll()
	case ActionClearEntry:
		e.ClearEntry()
	case ActionDelete:
		e.DeleteLastChar()
	case ActionPercent:
		e.Percentage()
	case ActionOperator:
		e.PerformOperation(a.Operator)
	case ActionEquals:
		e.Equals()
	}
}

func (e *Engine) emit(c Calculation) {
	if e.onCalculation != nil {
		e.onCalculation(c)
	}
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange(e.Snapshot())
	}
}

func expression(a float64, op Operator, b float64) string {
	return FormatNumber(a) + " " + op.Symbol() + " " + FormatNumber(b)
}
