package calculator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAction is returned by ParseAction for unrecognised input.
var ErrUnknownAction = errors.New("unknown action")

// ActionType enumerates the engine's input methods.
type ActionType string

const (
	ActionDigit      ActionType = "digit"
	ActionDecimal    ActionType = "decimal"
	ActionClear      ActionType = "clear"
	ActionClearEntry ActionType = "clear_entry"
	ActionDelete     ActionType = "delete"
	ActionPercent    ActionType = "percent"
	ActionOperator   ActionType = "operator"
	ActionEquals     ActionType = "equals"
)

// Action is one discrete user input. Digit is used by ActionDigit and
// Operator by ActionOperator.
type Action struct {
	Type     ActionType
	Digit    int
	Operator Operator
}

func (a Action) String() string {
	switch a.Type {
	case ActionDigit:
		return strconv.Itoa(a.Digit)
	case ActionOperator:
		return a.Operator.Name()
	default:
		return string(a.Type)
	}
}

// Digit builds an ActionDigit.
func Digit(d int) Action {
	return Action{Type: ActionDigit, Digit: d}
}

// Op builds an ActionOperator.
func Op(o Operator) Action {
	return Action{Type: ActionOperator, Operator: o}
}

var keyActions = map[string]Action{
	".": {Type: ActionDecimal},
	"%": {Type: ActionPercent},
	"+": Op(Add),
	"-": Op(Subtract),
	"*": Op(Multiply),
	"x": Op(Multiply),
	"×": Op(Multiply),
	"/": Op(Divide),
	"÷": Op(Divide),
	"=": {Type: ActionEquals},

	"backspace": {Type: ActionDelete},
	"delete":    {Type: ActionDelete},
	"escape":    {Type: ActionClear},
	"esc":       {Type: ActionClear},
	"cancel":    {Type: ActionClear},
	"enter":     {Type: ActionEquals},
	"confirm":   {Type: ActionEquals},
}

// ActionForKey maps a key name, as reported by a browser or terminal, to an
// engine action. Named keys are case-insensitive. Keys with no mapping
// report false.
func ActionForKey(key string) (Action, bool) {
	if len(key) == 1 && isDigit(key[0]) {
		return Digit(int(key[0] - '0')), true
	}

	a, ok := keyActions[strings.ToLower(key)]
	return a, ok
}

// ParseAction builds an Action from an explicit action name and its
// argument: a digit for "digit" and an operator name for "operator".
func ParseAction(name, value string) (Action, error) {
	switch t := ActionType(name); t {
	case ActionDigit:
		d, err := strconv.Atoi(value)
		if err != nil || d < 0 || d > 9 {
			return Action{}, fmt.Errorf("%w: digit %q", ErrUnknownAction, value)
		}
		return Digit(d), nil
	case ActionOperator:
		op, ok := ParseOperator(value)
		if !ok {
			return Action{}, fmt.Errorf("%w: operator %q", ErrUnknownAction, value)
		}
		return Op(op), nil
	case ActionDecimal, ActionClear, ActionClearEntry, ActionDelete, ActionPercent, ActionEquals:
		return Action{Type: t}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}
