package calculator

// Operator is a pending binary operation. The zero value means no operator.
type Operator int

const (
	NoOperator Operator = iota
	Add
	Subtract
	Multiply
	Divide
)

var operatorNames = map[Operator]string{
	Add:      "add",
	Subtract: "subtract",
	Multiply: "multiply",
	Divide:   "divide",
}

// Name returns the lowercase operation name used in APIs and metrics.
func (o Operator) Name() string {
	return operatorNames[o]
}

// Symbol returns the glyph shown in expressions and the pending hint.
func (o Operator) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "×"
	case Divide:
		return "÷"
	default:
		return ""
	}
}

func (o Operator) String() string {
	return o.Name()
}

// ParseOperator maps an operation name to its Operator.
func ParseOperator(name string) (Operator, bool) {
	for op, n := range operatorNames {
		if n == name {
			return op, true
		}
	}
	return NoOperator, false
}

// Apply evaluates a op b. Division by zero is not trapped and yields
// an infinity or NaN. An unknown operator returns b.
func Apply(op Operator, a, b float64) float64 {
	switch op {
	case Add:
		return a + b
	case Subtract:
		return a - b
	case Multiply:
		return a * b
	case Divide:
		return a / b
	default:
		return b
	}
}
