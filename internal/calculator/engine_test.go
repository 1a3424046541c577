package calculator

import (
	"math"
	"strings"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive
	"pgregory.net/rapid"
)

type recorder struct {
	calcs []Calculation
}

func (r *recorder) handle(c Calculation) {
	r.calcs = append(r.calcs, c)
}

func newRecordedEngine() (*Engine, *recorder) {
	rec := &recorder{}
	return NewEngine(WithCalculationHandler(rec.handle)), rec
}

func TestNewEngineStartsAtZero(t *testing.T) {
	e := NewEngine()
	s := e.Snapshot()

	if s.DisplayValue != "0" {
		t.Fatalf("expected display %q, got %q", "0", s.DisplayValue)
	}
	if s.CurrentValue != nil || s.StoredValue != nil || s.Operator != NoOperator {
		t.Fatalf("expected idle state, got %+v", s)
	}
	if s.WaitingForOperand {
		t.Fatal("expected waitingForOperand false")
	}
}

func TestInputDigitSuppressesLeadingZero(t *testing.T) {
	tests := []struct {
		name   string
		digits []int
		want   string
	}{
		{name: "single zero", digits: []int{0}, want: "0"},
		{name: "zeros", digits: []int{0, 0, 0}, want: "0"},
		{name: "zero then five", digits: []int{0, 5}, want: "5"},
		{name: "inner zeros kept", digits: []int{1, 0, 0}, want: "100"},
		{name: "many", digits: []int{9, 8, 7, 6}, want: "9876"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine()
			for _, d := range tc.digits {
				e.InputDigit(d)
			}
			if got := e.Snapshot().DisplayValue; got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if got := e.Snapshot().LastAction; got != KindNumber {
				t.Fatalf("expected last action %q, got %q", KindNumber, got)
			}
		})
	}
}

func TestInputDigitIgnoresOutOfRange(t *testing.T) {
	e := NewEngine()
	e.InputDigit(4)
	e.InputDigit(10)
	e.InputDigit(-1)

	if got := e.Snapshot().DisplayValue; got != "4" {
		t.Fatalf("expected %q, got %q", "4", got)
	}
}

func TestInputDecimalIsIdempotent(t *testing.T) {
	e := NewEngine()
	e.InputDigit(3)
	e.InputDecimal()
	first := e.Snapshot().DisplayValue
	e.InputDecimal()

	if first != "3." {
		t.Fatalf("expected %q, got %q", "3.", first)
	}
	if got := e.Snapshot().DisplayValue; got != first {
		t.Fatalf("expected display unchanged %q, got %q", first, got)
	}

	e.InputDigit(1)
	e.InputDecimal()
	if got := e.Snapshot().DisplayValue; got != "3.1" {
		t.Fatalf("expected %q, got %q", "3.1", got)
	}
}

func TestInputDecimalAfterOperatorStartsFresh(t *testing.T) {
	e := NewEngine()
	e.InputDigit(7)
	e.PerformOperation(Add)
	e.InputDecimal()

	s := e.Snapshot()
	if s.DisplayValue != "0." {
		t.Fatalf("expected %q, got %q", "0.", s.DisplayValue)
	}
	if s.WaitingForOperand {
		t.Fatal("expected waitingForOperand cleared")
	}
	if s.LastAction != KindDecimal {
		t.Fatalf("expected last action %q, got %q", KindDecimal, s.LastAction)
	}
}

func TestDeleteLastChar(t *testing.T) {
	t.Run("single character becomes zero", func(t *testing.T) {
		e := NewEngine()
		e.InputDigit(8)
		e.DeleteLastChar()
		if got := e.Snapshot().DisplayValue; got != "0" {
			t.Fatalf("expected %q, got %q", "0", got)
		}
	})

	t.Run("removes last digit", func(t *testing.T) {
		e := NewEngine()
		e.InputDigit(1)
		e.InputDigit(2)
		e.InputDecimal()
		e.DeleteLastChar()
		if got := e.Snapshot().DisplayValue; got != "12" {
			t.Fatalf("expected %q, got %q", "12", got)
		}
		if got := e.Snapshot().LastAction; got != KindDelete {
			t.Fatalf("expected last action %q, got %q", KindDelete, got)
		}
	})

	t.Run("no-op while waiting for operand", func(t *testing.T) {
		e := NewEngine()
		e.InputDigit(4)
		e.InputDigit(2)
		e.PerformOperation(Subtract)
		e.DeleteLastChar()

		s := e.Snapshot()
		if s.DisplayValue != "42" {
			t.Fatalf("expected %q, got %q", "42", s.DisplayValue)
		}
		if s.LastAction != KindOperator {
			t.Fatalf("expected last action to stay %q, got %q", KindOperator, s.LastAction)
		}
	})
}

func TestClearEntryPreservesChainClearAllResets(t *testing.T) {
	g := NewWithT(t)

	e, rec := newRecordedEngine()
	e.InputDigit(6)
	e.PerformOperation(Multiply)
	e.InputDigit(9)
	e.ClearEntry()

	s := e.Snapshot()
	g.Expect(s.DisplayValue).To(Equal("0"))
	g.Expect(s.Operator).To(Equal(Multiply))
	g.Expect(s.CurrentValue).NotTo(BeNil())
	g.Expect(*s.CurrentValue).To(Equal(6.0))
	g.Expect(s.LastAction).To(Equal(KindClear))

	e.InputDigit(7)
	e.Equals()
	g.Expect(e.Snapshot().DisplayValue).To(Equal("42"))
	g.Expect(rec.calcs).To(HaveLen(1))
	g.Expect(rec.calcs[0].Expression).To(Equal("6 × 7"))

	e.InputDigit(3)
	e.PerformOperation(Add)
	e.ClearAll()

	s = e.Snapshot()
	g.Expect(s.DisplayValue).To(Equal("0"))
	g.Expect(s.Operator).To(Equal(NoOperator))
	g.Expect(s.CurrentValue).To(BeNil())
	g.Expect(s.StoredValue).To(BeNil())
	g.Expect(s.WaitingForOperand).To(BeFalse())
	g.Expect(s.LastAction).To(Equal(KindClear))
}

func TestAddThenEquals(t *testing.T) {
	e, rec := newRecordedEngine()
	e.InputDigit(5)
	e.PerformOperation(Add)
	e.InputDigit(3)
	e.Equals()

	s := e.Snapshot()
	if s.DisplayValue != "8" {
		t.Fatalf("expected display %q, got %q", "8", s.DisplayValue)
	}
	if !s.WaitingForOperand || s.Operator != NoOperator || s.CurrentValue != nil || s.StoredValue != nil {
		t.Fatalf("expected reset chain after equals, got %+v", s)
	}
	if s.LastAction != KindEquals {
		t.Fatalf("expected last action %q, got %q", KindEquals, s.LastAction)
	}

	if len(rec.calcs) != 1 {
		t.Fatalf("expected 1 calculation, got %d", len(rec.calcs))
	}
	want := Calculation{Expression: "5 + 3", Result: 8, Operator: Add}
	if rec.calcs[0] != want {
		t.Fatalf("expected %+v, got %+v", want, rec.calcs[0])
	}
}

func TestDivideByZeroYieldsInfinity(t *testing.T) {
	e, rec := newRecordedEngine()
	e.InputDigit(1)
	e.InputDigit(0)
	e.PerformOperation(Divide)
	e.InputDigit(0)
	e.Equals()

	if got := e.Snapshot().DisplayValue; got != "Infinity" {
		t.Fatalf("expected display %q, got %q", "Infinity", got)
	}
	if len(rec.calcs) != 1 || !math.IsInf(rec.calcs[0].Result, 1) {
		t.Fatalf("expected one +Inf calculation, got %+v", rec.calcs)
	}
	if rec.calcs[0].Expression != "10 ÷ 0" {
		t.Fatalf("expected expression %q, got %q", "10 ÷ 0", rec.calcs[0].Expression)
	}
}

func TestZeroDividedByZeroYieldsNaN(t *testing.T) {
	e, rec := newRecordedEngine()
	e.PerformOperation(Divide)
	e.InputDigit(0)
	e.Equals()

	if got := e.Snapshot().DisplayValue; got != "NaN" {
		t.Fatalf("expected display %q, got %q", "NaN", got)
	}
	if len(rec.calcs) != 1 || !math.IsNaN(rec.calcs[0].Result) {
		t.Fatalf("expected one NaN calculation, got %+v", rec.calcs)
	}
}

func TestChainedOperatorsEmitIntermediateCalculations(t *testing.T) {
	g := NewWithT(t)

	e, rec := newRecordedEngine()
	e.InputDigit(2)
	e.PerformOperation(Add)
	e.InputDigit(3)
	e.PerformOperation(Multiply)

	g.Expect(rec.calcs).To(Equal([]Calculation{{Expression: "2 + 3", Result: 5, Operator: Add}}))
	g.Expect(e.Snapshot().DisplayValue).To(Equal("5"))

	e.InputDigit(4)
	e.Equals()

	g.Expect(e.Snapshot().DisplayValue).To(Equal("20"))
	g.Expect(rec.calcs).To(HaveLen(2))
	g.Expect(rec.calcs[1]).To(Equal(Calculation{Expression: "5 × 4", Result: 20, Operator: Multiply}))
}

func TestPerformOperationStoresTypedOperand(t *testing.T) {
	e, rec := newRecordedEngine()
	e.InputDigit(2)
	e.PerformOperation(Add)
	e.InputDigit(3)
	e.PerformOperation(Multiply)

	s := e.Snapshot()
	if s.StoredValue == nil || *s.StoredValue != 3 {
		t.Fatalf("expected stored value 3, got %v", s.StoredValue)
	}
	if got := s.PendingHint(); got != "3 ×" {
		t.Fatalf("expected hint %q, got %q", "3 ×", got)
	}

	e.InputDigit(4)
	e.PerformOperation(Subtract)

	if len(rec.calcs) != 2 {
		t.Fatalf("expected 2 calculations, got %d", len(rec.calcs))
	}
	if got := rec.calcs[1]; got.Expression != "3 × 4" || got.Result != 20 {
		t.Fatalf("unexpected second calculation %+v", got)
	}
}

func TestRepeatedOperatorAppliesDisplayedValue(t *testing.T) {
	e, rec := newRecordedEngine()
	e.InputDigit(5)
	e.PerformOperation(Add)
	e.PerformOperation(Add)

	if got := e.Snapshot().DisplayValue; got != "10" {
		t.Fatalf("expected %q, got %q", "10", got)
	}
	if len(rec.calcs) != 1 || rec.calcs[0].Expression != "5 + 5" {
		t.Fatalf("unexpected calculations %+v", rec.calcs)
	}
}

func TestEqualsWithoutOperatorIsNoOp(t *testing.T) {
	changes := 0
	e, rec := newRecordedEngine()
	WithChangeHandler(func(State) { changes++ })(e)

	e.InputDigit(9)
	before := e.Snapshot()
	e.Equals()

	if got := e.Snapshot(); got.DisplayValue != before.DisplayValue || got.LastAction != before.LastAction {
		t.Fatalf("expected unchanged state, got %+v", got)
	}
	if len(rec.calcs) != 0 {
		t.Fatalf("expected no calculations, got %+v", rec.calcs)
	}
	if changes != 1 {
		t.Fatalf("expected 1 change notification, got %d", changes)
	}
}

func TestPercentage(t *testing.T) {
	e, rec := newRecordedEngine()
	e.InputDigit(5)
	e.InputDigit(0)
	e.Percentage()

	s := e.Snapshot()
	if s.DisplayValue != "0.5" {
		t.Fatalf("expected %q, got %q", "0.5", s.DisplayValue)
	}
	if !s.WaitingForOperand {
		t.Fatal("expected waitingForOperand true")
	}
	if s.LastAction != KindPercent {
		t.Fatalf("expected last action %q, got %q", KindPercent, s.LastAction)
	}
	if len(rec.calcs) != 0 {
		t.Fatalf("expected no calculations, got %+v", rec.calcs)
	}

	e.InputDigit(7)
	if got := e.Snapshot().DisplayValue; got != "7" {
		t.Fatalf("expected next digit to start fresh, got %q", got)
	}
}

func TestPercentageKeepsPendingOperation(t *testing.T) {
	e, rec := newRecordedEngine()
	e.InputDigit(2)
	e.InputDigit(0)
	e.InputDigit(0)
	e.PerformOperation(Multiply)
	e.InputDigit(1)
	e.InputDigit(0)
	e.Percentage()
	e.Equals()

	if got := e.Snapshot().DisplayValue; got != "20" {
		t.Fatalf("expected %q, got %q", "20", got)
	}
	if rec.calcs[0].Expression != "200 × 0.1" {
		t.Fatalf("expected expression %q, got %q", "200 × 0.1", rec.calcs[0].Expression)
	}
}

func TestFloatingPointNoiseIsNotRounded(t *testing.T) {
	e := NewEngine()
	e.InputDecimal()
	e.InputDigit(1)
	e.PerformOperation(Add)
	e.InputDecimal()
	e.InputDigit(2)
	e.Equals()

	if got := e.Snapshot().DisplayValue; got != "0.30000000000000004" {
		t.Fatalf("expected %q, got %q", "0.30000000000000004", got)
	}
}

func TestChangeHandlerReceivesSnapshots(t *testing.T) {
	var seen []string
	e := NewEngine(WithChangeHandler(func(s State) {
		seen = append(seen, s.DisplayValue)
	}))

	e.InputDigit(1)
	e.InputDigit(2)
	e.PerformOperation(Add)
	e.DeleteLastChar()
	e.InputDigit(3)
	e.Equals()

	want := []string{"1", "12", "12", "3", "15"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, seen)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := NewEngine()
	e.InputDigit(4)
	e.PerformOperation(Add)

	s := e.Snapshot()
	*s.CurrentValue = 100
	*s.StoredValue = 100

	e.InputDigit(1)
	e.Equals()
	if got := e.Snapshot().DisplayValue; got != "5" {
		t.Fatalf("expected %q, got %q", "5", got)
	}
}

func TestWithStateResumes(t *testing.T) {
	e := NewEngine()
	e.InputDigit(8)
	e.PerformOperation(Subtract)
	e.InputDigit(3)

	resumed, rec := newRecordedEngine()
	WithState(e.Snapshot())(resumed)
	resumed.Equals()

	if got := resumed.Snapshot().DisplayValue; got != "5" {
		t.Fatalf("expected %q, got %q", "5", got)
	}
	if len(rec.calcs) != 1 || rec.calcs[0].Expression != "8 - 3" {
		t.Fatalf("unexpected calculations %+v", rec.calcs)
	}
}

func TestDispatchMatchesDirectCalls(t *testing.T) {
	e := NewEngine()
	for _, a := range []Action{
		Digit(1), Digit(2), {Type: ActionDecimal}, Digit(5),
		Op(Divide), Digit(4), {Type: ActionEquals},
	} {
		e.Dispatch(a)
	}

	if got := e.Snapshot().DisplayValue; got != "3.125" {
		t.Fatalf("expected %q, got %q", "3.125", got)
	}
}

func drawAction(rt *rapid.T, label string) Action {
	return rapid.OneOf(
		rapid.Map(rapid.IntRange(0, 9), Digit),
		rapid.Map(rapid.SampledFrom([]Operator{Add, Subtract, Multiply, Divide}), Op),
		rapid.Map(rapid.SampledFrom([]ActionType{
			ActionDecimal, ActionClear, ActionClearEntry, ActionDelete, ActionPercent, ActionEquals,
		}), func(t ActionType) Action { return Action{Type: t} }),
	).Draw(rt, label)
}

func TestDigitsConcatenateProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		digits := rapid.SliceOfN(rapid.IntRange(0, 9), 1, 15).Draw(rt, "digits")

		e := NewEngine()
		var b strings.Builder
		for _, d := range digits {
			e.InputDigit(d)
			b.WriteByte(byte('0' + d))
		}

		want := strings.TrimLeft(b.String(), "0")
		if want == "" {
			want = "0"
		}
		if got := e.Snapshot().DisplayValue; got != want {
			rt.Fatalf("digits %v: expected %q, got %q", digits, want, got)
		}
	})
}

func TestStateInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEngine()
		n := rapid.IntRange(1, 40).Draw(rt, "n")

		for i := 0; i < n; i++ {
			e.Dispatch(drawAction(rt, "action"))

			s := e.Snapshot()
			if s.DisplayValue == "" {
				rt.Fatal("display must never be empty")
			}
			if strings.Count(s.DisplayValue, ".") > 1 {
				rt.Fatalf("display %q has more than one decimal point", s.DisplayValue)
			}
			if (s.StoredValue == nil) != (s.Operator == NoOperator) {
				rt.Fatalf("stored value and operator out of step: %+v", s)
			}
		}
	})
}

func TestReplayIsDeterministicProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		prefix := rapid.SliceOfN(rapid.Custom(func(rt *rapid.T) Action { return drawAction(rt, "a") }), 0, 20).Draw(rt, "prefix")
		suffix := rapid.SliceOfN(rapid.Custom(func(rt *rapid.T) Action { return drawAction(rt, "a") }), 0, 20).Draw(rt, "suffix")

		e := NewEngine()
		for _, a := range prefix {
			e.Dispatch(a)
		}
		resumed := NewEngine(WithState(e.Snapshot()))

		fresh := NewEngine()
		for _, a := range prefix {
			fresh.Dispatch(a)
		}

		for _, a := range suffix {
			e.Dispatch(a)
			resumed.Dispatch(a)
			fresh.Dispatch(a)
		}

		got := []string{e.Snapshot().DisplayValue, resumed.Snapshot().DisplayValue, fresh.Snapshot().DisplayValue}
		if got[0] != got[1] || got[0] != got[2] {
			rt.Fatalf("diverging displays %v", got)
		}
	})
}
