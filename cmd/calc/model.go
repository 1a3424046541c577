package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/history"
	"go-chi-calculator/internal/observability"
)

const recentShown = 5

// model renders one engine and feeds it key presses.
type model struct {
	engine  *calculator.Engine
	history *history.Service // nil when HISTORY_FILE is unset
	recent  []calculator.Calculation
	pending []calculator.Calculation
	err     error
}

func newModel(svc *history.Service) *model {
	m := &model{history: svc}
	m.engine = calculator.NewEngine(calculator.WithCalculationHandler(func(c calculator.Calculation) {
		m.pending = append(m.pending, c)
	}))
	return m
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "c":
		m.engine.ClearEntry()
		return m, nil
	}

	action, ok := calculator.ActionForKey(key.String())
	if !ok {
		return m, nil
	}
	m.engine.Dispatch(action)
	m.flush()

	return m, nil
}

// flush moves completed calculations into the recent list and history.
func (m *model) flush() {
	for _, c := range m.pending {
		m.recent = append([]calculator.Calculation{c}, m.recent...)
		if len(m.recent) > recentShown {
			m.recent = m.recent[:recentShown]
		}

		if m.history == nil {
			continue
		}
		if err := m.history.Record(context.Background(), c); err != nil {
			m.err = err
			observability.Logger.Error("recording calculation", zap.Error(err))
		}
	}
	m.pending = nil
}

func (m *model) View() string {
	s := m.engine.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "%24s\n", s.PendingHint())
	fmt.Fprintf(&b, "%24s\n", s.DisplayValue)
	b.WriteString(strings.Repeat("─", 24) + "\n")

	for _, c := range m.recent {
		fmt.Fprintf(&b, "%s = %s\n", c.Expression, calculator.FormatNumber(c.Result))
	}

	if m.err != nil {
		fmt.Fprintf(&b, "\nhistory error: %v\n", m.err)
	}
	b.WriteString("\n0-9 . + - * / % enter · backspace · esc clear · c clear entry · q quit\n")
	return b.String()
}
