package render

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pkdone/stockticker/internal/tracker"
	"github.com/pkdone/stockticker/pkg/models"
)

// stateMsg carries a tracker state copy into the TUI event loop.
type stateMsg struct {
	state tracker.State
}

// displayModel renders one row per tracked symbol in watch-list order:
// label, separator, value. A value cell is highlighted while the symbol was
// updated less than the recency window ago. Highlighting is only evaluated
// at redraw time; a cell that goes stale between events keeps its style
// until the next event triggers a full redraw. With the expected event
// rate the staleness is imperceptible, but it is an approximation, not a
// guarantee.
type displayModel struct {
	watch  *models.WatchList
	clock  tracker.Clock
	window time.Duration
	state  tracker.State

	titleStyle     lipgloss.Style
	labelStyle     lipgloss.Style
	valueStyle     lipgloss.Style
	highlightStyle lipgloss.Style
	footerStyle    lipgloss.Style
}

func newDisplayModel(watch *models.WatchList, clock tracker.Clock, window time.Duration, snapshot map[string]float64) displayModel {
	state := make(tracker.State, watch.Len())
	for _, sym := range watch.Symbols() {
		state[sym] = tracker.Value{Price: snapshot[sym]}
	}

	return displayModel{
		watch:  watch,
		clock:  clock,
		window: window,
		state:  state,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
		highlightStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("226")),
		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

func (m displayModel) Init() tea.Cmd { return nil }

func (m displayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case stateMsg:
		m.state = msg.state
	}
	return m, nil
}

// highlighted reports whether sym's value cell should use the recency
// style at this redraw.
func (m displayModel) highlighted(sym string) bool {
	v, ok := m.state[sym]
	if !ok || v.UpdatedAt.IsZero() {
		return false
	}
	return m.clock.Now().Sub(v.UpdatedAt) < m.window
}

func (m displayModel) View() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("Stock Prices"))
	b.WriteString("\n\n")

	// Row index is the symbol's fixed position in the watch list.
	for _, sym := range m.watch.Symbols() {
		v := m.state[sym]

		b.WriteString(m.labelStyle.Render(fmt.Sprintf(" %-6s", sym)))
		b.WriteString("| ")

		cell := fmt.Sprintf("%7.0f", v.Price)
		if m.highlighted(sym) {
			b.WriteString(m.highlightStyle.Render(cell))
		} else {
			b.WriteString(m.valueStyle.Render(cell))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footerStyle.Render("press q to quit"))
	b.WriteString("\n")

	return b.String()
}
