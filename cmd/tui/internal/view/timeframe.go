package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// Timeframe is a predefined or custom date range over transaction dates.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Range is an inclusive span of calendar dates. The zero Range matches
// every date.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) All() bool { return r.Start.IsZero() && r.End.IsZero() }

func (r Range) Contains(date time.Time) bool {
	if r.All() {
		return true
	}

	return !date.Before(r.Start) && !date.After(r.End)
}

func (r Range) String() string {
	if r.All() {
		return "All Time"
	}

	return transaction.FormatDate(r.Start) + " to " + transaction.FormatDate(r.End)
}

// Filter keeps the transactions dated within r.
func (r Range) Filter(txs []transaction.Transaction) []transaction.Transaction {
	if r.All() {
		return txs
	}

	out := make([]transaction.Transaction, 0, len(txs))
	for _, tx := range txs {
		if r.Contains(tx.Date) {
			out = append(out, tx)
		}
	}

	return out
}

// TimeframeRange resolves tf against now. Custom and All yield the zero Range.
func TimeframeRange(tf Timeframe, now time.Time) Range {
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch tf {
	case TimeframeThisMonth:
		return Range{Start: month, End: month.AddDate(0, 1, -1)}
	case TimeframeLastMonth:
		last := month.AddDate(0, -1, 0)
		return Range{Start: last, End: month.AddDate(0, 0, -1)}
	case TimeframeThisYear:
		return Range{
			Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	}

	return Range{}
}

// TimeframeSelectedMsg is emitted when the user has picked a range.
type TimeframeSelectedMsg struct {
	Range     Range
	Timeframe Timeframe
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// customRange holds the bindings of the custom range form.
type customRange struct {
	start string
	end   string
}

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	now      func() time.Time

	custom *customRange
	form   *huh.Form
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	return TimeframePicker{
		state:    timeframeStateSelect,
		selected: initial,
		now:      time.Now,
		custom:   &customRange{},
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if m.state == timeframeStateCustom {
		return m.updateCustom(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.form = buildRangeForm(m.custom)

			return m, m.form.Init()
		}

		selected := TimeframeSelectedMsg{Range: TimeframeRange(m.selected, m.now()), Timeframe: m.selected}

		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = timeframeStateSelect
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	// Both fields validated already.
	r, _ := parseRange(m.custom.start, m.custom.end)
	m.state = timeframeStateSelect
	m.form = nil
	selected := TimeframeSelectedMsg{Range: r, Timeframe: TimeframeCustom}

	return m, func() tea.Msg { return selected }
}

func buildRangeForm(c *customRange) *huh.Form {
	validDate := func(s string) error {
		if _, err := transaction.ParseDate(s); err != nil {
			return errors.New("use YYYY-MM-DD")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("start").
				Title("Start Date").
				Placeholder("YYYY-MM-DD").
				CharLimit(10).
				Value(&c.start).
				Validate(validDate),

			huh.NewInput().
				Key("end").
				Title("End Date").
				Placeholder("YYYY-MM-DD").
				CharLimit(10).
				Value(&c.end).
				Validate(func(s string) error {
					if err := validDate(s); err != nil {
						return err
					}
					_, err := parseRange(c.start, s)
					return err
				}),
		),
	).WithWidth(30).WithShowHelp(false)
}

func parseRange(start, end string) (Range, error) {
	s, err := transaction.ParseDate(start)
	if err != nil {
		return Range{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	e, err := transaction.ParseDate(end)
	if err != nil {
		return Range{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if e.Before(s) {
		return Range{}, errors.New("end date is before start date")
	}

	return Range{Start: s, End: e}, nil
}

func (m TimeframePicker) View() string {
	if m.state == timeframeStateCustom {
		return "Enter Custom Range:\n\n" + m.form.View() + "\n\n(Esc to back)"
	}

	var b strings.Builder

	b.WriteString("Select Timeframe:\n\n")

	for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, tf)
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	return b.String()
}

// IsSelecting reports whether the picker is showing the preset list.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.form = nil
	m.custom = &customRange{}
}
