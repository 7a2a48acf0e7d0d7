package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateTimeframe
)

var kindFilters = []transaction.Kind{"", transaction.KindExpense, transaction.KindIncome}

type ListModel struct {
	CommonModel
	svc Service

	state  listState
	table  table.Model
	picker TimeframePicker
	txs    []transaction.Transaction

	timeframe Range
	kindIdx   int
	now       func() time.Time
}

func NewListModel(svc Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Kind", Width: 8},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 18},
		{Title: "Label", Width: 30},
		{Title: "Note", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := ListModel{
		svc:    svc,
		table:  t,
		picker: NewTimeframePicker(TimeframeThisMonth),
		now:    time.Now,
	}
	m.timeframe = TimeframeRange(TimeframeThisMonth, m.now())
	m.reload()

	return m
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateTimeframe {
		return "Enter: select | Esc: cancel"
	}

	return "Esc: back | t: timeframe | k: kind filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return nil
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.timeframe = msg.Range
		m.state = listStateBrowse
		m.table.Focus()
		m.reload()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	if m.state == listStateTimeframe {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			m.state = listStateBrowse
			m.table.Focus()

			return m, nil
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.reload()
			return m, nil
		case "t":
			m.state = listStateTimeframe
			m.picker.Reset()
			m.table.Blur()

			return m, nil
		case "k":
			m.kindIdx = (m.kindIdx + 1) % len(kindFilters)
			m.reload()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *ListModel) reload() {
	kind := kindFilters[m.kindIdx]

	m.txs = nil
	for _, tx := range m.timeframe.Filter(m.svc.Transactions()) {
		if kind != "" && tx.Kind != kind {
			continue
		}

		m.txs = append(m.txs, tx)
	}

	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			transaction.FormatDate(tx.Date),
			string(tx.Kind),
			FormatAmount(tx.Amount, tx.Kind),
			tx.Category,
			tx.Label,
			tx.Note,
		})
	}

	m.table.SetRows(rows)
}

func (m ListModel) View() string {
	if m.state == listStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	kindLabel := "All"
	if k := kindFilters[m.kindIdx]; k != "" {
		kindLabel = string(k)
	}

	header := fmt.Sprintf(
		"Filter: [t] %s | [k] Kind: %s",
		activeStyle(m.timeframe.String()),
		activeStyle(kindLabel),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		m.viewSummary(),
	))
}

func (m ListModel) viewSummary() string {
	now := m.now()
	s := m.svc.Summary(now.Year(), now.Month())

	return faintStyle.Render(fmt.Sprintf(
		"%s %d: %d transactions | income %s | expense %s | balance %s",
		s.Month, s.Year, s.Count,
		s.Income.StringFixed(2), s.Expense.StringFixed(2), s.Balance.StringFixed(2),
	))
}
