package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/flux/internal/orchestrator"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

type addState int

const (
	addStateForm addState = iota
	addStateSaving
	addStateResult
)

// addFields holds the form bindings outside the model so copies of the
// model keep writing to the same values.
type addFields struct {
	date     string
	kind     transaction.Kind
	category string
	label    string
	amount   string
	note     string
}

func (f *addFields) params() (transaction.CreateParams, error) {
	date, err := transaction.ParseDate(f.date)
	if err != nil {
		return transaction.CreateParams{}, errors.New("invalid date (YYYY-MM-DD)")
	}

	amount, err := parseAmount(f.amount)
	if err != nil {
		return transaction.CreateParams{}, err
	}

	return transaction.CreateParams{
		Date:     date,
		Label:    strings.TrimSpace(f.label),
		Amount:   amount,
		Kind:     f.kind,
		Category: f.category,
		Note:     strings.TrimSpace(f.note),
	}, nil
}

// parseAmount accepts a decimal comma as well as a point.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("amount must be a number")
	}

	if !d.IsPositive() {
		return decimal.Zero, errors.New("amount must be greater than zero")
	}

	return d, nil
}

type AddModel struct {
	CommonModel
	svc Service

	state   addState
	form    *huh.Form
	fields  *addFields
	spinner spinner.Model

	report *orchestrator.CreateReport
	err    error
}

func NewAddModel(svc Service) AddModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	fields := &addFields{
		date: transaction.FormatDate(time.Now().UTC()),
		kind: transaction.KindExpense,
	}

	return AddModel{
		svc:     svc,
		fields:  fields,
		form:    buildAddForm(fields),
		spinner: s,
	}
}

func buildAddForm(f *addFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&f.date).
				Validate(func(s string) error {
					if _, err := transaction.ParseDate(s); err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),

			huh.NewSelect[transaction.Kind]().
				Key("kind").
				Title("Kind").
				Options(
					huh.NewOption("Expense", transaction.KindExpense),
					huh.NewOption("Income", transaction.KindIncome),
				).
				Value(&f.kind),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				OptionsFunc(func() []huh.Option[string] {
					return huh.NewOptions(transaction.Categories(f.kind)...)
				}, &f.kind).
				Value(&f.category),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("label").
				Title("Label").
				Value(&f.label).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("label cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&f.amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),

			huh.NewText().
				Key("note").
				Title("Note").
				CharLimit(280).
				Value(&f.note),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AddModel) Title() string { return "Add Transaction" }

func (m AddModel) ShortHelp() string {
	if m.state == addStateResult {
		return "Esc: back | n: add another"
	}

	return "Esc: back | Enter/Tab: navigate form"
}

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case addStateForm:
		return m.updateForm(msg)
	case addStateSaving:
		return m.updateSaving(msg)
	case addStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m AddModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	params, err := m.fields.params()
	if err != nil {
		m.state = addStateResult
		m.err = err

		return m, nil
	}

	m.state = addStateSaving

	return m, tea.Batch(m.spinner.Tick, m.saveCmd(params))
}

func (m AddModel) updateSaving(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(addResultMsg); ok {
		m.state = addStateResult
		m.report = result.report
		m.err = result.err

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m AddModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "n":
		next := NewAddModel(m.svc)
		next.fields.date = m.fields.date
		next.fields.kind = m.fields.kind

		return next, next.Init()
	}

	return m, nil
}

func (m AddModel) View() string {
	switch m.state {
	case addStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case addStateSaving:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Saving...")
	case addStateResult:
		return m.viewResult()
	}

	return ""
}

func (m AddModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	lines := []string{successStyle.Render(m.report.Message()), ""}

	for _, o := range m.report.Outcomes {
		switch {
		case !o.Attempted:
			lines = append(lines, faintStyle.Render(fmt.Sprintf("%s: skipped (not connected)", o.Adapter)))
		case o.Err != nil:
			lines = append(lines, errorStyle.Render(fmt.Sprintf("%s: %v", o.Adapter, o.Err)))
		default:
			lines = append(lines, fmt.Sprintf("%s: ok", o.Adapter))
		}
	}

	lines = append(lines, "", "(n to add another, Esc to go back)")

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

type addResultMsg struct {
	report *orchestrator.CreateReport
	err    error
}

func (m AddModel) saveCmd(params transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		report, err := m.svc.AddTransaction(ctx, params)

		return addResultMsg{report: report, err: err}
	}
}
