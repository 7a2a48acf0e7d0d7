package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/flux/internal/orchestrator"
	"github.com/MrJamesThe3rd/flux/internal/remote"
)

type syncState int

const (
	syncStateList syncState = iota
	syncStateConnect
	syncStateBusy
)

type SyncModel struct {
	CommonModel
	svc Service

	state    syncState
	adapters []string
	cursor   int

	urlInput textinput.Model
	spinner  spinner.Model

	status string
	err    error
}

func NewSyncModel(svc Service) SyncModel {
	ti := textinput.New()
	ti.Placeholder = "https://docs.google.com/spreadsheets/d/..."
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return SyncModel{
		svc:      svc,
		adapters: svc.Adapters(),
		urlInput: ti,
		spinner:  s,
	}
}

func (m SyncModel) Title() string { return "Sync" }

func (m SyncModel) ShortHelp() string {
	if m.state == syncStateConnect {
		return "Enter: connect | Esc: cancel"
	}

	return "Esc: back | Enter: sync | c: connect spreadsheet | d: disconnect"
}

func (m SyncModel) Init() tea.Cmd {
	return nil
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(syncResultMsg); ok {
		m.state = syncStateList
		m.err = result.err
		m.status = result.describe()

		return m, nil
	}

	switch m.state {
	case syncStateList:
		return m.updateList(msg)
	case syncStateConnect:
		return m.updateConnect(msg)
	case syncStateBusy:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m SyncModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.adapters)-1 {
			m.cursor++
		}
	case "enter", "s":
		if len(m.adapters) == 0 {
			return m, nil
		}

		name := m.adapters[m.cursor]
		m.state = syncStateBusy
		m.status = fmt.Sprintf("Syncing %s...", name)

		return m, tea.Batch(m.spinner.Tick, m.syncCmd(name))
	case "c":
		m.state = syncStateConnect
		m.urlInput.SetValue(m.svc.SpreadsheetID())
		m.urlInput.Focus()

		return m, textinput.Blink
	case "d":
		m.svc.DisconnectSpreadsheet(context.Background())
		m.err = nil
		m.status = "Spreadsheet disconnected."
	}

	return m, nil
}

func (m SyncModel) updateConnect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = syncStateList
			m.urlInput.Blur()

			return m, nil
		case tea.KeyEnter:
			ref := strings.TrimSpace(m.urlInput.Value())
			m.urlInput.Blur()
			m.state = syncStateBusy
			m.status = "Connecting spreadsheet..."

			return m, tea.Batch(m.spinner.Tick, m.connectCmd(ref))
		}
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)

	return m, cmd
}

func (m SyncModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case syncStateConnect:
		return style.Render("Spreadsheet URL or id:\n\n" + m.urlInput.View() + "\n\n(Enter to connect, Esc to cancel)")
	case syncStateBusy:
		return style.Render(m.spinner.View() + " " + m.status)
	}

	var b strings.Builder

	b.WriteString("Backends:\n\n")

	for i, name := range m.adapters {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %-10s %s\n", cursor, name, m.describeAdapter(name))
	}

	if id := m.svc.SpreadsheetID(); id != "" {
		b.WriteString("\nSpreadsheet: " + activeStyle(id) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n")

		if m.err != nil {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(successStyle.Render(m.status))
		}

		b.WriteString("\n")
	}

	return style.Render(b.String())
}

func (m SyncModel) describeAdapter(name string) string {
	if !m.svc.Ready(name) {
		return faintStyle.Render("not connected")
	}

	st, ok := m.svc.Status(name)
	if !ok {
		return "ready, never synced"
	}

	if st.Phase == orchestrator.PhaseFailed {
		return errorStyle.Render(fmt.Sprintf("failed: %v", st.LastErr))
	}

	if st.LastSync.IsZero() {
		return st.Phase.String()
	}

	return fmt.Sprintf("%s, last sync %s", st.Phase, st.LastSync.Local().Format(time.DateTime))
}

type syncResultMsg struct {
	action string
	report *orchestrator.SyncReport
	err    error
}

func (r syncResultMsg) describe() string {
	switch {
	case errors.Is(r.err, orchestrator.ErrPushBack) && r.report != nil:
		return fmt.Sprintf("%s: merged %d records locally, writing back failed: %v", r.action, r.report.Merged, r.err)
	case errors.Is(r.err, remote.ErrUnauthenticated):
		return fmt.Sprintf("%s: sign in required", r.action)
	case r.err != nil:
		return fmt.Sprintf("%s failed: %v", r.action, r.err)
	}

	return fmt.Sprintf("%s: pulled %d, merged %d records", r.action, r.report.Pulled, r.report.Merged)
}

func (m SyncModel) syncCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		report, err := m.svc.Sync(ctx, name)

		return syncResultMsg{action: "Sync " + name, report: report, err: err}
	}
}

func (m SyncModel) connectCmd(ref string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		report, err := m.svc.ConnectSpreadsheet(ctx, ref)

		return syncResultMsg{action: "Connect", report: report, err: err}
	}
}
