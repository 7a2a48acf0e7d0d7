package view

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/flux/internal/importer"
)

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

// maxSkippedShown caps the per-line errors listed after an import.
const maxSkippedShown = 10

type ImportModel struct {
	CommonModel
	svc Service

	state      importState
	filePicker filepicker.Model

	result *importer.Result
	status string
	err    error
}

func NewImportModel(svc Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		svc:        svc,
		filePicker: fp,
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err
		m.result = msg.result

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Imported %d transactions (%s).", len(msg.result.Transactions), msg.result.Charset)
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.err = nil
		m.result = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a CSV export to import:\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	var b strings.Builder

	b.WriteString(successStyle.Render(m.status))

	if skipped := m.result.Skipped; len(skipped) > 0 {
		fmt.Fprintf(&b, "\n\nSkipped %d rows:\n", len(skipped))

		for _, row := range skipped[:min(len(skipped), maxSkippedShown)] {
			fmt.Fprintf(&b, "  line %d: %v\n", row.Line, row.Err)
		}

		if len(skipped) > maxSkippedShown {
			fmt.Fprintf(&b, "  ... and %d more\n", len(skipped)-maxSkippedShown)
		}
	}

	b.WriteString("\n\n(Esc to go back)")

	return style.Render(b.String())
}

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := SyncCtx()
		defer cancel()

		result, err := m.svc.Import(ctx, f)

		return importResultMsg{result: result, err: err}
	}
}
