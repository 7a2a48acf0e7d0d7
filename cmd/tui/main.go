package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/flux/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/flux/internal/app"
	"github.com/MrJamesThe3rd/flux/internal/config"
)

type model struct {
	svc view.Service

	currentView View

	addView    view.AddModel
	listView   view.ListModel
	syncView   view.SyncModel
	importView view.ImportModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewAdd    View = 1
	ViewList   View = 2
	ViewSync   View = 3
	ViewImport View = 4
	ViewExport View = 5
)

func initialModel(svc view.Service) model {
	return model{
		svc:         svc,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewAdd
				m.addView = view.NewAddModel(m.svc)

				return m, m.addView.Init()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.svc)

				return m, m.listView.Init()
			case "3":
				m.currentView = ViewSync
				m.syncView = view.NewSyncModel(m.svc)

				return m, m.syncView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.svc)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.svc)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewSync:
		var newModel tea.Model
		newModel, cmd = m.syncView.Update(msg)
		m.syncView = newModel.(view.SyncModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Flux\n\n" +
				"1. Add Transaction\n" +
				"2. List Transactions\n" +
				"3. Sync\n" +
				"4. Import Transactions\n" +
				"5. Export Transactions\n\n" +
				"q. Quit",
		)
	case ViewAdd:
		return m.addView.View()
	case ViewList:
		return m.listView.View()
	case ViewSync:
		return m.syncView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file next to the store.
	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(cfg.Local.Path), "flux-tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, nil))

	ctx := context.Background()

	flux, err := app.Bootstrap(ctx, cfg, logger, nil)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer flux.Close()

	for name, err := range flux.SyncReady(ctx) {
		logger.Warn("startup sync failed", "adapter", name, "error", err)
	}

	p := tea.NewProgram(initialModel(flux))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
