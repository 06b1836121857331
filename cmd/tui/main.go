package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/upkeep/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activitystore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/config"
	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	dashboardstore "github.com/MrJamesThe3rd/upkeep/internal/dashboard/store"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	estimatestore "github.com/MrJamesThe3rd/upkeep/internal/estimate/store"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	invoicestore "github.com/MrJamesThe3rd/upkeep/internal/invoice/store"
)

type model struct {
	session    view.Session
	dashboard  *dashboard.Service
	invoices   *invoice.Service
	estimates  *estimate.Service
	activities *activity.Service

	currentView View

	dashboardView  view.DashboardModel
	settlementView view.SettlementModel
	conversionView view.ConversionModel
	activityView   view.ActivityModel
}

type View int

const (
	ViewMenu       View = 0
	ViewDashboard  View = 1
	ViewSettlement View = 2
	ViewConversion View = 3
	ViewActivity   View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), database.Options{
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	return model{
		session:     view.Session{Operator: auth.Operator(operatorName())},
		dashboard:   dashboard.NewService(dashboardstore.New(db)),
		invoices:    invoice.NewService(invoicestore.New(db)),
		estimates:   estimate.NewService(estimatestore.New(db)),
		activities:  activity.NewService(activitystore.New(db)),
		currentView: ViewMenu,
	}
}

func operatorName() string {
	return os.Getenv("USER")
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.session, m.dashboard)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewSettlement
				m.settlementView = view.NewSettlementModel(m.session, m.invoices)

				return m, m.settlementView.Init()
			case "3":
				m.currentView = ViewConversion
				m.conversionView = view.NewConversionModel(m.session, m.estimates)

				return m, m.conversionView.Init()
			case "4":
				m.currentView = ViewActivity
				m.activityView = view.NewActivityModel(m.session, m.activities)

				return m, m.activityView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewSettlement:
		var newModel tea.Model
		newModel, cmd = m.settlementView.Update(msg)
		m.settlementView = newModel.(view.SettlementModel)
	case ViewConversion:
		var newModel tea.Model
		newModel, cmd = m.conversionView.Update(msg)
		m.conversionView = newModel.(view.ConversionModel)
	case ViewActivity:
		var newModel tea.Model
		newModel, cmd = m.activityView.Update(msg)
		m.activityView = newModel.(view.ActivityModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Upkeep\n\n" +
				"1. Dashboard\n" +
				"2. Settle Invoices\n" +
				"3. Convert Estimates\n" +
				"4. Activity Feed\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewSettlement:
		return m.settlementView.View()
	case ViewConversion:
		return m.conversionView.View()
	case ViewActivity:
		return m.activityView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
