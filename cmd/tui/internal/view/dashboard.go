package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
)

type SummarySource interface {
	Summary(ctx context.Context, now time.Time) (*dashboard.Summary, error)
}

type DashboardModel struct {
	CommonModel
	session Session
	source  SummarySource
	now     func() time.Time

	summary *dashboard.Summary
	loading bool
	err     error
}

func NewDashboardModel(session Session, source SummarySource) DashboardModel {
	return DashboardModel{
		session: session,
		source:  source,
		now:     time.Now,
		loading: true,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	case summaryMsg:
		m.loading = false
		m.summary, m.err = msg.summary, msg.err
	}

	return m, nil
}

func (m DashboardModel) View() string {
	switch {
	case m.loading:
		return frame("Loading dashboard...")
	case m.err != nil:
		return frame(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(r to retry, Esc to back)")
	}

	s := m.summary

	pipelines := lipgloss.JoinHorizontal(lipgloss.Top,
		pipelineBox("Leads", s.Pipelines.Leads),
		pipelineBox("Estimates", s.Pipelines.Estimates),
		pipelineBox("Work orders", s.Pipelines.WorkOrders),
		pipelineBox("Invoices", s.Pipelines.Invoices),
	)

	revenue := table.New().Border(lipgloss.NormalBorder()).Headers("Month", "Collected")
	for _, r := range s.Revenue {
		revenue.Row(r.Label, money.Format(r.AmountCents))
	}

	clients := table.New().Border(lipgloss.NormalBorder()).Headers("Client", "Paid", "Invoices")
	for _, c := range s.TopClients {
		clients.Row(c.Name, money.Format(c.PaidCents), fmt.Sprint(c.InvoiceCount))
	}

	overdue := table.New().Border(lipgloss.NormalBorder()).Headers("Invoice", "Client", "Balance", "Days")
	for _, o := range s.Overdue {
		overdue.Row(o.Invoice.Number, o.ClientName, money.Format(o.BalanceCents()), fmt.Sprint(o.DaysOverdue))
	}

	return frame(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Dashboard")+statusStyle.Render("  as of "+s.GeneratedAt.Format(time.DateTime)),
		"",
		pipelines,
		lipgloss.JoinHorizontal(lipgloss.Top, revenue.Render(), " ", clients.Render()),
		"Overdue",
		overdue.Render(),
		"",
		statusStyle.Render("r: refresh | Esc: back"),
	))
}

func pipelineBox(title string, counts []dashboard.StatusCount) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))

	for _, c := range counts {
		fmt.Fprintf(&b, "\n%-12s %4d", c.Status, c.Count)
		if c.AmountCents != 0 {
			fmt.Fprintf(&b, "  %s", money.Format(c.AmountCents))
		}
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		MarginRight(1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(b.String())
}

type summaryMsg struct {
	summary *dashboard.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.session.Ctx()
		defer cancel()

		s, err := m.source.Summary(ctx, m.now())

		return summaryMsg{summary: s, err: err}
	}
}
