package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
)

type Feed interface {
	Recent(ctx context.Context, limit int) ([]*activity.Entry, error)
}

type ActivityModel struct {
	CommonModel
	session Session
	feed    Feed

	table   table.Model
	entries []*activity.Entry

	loading bool
	err     error
}

func NewActivityModel(session Session, feed Feed) ActivityModel {
	columns := []table.Column{
		{Title: "When", Width: 19},
		{Title: "Who", Width: 16},
		{Title: "Action", Width: 22},
		{Title: "Level", Width: 8},
		{Title: "Description", Width: 50},
	}

	return ActivityModel{
		session: session,
		feed:    feed,
		table:   newTable(columns, 20),
		loading: true,
	}
}

func (m ActivityModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ActivityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case feedMsg:
		m.loading = false
		m.entries, m.err = msg.entries, msg.err
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 8)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ActivityModel) View() string {
	if m.loading {
		return frame("Loading activity...")
	}

	if m.err != nil {
		return frame(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(r to retry, Esc to back)")
	}

	return frame(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Recent activity"),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
		statusStyle.Render("r: refresh | Esc: back"),
	))
}

func (m *ActivityModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.ActorName,
			e.Action,
			string(e.Severity),
			e.Description,
		})
	}

	m.table.SetRows(rows)
}

type feedMsg struct {
	entries []*activity.Entry
	err     error
}

func (m ActivityModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.session.Ctx()
		defer cancel()

		entries, err := m.feed.Recent(ctx, activity.DefaultLimit)

		return feedMsg{entries: entries, err: err}
	}
}
