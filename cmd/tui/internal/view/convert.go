package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
)

type Converter interface {
	List(ctx context.Context, filter estimate.ListFilter) ([]*estimate.Estimate, error)
	Convert(ctx context.Context, id uuid.UUID) (*estimate.ConversionResult, error)
}

// ConversionModel lists estimates that can still become work orders.
type ConversionModel struct {
	CommonModel
	session   Session
	converter Converter

	table     table.Model
	estimates []*estimate.Estimate

	loading bool
	err     error
	status  string
}

func NewConversionModel(session Session, converter Converter) ConversionModel {
	columns := []table.Column{
		{Title: "Number", Width: 18},
		{Title: "Title", Width: 36},
		{Title: "Status", Width: 10},
		{Title: "Amount", Width: 14},
	}

	return ConversionModel{
		session:   session,
		converter: converter,
		table:     newTable(columns, 15),
		loading:   true,
	}
}

func (m ConversionModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ConversionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case convertibleMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.estimates = msg.estimates
		m.refreshTable()

		return m, nil

	case convertedMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter", "c":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.estimates) {
				return m, m.convertCmd(m.estimates[idx])
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ConversionModel) View() string {
	if m.loading {
		return frame("Loading estimates...")
	}

	if m.err != nil {
		return frame(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(r to retry, Esc to back)")
	}

	status := ""
	if m.status != "" {
		status = statusStyle.Render(m.status) + "\n"
	}

	if len(m.estimates) == 0 {
		return frame(status + "No estimates waiting for conversion.\n\n(Esc to back)")
	}

	return frame(status + lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Convert estimates (%d)", len(m.estimates))),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
		statusStyle.Render("Enter: convert to work order | r: refresh | Esc: back"),
	))
}

func (m *ConversionModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.estimates))
	for _, est := range m.estimates {
		rows = append(rows, table.Row{
			est.Number,
			est.Title,
			string(est.Status),
			money.Format(est.AmountCents),
		})
	}

	m.table.SetRows(rows)
}

type convertibleMsg struct {
	estimates []*estimate.Estimate
	err       error
}

func (m ConversionModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.session.Ctx()
		defer cancel()

		all, err := m.converter.List(ctx, estimate.ListFilter{})
		if err != nil {
			return convertibleMsg{err: err}
		}

		pending := make([]*estimate.Estimate, 0, len(all))
		for _, est := range all {
			if est.Status.Convertible() {
				pending = append(pending, est)
			}
		}

		return convertibleMsg{estimates: pending}
	}
}

type convertedMsg struct {
	text string
	err  error
}

func (m ConversionModel) convertCmd(est *estimate.Estimate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.session.Ctx()
		defer cancel()

		res, err := m.converter.Convert(ctx, est.ID)
		if err != nil {
			return convertedMsg{err: err}
		}

		if res.AlreadyConverted {
			return convertedMsg{text: fmt.Sprintf("%s was already converted to %s", est.Number, res.WorkOrder.Code)}
		}

		return convertedMsg{text: fmt.Sprintf("%s converted to work order %s", est.Number, res.WorkOrder.Code)}
	}
}
