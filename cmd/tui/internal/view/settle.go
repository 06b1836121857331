package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
)

type Settler interface {
	List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error)
	QuickSettle(ctx context.Context, id uuid.UUID) (*invoice.QuickSettleResult, error)
	Settle(ctx context.Context, params invoice.SettleParams) (*invoice.SettleResult, error)
}

type settleState int

const (
	settleStateBrowse settleState = iota
	settleStatePayment
)

// paymentFields lives on the heap so the form keeps writing to it across model copies.
type paymentFields struct {
	Amount string
	Ref    string
	Notes  string
}

// SettlementModel is the queue of open invoices waiting for money.
type SettlementModel struct {
	CommonModel
	session Session
	settler Settler

	state    settleState
	table    table.Model
	invoices []*invoice.Invoice
	form     *huh.Form
	fields   *paymentFields

	loading bool
	err     error
	status  string
}

func NewSettlementModel(session Session, settler Settler) SettlementModel {
	columns := []table.Column{
		{Title: "Number", Width: 18},
		{Title: "Status", Width: 10},
		{Title: "Amount", Width: 14},
		{Title: "Due", Width: 12},
	}

	return SettlementModel{
		session: session,
		settler: settler,
		table:   newTable(columns, 15),
		loading: true,
	}
}

func (m SettlementModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SettlementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case openInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case settledMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = settleStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == settleStatePayment {
		return m.updatePayment(msg)
	}

	return m.updateBrowse(msg)
}

func (m SettlementModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			if inv := m.selected(); inv != nil {
				return m, m.quickSettleCmd(inv)
			}

			return m, nil
		case "p":
			return m.enterPaymentMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SettlementModel) enterPaymentMode() (tea.Model, tea.Cmd) {
	if m.selected() == nil {
		return m, nil
	}

	m.fields = &paymentFields{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("250.00").
				Value(&m.fields.Amount).
				Validate(func(s string) error {
					cents, err := money.Parse(s)
					if err != nil {
						return err
					}

					if cents <= 0 {
						return fmt.Errorf("amount must be positive")
					}

					return nil
				}),

			huh.NewInput().
				Key("external_ref").
				Title("Reference").
				Placeholder("check or transfer number").
				Value(&m.fields.Ref),

			huh.NewText().
				Key("notes").
				Title("Notes").
				Value(&m.fields.Notes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = settleStatePayment
	m.table.Blur()

	return m, m.form.Init()
}

func (m SettlementModel) updatePayment(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = settleStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.settleCmd(m.selected(), *m.fields)
}

func (m SettlementModel) View() string {
	if m.loading {
		return frame("Loading open invoices...")
	}

	if m.err != nil {
		return frame(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(r to retry, Esc to back)")
	}

	if len(m.invoices) == 0 {
		return frame(m.statusLine() + "No open invoices.\n\n(Esc to back)")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Settlement queue (%d open)", len(m.invoices))),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
		statusStyle.Render("s: quick settle | p: record payment | r: refresh | Esc: back"),
	)

	if m.state == settleStatePayment && m.form != nil {
		inv := m.selected()
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Payment for %s (%s)\n\n%s", inv.Number, money.Format(inv.AmountCents), m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return frame(m.statusLine() + content)
}

func (m SettlementModel) statusLine() string {
	if m.status == "" {
		return ""
	}

	return statusStyle.Render(m.status) + "\n"
}

func (m SettlementModel) selected() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return nil
	}

	return m.invoices[idx]
}

func (m *SettlementModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		rows = append(rows, table.Row{
			inv.Number,
			string(inv.Status),
			money.Format(inv.AmountCents),
			FormatDate(inv.DueAt),
		})
	}

	m.table.SetRows(rows)
}

type openInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m SettlementModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.session.Ctx()
		defer cancel()

		all, err := m.settler.List(ctx, invoice.ListFilter{})
		if err != nil {
			return openInvoicesMsg{err: err}
		}

		open := make([]*invoice.Invoice, 0, len(all))
		for _, inv := range all {
			if inv.Status.Open() {
				open = append(open, inv)
			}
		}

		return openInvoicesMsg{invoices: open}
	}
}

type settledMsg struct {
	text string
	err  error
}

func (m SettlementModel) quickSettleCmd(inv *invoice.Invoice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.session.Ctx()
		defer cancel()

		res, err := m.settler.QuickSettle(ctx, inv.ID)
		if err != nil {
			return settledMsg{err: err}
		}

		if res.AlreadySettled {
			return settledMsg{text: fmt.Sprintf("%s was already settled", inv.Number)}
		}

		return settledMsg{text: fmt.Sprintf("%s settled with %s", inv.Number, money.Format(res.Payment.AmountCents))}
	}
}

func (m SettlementModel) settleCmd(inv *invoice.Invoice, fields paymentFields) tea.Cmd {
	if inv == nil {
		return nil
	}

	return func() tea.Msg {
		cents, err := money.Parse(fields.Amount)
		if err != nil {
			return settledMsg{err: err}
		}

		ctx, cancel := m.session.Ctx()
		defer cancel()

		res, err := m.settler.Settle(ctx, invoice.SettleParams{
			InvoiceID:   inv.ID,
			AmountCents: cents,
			ExternalRef: fields.Ref,
			Notes:       fields.Notes,
		})
		if err != nil {
			return settledMsg{err: err}
		}

		return settledMsg{text: fmt.Sprintf("%s is %s, balance %s", inv.Number, res.Invoice.Status, money.Format(res.BalanceCents()))}
	}
}
