package view_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

var session = view.Session{Operator: auth.Operator("tester")}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive runs cmd and feeds its message back into m.
func drive(t *testing.T, m tea.Model, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)

	return m.Update(cmd())
}

type fakeSettler struct {
	invoices []*invoice.Invoice
	quick    []uuid.UUID
	settled  []invoice.SettleParams
	actor    auth.Principal
}

func (f *fakeSettler) List(ctx context.Context, _ invoice.ListFilter) ([]*invoice.Invoice, error) {
	f.actor, _ = auth.FromContext(ctx)
	return f.invoices, nil
}

func (f *fakeSettler) QuickSettle(_ context.Context, id uuid.UUID) (*invoice.QuickSettleResult, error) {
	f.quick = append(f.quick, id)

	return &invoice.QuickSettleResult{SettleResult: invoice.SettleResult{
		Invoice: &invoice.Invoice{ID: id, Status: invoice.StatusPaid, AmountCents: 40000},
		Payment: &invoice.Payment{AmountCents: 40000},
	}}, nil
}

func (f *fakeSettler) Settle(_ context.Context, params invoice.SettleParams) (*invoice.SettleResult, error) {
	f.settled = append(f.settled, params)
	return nil, errors.New("unexpected settle")
}

func TestSettlementModel_QuickSettle(t *testing.T) {
	open := &invoice.Invoice{ID: uuid.New(), Number: "INV-20261019-001", Status: invoice.StatusSent, AmountCents: 40000}
	settler := &fakeSettler{invoices: []*invoice.Invoice{
		{ID: uuid.New(), Number: "INV-20261001-001", Status: invoice.StatusPaid, AmountCents: 1000},
		open,
	}}

	m := view.NewSettlementModel(session, settler)
	var model tea.Model = m

	model, _ = drive(t, model, m.Init())
	assert.Equal(t, "tester", settler.actor.Name)
	assert.Contains(t, model.View(), "Settlement queue (1 open)")
	assert.Contains(t, model.View(), "$400.00")

	model, cmd := model.Update(key("s"))
	model, _ = drive(t, model, cmd)

	assert.Equal(t, []uuid.UUID{open.ID}, settler.quick)
	assert.Contains(t, model.View(), "INV-20261019-001 settled with $400.00")
}

func TestSettlementModel_Empty(t *testing.T) {
	m := view.NewSettlementModel(session, &fakeSettler{})

	model, _ := drive(t, m, m.Init())
	assert.Contains(t, model.View(), "No open invoices.")

	model, cmd := model.Update(key("s"))
	assert.Nil(t, cmd)
	assert.Contains(t, model.View(), "No open invoices.")
}

type fakeConverter struct {
	estimates []*estimate.Estimate
	converted []uuid.UUID
	err       error
}

func (f *fakeConverter) List(context.Context, estimate.ListFilter) ([]*estimate.Estimate, error) {
	return f.estimates, nil
}

func (f *fakeConverter) Convert(_ context.Context, id uuid.UUID) (*estimate.ConversionResult, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.converted = append(f.converted, id)

	return &estimate.ConversionResult{WorkOrder: &workorder.WorkOrder{Code: "WO-20261019-001"}}, nil
}

func TestConversionModel(t *testing.T) {
	approved := &estimate.Estimate{ID: uuid.New(), Number: "EST-20261019-002", Title: "Roof repair", Status: estimate.StatusApproved, AmountCents: 125000}
	conv := &fakeConverter{estimates: []*estimate.Estimate{
		{ID: uuid.New(), Number: "EST-20261019-001", Status: estimate.StatusConverted},
		{ID: uuid.New(), Number: "EST-20261019-003", Status: estimate.StatusRejected},
		approved,
	}}

	m := view.NewConversionModel(session, conv)
	model, _ := drive(t, m, m.Init())

	out := model.View()
	assert.Contains(t, out, "Convert estimates (1)")
	assert.Contains(t, out, "Roof repair")
	assert.NotContains(t, out, "EST-20261019-001")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, _ = drive(t, model, cmd)

	assert.Equal(t, []uuid.UUID{approved.ID}, conv.converted)
	assert.Contains(t, model.View(), "EST-20261019-002 converted to work order WO-20261019-001")
}

func TestConversionModel_Error(t *testing.T) {
	conv := &fakeConverter{
		estimates: []*estimate.Estimate{{ID: uuid.New(), Number: "EST-1", Status: estimate.StatusDraft}},
		err:       estimate.ErrNotConvertible,
	}

	m := view.NewConversionModel(session, conv)
	model, _ := drive(t, m, m.Init())

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, _ = drive(t, model, cmd)

	assert.Contains(t, model.View(), "Error: estimate cannot be converted")
}

type summaryFunc func(ctx context.Context, now time.Time) (*dashboard.Summary, error)

func (f summaryFunc) Summary(ctx context.Context, now time.Time) (*dashboard.Summary, error) {
	return f(ctx, now)
}

func TestDashboardModel(t *testing.T) {
	source := summaryFunc(func(context.Context, time.Time) (*dashboard.Summary, error) {
		return &dashboard.Summary{
			GeneratedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
			Pipelines: &dashboard.Pipelines{
				Leads: []dashboard.StatusCount{{Status: "new", Count: 7}},
			},
			TopClients: []*dashboard.ClientRevenue{{Name: "Harbor HOA", PaidCents: 250000, InvoiceCount: 3}},
			Overdue: []*dashboard.OverdueInvoice{{
				Invoice:      &invoice.Invoice{Number: "INV-20260801-004", AmountCents: 100000},
				ClientName:   "Pine Court",
				SettledCents: 40000,
				DaysOverdue:  12,
			}},
		}, nil
	})

	m := view.NewDashboardModel(session, source)
	assert.Contains(t, m.View(), "Loading dashboard")

	model, _ := drive(t, m, m.Init())
	out := model.View()

	assert.Contains(t, out, "Harbor HOA")
	assert.Contains(t, out, "$2,500.00")
	assert.Contains(t, out, "Pine Court")
	assert.Contains(t, out, "$600.00")
}

func TestDashboardModel_Error(t *testing.T) {
	m := view.NewDashboardModel(session, summaryFunc(func(context.Context, time.Time) (*dashboard.Summary, error) {
		return nil, errors.New("db down")
	}))

	model, _ := drive(t, m, m.Init())
	assert.Contains(t, model.View(), "Error: db down")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, view.BackMsg{}, cmd())
}
