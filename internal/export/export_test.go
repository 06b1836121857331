package export_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/export"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

var (
	clientID  = uuid.MustParse("6f1c2a4e-0d1b-4c3e-9a5f-2b7d8e9f0a11")
	leadID    = uuid.MustParse("0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d")
	estID     = uuid.MustParse("11111111-2222-4333-8444-555555555555")
	woID      = uuid.MustParse("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee")
	invID     = uuid.MustParse("12345678-9abc-4def-8123-456789abcdef")
	paymentID = uuid.MustParse("fedcba98-7654-4321-8fed-cba987654321")

	created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

type leads []*lead.Lead

func (l leads) List(context.Context, lead.ListFilter) ([]*lead.Lead, error) { return l, nil }

type estimates []*estimate.Estimate

func (e estimates) List(context.Context, estimate.ListFilter) ([]*estimate.Estimate, error) {
	return e, nil
}

type workOrders []*workorder.WorkOrder

func (w workOrders) List(context.Context, workorder.ListFilter) ([]*workorder.WorkOrder, error) {
	return w, nil
}

type invoices struct {
	invoices []*invoice.Invoice
	payments []*invoice.Payment
	err      error
}

func (i invoices) List(context.Context, invoice.ListFilter) ([]*invoice.Invoice, error) {
	return i.invoices, i.err
}

func (i invoices) Payments(context.Context, invoice.PaymentFilter) ([]*invoice.Payment, error) {
	return i.payments, i.err
}

func fixtures() *export.Service {
	paidAt := created.Add(72 * time.Hour)
	validUntil := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	return export.NewService(
		leads{{
			ID: leadID, Name: "Dana Ruiz", Email: "dana@example.com", Phone: "555-0100",
			Company: "Harbor View HOA, Inc.", Service: "Gutters", Source: "website-booking",
			Status: lead.StatusWon, CreatedAt: created,
		}},
		estimates{{
			ID: estID, Number: "EST-20260301-001", Title: "Gutter replacement", AmountCents: 125000,
			Status: estimate.StatusConverted, ValidUntil: &validUntil, ClientID: &clientID, LeadID: &leadID,
			ConvertedWorkOrderID: &woID, CreatedAt: created,
		}},
		workOrders{{
			ID: woID, Code: "WO-20260301-001", Title: "Gutter replacement", Status: workorder.StatusCompleted,
			Priority: workorder.PriorityMedium, ValueCents: 125000, EstimatedHours: decimal.NewFromInt(6),
			ActualHours: decimal.RequireFromString("7.5"), ClientID: &clientID, CreatedAt: created,
		}},
		invoices{
			invoices: []*invoice.Invoice{{
				ID: invID, Number: "INV-20260301-001", Status: invoice.StatusPaid, AmountCents: 125000,
				IssuedAt: created, DueAt: created.AddDate(0, 0, 30), PaidAt: &paidAt, ClientID: clientID,
				WorkOrderID: &woID,
			}},
			payments: []*invoice.Payment{{
				ID: paymentID, InvoiceID: invID, AmountCents: 125000, Processor: "mercadopago",
				ExternalRef: "1319283712", Status: invoice.PaymentSettled, PaidAt: paidAt,
			}},
		},
	)
}

func staff() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Role: auth.RoleManager})
}

func TestService_Write(t *testing.T) {
	svc := fixtures()
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))

	for _, kind := range export.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, svc.Write(staff(), kind, &buf))

			g.Assert(t, string(kind), buf.Bytes())
		})
	}
}

func TestService_Write_Rejections(t *testing.T) {
	type testCase struct {
		name    string
		ctx     context.Context
		svc     *export.Service
		kind    export.Kind
		wantErr error
	}

	failing := export.NewService(nil, nil, nil, invoices{err: errors.New("connection reset")})

	tests := []testCase{
		{
			name:    "Anonymous",
			ctx:     context.Background(),
			svc:     fixtures(),
			kind:    export.KindLeads,
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "ClientRole",
			ctx:     auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Role: auth.RoleClient}),
			svc:     fixtures(),
			kind:    export.KindInvoices,
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "UnknownKind",
			ctx:     staff(),
			svc:     fixtures(),
			kind:    export.Kind("contacts"),
			wantErr: export.ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := tt.svc.Write(tt.ctx, tt.kind, &buf)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, buf.Len())
		})
	}

	t.Run("ListFailure", func(t *testing.T) {
		var buf bytes.Buffer

		err := failing.Write(staff(), export.KindPayments, &buf)
		assert.ErrorContains(t, err, "loading payments: connection reset")
		assert.Zero(t, buf.Len())
	})
}

func TestParseKind(t *testing.T) {
	k, err := export.ParseKind("Work_Orders")
	require.NoError(t, err)
	assert.Equal(t, export.KindWorkOrders, k)

	_, err = export.ParseKind("contacts")
	assert.True(t, apperr.IsValidation(err))
}
