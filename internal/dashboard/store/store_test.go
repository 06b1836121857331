package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	"github.com/MrJamesThe3rd/upkeep/internal/dashboard/store"
	"github.com/MrJamesThe3rd/upkeep/internal/database/dbtest"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
)

var base = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

func insertClient(t *testing.T, db *sql.DB, name string, createdAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(`INSERT INTO clients (id, name, created_at) VALUES ($1, $2, $3)`, id, name, createdAt)
	require.NoError(t, err)

	return id
}

type seedInvoice struct {
	client uuid.UUID
	amount int64
	status invoice.Status
	dueAt  time.Time
	paidAt *time.Time
}

var invoiceSeq int

func insertInvoice(t *testing.T, db *sql.DB, inv seedInvoice) uuid.UUID {
	t.Helper()

	invoiceSeq++

	id := uuid.New()
	_, err := db.Exec(`
		INSERT INTO invoices (id, number, amount_cents, status, issued_at, due_at, paid_at, client_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, fmt.Sprintf("INV-TEST-%03d", invoiceSeq), inv.amount, string(inv.status), base, inv.dueAt, inv.paidAt, inv.client,
	)
	require.NoError(t, err)

	return id
}

func insertPayment(t *testing.T, db *sql.DB, invoiceID uuid.UUID, amount int64, status invoice.PaymentStatus) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO payments (invoice_id, amount_cents, processor, status, paid_at)
		VALUES ($1, $2, 'manual', $3, $4)`,
		invoiceID, amount, string(status), base,
	)
	require.NoError(t, err)
}

func paid(t *testing.T, db *sql.DB, client uuid.UUID, amount int64, at time.Time) {
	t.Helper()
	insertInvoice(t, db, seedInvoice{client: client, amount: amount, status: invoice.StatusPaid, dueAt: at, paidAt: &at})
}

func TestStore_TopClients(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	clients := map[string]uuid.UUID{}
	for i, name := range []string{"Alder", "Birch", "Cedar", "Dogwood", "Elm", "Fir", "Gum"} {
		clients[name] = insertClient(t, db, name, base.Add(time.Duration(i)*time.Hour))
	}

	paid(t, db, clients["Alder"], 1000, base)
	paid(t, db, clients["Birch"], 5000, base)
	paid(t, db, clients["Gum"], 3000, base)
	paid(t, db, clients["Cedar"], 3000, base)
	paid(t, db, clients["Elm"], 2000, base)
	paid(t, db, clients["Fir"], 2500, base)
	paid(t, db, clients["Fir"], 1500, base)
	insertInvoice(t, db, seedInvoice{client: clients["Dogwood"], amount: 99999, status: invoice.StatusSent, dueAt: base})

	got, err := store.New(db).TopClients(ctx, dashboard.TopClientLimit)
	require.NoError(t, err)

	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"Birch", "Fir", "Cedar", "Gum", "Elm"}, names, "equal totals keep creation order")
	assert.Equal(t, int64(4000), got[1].PaidCents)
	assert.Equal(t, int64(2), got[1].InvoiceCount)
	assert.Equal(t, clients["Birch"], got[0].ClientID)
}

func TestStore_PaidByMonth(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	client := insertClient(t, db, "Harbor HOA", base)

	paid(t, db, client, 7000, time.Date(2026, time.August, 31, 23, 30, 0, 0, time.UTC))
	paid(t, db, client, 1100, time.Date(2026, time.September, 1, 0, 15, 0, 0, time.UTC))
	paid(t, db, client, 2000, time.Date(2026, time.September, 30, 22, 0, 0, 0, time.UTC))
	paid(t, db, client, 9900, time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC))

	from := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	got, err := store.New(db).PaidByMonth(ctx, from)
	require.NoError(t, err)

	assert.Equal(t, map[time.Time]int64{
		time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC):    7000,
		time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC): 3100,
	}, got)

	ctx = auth.WithPrincipal(ctx, auth.Operator("tester"))

	months, err := dashboard.NewService(store.New(db)).Revenue(ctx, time.Date(2026, time.September, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, months, dashboard.RevenueMonths)

	var labels []string
	for _, m := range months {
		labels = append(labels, m.Label)
	}

	assert.Equal(t, []string{"Apr", "May", "Jun", "Jul", "Aug", "Sep"}, labels)
	assert.Equal(t, int64(0), months[0].AmountCents)
	assert.Equal(t, int64(7000), months[4].AmountCents)
	assert.Equal(t, int64(3100), months[5].AmountCents)
}

func TestStore_Overdue(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	client := insertClient(t, db, "Pine Court", base)

	sent := insertInvoice(t, db, seedInvoice{client: client, amount: 10000, status: invoice.StatusSent, dueAt: now.AddDate(0, 0, -3)})
	partial := insertInvoice(t, db, seedInvoice{client: client, amount: 20000, status: invoice.StatusPartial, dueAt: now.AddDate(0, 0, -10)})
	overdue := insertInvoice(t, db, seedInvoice{client: client, amount: 30000, status: invoice.StatusOverdue, dueAt: now.AddDate(0, 0, -1)})
	insertInvoice(t, db, seedInvoice{client: client, amount: 40000, status: invoice.StatusSent, dueAt: now.AddDate(0, 0, 5)})
	paid(t, db, client, 50000, now.AddDate(0, 0, -20))

	insertPayment(t, db, partial, 5000, invoice.PaymentSettled)
	insertPayment(t, db, partial, 2500, invoice.PaymentSettled)
	insertPayment(t, db, partial, 9000, invoice.PaymentFailed)

	got, err := store.New(db).Overdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []uuid.UUID{partial, sent, overdue}, []uuid.UUID{got[0].Invoice.ID, got[1].Invoice.ID, got[2].Invoice.ID})
	assert.Equal(t, int64(7500), got[0].SettledCents)
	assert.Equal(t, int64(12500), got[0].BalanceCents())
	assert.Equal(t, "Pine Court", got[0].ClientName)
	assert.Equal(t, invoice.StatusPartial, got[0].Invoice.Status)
}
