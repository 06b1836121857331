// Package dashboard computes the read-only metrics shown on the admin dashboard and the quarterly
// report. Every query is an independent read-committed read, so the parts of one Summary may
// observe slightly different instants.
package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
)

const (
	RevenueMonths  = 6
	TopClientLimit = 5
)

// StatusCount is one bar of a pipeline. AmountCents is only filled where the report sums amounts.
type StatusCount struct {
	Status      string `json:"status" yaml:"status"`
	Count       int64  `json:"count" yaml:"count"`
	AmountCents int64  `json:"amount_cents,omitempty" yaml:"amount_cents,omitempty"`
}

// Totals is a count with an amount sum.
type Totals struct {
	Count       int64 `json:"count" yaml:"count"`
	AmountCents int64 `json:"amount_cents" yaml:"amount_cents"`
}

type Pipelines struct {
	Leads      []StatusCount `json:"leads" yaml:"leads"`
	Estimates  []StatusCount `json:"estimates" yaml:"estimates"`
	WorkOrders []StatusCount `json:"work_orders" yaml:"work_orders"`
	Invoices   []StatusCount `json:"invoices" yaml:"invoices"`
}

type MonthRevenue struct {
	Label       string    `json:"label" yaml:"label"`
	Month       time.Time `json:"month" yaml:"month"`
	AmountCents int64     `json:"amount_cents" yaml:"amount_cents"`
}

type OverdueInvoice struct {
	Invoice      *invoice.Invoice `json:"invoice" yaml:"invoice"`
	ClientName   string           `json:"client_name" yaml:"client_name"`
	SettledCents int64            `json:"settled_cents" yaml:"settled_cents"`
	DaysOverdue  int              `json:"days_overdue" yaml:"days_overdue"`
}

// BalanceCents is what the client still owes.
func (o *OverdueInvoice) BalanceCents() int64 {
	return o.Invoice.AmountCents - o.SettledCents
}

type ClientRevenue struct {
	ClientID     uuid.UUID `json:"client_id" yaml:"client_id"`
	Name         string    `json:"name" yaml:"name"`
	PaidCents    int64     `json:"paid_cents" yaml:"paid_cents"`
	InvoiceCount int64     `json:"invoice_count" yaml:"invoice_count"`
}

type Quarterly struct {
	Start      time.Time     `json:"start" yaml:"start"`
	Issued     Totals        `json:"issued" yaml:"issued"`
	Paid       Totals        `json:"paid" yaml:"paid"`
	Estimates  []StatusCount `json:"estimates" yaml:"estimates"`
	Leads      []StatusCount `json:"leads" yaml:"leads"`
	WorkOrders []StatusCount `json:"work_orders" yaml:"work_orders"`
}

type Summary struct {
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Pipelines   *Pipelines        `json:"pipelines" yaml:"pipelines"`
	Revenue     []MonthRevenue    `json:"revenue" yaml:"revenue"`
	Overdue     []*OverdueInvoice `json:"overdue" yaml:"overdue"`
	TopClients  []*ClientRevenue  `json:"top_clients" yaml:"top_clients"`
	Quarterly   *Quarterly        `json:"quarterly" yaml:"quarterly"`
}

// MonthStart is the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterStart is the first instant of t's calendar quarter in UTC.
func QuarterStart(t time.Time) time.Time {
	t = t.UTC()
	month := (t.Month()-1)/3*3 + 1

	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}

// RevenueWindow returns the first month of the trailing revenue window ending with now's month.
func RevenueWindow(now time.Time) time.Time {
	return MonthStart(now).AddDate(0, -(RevenueMonths - 1), 0)
}

func zeroFill[S ~string](all []S, counts map[S]Totals, withAmounts bool) []StatusCount {
	out := make([]StatusCount, 0, len(all))

	for _, s := range all {
		c := StatusCount{Status: string(s), Count: counts[s].Count}
		if withAmounts {
			c.AmountCents = counts[s].AmountCents
		}

		out = append(out, c)
	}

	return out
}
