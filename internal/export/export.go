// Package export writes CRM records as CSV for spreadsheets and accounting tools.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/enum"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

type Kind string

const (
	KindLeads      Kind = "leads"
	KindEstimates  Kind = "estimates"
	KindWorkOrders Kind = "work_orders"
	KindInvoices   Kind = "invoices"
	KindPayments   Kind = "payments"
)

func Kinds() []Kind {
	return []Kind{KindLeads, KindEstimates, KindWorkOrders, KindInvoices, KindPayments}
}

var ErrInvalidKind = enum.Invalid("kind", Kinds())

func ParseKind(s string) (Kind, error) {
	return enum.Parse(s, Kinds(), ErrInvalidKind)
}

type LeadLister interface {
	List(ctx context.Context, filter lead.ListFilter) ([]*lead.Lead, error)
}

type EstimateLister interface {
	List(ctx context.Context, filter estimate.ListFilter) ([]*estimate.Estimate, error)
}

type WorkOrderLister interface {
	List(ctx context.Context, filter workorder.ListFilter) ([]*workorder.WorkOrder, error)
}

type InvoiceLister interface {
	List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error)
	Payments(ctx context.Context, filter invoice.PaymentFilter) ([]*invoice.Payment, error)
}

// Service reads through the domain services, so their own access rules still apply.
type Service struct {
	leads      LeadLister
	estimates  EstimateLister
	workOrders WorkOrderLister
	invoices   InvoiceLister
}

func NewService(leads LeadLister, estimates EstimateLister, workOrders WorkOrderLister, invoices InvoiceLister) *Service {
	return &Service{leads: leads, estimates: estimates, workOrders: workOrders, invoices: invoices}
}

// Write renders every record of kind to w, header first. Amounts are decimal strings and times
// are RFC 3339 in UTC.
func (s *Service) Write(ctx context.Context, kind Kind, w io.Writer) error {
	if _, err := auth.Authorize(ctx, auth.OpExport); err != nil {
		return err
	}

	header, rows, err := s.rows(ctx, kind)
	if err != nil {
		return fmt.Errorf("loading %s: %w", kind, err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", kind, err)
	}

	return nil
}

func (s *Service) rows(ctx context.Context, kind Kind) ([]string, [][]string, error) {
	switch kind {
	case KindLeads:
		leads, err := s.leads.List(ctx, lead.ListFilter{})
		if err != nil {
			return nil, nil, err
		}

		return leadHeader, mapRows(leads, leadRow), nil
	case KindEstimates:
		estimates, err := s.estimates.List(ctx, estimate.ListFilter{})
		if err != nil {
			return nil, nil, err
		}

		return estimateHeader, mapRows(estimates, estimateRow), nil
	case KindWorkOrders:
		orders, err := s.workOrders.List(ctx, workorder.ListFilter{})
		if err != nil {
			return nil, nil, err
		}

		return workOrderHeader, mapRows(orders, workOrderRow), nil
	case KindInvoices:
		invoices, err := s.invoices.List(ctx, invoice.ListFilter{})
		if err != nil {
			return nil, nil, err
		}

		return invoiceHeader, mapRows(invoices, invoiceRow), nil
	case KindPayments:
		payments, err := s.invoices.Payments(ctx, invoice.PaymentFilter{})
		if err != nil {
			return nil, nil, err
		}

		return paymentHeader, mapRows(payments, paymentRow), nil
	}

	return nil, nil, fmt.Errorf("%q: %w", kind, ErrInvalidKind)
}

func mapRows[T any](items []T, fn func(T) []string) [][]string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = fn(item)
	}

	return rows
}

var (
	leadHeader      = []string{"id", "name", "email", "phone", "company", "service", "source", "status", "created_at"}
	estimateHeader  = []string{"id", "number", "title", "status", "amount", "valid_until", "client_id", "lead_id", "work_order_id", "created_at"}
	workOrderHeader = []string{"id", "code", "title", "status", "priority", "value", "estimated_hours", "actual_hours", "client_id", "assigned_employee_id", "created_at"}
	invoiceHeader   = []string{"id", "number", "status", "amount", "issued_at", "due_at", "paid_at", "client_id", "work_order_id"}
	paymentHeader   = []string{"id", "invoice_id", "amount", "processor", "external_ref", "status", "paid_at"}
)

func leadRow(l *lead.Lead) []string {
	return []string{
		l.ID.String(), l.Name, l.Email, l.Phone, l.Company, l.Service, l.Source, string(l.Status), stamp(l.CreatedAt),
	}
}

func estimateRow(e *estimate.Estimate) []string {
	return []string{
		e.ID.String(), e.Number, e.Title, string(e.Status), money.Decimal(e.AmountCents), day(e.ValidUntil),
		optID(e.ClientID), optID(e.LeadID), optID(e.ConvertedWorkOrderID), stamp(e.CreatedAt),
	}
}

func workOrderRow(wo *workorder.WorkOrder) []string {
	return []string{
		wo.ID.String(), wo.Code, wo.Title, string(wo.Status), string(wo.Priority), money.Decimal(wo.ValueCents),
		wo.EstimatedHours.StringFixed(2), wo.ActualHours.StringFixed(2), optID(wo.ClientID), optID(wo.AssignedEmployeeID),
		stamp(wo.CreatedAt),
	}
}

func invoiceRow(inv *invoice.Invoice) []string {
	paidAt := ""
	if inv.PaidAt != nil {
		paidAt = stamp(*inv.PaidAt)
	}

	return []string{
		inv.ID.String(), inv.Number, string(inv.Status), money.Decimal(inv.AmountCents), stamp(inv.IssuedAt),
		stamp(inv.DueAt), paidAt, inv.ClientID.String(), optID(inv.WorkOrderID),
	}
}

func paymentRow(p *invoice.Payment) []string {
	return []string{
		p.ID.String(), p.InvoiceID.String(), money.Decimal(p.AmountCents), p.Processor, p.ExternalRef,
		string(p.Status), stamp(p.PaidAt),
	}
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func day(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.DateOnly)
}

func optID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}

	return id.String()
}
