package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	Payments(ctx context.Context, filter PaymentFilter) ([]*Payment, error)
	SettledTotal(ctx context.Context, id uuid.UUID) (int64, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is one unit of work over invoices and their payments. Lock takes the per-invoice row lock
// that serializes settlement.
type Tx interface {
	NextNumber(ctx context.Context, prefix string, day time.Time) (string, error)
	CheckClient(ctx context.Context, id uuid.UUID) error
	Insert(ctx context.Context, inv *Invoice) error
	Lock(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error

	SettledTotal(ctx context.Context, id uuid.UUID) (int64, error)
	InsertPayment(ctx context.Context, p *Payment) error
	UpdateSettlement(ctx context.Context, id uuid.UUID, status Status, paidAt *time.Time) error

	LockWorkOrder(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error)
	FindByWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*Invoice, error)
	LockDue(ctx context.Context, asOf time.Time) ([]*Invoice, error)

	Record(ctx context.Context, e *activity.Entry) error
	Commit() error
	Rollback() error
}

// Processor charges cards online.
type Processor interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeOutcome, error)
}

// ReceiptArchive keeps processor receipts outside the ledger.
type ReceiptArchive interface {
	Archive(ctx context.Context, r Receipt) error
}

type Service struct {
	repo      Repository
	processor Processor
	receipts  ReceiptArchive
	now       func() time.Time
}

type Option func(*Service)

func WithProcessor(p Processor) Option {
	return func(s *Service) { s.processor = p }
}

func WithReceiptArchive(a ReceiptArchive) Option {
	return func(s *Service) { s.receipts = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type ListFilter struct {
	Status   *Status
	ClientID *uuid.UUID
}

type PaymentFilter struct {
	InvoiceID *uuid.UUID
}

type CreateParams struct {
	ClientID    uuid.UUID  `json:"client_id" validate:"required"`
	AmountCents int64      `json:"amount_cents" validate:"min=1"`
	IssuedAt    *time.Time `json:"issued_at"`
	DueAt       time.Time  `json:"due_at" validate:"required"`
	WorkOrderID *uuid.UUID `json:"work_order_id"`
	Notes       string     `json:"notes" validate:"max=2000"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	p, err := auth.Authorize(ctx, auth.OpIssueInvoice)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	issuedAt := s.now()
	if params.IssuedAt != nil {
		issuedAt = *params.IssuedAt
	}

	if params.DueAt.Before(issuedAt) {
		return nil, apperr.Invalid("due_at: must not be before issued_at")
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin invoice create: %w", err)
	}
	defer tx.Rollback()

	if err := tx.CheckClient(ctx, params.ClientID); err != nil {
		return nil, err
	}

	if params.WorkOrderID != nil {
		if _, err := tx.LockWorkOrder(ctx, *params.WorkOrderID); err != nil {
			return nil, err
		}

		if _, err := tx.FindByWorkOrder(ctx, *params.WorkOrderID); err == nil {
			return nil, ErrAlreadyIssued
		} else if !apperr.IsNotFound(err) {
			return nil, err
		}
	}

	inv, err := s.issue(ctx, tx, p, &Invoice{
		AmountCents: params.AmountCents,
		IssuedAt:    issuedAt,
		DueAt:       params.DueAt,
		ClientID:    params.ClientID,
		WorkOrderID: params.WorkOrderID,
		Notes:       params.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit invoice create: %w", err)
	}

	return inv, nil
}

type IssueParams struct {
	DueAt *time.Time `json:"due_at"`
	Notes string     `json:"notes" validate:"max=2000"`
}

// IssueForWorkOrder invoices a work order for its value. Issuing again returns the invoice from the
// first call with AlreadyIssued set and writes nothing.
func (s *Service) IssueForWorkOrder(ctx context.Context, workOrderID uuid.UUID, params IssueParams) (*IssueResult, error) {
	p, err := auth.Authorize(ctx, auth.OpIssueInvoice)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin invoice issue: %w", err)
	}
	defer tx.Rollback()

	wo, err := tx.LockWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	existing, err := tx.FindByWorkOrder(ctx, workOrderID)
	if err == nil {
		return &IssueResult{Invoice: existing, AlreadyIssued: true}, nil
	}

	if !apperr.IsNotFound(err) {
		return nil, err
	}

	switch {
	case wo.Status == workorder.StatusCanceled:
		return nil, fmt.Errorf("%w: %s is canceled", ErrNotBillable, wo.Code)
	case wo.ClientID == nil:
		return nil, fmt.Errorf("%w: %s has no client", ErrNotBillable, wo.Code)
	case wo.ValueCents <= 0:
		return nil, fmt.Errorf("%w: %s has no value", ErrNotBillable, wo.Code)
	}

	issuedAt := s.now()

	dueAt := issuedAt.AddDate(0, 0, DefaultTermsDays)
	if params.DueAt != nil {
		dueAt = *params.DueAt
	}

	if dueAt.Before(issuedAt) {
		return nil, apperr.Invalid("due_at: must not be before issued_at")
	}

	inv, err := s.issue(ctx, tx, p, &Invoice{
		AmountCents: wo.ValueCents,
		IssuedAt:    issuedAt,
		DueAt:       dueAt,
		ClientID:    *wo.ClientID,
		WorkOrderID: &wo.ID,
		Notes:       params.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit invoice issue: %w", err)
	}

	return &IssueResult{Invoice: inv}, nil
}

func (s *Service) issue(ctx context.Context, tx Tx, p auth.Principal, inv *Invoice) (*Invoice, error) {
	number, err := tx.NextNumber(ctx, NumberPrefix, inv.IssuedAt)
	if err != nil {
		return nil, err
	}

	inv.ID = uuid.New()
	inv.Number = number
	inv.Status = StatusSent

	if err := tx.Insert(ctx, inv); err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionIssued, activity.EntityInvoice, inv.ID, activity.SeverityInfo,
		"Invoice %s issued for %s, due %s", inv.Number, money.Format(inv.AmountCents), inv.DueAt.Format(time.DateOnly))
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	if _, err := auth.Authorize(ctx, auth.OpIssueInvoice); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	if _, err := auth.Authorize(ctx, auth.OpIssueInvoice); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, filter)
}

func (s *Service) Payments(ctx context.Context, filter PaymentFilter) ([]*Payment, error) {
	if _, err := auth.Authorize(ctx, auth.OpIssueInvoice); err != nil {
		return nil, err
	}

	return s.repo.Payments(ctx, filter)
}

// MarkOverdue moves every sent invoice whose due date passed before asOf to overdue. Partially
// paid invoices keep their partial status; IsOverdue still reports them.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) ([]*Invoice, error) {
	p, err := auth.Authorize(ctx, auth.OpIssueInvoice)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin overdue sweep: %w", err)
	}
	defer tx.Rollback()

	due, err := tx.LockDue(ctx, asOf)
	if err != nil {
		return nil, err
	}

	for _, inv := range due {
		if err := tx.UpdateStatus(ctx, inv.ID, StatusOverdue); err != nil {
			return nil, fmt.Errorf("mark %s overdue: %w", inv.Number, err)
		}

		inv.Status = StatusOverdue

		entry := activity.NewEntry(p, activity.ActionMarkedOverdue, activity.EntityInvoice, inv.ID, activity.SeverityWarning,
			"Invoice %s is overdue (due %s)", inv.Number, inv.DueAt.Format(time.DateOnly))
		if err := tx.Record(ctx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit overdue sweep: %w", err)
	}

	return due, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := auth.Authorize(ctx, auth.OpDelete)
	if err != nil {
		return err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin invoice delete: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.Lock(ctx, id)
	if err != nil {
		return err
	}

	if err := tx.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionDeleted, activity.EntityInvoice, id, activity.SeverityUrgent,
		"Invoice %s deleted", inv.Number)
	if err := tx.Record(ctx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invoice delete: %w", err)
	}

	return nil
}
