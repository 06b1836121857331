package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/enum"
)

// NumberPrefix starts every invoice number, e.g. INV-20261019-001.
const NumberPrefix = "INV"

// Quick settle marks its payment with these values.
const (
	ProcessorManual  = "manual"
	QuickSettleRef   = "MANUAL-QUICK-SETTLE"
	DefaultTermsDays = 30
)

type Status string

const (
	StatusSent    Status = "sent"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

func Statuses() []Status {
	return []Status{StatusSent, StatusPartial, StatusPaid, StatusOverdue}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentSettled  PaymentStatus = "settled"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentPending, PaymentSettled, PaymentFailed, PaymentRefunded}
}

var (
	ErrNotFound             = fmt.Errorf("invoice %w", apperr.ErrNotFound)
	ErrInvalidStatus        = enum.Invalid("status", Statuses())
	ErrInvalidPaymentStatus = enum.Invalid("payment_status", PaymentStatuses())
	ErrAlreadyIssued        = fmt.Errorf("work order already invoiced: %w", apperr.ErrInvalidState)
	ErrNotBillable          = fmt.Errorf("work order cannot be invoiced: %w", apperr.ErrInvalidState)
	ErrFullySettled         = fmt.Errorf("invoice is fully settled: %w", apperr.ErrInvalidState)
	ErrDeclined             = fmt.Errorf("payment declined: %w", apperr.ErrInvalidState)
	ErrNoProcessor          = fmt.Errorf("online payments are not configured: %w", apperr.ErrInvalidState)
	ErrChargeNotRecorded    = errors.New("card charge captured but not recorded")
)

func ParseStatus(s string) (Status, error) {
	return enum.Parse(s, Statuses(), ErrInvalidStatus)
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}

	*s = v

	return nil
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	return enum.Parse(s, PaymentStatuses(), ErrInvalidPaymentStatus)
}

func (s *PaymentStatus) UnmarshalText(b []byte) error {
	v, err := ParsePaymentStatus(string(b))
	if err != nil {
		return err
	}

	*s = v

	return nil
}

// Open reports whether an invoice in this status still expects money.
func (s Status) Open() bool {
	return slices.Contains([]Status{StatusSent, StatusPartial, StatusOverdue}, s)
}

// Invoice is a billing document. AmountCents is the face value and never changes after issue.
type Invoice struct {
	ID          uuid.UUID  `json:"id" yaml:"id"`
	Number      string     `json:"number" yaml:"number"`
	AmountCents int64      `json:"amount_cents" yaml:"amount_cents"`
	Status      Status     `json:"status" yaml:"status"`
	IssuedAt    time.Time  `json:"issued_at" yaml:"issued_at"`
	DueAt       time.Time  `json:"due_at" yaml:"due_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty" yaml:"paid_at,omitempty"`
	ClientID    uuid.UUID  `json:"client_id" yaml:"client_id"`
	WorkOrderID *uuid.UUID `json:"work_order_id,omitempty" yaml:"work_order_id,omitempty"`
	Notes       string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// IsOverdue reports whether inv is past due at now and still open.
func IsOverdue(inv *Invoice, now time.Time) bool {
	return inv.DueAt.Before(now) && inv.Status.Open()
}

// SettledStatus is the status an invoice takes once settled payments total settled cents.
// Overpayment still resolves to paid.
func SettledStatus(inv *Invoice, settled int64) Status {
	switch {
	case settled >= inv.AmountCents:
		return StatusPaid
	case settled > 0:
		return StatusPartial
	}

	return inv.Status
}

// Payment is one settlement attempt against an invoice.
type Payment struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	AmountCents int64
	Processor   string
	ExternalRef string
	Notes       string
	Status      PaymentStatus
	PaidAt      time.Time
	CreatedAt   time.Time
}

// SettleResult describes an invoice right after a settlement.
type SettleResult struct {
	Invoice      *Invoice
	Payment      *Payment
	SettledCents int64
}

// BalanceCents is what is still owed; negative after an overpayment.
func (r *SettleResult) BalanceCents() int64 {
	return r.Invoice.AmountCents - r.SettledCents
}

// QuickSettleResult reports AlreadySettled, with no Payment, when nothing was owed.
type QuickSettleResult struct {
	SettleResult
	AlreadySettled bool
}

// IssueResult reports AlreadyIssued when the work order had been invoiced before; Invoice is then
// that earlier invoice.
type IssueResult struct {
	Invoice       *Invoice
	AlreadyIssued bool
}

// ChargeRequest is an online card payment handed to a Processor.
type ChargeRequest struct {
	InvoiceID       uuid.UUID
	InvoiceNumber   string
	AmountCents     int64
	CardToken       string
	PaymentMethodID string
	PayerEmail      string
	Installments    int
}

// ChargeOutcome is the processor's answer. Raw is its response body, kept for the receipt archive.
type ChargeOutcome struct {
	ProviderID string
	Status     string
	Approved   bool
	Raw        json.RawMessage
}

// Receipt is the archived evidence of an online charge. An approved charge that could not be
// settled is archived with Recorded false and a PaymentID that no ledger payment carries.
type Receipt struct {
	PaymentID     uuid.UUID
	Recorded      bool
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Processor     string
	ProviderID    string
	Status        string
	AmountCents   int64
	PaidAt        time.Time
	Raw           json.RawMessage
}
