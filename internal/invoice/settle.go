package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/logger"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

type SettleParams struct {
	InvoiceID   uuid.UUID  `json:"invoice_id" validate:"required"`
	AmountCents int64      `json:"amount_cents" validate:"min=1"`
	Processor   string     `json:"processor" validate:"max=64"`
	ExternalRef string     `json:"external_ref" validate:"max=255"`
	Notes       string     `json:"notes" validate:"max=2000"`
	PaidAt      *time.Time `json:"paid_at"`
}

// Settle applies a settled payment to an invoice. The invoice row stays locked until commit so
// concurrent settlements of one invoice see each other's payments.
func (s *Service) Settle(ctx context.Context, params SettleParams) (*SettleResult, error) {
	p, err := auth.Authorize(ctx, auth.OpSettleInvoice)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if params.Processor == "" {
		params.Processor = ProcessorManual
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin settlement: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.Lock(ctx, params.InvoiceID)
	if err != nil {
		return nil, err
	}

	res, err := s.settle(ctx, tx, p, inv, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit settlement: %w", err)
	}

	return res, nil
}

// QuickSettle pays off whatever is still owed. A fully settled invoice is returned untouched.
func (s *Service) QuickSettle(ctx context.Context, id uuid.UUID) (*QuickSettleResult, error) {
	p, err := auth.Authorize(ctx, auth.OpSettleInvoice)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin quick settle: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.Lock(ctx, id)
	if err != nil {
		return nil, err
	}

	settled, err := tx.SettledTotal(ctx, id)
	if err != nil {
		return nil, err
	}

	balance := inv.AmountCents - settled
	if balance <= 0 {
		return &QuickSettleResult{
			SettleResult:   SettleResult{Invoice: inv, SettledCents: settled},
			AlreadySettled: true,
		}, nil
	}

	res, err := s.settle(ctx, tx, p, inv, SettleParams{
		InvoiceID:   id,
		AmountCents: balance,
		Processor:   ProcessorManual,
		ExternalRef: QuickSettleRef,
		Notes:       "Quick settle",
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit quick settle: %w", err)
	}

	return &QuickSettleResult{SettleResult: *res}, nil
}

type ChargeParams struct {
	AmountCents     int64  `json:"amount_cents" validate:"omitempty,min=1"`
	CardToken       string `json:"card_token" validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	PayerEmail      string `json:"payer_email" validate:"required,email"`
	Installments    int    `json:"installments" validate:"omitempty,min=1,max=24"`
}

// Charge takes an online card payment for an invoice, defaulting to its outstanding balance. The
// processor is called outside the database transaction; an approved charge is then settled and its
// receipt archived. A failed archive is logged and does not undo the settlement. When an approved
// charge cannot be settled the receipt is still archived and ErrChargeNotRecorded is returned.
func (s *Service) Charge(ctx context.Context, id uuid.UUID, params ChargeParams) (*SettleResult, error) {
	p, err := auth.Authorize(ctx, auth.OpSettleInvoice)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if s.processor == nil {
		return nil, ErrNoProcessor
	}

	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	settled, err := s.repo.SettledTotal(ctx, id)
	if err != nil {
		return nil, err
	}

	amount := params.AmountCents
	if amount == 0 {
		amount = inv.AmountCents - settled
	}

	if amount <= 0 {
		return nil, ErrFullySettled
	}

	installments := params.Installments
	if installments == 0 {
		installments = 1
	}

	outcome, err := s.processor.Charge(ctx, ChargeRequest{
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.Number,
		AmountCents:     amount,
		CardToken:       params.CardToken,
		PaymentMethodID: params.PaymentMethodID,
		PayerEmail:      params.PayerEmail,
		Installments:    installments,
	})
	if err != nil {
		return nil, fmt.Errorf("charging %s: %w", inv.Number, err)
	}

	if !outcome.Approved {
		return nil, fmt.Errorf("%w: %s", ErrDeclined, outcome.Status)
	}

	res, err := s.recordCharge(ctx, p, id, amount, outcome)
	if err != nil {
		s.keepUnrecorded(ctx, inv, amount, outcome, err)
		return nil, fmt.Errorf("%w: %s provider id %s: %w", ErrChargeNotRecorded, inv.Number, outcome.ProviderID, err)
	}

	s.archive(ctx, Receipt{
		PaymentID:     res.Payment.ID,
		Recorded:      true,
		InvoiceID:     res.Invoice.ID,
		InvoiceNumber: res.Invoice.Number,
		Processor:     res.Payment.Processor,
		ProviderID:    outcome.ProviderID,
		Status:        outcome.Status,
		AmountCents:   res.Payment.AmountCents,
		PaidAt:        res.Payment.PaidAt,
		Raw:           outcome.Raw,
	})

	return res, nil
}

func (s *Service) recordCharge(ctx context.Context, p auth.Principal, id uuid.UUID, amount int64, outcome *ChargeOutcome) (*SettleResult, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin charge settlement: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.Lock(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.settle(ctx, tx, p, inv, SettleParams{
		InvoiceID:   id,
		AmountCents: amount,
		Processor:   s.processor.Name(),
		ExternalRef: outcome.ProviderID,
		Notes:       "Card payment " + outcome.Status,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit charge settlement: %w", err)
	}

	return res, nil
}

// keepUnrecorded leaves a trace of money the processor captured but the ledger does not hold.
func (s *Service) keepUnrecorded(ctx context.Context, inv *Invoice, amount int64, outcome *ChargeOutcome, cause error) {
	logger.FromContext(ctx).Error("approved card charge not recorded",
		slog.String("invoice", inv.Number),
		slog.String("provider_id", outcome.ProviderID),
		slog.Int64("amount_cents", amount),
		slog.Any("error", cause),
	)

	s.archive(ctx, Receipt{
		PaymentID:     uuid.New(),
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		Processor:     s.processor.Name(),
		ProviderID:    outcome.ProviderID,
		Status:        outcome.Status,
		AmountCents:   amount,
		PaidAt:        s.now(),
		Raw:           outcome.Raw,
	})
}

func (s *Service) archive(ctx context.Context, r Receipt) {
	if s.receipts == nil {
		return
	}

	if err := s.receipts.Archive(ctx, r); err != nil {
		logger.FromContext(ctx).Error("archiving payment receipt",
			slog.String("invoice", r.InvoiceNumber),
			slog.String("provider_id", r.ProviderID),
			slog.Any("error", err),
		)
	}
}

// settle writes one settled payment for inv, which the caller holds locked, and brings the invoice
// status in line with the new settled total. PaidAt is stamped only on the move into paid.
func (s *Service) settle(ctx context.Context, tx Tx, p auth.Principal, inv *Invoice, params SettleParams) (*SettleResult, error) {
	paidAt := s.now()
	if params.PaidAt != nil {
		paidAt = *params.PaidAt
	}

	pay := &Payment{
		ID:          uuid.New(),
		InvoiceID:   inv.ID,
		AmountCents: params.AmountCents,
		Processor:   params.Processor,
		ExternalRef: params.ExternalRef,
		Notes:       params.Notes,
		Status:      PaymentSettled,
		PaidAt:      paidAt,
	}

	if err := tx.InsertPayment(ctx, pay); err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	settled, err := tx.SettledTotal(ctx, inv.ID)
	if err != nil {
		return nil, err
	}

	status := SettledStatus(inv, settled)

	if status == StatusPaid && inv.Status != StatusPaid {
		inv.PaidAt = &pay.PaidAt
	}

	if err := tx.UpdateSettlement(ctx, inv.ID, status, inv.PaidAt); err != nil {
		return nil, fmt.Errorf("update invoice settlement: %w", err)
	}

	inv.Status = status

	entry := activity.NewEntry(p, activity.ActionSettled, activity.EntityInvoice, inv.ID, activity.SeveritySuccess,
		"Payment of %s applied to %s (%s)", money.Format(pay.AmountCents), inv.Number, status)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	return &SettleResult{Invoice: inv, Payment: pay, SettledCents: settled}, nil
}
