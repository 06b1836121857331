// Package processor charges cards through Mercado Pago for online invoice payments.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/logger"
)

const Name = "mercadopago"

const statusApproved = "approved"

var ErrMissingAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")

// payments is the slice of the SDK client this package calls.
type payments interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
}

type MercadoPago struct {
	client payments
	mock   bool
	now    func() time.Time
}

// New returns a live processor, or one that approves every charge locally when mock is set.
func New(accessToken string, mock bool) (*MercadoPago, error) {
	if mock {
		slog.Info("mercado pago mock mode enabled")
		return &MercadoPago{mock: true, now: time.Now}, nil
	}

	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("creating mercado pago config: %w", err)
	}

	return &MercadoPago{client: payment.NewClient(cfg), now: time.Now}, nil
}

func (m *MercadoPago) Name() string {
	return Name
}

func (m *MercadoPago) Charge(ctx context.Context, req invoice.ChargeRequest) (*invoice.ChargeOutcome, error) {
	log := logger.FromContext(ctx).With(slog.String("invoice", req.InvoiceNumber), slog.Int64("amount_cents", req.AmountCents))

	if m.mock {
		return m.mockCharge(log, req)
	}

	resp, err := m.client.Create(ctx, Request(req))
	if err != nil {
		log.Error("mercado pago charge failed", slog.Any("error", err))
		return nil, fmt.Errorf("creating mercado pago payment: %w", err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding mercado pago response: %w", err)
	}

	log.Info("mercado pago charge", slog.Any("provider_id", resp.ID), slog.String("status", resp.Status))

	return &invoice.ChargeOutcome{
		ProviderID: fmt.Sprint(resp.ID),
		Status:     resp.Status,
		Approved:   resp.Status == statusApproved,
		Raw:        raw,
	}, nil
}

// Request maps a charge onto the SDK payment request. Amounts go out in currency units.
func Request(req invoice.ChargeRequest) payment.Request {
	return payment.Request{
		TransactionAmount: decimal.New(req.AmountCents, -2).InexactFloat64(),
		Token:             req.CardToken,
		Description:       "Invoice " + req.InvoiceNumber,
		Installments:      req.Installments,
		PaymentMethodID:   req.PaymentMethodID,
		ExternalReference: req.InvoiceID.String(),
		Payer:             &payment.PayerRequest{Email: req.PayerEmail},
	}
}

func (m *MercadoPago) mockCharge(log *slog.Logger, req invoice.ChargeRequest) (*invoice.ChargeOutcome, error) {
	id := uuid.NewString()
	now := m.now().UTC().Format(time.RFC3339Nano)

	raw, err := json.Marshal(map[string]any{
		"id":                 id,
		"status":             statusApproved,
		"status_detail":      "accredited",
		"transaction_amount": decimal.New(req.AmountCents, -2).String(),
		"external_reference": req.InvoiceID.String(),
		"date_created":       now,
		"date_approved":      now,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding mock response: %w", err)
	}

	log.Info("mercado pago mock charge", slog.String("provider_id", id))

	return &invoice.ChargeOutcome{ProviderID: id, Status: statusApproved, Approved: true, Raw: raw}, nil
}
