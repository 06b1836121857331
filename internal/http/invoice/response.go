package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
)

type Response struct {
	ID          uuid.UUID      `json:"id"`
	Number      string         `json:"number"`
	AmountCents int64          `json:"amount_cents"`
	Status      invoice.Status `json:"status"`
	IssuedAt    time.Time      `json:"issued_at"`
	DueAt       time.Time      `json:"due_at"`
	PaidAt      *time.Time     `json:"paid_at,omitempty"`
	ClientID    uuid.UUID      `json:"client_id"`
	WorkOrderID *uuid.UUID     `json:"work_order_id,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

func ToResponse(inv *invoice.Invoice) Response {
	return Response{
		ID:          inv.ID,
		Number:      inv.Number,
		AmountCents: inv.AmountCents,
		Status:      inv.Status,
		IssuedAt:    inv.IssuedAt,
		DueAt:       inv.DueAt,
		PaidAt:      inv.PaidAt,
		ClientID:    inv.ClientID,
		WorkOrderID: inv.WorkOrderID,
		Notes:       inv.Notes,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

func toResponseList(invoices []*invoice.Invoice) []Response {
	resp := make([]Response, len(invoices))
	for i, inv := range invoices {
		resp[i] = ToResponse(inv)
	}

	return resp
}

type IssueResponse struct {
	Invoice       Response `json:"invoice"`
	AlreadyIssued bool     `json:"already_issued"`
}

type paymentResponse struct {
	ID          uuid.UUID             `json:"id"`
	InvoiceID   uuid.UUID             `json:"invoice_id"`
	AmountCents int64                 `json:"amount_cents"`
	Processor   string                `json:"processor"`
	ExternalRef string                `json:"external_ref,omitempty"`
	Notes       string                `json:"notes,omitempty"`
	Status      invoice.PaymentStatus `json:"status"`
	PaidAt      time.Time             `json:"paid_at"`
	CreatedAt   time.Time             `json:"created_at"`
}

func toPaymentResponse(p *invoice.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		AmountCents: p.AmountCents,
		Processor:   p.Processor,
		ExternalRef: p.ExternalRef,
		Notes:       p.Notes,
		Status:      p.Status,
		PaidAt:      p.PaidAt,
		CreatedAt:   p.CreatedAt,
	}
}

type settleResponse struct {
	Invoice        Response         `json:"invoice"`
	Payment        *paymentResponse `json:"payment,omitempty"`
	SettledCents   int64            `json:"settled_cents"`
	BalanceCents   int64            `json:"balance_cents"`
	AlreadySettled bool             `json:"already_settled,omitempty"`
}

func toSettleResponse(res *invoice.SettleResult) settleResponse {
	resp := settleResponse{
		Invoice:      ToResponse(res.Invoice),
		SettledCents: res.SettledCents,
		BalanceCents: res.BalanceCents(),
	}

	if res.Payment != nil {
		resp.Payment = new(toPaymentResponse(res.Payment))
	}

	return resp
}
