package processor

import (
	"context"
	"time"

	"github.com/mercadopago/sdk-go/pkg/payment"
)

type PaymentsFunc func(ctx context.Context, request payment.Request) (*payment.Response, error)

func (f PaymentsFunc) Create(ctx context.Context, request payment.Request) (*payment.Response, error) {
	return f(ctx, request)
}

func NewWithClient(client PaymentsFunc, now func() time.Time) *MercadoPago {
	return &MercadoPago{client: client, now: now}
}
