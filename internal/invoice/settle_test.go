package invoice_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

// fakeRepo keeps invoices and payments in memory. Begin holds a repository-wide lock until the
// transaction ends, standing in for the invoice row lock.
type fakeRepo struct {
	lock sync.Mutex

	invoices   map[uuid.UUID]invoice.Invoice
	payments   []invoice.Payment
	workOrders map[uuid.UUID]workorder.WorkOrder
	log        []*activity.Entry
	seq        int

	failRecord bool
}

func newFakeRepo(invs ...invoice.Invoice) *fakeRepo {
	r := &fakeRepo{
		invoices:   map[uuid.UUID]invoice.Invoice{},
		workOrders: map[uuid.UUID]workorder.WorkOrder{},
	}

	for _, inv := range invs {
		r.invoices[inv.ID] = inv
	}

	return r
}

func sumSettled(payments []invoice.Payment, id uuid.UUID) int64 {
	var total int64

	for _, p := range payments {
		if p.InvoiceID == id && p.Status == invoice.PaymentSettled {
			total += p.AmountCents
		}
	}

	return total
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	return &inv, nil
}

func (r *fakeRepo) List(context.Context, invoice.ListFilter) ([]*invoice.Invoice, error) {
	return nil, nil
}

func (r *fakeRepo) Payments(context.Context, invoice.PaymentFilter) ([]*invoice.Payment, error) {
	return nil, nil
}

func (r *fakeRepo) SettledTotal(_ context.Context, id uuid.UUID) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	return sumSettled(r.payments, id), nil
}

func (r *fakeRepo) Begin(context.Context) (invoice.Tx, error) {
	r.lock.Lock()

	return &fakeTx{
		repo:     r,
		invoices: maps.Clone(r.invoices),
		payments: append([]invoice.Payment(nil), r.payments...),
		seq:      r.seq,
	}, nil
}

type fakeTx struct {
	repo     *fakeRepo
	invoices map[uuid.UUID]invoice.Invoice
	payments []invoice.Payment
	log      []*activity.Entry
	seq      int
	done     bool
}

func (t *fakeTx) NextNumber(_ context.Context, prefix string, day time.Time) (string, error) {
	t.seq++
	return fmt.Sprintf("%s-%s-%03d", prefix, day.UTC().Format("20060102"), t.seq), nil
}

func (t *fakeTx) CheckClient(context.Context, uuid.UUID) error { return nil }

func (t *fakeTx) Insert(_ context.Context, inv *invoice.Invoice) error {
	t.invoices[inv.ID] = *inv
	return nil
}

func (t *fakeTx) Lock(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	inv, ok := t.invoices[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	return &inv, nil
}

func (t *fakeTx) UpdateStatus(_ context.Context, id uuid.UUID, status invoice.Status) error {
	inv := t.invoices[id]
	inv.Status = status
	t.invoices[id] = inv

	return nil
}

func (t *fakeTx) Delete(_ context.Context, id uuid.UUID) error {
	delete(t.invoices, id)
	return nil
}

func (t *fakeTx) SettledTotal(_ context.Context, id uuid.UUID) (int64, error) {
	return sumSettled(t.payments, id), nil
}

func (t *fakeTx) InsertPayment(_ context.Context, p *invoice.Payment) error {
	t.payments = append(t.payments, *p)
	return nil
}

func (t *fakeTx) UpdateSettlement(_ context.Context, id uuid.UUID, status invoice.Status, paidAt *time.Time) error {
	inv := t.invoices[id]
	inv.Status = status
	inv.PaidAt = paidAt
	t.invoices[id] = inv

	return nil
}

func (t *fakeTx) LockWorkOrder(_ context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	wo, ok := t.repo.workOrders[id]
	if !ok {
		return nil, workorder.ErrNotFound
	}

	return &wo, nil
}

func (t *fakeTx) FindByWorkOrder(_ context.Context, workOrderID uuid.UUID) (*invoice.Invoice, error) {
	for _, inv := range t.invoices {
		if inv.WorkOrderID != nil && *inv.WorkOrderID == workOrderID {
			return &inv, nil
		}
	}

	return nil, invoice.ErrNotFound
}

func (t *fakeTx) LockDue(_ context.Context, asOf time.Time) ([]*invoice.Invoice, error) {
	var due []*invoice.Invoice

	for _, inv := range t.invoices {
		if inv.Status == invoice.StatusSent && inv.DueAt.Before(asOf) {
			due = append(due, &inv)
		}
	}

	return due, nil
}

func (t *fakeTx) Record(_ context.Context, e *activity.Entry) error {
	if t.repo.failRecord {
		return errors.New("audit write failed")
	}

	t.log = append(t.log, e)

	return nil
}

func (t *fakeTx) Commit() error {
	t.repo.invoices = t.invoices
	t.repo.payments = t.payments
	t.repo.log = append(t.repo.log, t.log...)
	t.repo.seq = t.seq
	t.release()

	return nil
}

func (t *fakeTx) Rollback() error {
	t.release()
	return nil
}

func (t *fakeTx) release() {
	if !t.done {
		t.done = true
		t.repo.lock.Unlock()
	}
}

func manager() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Name: "Lee", Role: auth.RoleManager})
}

var issued = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

func openInvoice(amount int64) invoice.Invoice {
	return invoice.Invoice{
		ID:          uuid.New(),
		Number:      "INV-001",
		AmountCents: amount,
		Status:      invoice.StatusSent,
		IssuedAt:    issued,
		DueAt:       issued.AddDate(0, 0, 30),
		ClientID:    uuid.New(),
	}
}

func TestService_Settle_Scenario(t *testing.T) {
	inv := openInvoice(100000)
	repo := newFakeRepo(inv)
	svc := invoice.NewService(repo)

	first := issued.Add(24 * time.Hour)
	second := issued.Add(48 * time.Hour)
	third := issued.Add(72 * time.Hour)

	res, err := svc.Settle(manager(), invoice.SettleParams{InvoiceID: inv.ID, AmountCents: 40000, PaidAt: &first})
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPartial, res.Invoice.Status)
	assert.Nil(t, res.Invoice.PaidAt)
	assert.Equal(t, int64(60000), res.BalanceCents())
	assert.Equal(t, invoice.ProcessorManual, res.Payment.Processor)

	res, err = svc.Settle(manager(), invoice.SettleParams{InvoiceID: inv.ID, AmountCents: 60000, PaidAt: &second})
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPaid, res.Invoice.Status)
	require.NotNil(t, res.Invoice.PaidAt)
	assert.Equal(t, second, *res.Invoice.PaidAt)

	res, err = svc.Settle(manager(), invoice.SettleParams{InvoiceID: inv.ID, AmountCents: 10000, PaidAt: &third})
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPaid, res.Invoice.Status)
	assert.Equal(t, second, *res.Invoice.PaidAt, "paid_at is kept from the payment that completed the invoice")
	assert.Equal(t, int64(110000), res.SettledCents)
	assert.Equal(t, int64(-10000), res.BalanceCents())

	stored := repo.invoices[inv.ID]
	assert.Equal(t, int64(100000), stored.AmountCents)
	assert.Len(t, repo.payments, 3)
	assert.Equal(t, int64(110000), sumSettled(repo.payments, inv.ID))

	require.Len(t, repo.log, 3)

	for _, e := range repo.log {
		assert.Equal(t, activity.ActionSettled, e.Action)
		assert.Equal(t, inv.ID, e.EntityID)
	}

	assert.Contains(t, repo.log[0].Description, "$400.00")
	assert.Contains(t, repo.log[0].Description, "INV-001")
}

func TestService_QuickSettle(t *testing.T) {
	inv := openInvoice(100000)
	repo := newFakeRepo(inv)
	now := issued.Add(time.Hour)
	svc := invoice.NewService(repo, invoice.WithClock(func() time.Time { return now }))

	_, err := svc.Settle(manager(), invoice.SettleParams{InvoiceID: inv.ID, AmountCents: 25000})
	require.NoError(t, err)

	res, err := svc.QuickSettle(manager(), inv.ID)
	require.NoError(t, err)

	assert.False(t, res.AlreadySettled)
	assert.Equal(t, int64(75000), res.Payment.AmountCents)
	assert.Equal(t, invoice.ProcessorManual, res.Payment.Processor)
	assert.Equal(t, invoice.QuickSettleRef, res.Payment.ExternalRef)
	assert.Equal(t, invoice.StatusPaid, res.Invoice.Status)
	assert.Equal(t, now, *res.Invoice.PaidAt)

	again, err := svc.QuickSettle(manager(), inv.ID)
	require.NoError(t, err)

	assert.True(t, again.AlreadySettled)
	assert.Nil(t, again.Payment)
	assert.Equal(t, invoice.StatusPaid, again.Invoice.Status)
	assert.Len(t, repo.payments, 2, "no payment is written for a settled invoice")
	assert.Len(t, repo.log, 2)
}

func TestService_Settle_ConcurrentPayments(t *testing.T) {
	inv := openInvoice(100000)
	repo := newFakeRepo(inv)
	svc := invoice.NewService(repo)

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Settle(manager(), invoice.SettleParams{InvoiceID: inv.ID, AmountCents: 10000})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	stored := repo.invoices[inv.ID]
	assert.Equal(t, invoice.StatusPaid, stored.Status)
	assert.Len(t, repo.payments, 10)
	assert.Equal(t, int64(100000), sumSettled(repo.payments, inv.ID))
}

func TestService_Settle_Rejections(t *testing.T) {
	type testCase struct {
		name    string
		ctx     context.Context
		params  func(id uuid.UUID) invoice.SettleParams
		failLog bool
		wantErr error
	}

	tests := []testCase{
		{
			name:    "anonymous caller",
			ctx:     context.Background(),
			params:  func(id uuid.UUID) invoice.SettleParams { return invoice.SettleParams{InvoiceID: id, AmountCents: 100} },
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "zero amount",
			ctx:     manager(),
			params:  func(id uuid.UUID) invoice.SettleParams { return invoice.SettleParams{InvoiceID: id} },
			wantErr: nil,
		},
		{
			name: "unknown invoice",
			ctx:  manager(),
			params: func(uuid.UUID) invoice.SettleParams {
				return invoice.SettleParams{InvoiceID: uuid.New(), AmountCents: 100}
			},
			wantErr: invoice.ErrNotFound,
		},
		{
			name:    "audit failure",
			ctx:     manager(),
			params:  func(id uuid.UUID) invoice.SettleParams { return invoice.SettleParams{InvoiceID: id, AmountCents: 100} },
			failLog: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := openInvoice(5000)
			repo := newFakeRepo(inv)
			repo.failRecord = tc.failLog
			svc := invoice.NewService(repo)

			_, err := svc.Settle(tc.ctx, tc.params(inv.ID))
			require.Error(t, err)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else if !tc.failLog {
				assert.True(t, apperr.IsValidation(err))
			}

			assert.Empty(t, repo.payments)
			assert.Empty(t, repo.log)
			assert.Equal(t, invoice.StatusSent, repo.invoices[inv.ID].Status)
		})
	}
}

func TestService_Charge(t *testing.T) {
	params := invoice.ChargeParams{CardToken: "tok", PaymentMethodID: "visa", PayerEmail: "pay@example.com"}

	t.Run("approved charge settles the balance and archives the receipt", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		processor := invoice.NewMockProcessor(ctrl)
		receipts := invoice.NewMockReceiptArchive(ctrl)

		inv := openInvoice(30000)
		repo := newFakeRepo(inv)
		svc := invoice.NewService(repo, invoice.WithProcessor(processor), invoice.WithReceiptArchive(receipts))

		processor.EXPECT().
			Charge(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req invoice.ChargeRequest) (*invoice.ChargeOutcome, error) {
				assert.Equal(t, int64(30000), req.AmountCents)
				assert.Equal(t, 1, req.Installments)

				return &invoice.ChargeOutcome{ProviderID: "987", Status: "approved", Approved: true}, nil
			})
		processor.EXPECT().Name().Return("mercadopago")
		receipts.EXPECT().
			Archive(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r invoice.Receipt) error {
				assert.Equal(t, "987", r.ProviderID)
				assert.Equal(t, inv.ID, r.InvoiceID)

				return errors.New("table unavailable")
			})

		res, err := svc.Charge(manager(), inv.ID, params)
		require.NoError(t, err, "a failed archive does not undo the settlement")

		assert.Equal(t, invoice.StatusPaid, res.Invoice.Status)
		assert.Equal(t, "mercadopago", res.Payment.Processor)
		assert.Equal(t, "987", res.Payment.ExternalRef)
		assert.Len(t, repo.payments, 1)
	})

	t.Run("approved charge that cannot be settled is archived unrecorded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		processor := invoice.NewMockProcessor(ctrl)
		receipts := invoice.NewMockReceiptArchive(ctrl)

		inv := openInvoice(30000)
		repo := newFakeRepo(inv)
		repo.failRecord = true
		svc := invoice.NewService(repo, invoice.WithProcessor(processor), invoice.WithReceiptArchive(receipts))

		processor.EXPECT().Charge(gomock.Any(), gomock.Any()).
			Return(&invoice.ChargeOutcome{ProviderID: "989", Status: "approved", Approved: true}, nil)
		processor.EXPECT().Name().Return("mercadopago").AnyTimes()

		var archived []invoice.Receipt
		receipts.EXPECT().
			Archive(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r invoice.Receipt) error {
				archived = append(archived, r)
				return nil
			})

		_, err := svc.Charge(manager(), inv.ID, params)
		require.ErrorIs(t, err, invoice.ErrChargeNotRecorded)
		assert.ErrorContains(t, err, "audit write failed")
		assert.ErrorContains(t, err, "989")
		assert.Empty(t, repo.payments)

		require.Len(t, archived, 1)
		assert.False(t, archived[0].Recorded)
		assert.Equal(t, "989", archived[0].ProviderID)
		assert.Equal(t, inv.ID, archived[0].InvoiceID)
		assert.Equal(t, int64(30000), archived[0].AmountCents)
		assert.NotEqual(t, uuid.Nil, archived[0].PaymentID)
	})

	t.Run("invoice deleted before the charge is settled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		processor := invoice.NewMockProcessor(ctrl)

		inv := openInvoice(30000)
		repo := newFakeRepo(inv)
		svc := invoice.NewService(repo, invoice.WithProcessor(processor))

		processor.EXPECT().Charge(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, invoice.ChargeRequest) (*invoice.ChargeOutcome, error) {
				delete(repo.invoices, inv.ID)
				return &invoice.ChargeOutcome{ProviderID: "990", Status: "approved", Approved: true}, nil
			})
		processor.EXPECT().Name().Return("mercadopago").AnyTimes()

		_, err := svc.Charge(manager(), inv.ID, params)
		require.ErrorIs(t, err, invoice.ErrChargeNotRecorded)
		assert.ErrorIs(t, err, invoice.ErrNotFound)
	})

	t.Run("declined charge writes nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		processor := invoice.NewMockProcessor(ctrl)

		inv := openInvoice(30000)
		repo := newFakeRepo(inv)
		svc := invoice.NewService(repo, invoice.WithProcessor(processor))

		processor.EXPECT().Charge(gomock.Any(), gomock.Any()).
			Return(&invoice.ChargeOutcome{ProviderID: "988", Status: "rejected"}, nil)

		_, err := svc.Charge(manager(), inv.ID, params)
		require.ErrorIs(t, err, invoice.ErrDeclined)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
		assert.Empty(t, repo.payments)
	})

	t.Run("no processor configured", func(t *testing.T) {
		inv := openInvoice(30000)
		svc := invoice.NewService(newFakeRepo(inv))

		_, err := svc.Charge(manager(), inv.ID, params)
		require.ErrorIs(t, err, invoice.ErrNoProcessor)
	})

	t.Run("fully settled invoice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		processor := invoice.NewMockProcessor(ctrl)

		inv := openInvoice(30000)
		repo := newFakeRepo(inv)
		repo.payments = []invoice.Payment{{ID: uuid.New(), InvoiceID: inv.ID, AmountCents: 30000, Status: invoice.PaymentSettled}}
		svc := invoice.NewService(repo, invoice.WithProcessor(processor))

		_, err := svc.Charge(manager(), inv.ID, params)
		require.ErrorIs(t, err, invoice.ErrFullySettled)
	})
}
