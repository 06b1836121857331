package estimate_test

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

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

// fakeRepo is an in-memory ledger. Begin takes a repository-wide lock that stands in for the row
// locks of the real store; it is released on Commit or Rollback.
type fakeRepo struct {
	lock sync.Mutex

	estimates  map[uuid.UUID]estimate.Estimate
	workOrders map[uuid.UUID]workorder.WorkOrder
	log        []*activity.Entry
	seq        int

	failInsertWorkOrder bool
	failRecord          bool
}

func newFakeRepo(ests ...estimate.Estimate) *fakeRepo {
	r := &fakeRepo{
		estimates:  map[uuid.UUID]estimate.Estimate{},
		workOrders: map[uuid.UUID]workorder.WorkOrder{},
	}

	for _, e := range ests {
		r.estimates[e.ID] = e
	}

	return r
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	e, ok := r.estimates[id]
	if !ok {
		return nil, estimate.ErrNotFound
	}

	return &e, nil
}

func (r *fakeRepo) List(context.Context, estimate.ListFilter) ([]*estimate.Estimate, error) {
	return nil, nil
}

func (r *fakeRepo) Begin(context.Context) (estimate.Tx, error) {
	r.lock.Lock()

	return &fakeTx{
		repo:       r,
		estimates:  maps.Clone(r.estimates),
		workOrders: maps.Clone(r.workOrders),
		seq:        r.seq,
	}, nil
}

type fakeTx struct {
	repo       *fakeRepo
	estimates  map[uuid.UUID]estimate.Estimate
	workOrders map[uuid.UUID]workorder.WorkOrder
	log        []*activity.Entry
	seq        int
	done       bool
}

func (t *fakeTx) NextNumber(_ context.Context, prefix string, day time.Time) (string, error) {
	t.seq++
	return fmt.Sprintf("%s-%s-%03d", prefix, day.UTC().Format("20060102"), t.seq), nil
}

func (t *fakeTx) CheckReferences(context.Context, estimate.Refs) error { return nil }

func (t *fakeTx) Insert(_ context.Context, e *estimate.Estimate) error {
	t.estimates[e.ID] = *e
	return nil
}

func (t *fakeTx) Lock(_ context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	e, ok := t.estimates[id]
	if !ok {
		return nil, estimate.ErrNotFound
	}

	return &e, nil
}

func (t *fakeTx) UpdateStatus(_ context.Context, id uuid.UUID, status estimate.Status) error {
	e := t.estimates[id]
	e.Status = status
	t.estimates[id] = e

	return nil
}

func (t *fakeTx) Delete(_ context.Context, id uuid.UUID) error {
	delete(t.estimates, id)
	return nil
}

func (t *fakeTx) GetWorkOrder(_ context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	wo, ok := t.workOrders[id]
	if !ok {
		return nil, workorder.ErrNotFound
	}

	return &wo, nil
}

func (t *fakeTx) InsertWorkOrder(_ context.Context, wo *workorder.WorkOrder) error {
	if t.repo.failInsertWorkOrder {
		return errors.New("insert failed")
	}

	t.workOrders[wo.ID] = *wo

	return nil
}

func (t *fakeTx) MarkConverted(_ context.Context, id, workOrderID uuid.UUID) error {
	e := t.estimates[id]
	if e.ConvertedWorkOrderID != nil {
		return errors.New("already converted")
	}

	e.Status = estimate.StatusConverted
	e.ConvertedWorkOrderID = &workOrderID
	t.estimates[id] = e

	return nil
}

func (t *fakeTx) Record(_ context.Context, e *activity.Entry) error {
	if t.repo.failRecord {
		return errors.New("audit write failed")
	}

	t.log = append(t.log, e)

	return nil
}

func (t *fakeTx) Commit() error {
	t.repo.estimates = t.estimates
	t.repo.workOrders = t.workOrders
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

func sentEstimate() estimate.Estimate {
	return estimate.Estimate{
		ID:          uuid.New(),
		Number:      "EST-001",
		Title:       "Roof inspection",
		AmountCents: 50000,
		Status:      estimate.StatusSent,
		ClientID:    new(uuid.New()),
		PropertyID:  new(uuid.New()),
	}
}

func TestService_Convert_Scenario(t *testing.T) {
	est := sentEstimate()
	repo := newFakeRepo(est)
	svc := estimate.NewService(repo)

	first, err := svc.Convert(manager(), est.ID)
	require.NoError(t, err)

	assert.False(t, first.AlreadyConverted)
	assert.Equal(t, workorder.StatusBacklog, first.WorkOrder.Status)
	assert.Equal(t, workorder.PriorityMedium, first.WorkOrder.Priority)
	assert.Equal(t, int64(50000), first.WorkOrder.ValueCents)
	assert.Equal(t, est.ClientID, first.WorkOrder.ClientID)
	assert.Equal(t, est.PropertyID, first.WorkOrder.PropertyID)
	assert.Regexp(t, `^WO-\d{8}-\d{3}$`, first.WorkOrder.Code)

	stored := repo.estimates[est.ID]
	assert.Equal(t, estimate.StatusConverted, stored.Status)
	require.NotNil(t, stored.ConvertedWorkOrderID)
	assert.Equal(t, first.WorkOrder.ID, *stored.ConvertedWorkOrderID)

	require.Len(t, repo.log, 1)
	assert.Equal(t, activity.ActionConverted, repo.log[0].Action)
	assert.Equal(t, activity.SeveritySuccess, repo.log[0].Severity)

	second, err := svc.Convert(manager(), est.ID)
	require.NoError(t, err)

	assert.True(t, second.AlreadyConverted)
	assert.Equal(t, first.WorkOrder.ID, second.WorkOrder.ID)
	assert.Len(t, repo.workOrders, 1)
	assert.Len(t, repo.log, 1, "the retry path writes nothing")
}

func TestService_Convert_ConcurrentCallsCreateOneWorkOrder(t *testing.T) {
	est := sentEstimate()
	repo := newFakeRepo(est)
	svc := estimate.NewService(repo)

	const callers = 8

	results := make([]*estimate.ConversionResult, callers)

	var wg sync.WaitGroup

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := svc.Convert(manager(), est.ID)
			assert.NoError(t, err)

			results[i] = res
		}()
	}

	wg.Wait()

	assert.Len(t, repo.workOrders, 1)

	fresh := 0

	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, results[0].WorkOrder.ID, res.WorkOrder.ID)

		if !res.AlreadyConverted {
			fresh++
		}
	}

	assert.Equal(t, 1, fresh)
}

func TestService_Convert_FailureLeavesNoPartialState(t *testing.T) {
	type testCase struct {
		name  string
		setup func(r *fakeRepo)
	}

	tests := []testCase{
		{name: "WorkOrderInsertFails", setup: func(r *fakeRepo) { r.failInsertWorkOrder = true }},
		{name: "AuditWriteFails", setup: func(r *fakeRepo) { r.failRecord = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := sentEstimate()
			repo := newFakeRepo(est)
			tt.setup(repo)

			_, err := estimate.NewService(repo).Convert(manager(), est.ID)
			require.Error(t, err)

			assert.Empty(t, repo.workOrders)
			assert.Equal(t, estimate.StatusSent, repo.estimates[est.ID].Status)
			assert.Nil(t, repo.estimates[est.ID].ConvertedWorkOrderID)
			assert.Empty(t, repo.log)
		})
	}
}

func TestService_Convert_Rejections(t *testing.T) {
	rejected := sentEstimate()
	rejected.Status = estimate.StatusRejected

	type testCase struct {
		name    string
		ctx     context.Context
		id      uuid.UUID
		wantErr error
	}

	repo := newFakeRepo(rejected)

	tests := []testCase{
		{name: "Missing", ctx: manager(), id: uuid.New(), wantErr: apperr.ErrNotFound},
		{name: "Rejected", ctx: manager(), id: rejected.ID, wantErr: estimate.ErrNotConvertible},
		{name: "ClientRole", ctx: auth.WithPrincipal(context.Background(), auth.Principal{Role: auth.RoleClient}), id: rejected.ID, wantErr: auth.ErrUnauthorized},
		{name: "Anonymous", ctx: context.Background(), id: rejected.ID, wantErr: auth.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := estimate.NewService(repo).Convert(tt.ctx, tt.id)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.workOrders)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	est := sentEstimate()
	repo := newFakeRepo(est)
	svc := estimate.NewService(repo)

	_, err := svc.UpdateStatus(manager(), est.ID, estimate.StatusConverted)
	assert.ErrorIs(t, err, estimate.ErrInvalidTransition)

	got, err := svc.UpdateStatus(manager(), est.ID, estimate.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, estimate.StatusApproved, got.Status)

	_, err = svc.Convert(manager(), est.ID)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(manager(), est.ID, estimate.StatusDraft)
	assert.ErrorIs(t, err, estimate.ErrFrozen)
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	svc := estimate.NewService(repo)

	est, err := svc.Create(manager(), estimate.CreateParams{Title: "Pressure wash", AmountCents: 32000})
	require.NoError(t, err)
	assert.Equal(t, estimate.StatusDraft, est.Status)
	assert.Regexp(t, `^EST-\d{8}-001$`, est.Number)

	_, err = svc.Create(manager(), estimate.CreateParams{Title: "x", Status: estimate.StatusConverted})
	assert.ErrorIs(t, err, estimate.ErrInvalidTransition)

	_, err = svc.Create(manager(), estimate.CreateParams{AmountCents: -5})
	assert.True(t, apperr.IsValidation(err))
}
