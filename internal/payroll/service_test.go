package payroll_test

import (
	"context"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/employee"
	"github.com/MrJamesThe3rd/upkeep/internal/payroll"
)

type fakeRepo struct {
	lock sync.Mutex

	runs      map[uuid.UUID]payroll.Run
	entries   map[uuid.UUID]payroll.Entry
	employees map[uuid.UUID]bool
	log       []*activity.Entry
}

func newFakeRepo(employees ...uuid.UUID) *fakeRepo {
	r := &fakeRepo{
		runs:      map[uuid.UUID]payroll.Run{},
		entries:   map[uuid.UUID]payroll.Entry{},
		employees: map[uuid.UUID]bool{},
	}

	for _, id := range employees {
		r.employees[id] = true
	}

	return r
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*payroll.Run, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, payroll.ErrRunNotFound
	}

	return &run, nil
}

func (r *fakeRepo) List(context.Context) ([]*payroll.Run, error) { return nil, nil }

func (r *fakeRepo) Entries(_ context.Context, runID uuid.UUID) ([]*payroll.Entry, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var out []*payroll.Entry

	for _, e := range r.entries {
		if e.RunID == runID {
			out = append(out, &e)
		}
	}

	return out, nil
}

func (r *fakeRepo) Begin(context.Context) (payroll.Tx, error) {
	r.lock.Lock()

	return &fakeTx{repo: r, runs: maps.Clone(r.runs), entries: maps.Clone(r.entries)}, nil
}

type fakeTx struct {
	repo    *fakeRepo
	runs    map[uuid.UUID]payroll.Run
	entries map[uuid.UUID]payroll.Entry
	log     []*activity.Entry
	done    bool
}

func (t *fakeTx) InsertRun(_ context.Context, r *payroll.Run) error {
	t.runs[r.ID] = *r
	return nil
}

func (t *fakeTx) LockRuns(_ context.Context, ids ...uuid.UUID) ([]*payroll.Run, error) {
	if !slices.IsSortedFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) }) {
		panic("runs locked out of order")
	}

	var out []*payroll.Run

	for _, id := range ids {
		r, ok := t.runs[id]
		if !ok {
			return nil, payroll.ErrRunNotFound
		}

		out = append(out, &r)
	}

	return out, nil
}

func (t *fakeTx) AdjustTotal(_ context.Context, runID uuid.UUID, delta int64) error {
	r := t.runs[runID]
	r.TotalGrossCents += delta
	t.runs[runID] = r

	return nil
}

func (t *fakeTx) EmployeeExists(_ context.Context, id uuid.UUID) error {
	if !t.repo.employees[id] {
		return employee.ErrNotFound
	}

	return nil
}

func (t *fakeTx) LockEntry(_ context.Context, id uuid.UUID) (*payroll.Entry, error) {
	e, ok := t.entries[id]
	if !ok {
		return nil, payroll.ErrEntryNotFound
	}

	return &e, nil
}

func (t *fakeTx) InsertEntry(_ context.Context, e *payroll.Entry) error {
	t.entries[e.ID] = *e
	return nil
}

func (t *fakeTx) UpdateEntry(_ context.Context, e *payroll.Entry) error {
	t.entries[e.ID] = *e
	return nil
}

func (t *fakeTx) DeleteEntry(_ context.Context, id uuid.UUID) error {
	delete(t.entries, id)
	return nil
}

func (t *fakeTx) Record(_ context.Context, e *activity.Entry) error {
	t.log = append(t.log, e)
	return nil
}

func (t *fakeTx) Commit() error {
	t.repo.runs = t.runs
	t.repo.entries = t.entries
	t.repo.log = append(t.repo.log, t.log...)
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

func (r *fakeRepo) sumEntries(runID uuid.UUID) int64 {
	var total int64

	for _, e := range r.entries {
		if e.RunID == runID {
			total += e.GrossCents
		}
	}

	return total
}

func adminCtx() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Name: "Ash", Role: auth.RoleAdmin})
}

var periodStart = time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

func newRun(t *testing.T, svc *payroll.Service) *payroll.Run {
	t.Helper()

	r, err := svc.CreateRun(adminCtx(), payroll.RunParams{PeriodStart: periodStart, PeriodEnd: periodStart.AddDate(0, 0, 13)})
	require.NoError(t, err)

	return r
}

func TestService_EntryLifecycle(t *testing.T) {
	emp := uuid.New()
	repo := newFakeRepo(emp)
	svc := payroll.NewService(repo)

	first := newRun(t, svc)
	second := newRun(t, svc)

	a, err := svc.AddEntry(adminCtx(), first.ID, payroll.EntryParams{EmployeeID: emp, Hours: decimal.RequireFromString("40"), GrossCents: 120000})
	require.NoError(t, err)

	_, err = svc.AddEntry(adminCtx(), first.ID, payroll.EntryParams{EmployeeID: emp, Hours: decimal.RequireFromString("7.5"), GrossCents: 22500})
	require.NoError(t, err)

	assert.Equal(t, int64(142500), repo.runs[first.ID].TotalGrossCents)

	_, err = svc.UpdateEntry(adminCtx(), a.ID, payroll.UpdateEntryParams{GrossCents: new(int64(100000))})
	require.NoError(t, err)
	assert.Equal(t, int64(122500), repo.runs[first.ID].TotalGrossCents)

	_, err = svc.UpdateEntry(adminCtx(), a.ID, payroll.UpdateEntryParams{RunID: &second.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(22500), repo.runs[first.ID].TotalGrossCents)
	assert.Equal(t, int64(100000), repo.runs[second.ID].TotalGrossCents)

	require.NoError(t, svc.DeleteEntry(adminCtx(), a.ID))
	assert.Equal(t, int64(0), repo.runs[second.ID].TotalGrossCents)

	detail, err := svc.Get(adminCtx(), first.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Entries, 1)
	assert.Equal(t, int64(22500), detail.Run.TotalGrossCents)
}

func TestService_TotalsMatchEntries(t *testing.T) {
	emp := uuid.New()
	repo := newFakeRepo(emp)
	svc := payroll.NewService(repo)

	runs := []uuid.UUID{newRun(t, svc).ID, newRun(t, svc).ID, newRun(t, svc).ID}
	rng := rand.New(rand.NewPCG(7, 11))

	var entries []uuid.UUID

	for range 200 {
		switch op := rng.IntN(4); {
		case op == 0 || len(entries) == 0:
			e, err := svc.AddEntry(adminCtx(), runs[rng.IntN(len(runs))], payroll.EntryParams{
				EmployeeID: emp,
				Hours:      decimal.NewFromInt(int64(rng.IntN(60))),
				GrossCents: int64(rng.IntN(500000)),
			})
			require.NoError(t, err)

			entries = append(entries, e.ID)
		case op == 1:
			idx := rng.IntN(len(entries))
			require.NoError(t, svc.DeleteEntry(adminCtx(), entries[idx]))

			entries = slices.Delete(entries, idx, idx+1)
		case op == 2:
			_, err := svc.UpdateEntry(adminCtx(), entries[rng.IntN(len(entries))], payroll.UpdateEntryParams{
				GrossCents: new(int64(rng.IntN(500000))),
			})
			require.NoError(t, err)
		default:
			_, err := svc.UpdateEntry(adminCtx(), entries[rng.IntN(len(entries))], payroll.UpdateEntryParams{
				RunID:      &runs[rng.IntN(len(runs))],
				GrossCents: new(int64(rng.IntN(500000))),
			})
			require.NoError(t, err)
		}

		for _, id := range runs {
			require.Equal(t, repo.sumEntries(id), repo.runs[id].TotalGrossCents)
		}
	}
}

func TestService_Rejections(t *testing.T) {
	emp := uuid.New()
	repo := newFakeRepo(emp)
	svc := payroll.NewService(repo)
	run := newRun(t, svc)

	type testCase struct {
		name    string
		call    func() error
		wantErr error
	}

	manager := auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Role: auth.RoleManager})

	tests := []testCase{
		{
			name: "ManagersCannotRunPayroll",
			call: func() error {
				_, err := svc.AddEntry(manager, run.ID, payroll.EntryParams{EmployeeID: emp})
				return err
			},
			wantErr: auth.ErrUnauthorized,
		},
		{
			name: "UnknownRun",
			call: func() error {
				_, err := svc.AddEntry(adminCtx(), uuid.New(), payroll.EntryParams{EmployeeID: emp})
				return err
			},
			wantErr: payroll.ErrRunNotFound,
		},
		{
			name: "UnknownEmployee",
			call: func() error {
				_, err := svc.AddEntry(adminCtx(), run.ID, payroll.EntryParams{EmployeeID: uuid.New()})
				return err
			},
			wantErr: employee.ErrNotFound,
		},
		{
			name: "NegativeHours",
			call: func() error {
				_, err := svc.AddEntry(adminCtx(), run.ID, payroll.EntryParams{EmployeeID: emp, Hours: decimal.NewFromInt(-1)})
				return err
			},
		},
		{
			name: "PeriodEndsBeforeItStarts",
			call: func() error {
				_, err := svc.CreateRun(adminCtx(), payroll.RunParams{PeriodStart: periodStart, PeriodEnd: periodStart.AddDate(0, 0, -1)})
				return err
			},
		},
		{
			name: "UnknownEntry",
			call: func() error {
				return svc.DeleteEntry(adminCtx(), uuid.New())
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.True(t, apperr.IsValidation(err))
			}

			assert.Zero(t, repo.runs[run.ID].TotalGrossCents)
		})
	}
}
