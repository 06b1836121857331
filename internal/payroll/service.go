package payroll

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	List(ctx context.Context) ([]*Run, error)
	Entries(ctx context.Context, runID uuid.UUID) ([]*Entry, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is one unit of work over payroll. Locks are taken entry first, then runs in id order.
type Tx interface {
	InsertRun(ctx context.Context, r *Run) error
	LockRuns(ctx context.Context, ids ...uuid.UUID) ([]*Run, error)
	AdjustTotal(ctx context.Context, runID uuid.UUID, deltaCents int64) error

	EmployeeExists(ctx context.Context, id uuid.UUID) error
	LockEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	InsertEntry(ctx context.Context, e *Entry) error
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	Record(ctx context.Context, e *activity.Entry) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type RunParams struct {
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required,gtefield=PeriodStart"`
}

type EntryParams struct {
	EmployeeID uuid.UUID       `json:"employee_id" validate:"required"`
	Hours      decimal.Decimal `json:"hours"`
	GrossCents int64           `json:"gross_cents" validate:"min=0"`
}

// UpdateEntryParams changes only the fields that are set. Setting RunID moves the entry to
// another run.
type UpdateEntryParams struct {
	RunID      *uuid.UUID       `json:"run_id"`
	Hours      *decimal.Decimal `json:"hours"`
	GrossCents *int64           `json:"gross_cents" validate:"omitempty,min=0"`
}

func checkHours(h decimal.Decimal) error {
	if h.IsNegative() {
		return apperr.Invalid("hours: must be at least 0")
	}

	return nil
}

func (s *Service) CreateRun(ctx context.Context, params RunParams) (*Run, error) {
	p, err := auth.Authorize(ctx, auth.OpManagePayroll)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payroll run: %w", err)
	}
	defer tx.Rollback()

	r := &Run{ID: uuid.New(), PeriodStart: params.PeriodStart, PeriodEnd: params.PeriodEnd}

	if err := tx.InsertRun(ctx, r); err != nil {
		return nil, fmt.Errorf("insert payroll run: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityPayrollRun, r.ID, activity.SeverityInfo,
		"Payroll run %s to %s opened", r.PeriodStart.Format(time.DateOnly), r.PeriodEnd.Format(time.DateOnly))
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payroll run: %w", err)
	}

	return r, nil
}

func (s *Service) AddEntry(ctx context.Context, runID uuid.UUID, params EntryParams) (*Entry, error) {
	p, err := auth.Authorize(ctx, auth.OpManagePayroll)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if err := checkHours(params.Hours); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payroll entry: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.LockRuns(ctx, runID); err != nil {
		return nil, err
	}

	if err := tx.EmployeeExists(ctx, params.EmployeeID); err != nil {
		return nil, err
	}

	e := &Entry{
		ID:         uuid.New(),
		RunID:      runID,
		EmployeeID: params.EmployeeID,
		Hours:      params.Hours,
		GrossCents: params.GrossCents,
	}

	if err := tx.InsertEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("insert payroll entry: %w", err)
	}

	if err := tx.AdjustTotal(ctx, runID, e.GrossCents); err != nil {
		return nil, err
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityPayrollEntry, e.ID, activity.SeverityInfo,
		"Payroll entry of %s (%s h) added", money.Format(e.GrossCents), e.Hours.StringFixed(2))
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payroll entry: %w", err)
	}

	return e, nil
}

func (s *Service) UpdateEntry(ctx context.Context, id uuid.UUID, params UpdateEntryParams) (*Entry, error) {
	p, err := auth.Authorize(ctx, auth.OpManagePayroll)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if params.Hours != nil {
		if err := checkHours(*params.Hours); err != nil {
			return nil, err
		}
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payroll entry update: %w", err)
	}
	defer tx.Rollback()

	e, err := tx.LockEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	oldRun, oldGross := e.RunID, e.GrossCents

	if params.RunID != nil {
		e.RunID = *params.RunID
	}

	if params.Hours != nil {
		e.Hours = *params.Hours
	}

	if params.GrossCents != nil {
		e.GrossCents = *params.GrossCents
	}

	runs := []uuid.UUID{oldRun}
	if e.RunID != oldRun {
		runs = append(runs, e.RunID)
	}

	slices.SortFunc(runs, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })

	if _, err := tx.LockRuns(ctx, runs...); err != nil {
		return nil, err
	}

	if err := tx.UpdateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("update payroll entry: %w", err)
	}

	if e.RunID == oldRun {
		if delta := e.GrossCents - oldGross; delta != 0 {
			if err := tx.AdjustTotal(ctx, e.RunID, delta); err != nil {
				return nil, err
			}
		}
	} else {
		if err := tx.AdjustTotal(ctx, oldRun, -oldGross); err != nil {
			return nil, err
		}

		if err := tx.AdjustTotal(ctx, e.RunID, e.GrossCents); err != nil {
			return nil, err
		}
	}

	entry := activity.NewEntry(p, activity.ActionUpdated, activity.EntityPayrollEntry, e.ID, activity.SeverityInfo,
		"Payroll entry changed from %s to %s", money.Format(oldGross), money.Format(e.GrossCents))
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payroll entry update: %w", err)
	}

	return e, nil
}

func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	p, err := auth.Authorize(ctx, auth.OpManagePayroll)
	if err != nil {
		return err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin payroll entry delete: %w", err)
	}
	defer tx.Rollback()

	e, err := tx.LockEntry(ctx, id)
	if err != nil {
		return err
	}

	if _, err := tx.LockRuns(ctx, e.RunID); err != nil {
		return err
	}

	if err := tx.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete payroll entry: %w", err)
	}

	if err := tx.AdjustTotal(ctx, e.RunID, -e.GrossCents); err != nil {
		return err
	}

	entry := activity.NewEntry(p, activity.ActionDeleted, activity.EntityPayrollEntry, id, activity.SeverityWarning,
		"Payroll entry of %s removed", money.Format(e.GrossCents))
	if err := tx.Record(ctx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payroll entry delete: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*RunDetail, error) {
	if _, err := auth.Authorize(ctx, auth.OpManagePayroll); err != nil {
		return nil, err
	}

	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.Entries(ctx, id)
	if err != nil {
		return nil, err
	}

	return &RunDetail{Run: r, Entries: entries}, nil
}

func (s *Service) List(ctx context.Context) ([]*Run, error) {
	if _, err := auth.Authorize(ctx, auth.OpManagePayroll); err != nil {
		return nil, err
	}

	return s.repo.List(ctx)
}
