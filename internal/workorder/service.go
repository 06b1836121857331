package workorder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=workorder
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	List(ctx context.Context, filter ListFilter) ([]*WorkOrder, error)
	ScheduleItems(ctx context.Context, workOrderID uuid.UUID) ([]*ScheduleItem, error)
	Board(ctx context.Context, from, to time.Time) ([]*BoardEntry, error)

	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	NextCode(ctx context.Context, prefix string, day time.Time) (string, error)
	CheckReferences(ctx context.Context, refs Refs) error
	Insert(ctx context.Context, wo *WorkOrder) error
	Lock(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Assign(ctx context.Context, id uuid.UUID, employeeID *uuid.UUID) error
	SetActualHours(ctx context.Context, id uuid.UUID, hours decimal.Decimal) error
	InsertScheduleItem(ctx context.Context, item *ScheduleItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	Record(ctx context.Context, e *activity.Entry) error
	Commit() error
	Rollback() error
}

// Refs are the optional records a work order points at. Nil fields are not checked.
type Refs struct {
	ClientID   *uuid.UUID
	PropertyID *uuid.UUID
	EmployeeID *uuid.UUID
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type ListFilter struct {
	Status     *Status
	EmployeeID *uuid.UUID
	ClientID   *uuid.UUID
}

type CreateParams struct {
	Title              string          `json:"title" validate:"required,max=200"`
	Description        string          `json:"description" validate:"max=5000"`
	Priority           Priority        `json:"priority"`
	EstimatedHours     decimal.Decimal `json:"estimated_hours"`
	ValueCents         int64           `json:"value_cents" validate:"gte=0"`
	ClientID           *uuid.UUID      `json:"client_id"`
	PropertyID         *uuid.UUID      `json:"property_id"`
	AssignedEmployeeID *uuid.UUID      `json:"assigned_employee_id"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*WorkOrder, error) {
	p, err := auth.Authorize(ctx, auth.OpManageWork)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if params.EstimatedHours.IsNegative() {
		return nil, apperr.Invalid("estimated_hours: must be at least 0")
	}

	priority := PriorityMedium
	if params.Priority != "" {
		if priority, err = ParsePriority(string(params.Priority)); err != nil {
			return nil, err
		}
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin work order create: %w", err)
	}
	defer tx.Rollback()

	refs := Refs{ClientID: params.ClientID, PropertyID: params.PropertyID, EmployeeID: params.AssignedEmployeeID}
	if err := tx.CheckReferences(ctx, refs); err != nil {
		return nil, err
	}

	code, err := tx.NextCode(ctx, CodePrefix, s.now())
	if err != nil {
		return nil, err
	}

	wo := &WorkOrder{
		ID:                 uuid.New(),
		Code:               code,
		Title:              params.Title,
		Description:        params.Description,
		Priority:           priority,
		Status:             StatusBacklog,
		EstimatedHours:     params.EstimatedHours,
		ValueCents:         params.ValueCents,
		ClientID:           params.ClientID,
		PropertyID:         params.PropertyID,
		AssignedEmployeeID: params.AssignedEmployeeID,
	}

	if err := tx.Insert(ctx, wo); err != nil {
		return nil, fmt.Errorf("insert work order: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityWorkOrder, wo.ID, activity.SeverityInfo,
		"Work order %s created: %s", wo.Code, wo.Title)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit work order create: %w", err)
	}

	return wo, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WorkOrder, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*WorkOrder, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, filter)
}

func (s *Service) ScheduleItems(ctx context.Context, id uuid.UUID) ([]*ScheduleItem, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	return s.repo.ScheduleItems(ctx, id)
}

// Board lists the schedule items starting in [from, to) in start order. It is a plain calendar
// list; nothing is optimized or rearranged.
func (s *Service) Board(ctx context.Context, from, to time.Time) ([]*BoardEntry, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	if !to.After(from) {
		return nil, apperr.Invalid("to: must be after from")
	}

	return s.repo.Board(ctx, from, to)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*WorkOrder, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	status, err := ParseStatus(string(status))
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(ctx context.Context, tx Tx, wo *WorkOrder) (*activity.Entry, error) {
		if wo.Status == status {
			return nil, nil
		}

		if !CanTransition(wo.Status, status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, wo.Status, status)
		}

		if err := tx.UpdateStatus(ctx, wo.ID, status); err != nil {
			return nil, fmt.Errorf("update work order status: %w", err)
		}

		from := wo.Status
		wo.Status = status

		severity := activity.SeverityInfo
		switch status {
		case StatusCompleted:
			severity = activity.SeveritySuccess
		case StatusCanceled, StatusOnHold:
			severity = activity.SeverityWarning
		}

		return s.entry(ctx, activity.ActionStatusChanged, wo, severity, "Work order %s moved from %s to %s", wo.Code, from, status), nil
	})
}

// Assign sets or clears (nil) the employee responsible for the order.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, employeeID *uuid.UUID) (*WorkOrder, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(ctx context.Context, tx Tx, wo *WorkOrder) (*activity.Entry, error) {
		if wo.Status.Closed() {
			return nil, ErrClosed
		}

		if err := tx.CheckReferences(ctx, Refs{EmployeeID: employeeID}); err != nil {
			return nil, err
		}

		if err := tx.Assign(ctx, wo.ID, employeeID); err != nil {
			return nil, fmt.Errorf("assign work order: %w", err)
		}

		wo.AssignedEmployeeID = employeeID

		if employeeID == nil {
			return s.entry(ctx, activity.ActionAssigned, wo, activity.SeverityInfo, "Work order %s unassigned", wo.Code), nil
		}

		return s.entry(ctx, activity.ActionAssigned, wo, activity.SeverityInfo, "Work order %s assigned", wo.Code), nil
	})
}

// LogHours adds worked hours to the order's actual total.
func (s *Service) LogHours(ctx context.Context, id uuid.UUID, hours decimal.Decimal) (*WorkOrder, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	if !hours.IsPositive() {
		return nil, apperr.Invalid("hours: must be greater than 0")
	}

	return s.mutate(ctx, id, func(ctx context.Context, tx Tx, wo *WorkOrder) (*activity.Entry, error) {
		if wo.Status == StatusCanceled {
			return nil, ErrClosed
		}

		total := wo.ActualHours.Add(hours)
		if err := tx.SetActualHours(ctx, wo.ID, total); err != nil {
			return nil, fmt.Errorf("log hours: %w", err)
		}

		wo.ActualHours = total

		return s.entry(ctx, activity.ActionUpdated, wo, activity.SeverityInfo, "%s hours logged on %s", hours.String(), wo.Code), nil
	})
}

type ScheduleParams struct {
	EmployeeID *uuid.UUID `json:"employee_id"`
	StartsAt   time.Time  `json:"starts_at" validate:"required"`
	EndsAt     time.Time  `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Notes      string     `json:"notes" validate:"max=2000"`
}

// AddScheduleItem books a calendar slot. An order still in the backlog becomes scheduled.
func (s *Service) AddScheduleItem(ctx context.Context, id uuid.UUID, params ScheduleParams) (*ScheduleItem, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	var item *ScheduleItem

	_, err := s.mutate(ctx, id, func(ctx context.Context, tx Tx, wo *WorkOrder) (*activity.Entry, error) {
		if wo.Status.Closed() {
			return nil, ErrClosed
		}

		employeeID := params.EmployeeID
		if employeeID == nil {
			employeeID = wo.AssignedEmployeeID
		}

		if err := tx.CheckReferences(ctx, Refs{EmployeeID: employeeID}); err != nil {
			return nil, err
		}

		item = &ScheduleItem{
			ID:          uuid.New(),
			WorkOrderID: wo.ID,
			EmployeeID:  employeeID,
			StartsAt:    params.StartsAt,
			EndsAt:      params.EndsAt,
			Notes:       params.Notes,
		}

		if err := tx.InsertScheduleItem(ctx, item); err != nil {
			return nil, fmt.Errorf("insert schedule item: %w", err)
		}

		if wo.Status == StatusBacklog {
			if err := tx.UpdateStatus(ctx, wo.ID, StatusScheduled); err != nil {
				return nil, fmt.Errorf("update work order status: %w", err)
			}

			wo.Status = StatusScheduled
		}

		return s.entry(ctx, activity.ActionScheduled, wo, activity.SeverityInfo, "Work order %s scheduled for %s",
			wo.Code, item.StartsAt.UTC().Format("2006-01-02 15:04")), nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := auth.Authorize(ctx, auth.OpDelete)
	if err != nil {
		return err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin work order delete: %w", err)
	}
	defer tx.Rollback()

	wo, err := tx.Lock(ctx, id)
	if err != nil {
		return err
	}

	if err := tx.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete work order: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionDeleted, activity.EntityWorkOrder, id, activity.SeverityWarning,
		"Work order %s deleted", wo.Code)
	if err := tx.Record(ctx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit work order delete: %w", err)
	}

	return nil
}

// mutation changes a locked work order and returns the entry describing the change, or nil when
// nothing changed.
type mutation func(ctx context.Context, tx Tx, wo *WorkOrder) (*activity.Entry, error)

// Callers authorize before calling mutate.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn mutation) (*WorkOrder, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin work order update: %w", err)
	}
	defer tx.Rollback()

	wo, err := tx.Lock(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := fn(ctx, tx, wo)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		return wo, nil
	}

	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit work order update: %w", err)
	}

	return wo, nil
}

func (s *Service) entry(ctx context.Context, action string, wo *WorkOrder, severity activity.Severity, format string, args ...any) *activity.Entry {
	p, _ := auth.FromContext(ctx)
	return activity.NewEntry(p, action, activity.EntityWorkOrder, wo.ID, severity, format, args...)
}
