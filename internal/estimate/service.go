package estimate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Estimate, error)
	List(ctx context.Context, filter ListFilter) ([]*Estimate, error)

	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	NextNumber(ctx context.Context, prefix string, day time.Time) (string, error)
	CheckReferences(ctx context.Context, refs Refs) error
	Insert(ctx context.Context, e *Estimate) error
	Lock(ctx context.Context, id uuid.UUID) (*Estimate, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetWorkOrder(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error)
	InsertWorkOrder(ctx context.Context, wo *workorder.WorkOrder) error
	MarkConverted(ctx context.Context, id, workOrderID uuid.UUID) error

	Record(ctx context.Context, e *activity.Entry) error
	Commit() error
	Rollback() error
}

// Refs are the optional records an estimate points at. Nil fields are not checked.
type Refs struct {
	ClientID   *uuid.UUID
	PropertyID *uuid.UUID
	LeadID     *uuid.UUID
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type ListFilter struct {
	Status   *Status
	ClientID *uuid.UUID
}

type CreateParams struct {
	Title       string     `json:"title" validate:"required,max=200"`
	AmountCents int64      `json:"amount_cents" validate:"gte=0"`
	Status      Status     `json:"status"`
	ValidUntil  *time.Time `json:"valid_until"`
	ClientID    *uuid.UUID `json:"client_id"`
	PropertyID  *uuid.UUID `json:"property_id"`
	LeadID      *uuid.UUID `json:"lead_id"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Estimate, error) {
	p, err := auth.Authorize(ctx, auth.OpManageEstimates)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	status := StatusDraft
	if params.Status != "" {
		if status, err = ParseStatus(string(params.Status)); err != nil {
			return nil, err
		}

		if status == StatusConverted {
			return nil, fmt.Errorf("%w: estimates are converted through conversion only", ErrInvalidTransition)
		}
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin estimate create: %w", err)
	}
	defer tx.Rollback()

	if err := tx.CheckReferences(ctx, Refs{ClientID: params.ClientID, PropertyID: params.PropertyID, LeadID: params.LeadID}); err != nil {
		return nil, err
	}

	number, err := tx.NextNumber(ctx, NumberPrefix, s.now())
	if err != nil {
		return nil, err
	}

	est := &Estimate{
		ID:          uuid.New(),
		Number:      number,
		Title:       params.Title,
		AmountCents: params.AmountCents,
		Status:      status,
		ValidUntil:  params.ValidUntil,
		ClientID:    params.ClientID,
		PropertyID:  params.PropertyID,
		LeadID:      params.LeadID,
	}

	if err := tx.Insert(ctx, est); err != nil {
		return nil, fmt.Errorf("insert estimate: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityEstimate, est.ID, activity.SeverityInfo,
		"Estimate %s created for %s", est.Number, money.Format(est.AmountCents))
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit estimate create: %w", err)
	}

	return est, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Estimate, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageEstimates); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Estimate, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageEstimates); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, filter)
}

// UpdateStatus applies a manual lifecycle change. A converted estimate is frozen and converted can
// only be reached through Convert.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Estimate, error) {
	p, err := auth.Authorize(ctx, auth.OpManageEstimates)
	if err != nil {
		return nil, err
	}

	status, err = ParseStatus(string(status))
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin estimate status update: %w", err)
	}
	defer tx.Rollback()

	est, err := tx.Lock(ctx, id)
	if err != nil {
		return nil, err
	}

	if est.Status == StatusConverted {
		return nil, ErrFrozen
	}

	if est.Status == status {
		return est, nil
	}

	if !CanTransition(est.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, est.Status, status)
	}

	if err := tx.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update estimate status: %w", err)
	}

	severity := activity.SeverityInfo
	if status == StatusRejected || status == StatusExpired {
		severity = activity.SeverityWarning
	}

	entry := activity.NewEntry(p, activity.ActionStatusChanged, activity.EntityEstimate, id, severity,
		"Estimate %s moved from %s to %s", est.Number, est.Status, status)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit estimate status update: %w", err)
	}

	est.Status = status

	return est, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := auth.Authorize(ctx, auth.OpDelete)
	if err != nil {
		return err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin estimate delete: %w", err)
	}
	defer tx.Rollback()

	est, err := tx.Lock(ctx, id)
	if err != nil {
		return err
	}

	if err := tx.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionDeleted, activity.EntityEstimate, id, activity.SeverityWarning,
		"Estimate %s deleted", est.Number)
	if err := tx.Record(ctx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit estimate delete: %w", err)
	}

	return nil
}
