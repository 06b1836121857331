package lead

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=lead
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is a unit of work over leads. Every mutation is recorded in the same transaction.
type Tx interface {
	Insert(ctx context.Context, l *Lead) error
	Lock(ctx context.Context, id uuid.UUID) (*Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
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

type CreateParams struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Company string `json:"company" validate:"max=200"`
	Service string `json:"service" validate:"max=200"`
	Message string `json:"message" validate:"max=5000"`
	Source  string `json:"source" validate:"max=100"`
}

type ListFilter struct {
	Status *Status
	Search string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Lead, error) {
	p, err := auth.Authorize(ctx, auth.OpManageLeads)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin lead create: %w", err)
	}
	defer tx.Rollback()

	l := FromParams(params)

	if err := tx.Insert(ctx, l); err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityLead, l.ID, activity.SeverityInfo,
		"Lead %s created", l.Name)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lead create: %w", err)
	}

	return l, nil
}

// FromParams builds a new lead in status new. The caller inserts it.
func FromParams(params CreateParams) *Lead {
	return &Lead{
		ID:      uuid.New(),
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Company: params.Company,
		Service: params.Service,
		Message: params.Message,
		Source:  params.Source,
		Status:  StatusNew,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageLeads); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageLeads); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, filter)
}

// UpdateStatus moves a lead along its lifecycle. Setting the current status again is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Lead, error) {
	p, err := auth.Authorize(ctx, auth.OpManageLeads)
	if err != nil {
		return nil, err
	}

	status, err = ParseStatus(string(status))
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin lead status update: %w", err)
	}
	defer tx.Rollback()

	l, err := tx.Lock(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.Status == status {
		return l, nil
	}

	if !CanTransition(l.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, l.Status, status)
	}

	if err := tx.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update lead status: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionStatusChanged, activity.EntityLead, id, severityFor(status),
		"Lead %s moved from %s to %s", l.Name, l.Status, status)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lead status update: %w", err)
	}

	l.Status = status

	return l, nil
}

func severityFor(status Status) activity.Severity {
	switch status {
	case StatusWon:
		return activity.SeveritySuccess
	case StatusLost:
		return activity.SeverityWarning
	}

	return activity.SeverityInfo
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := auth.Authorize(ctx, auth.OpDelete)
	if err != nil {
		return err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin lead delete: %w", err)
	}
	defer tx.Rollback()

	l, err := tx.Lock(ctx, id)
	if err != nil {
		return err
	}

	if err := tx.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionDeleted, activity.EntityLead, id, activity.SeverityWarning,
		"Lead %s deleted", l.Name)
	if err := tx.Record(ctx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lead delete: %w", err)
	}

	return nil
}
