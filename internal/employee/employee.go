// Package employee holds the field staff work orders are assigned to and payroll is paid to.
package employee

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

var ErrNotFound = fmt.Errorf("employee %w", apperr.ErrNotFound)

type Employee struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

//go:generate mockgen -source=employee.go -destination=repository_mock.go -package=employee
type Repository interface {
	// Create inserts e and its audit entry in one transaction.
	Create(ctx context.Context, e *Employee, entry *activity.Entry) error
	List(ctx context.Context) ([]*Employee, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Employee, error) {
	p, err := auth.Authorize(ctx, auth.OpManageWork)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	e := &Employee{ID: uuid.New(), Name: params.Name, Email: params.Email}
	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityEmployee, e.ID, activity.SeverityInfo,
		"Employee %s added", e.Name)

	if err := s.repo.Create(ctx, e, entry); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) List(ctx context.Context) ([]*Employee, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageWork); err != nil {
		return nil, err
	}

	return s.repo.List(ctx)
}
