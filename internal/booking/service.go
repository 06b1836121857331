package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=booking
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, filter ListFilter) ([]*Request, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx covers a booking and the lead it is filed under, so intake commits both or neither.
type Tx interface {
	LeadExists(ctx context.Context, id uuid.UUID) error
	InsertLead(ctx context.Context, l *lead.Lead) error
	ClientExists(ctx context.Context, id uuid.UUID) error
	Insert(ctx context.Context, r *Request) error
	Lock(ctx context.Context, id uuid.UUID) (*Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
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

type ListFilter struct {
	Status *Status
	LeadID *uuid.UUID
}

type SubmitParams struct {
	Name            string     `json:"name" validate:"required,max=200"`
	Email           string     `json:"email" validate:"omitempty,email"`
	Phone           string     `json:"phone" validate:"required_without=Email,max=50"`
	Address         string     `json:"address" validate:"max=500"`
	Service         string     `json:"service" validate:"required,max=200"`
	Frequency       string     `json:"frequency" validate:"max=100"`
	PreferredDate   *time.Time `json:"preferred_date"`
	Notes           string     `json:"notes" validate:"max=5000"`
	Status          Status     `json:"status"`
	Source          string     `json:"source" validate:"max=100"`
	ConvertedLeadID *uuid.UUID `json:"converted_lead_id"`
	ClientID        *uuid.UUID `json:"client_id"`
}

// Submit files a booking request. Callers without staff privileges always submit a new website
// booking whatever status and source they send, and cannot attach it to a client. Without ConvertedLeadID a lead is opened from
// the booking's contact details in the same transaction.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error) {
	p, err := auth.Authorize(ctx, auth.OpSubmitBooking)
	if err != nil {
		return nil, err
	}

	if !p.Elevated() {
		params.Status = StatusNew
		params.Source = WebsiteSource
		params.ClientID = nil
	}

	if params.Status == "" {
		params.Status = StatusNew
	}

	if params.Source == "" {
		params.Source = WebsiteSource
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if _, err := ParseStatus(string(params.Status)); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking submit: %w", err)
	}
	defer tx.Rollback()

	if params.ClientID != nil {
		if err := tx.ClientExists(ctx, *params.ClientID); err != nil {
			return nil, err
		}
	}

	res := &SubmitResult{}

	if params.ConvertedLeadID != nil {
		if err := tx.LeadExists(ctx, *params.ConvertedLeadID); err != nil {
			return nil, err
		}

		res.LeadID = *params.ConvertedLeadID
	} else {
		l := lead.FromParams(lead.CreateParams{
			Name:    params.Name,
			Email:   params.Email,
			Phone:   params.Phone,
			Service: params.Service,
			Message: params.Notes,
			Source:  params.Source,
		})

		if err := tx.InsertLead(ctx, l); err != nil {
			return nil, fmt.Errorf("insert booking lead: %w", err)
		}

		entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityLead, l.ID, activity.SeverityInfo,
			"Lead %s opened from %s booking", l.Name, l.Source)
		if err := tx.Record(ctx, entry); err != nil {
			return nil, err
		}

		res.LeadID = l.ID
		res.LeadCreated = true
	}

	r := &Request{
		ID:            uuid.New(),
		Name:          params.Name,
		Email:         params.Email,
		Phone:         params.Phone,
		Address:       params.Address,
		Service:       params.Service,
		Frequency:     params.Frequency,
		PreferredDate: params.PreferredDate,
		Notes:         params.Notes,
		Source:        params.Source,
		Status:        params.Status,
		LeadID:        &res.LeadID,
		ClientID:      params.ClientID,
	}

	if err := tx.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityBooking, r.ID, activity.SeverityInfo,
		"Booking for %s requested by %s", r.Service, r.Name)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking submit: %w", err)
	}

	res.Booking = r

	return res, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageBookings); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Request, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageBookings); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, filter)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Request, error) {
	p, err := auth.Authorize(ctx, auth.OpManageBookings)
	if err != nil {
		return nil, err
	}

	status, err = ParseStatus(string(status))
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking status: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.Lock(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status == status {
		return r, nil
	}

	if !CanTransition(r.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, r.Status, status)
	}

	if err := tx.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionStatusChanged, activity.EntityBooking, id, activity.SeverityInfo,
		"Booking for %s moved from %s to %s", r.Name, r.Status, status)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking status: %w", err)
	}

	r.Status = status

	return r, nil
}
