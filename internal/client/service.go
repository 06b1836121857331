package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
	ListProperties(ctx context.Context, clientID uuid.UUID) ([]*Property, error)

	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	Insert(ctx context.Context, c *Client) error
	Exists(ctx context.Context, id uuid.UUID) error
	InsertProperty(ctx context.Context, p *Property) error
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
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=50"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Client, error) {
	p, err := auth.Authorize(ctx, auth.OpManageClients)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin client create: %w", err)
	}
	defer tx.Rollback()

	c := &Client{ID: uuid.New(), Name: params.Name, Email: params.Email, Phone: params.Phone}
	if err := tx.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityClient, c.ID, activity.SeverityInfo,
		"Client %s created", c.Name)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit client create: %w", err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageClients); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Client, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageClients); err != nil {
		return nil, err
	}

	return s.repo.List(ctx)
}

type PropertyParams struct {
	Address string `json:"address" validate:"required,max=500"`
}

func (s *Service) AddProperty(ctx context.Context, clientID uuid.UUID, params PropertyParams) (*Property, error) {
	p, err := auth.Authorize(ctx, auth.OpManageClients)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin property create: %w", err)
	}
	defer tx.Rollback()

	if err := tx.Exists(ctx, clientID); err != nil {
		return nil, err
	}

	prop := &Property{ID: uuid.New(), ClientID: clientID, Address: params.Address}
	if err := tx.InsertProperty(ctx, prop); err != nil {
		return nil, fmt.Errorf("insert property: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityClient, clientID, activity.SeverityInfo,
		"Property %s added", prop.Address)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit property create: %w", err)
	}

	return prop, nil
}

func (s *Service) ListProperties(ctx context.Context, clientID uuid.UUID) ([]*Property, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageClients); err != nil {
		return nil, err
	}

	return s.repo.ListProperties(ctx, clientID)
}
