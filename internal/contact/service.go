package contact

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

type Repository interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Person, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx serializes contact writes per client: LockClient must be called before any other write.
type Tx interface {
	LockClient(ctx context.Context, clientID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Person, error)
	ClearPrimary(ctx context.Context, clientID, except uuid.UUID) error
	Insert(ctx context.Context, p *Person) error
	Update(ctx context.Context, p *Person) error
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

type Params struct {
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=50"`
	Title     string `json:"title" validate:"max=100"`
	IsPrimary bool   `json:"is_primary"`
}

func (s *Service) List(ctx context.Context, clientID uuid.UUID) ([]*Person, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageContacts); err != nil {
		return nil, err
	}

	return s.repo.ListByClient(ctx, clientID)
}

// Create adds a contact to a client. A primary contact demotes every other contact of the client
// in the same transaction.
func (s *Service) Create(ctx context.Context, clientID uuid.UUID, params Params) (*Person, error) {
	p, err := auth.Authorize(ctx, auth.OpManageContacts)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin contact create: %w", err)
	}
	defer tx.Rollback()

	if err := tx.LockClient(ctx, clientID); err != nil {
		return nil, err
	}

	person := &Person{ID: uuid.New(), ClientID: clientID}
	apply(person, params)

	if person.IsPrimary {
		if err := tx.ClearPrimary(ctx, clientID, person.ID); err != nil {
			return nil, fmt.Errorf("clear primary contact: %w", err)
		}
	}

	if err := tx.Insert(ctx, person); err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionCreated, activity.EntityContact, person.ID, activity.SeverityInfo,
		"Contact %s added%s", person.Name, primarySuffix(person))
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit contact create: %w", err)
	}

	return person, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params Params) (*Person, error) {
	p, err := auth.Authorize(ctx, auth.OpManageContacts)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin contact update: %w", err)
	}
	defer tx.Rollback()

	person, err := s.lockPerson(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	apply(person, params)

	if person.IsPrimary {
		if err := tx.ClearPrimary(ctx, person.ClientID, person.ID); err != nil {
			return nil, fmt.Errorf("clear primary contact: %w", err)
		}
	}

	if err := tx.Update(ctx, person); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionUpdated, activity.EntityContact, person.ID, activity.SeverityInfo,
		"Contact %s updated%s", person.Name, primarySuffix(person))
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit contact update: %w", err)
	}

	return person, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := auth.Authorize(ctx, auth.OpDelete)
	if err != nil {
		return err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin contact delete: %w", err)
	}
	defer tx.Rollback()

	person, err := s.lockPerson(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := tx.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	entry := activity.NewEntry(p, activity.ActionDeleted, activity.EntityContact, id, activity.SeverityWarning,
		"Contact %s removed", person.Name)
	if err := tx.Record(ctx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit contact delete: %w", err)
	}

	return nil
}

// lockPerson takes the client lock before reading the contact again, so every writer of a
// client's contacts acquires locks in the same order.
func (s *Service) lockPerson(ctx context.Context, tx Tx, id uuid.UUID) (*Person, error) {
	person, err := tx.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.LockClient(ctx, person.ClientID); err != nil {
		return nil, err
	}

	return tx.Get(ctx, id)
}

func apply(p *Person, params Params) {
	p.Name = params.Name
	p.Email = params.Email
	p.Phone = params.Phone
	p.Title = params.Title
	p.IsPrimary = params.IsPrimary
}

func primarySuffix(p *Person) string {
	if p.IsPrimary {
		return " as primary contact"
	}

	return ""
}
