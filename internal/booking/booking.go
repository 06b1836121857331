package booking

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/enum"
)

// WebsiteSource tags every booking submitted by a non-staff caller.
const WebsiteSource = "website-booking"

type Status string

const (
	StatusNew       Status = "new"
	StatusReviewed  Status = "reviewed"
	StatusQuoted    Status = "quoted"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
)

func Statuses() []Status {
	return []Status{StatusNew, StatusReviewed, StatusQuoted, StatusConfirmed, StatusCanceled}
}

var (
	ErrNotFound          = fmt.Errorf("booking request %w", apperr.ErrNotFound)
	ErrInvalidStatus     = enum.Invalid("status", Statuses())
	ErrInvalidTransition = fmt.Errorf("booking status change: %w", apperr.ErrInvalidState)
)

func ParseStatus(s string) (Status, error) {
	return enum.Parse(s, Statuses(), ErrInvalidStatus)
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}

	*s = v

	return nil
}

var transitions = map[Status][]Status{
	StatusNew:      {StatusReviewed, StatusQuoted, StatusConfirmed, StatusCanceled},
	StatusReviewed: {StatusQuoted, StatusConfirmed, StatusCanceled},
	StatusQuoted:   {StatusConfirmed, StatusCanceled},
	StatusCanceled: {StatusNew},
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Request is a service booking submitted through the public form or entered by staff. LeadID
// always points at the lead the booking was filed under.
type Request struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Phone         string
	Address       string
	Service       string
	Frequency     string
	PreferredDate *time.Time
	Notes         string
	Source        string
	Status        Status
	LeadID        *uuid.UUID
	ClientID      *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// SubmitResult reports LeadCreated when the submission opened a new lead.
type SubmitResult struct {
	Booking     *Request
	LeadID      uuid.UUID
	LeadCreated bool
}
