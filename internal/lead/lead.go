package lead

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/enum"
)

// Status is the lifecycle state of a lead.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
)

func Statuses() []Status {
	return []Status{StatusNew, StatusContacted, StatusQualified, StatusWon, StatusLost}
}

var (
	ErrNotFound          = fmt.Errorf("lead %w", apperr.ErrNotFound)
	ErrInvalidStatus     = enum.Invalid("status", Statuses())
	ErrInvalidTransition = fmt.Errorf("lead status change: %w", apperr.ErrInvalidState)
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
	StatusNew:       {StatusContacted, StatusQualified, StatusWon, StatusLost},
	StatusContacted: {StatusQualified, StatusWon, StatusLost},
	StatusQualified: {StatusWon, StatusLost},
	StatusLost:      {StatusContacted},
}

// CanTransition reports whether a lead may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// Lead is a prospect inquiry.
type Lead struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Company   string
	Service   string
	Message   string
	Source    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt *time.Time
}
