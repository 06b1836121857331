package estimate

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/enum"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

// NumberPrefix starts every estimate number, e.g. EST-20261019-001.
const NumberPrefix = "EST"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusApproved  Status = "approved"
	StatusConverted Status = "converted"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
)

func Statuses() []Status {
	return []Status{StatusDraft, StatusSent, StatusApproved, StatusConverted, StatusRejected, StatusExpired}
}

var (
	ErrNotFound          = fmt.Errorf("estimate %w", apperr.ErrNotFound)
	ErrInvalidStatus     = enum.Invalid("status", Statuses())
	ErrInvalidTransition = fmt.Errorf("estimate status change: %w", apperr.ErrInvalidState)
	ErrNotConvertible    = fmt.Errorf("estimate cannot be converted: %w", apperr.ErrInvalidState)
	ErrFrozen            = fmt.Errorf("estimate is converted: %w", apperr.ErrInvalidState)
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

// converted is reachable only through conversion.
var transitions = map[Status][]Status{
	StatusDraft:    {StatusSent, StatusApproved, StatusRejected, StatusExpired},
	StatusSent:     {StatusDraft, StatusApproved, StatusRejected, StatusExpired},
	StatusApproved: {StatusSent, StatusRejected, StatusExpired},
	StatusRejected: {StatusDraft},
	StatusExpired:  {StatusDraft},
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Convertible reports whether an estimate in this status may produce a work order.
func (s Status) Convertible() bool {
	return s == StatusDraft || s == StatusSent || s == StatusApproved
}

// Estimate is a priced proposal. ConvertedWorkOrderID is set once, by conversion, and from then on
// Status is always converted.
type Estimate struct {
	ID                   uuid.UUID
	Number               string
	Title                string
	AmountCents          int64
	Status               Status
	ValidUntil           *time.Time
	ClientID             *uuid.UUID
	PropertyID           *uuid.UUID
	LeadID               *uuid.UUID
	ConvertedWorkOrderID *uuid.UUID
	CreatedAt            time.Time
	UpdatedAt            *time.Time
}

// ConversionResult is returned by every conversion call. AlreadyConverted marks the retry path:
// nothing was written and WorkOrder is the one produced by the first call.
type ConversionResult struct {
	Estimate         *Estimate
	WorkOrder        *workorder.WorkOrder
	AlreadyConverted bool
}
