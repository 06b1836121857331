package workorder

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/enum"
)

// CodePrefix starts every work order code, e.g. WO-20261019-001.
const CodePrefix = "WO"

type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

func Statuses() []Status {
	return []Status{StatusBacklog, StatusScheduled, StatusInProgress, StatusOnHold, StatusCompleted, StatusCanceled}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

var (
	ErrNotFound          = fmt.Errorf("work order %w", apperr.ErrNotFound)
	ErrInvalidStatus     = enum.Invalid("status", Statuses())
	ErrInvalidPriority   = enum.Invalid("priority", Priorities())
	ErrInvalidTransition = fmt.Errorf("work order status change: %w", apperr.ErrInvalidState)
	ErrClosed            = fmt.Errorf("work order is closed: %w", apperr.ErrInvalidState)
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

func ParsePriority(s string) (Priority, error) {
	return enum.Parse(s, Priorities(), ErrInvalidPriority)
}

func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}

	*p = v

	return nil
}

var transitions = map[Status][]Status{
	StatusBacklog:    {StatusScheduled, StatusInProgress, StatusOnHold, StatusCanceled},
	StatusScheduled:  {StatusBacklog, StatusInProgress, StatusOnHold, StatusCanceled},
	StatusInProgress: {StatusOnHold, StatusCompleted, StatusCanceled},
	StatusOnHold:     {StatusScheduled, StatusInProgress, StatusCanceled},
	StatusCanceled:   {StatusBacklog},
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Closed reports whether no further field work can happen on an order in this status.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// WorkOrder is a dispatchable unit of field work.
type WorkOrder struct {
	ID                 uuid.UUID
	Code               string
	Title              string
	Description        string
	Priority           Priority
	Status             Status
	EstimatedHours     decimal.Decimal
	ActualHours        decimal.Decimal
	ValueCents         int64
	ClientID           *uuid.UUID
	PropertyID         *uuid.UUID
	AssignedEmployeeID *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// ScheduleItem is one calendar slot of work on an order.
type ScheduleItem struct {
	ID          uuid.UUID
	WorkOrderID uuid.UUID
	EmployeeID  *uuid.UUID
	StartsAt    time.Time
	EndsAt      time.Time
	Notes       string
	CreatedAt   time.Time
}

// BoardEntry is a schedule item joined with what a calendar needs to render it.
type BoardEntry struct {
	ScheduleItem
	Code         string
	Title        string
	Status       Status
	Priority     Priority
	EmployeeName string
}
