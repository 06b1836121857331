// Package activity is the append-only audit trail written alongside every state change.
//
// Entries are inserted with the same database transaction as the mutation they describe, so a
// failed audit write aborts the mutation too.
package activity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/enum"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityUrgent  Severity = "urgent"
)

func Severities() []Severity {
	return []Severity{SeverityInfo, SeveritySuccess, SeverityWarning, SeverityUrgent}
}

var ErrInvalidSeverity = enum.Invalid("severity", Severities())

func ParseSeverity(s string) (Severity, error) {
	return enum.Parse(s, Severities(), ErrInvalidSeverity)
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}

	*s = v

	return nil
}

// Entity types referenced by entries.
const (
	EntityLead         = "lead"
	EntityBooking      = "booking_request"
	EntityClient       = "client"
	EntityContact      = "contact"
	EntityEstimate     = "estimate"
	EntityWorkOrder    = "work_order"
	EntityInvoice      = "invoice"
	EntityPayment      = "payment"
	EntityPayrollRun   = "payroll_run"
	EntityPayrollEntry = "payroll_entry"
	EntityEmployee     = "employee"
)

// Action verbs.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status_changed"
	ActionConverted     = "converted"
	ActionIssued        = "issued"
	ActionSettled       = "settled"
	ActionMarkedOverdue = "marked_overdue"
	ActionAssigned      = "assigned"
	ActionScheduled     = "scheduled"
	ActionDeleted       = "deleted"
)

type Entry struct {
	ID          uuid.UUID
	ActorID     *uuid.UUID
	ActorName   string
	Action      string
	EntityType  string
	EntityID    uuid.UUID
	Description string
	Severity    Severity
	CreatedAt   time.Time
}

// NewEntry attributes an entry to p. Anonymous callers are recorded as "anonymous".
func NewEntry(p auth.Principal, action, entityType string, entityID uuid.UUID, severity Severity, format string, args ...any) *Entry {
	e := &Entry{
		ActorName:   p.Name,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: fmt.Sprintf(format, args...),
		Severity:    severity,
	}

	if p.UserID != uuid.Nil {
		e.ActorID = new(p.UserID)
	}

	if e.ActorName == "" {
		e.ActorName = "anonymous"
	}

	return e
}
