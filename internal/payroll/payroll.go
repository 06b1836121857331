// Package payroll keeps pay runs and their entries. A run's TotalGrossCents is adjusted by each
// entry write in the same transaction and always equals the sum of its entries' gross.
package payroll

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
)

var (
	ErrRunNotFound   = fmt.Errorf("payroll run %w", apperr.ErrNotFound)
	ErrEntryNotFound = fmt.Errorf("payroll entry %w", apperr.ErrNotFound)
)

type Run struct {
	ID              uuid.UUID
	PeriodStart     time.Time
	PeriodEnd       time.Time
	TotalGrossCents int64
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type Entry struct {
	ID           uuid.UUID
	RunID        uuid.UUID
	EmployeeID   uuid.UUID
	EmployeeName string
	Hours        decimal.Decimal
	GrossCents   int64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// RunDetail is a run with its entries, ordered by employee name.
type RunDetail struct {
	Run     *Run
	Entries []*Entry
}
