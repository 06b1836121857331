package contact

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
)

var ErrNotFound = fmt.Errorf("contact %w", apperr.ErrNotFound)

// Person is a contact at a client. At most one person per client is primary.
type Person struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Name      string
	Email     string
	Phone     string
	Title     string
	IsPrimary bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}
