// Package client holds the minimal client reference records the revenue chain links to.
package client

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
)

var (
	ErrNotFound         = fmt.Errorf("client %w", apperr.ErrNotFound)
	ErrPropertyNotFound = fmt.Errorf("property %w", apperr.ErrNotFound)
)

type Client struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Property is a serviced site owned by a client.
type Property struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Address   string
	CreatedAt time.Time
}
