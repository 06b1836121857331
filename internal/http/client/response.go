package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/client"
	"github.com/MrJamesThe3rd/upkeep/internal/contact"
)

type clientResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type propertyResponse struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func toPropertyResponse(p *client.Property) propertyResponse {
	return propertyResponse{ID: p.ID, ClientID: p.ClientID, Address: p.Address, CreatedAt: p.CreatedAt}
}

type contactResponse struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  uuid.UUID  `json:"client_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Title     string     `json:"title,omitempty"`
	IsPrimary bool       `json:"is_primary"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toContactResponse(p *contact.Person) contactResponse {
	return contactResponse{
		ID:        p.ID,
		ClientID:  p.ClientID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Title:     p.Title,
		IsPrimary: p.IsPrimary,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
