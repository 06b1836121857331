package lead

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/lead"
)

type leadResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Company   string      `json:"company,omitempty"`
	Service   string      `json:"service,omitempty"`
	Message   string      `json:"message,omitempty"`
	Source    string      `json:"source,omitempty"`
	Status    lead.Status `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

func toResponse(l *lead.Lead) leadResponse {
	return leadResponse{
		ID:        l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Service:   l.Service,
		Message:   l.Message,
		Source:    l.Source,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toResponseList(leads []*lead.Lead) []leadResponse {
	resp := make([]leadResponse, len(leads))
	for i, l := range leads {
		resp[i] = toResponse(l)
	}

	return resp
}

type rejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type importResponse struct {
	Created  []leadResponse `json:"created"`
	Rejected []rejectedRow  `json:"rejected"`
}
