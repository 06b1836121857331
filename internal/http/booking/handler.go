package booking

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/booking"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
)

type Handler struct {
	svc *booking.Service
}

func NewHandler(svc *booking.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the booking endpoints. Submitting is open to anonymous visitors of the website.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
}

type bookingResponse struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	Service       string         `json:"service"`
	Frequency     string         `json:"frequency,omitempty"`
	PreferredDate *time.Time     `json:"preferred_date,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Source        string         `json:"source"`
	Status        booking.Status `json:"status"`
	LeadID        *uuid.UUID     `json:"lead_id,omitempty"`
	ClientID      *uuid.UUID     `json:"client_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type submitResponse struct {
	Booking     bookingResponse `json:"booking"`
	LeadID      uuid.UUID       `json:"lead_id"`
	LeadCreated bool            `json:"lead_created"`
}

func toResponse(b *booking.Request) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		Name:          b.Name,
		Email:         b.Email,
		Phone:         b.Phone,
		Address:       b.Address,
		Service:       b.Service,
		Frequency:     b.Frequency,
		PreferredDate: b.PreferredDate,
		Notes:         b.Notes,
		Source:        b.Source,
		Status:        b.Status,
		LeadID:        b.LeadID,
		ClientID:      b.ClientID,
		CreatedAt:     b.CreatedAt,
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var params booking.SubmitParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.Submit(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, submitResponse{
		Booking:     toResponse(res.Booking),
		LeadID:      res.LeadID,
		LeadCreated: res.LeadCreated,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status, err := respond.QueryEnum(r, "status", booking.ParseStatus)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	leadID, err := respond.QueryID(r, "lead_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	bookings, err := h.svc.List(r.Context(), booking.ListFilter{Status: status, LeadID: leadID})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toResponse(b)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(b))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req struct {
		Status booking.Status `json:"status"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(b))
}
