package estimate

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
	"github.com/MrJamesThe3rd/upkeep/internal/http/workorder"
)

type Handler struct {
	svc *estimate.Service
}

func NewHandler(svc *estimate.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Post("/{id}/convert", h.convert)
	r.Delete("/{id}", h.delete)
}

type estimateResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Number               string          `json:"number"`
	Title                string          `json:"title"`
	AmountCents          int64           `json:"amount_cents"`
	Status               estimate.Status `json:"status"`
	ValidUntil           *time.Time      `json:"valid_until,omitempty"`
	ClientID             *uuid.UUID      `json:"client_id,omitempty"`
	PropertyID           *uuid.UUID      `json:"property_id,omitempty"`
	LeadID               *uuid.UUID      `json:"lead_id,omitempty"`
	ConvertedWorkOrderID *uuid.UUID      `json:"converted_work_order_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(e *estimate.Estimate) estimateResponse {
	return estimateResponse{
		ID:                   e.ID,
		Number:               e.Number,
		Title:                e.Title,
		AmountCents:          e.AmountCents,
		Status:               e.Status,
		ValidUntil:           e.ValidUntil,
		ClientID:             e.ClientID,
		PropertyID:           e.PropertyID,
		LeadID:               e.LeadID,
		ConvertedWorkOrderID: e.ConvertedWorkOrderID,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

type conversionResponse struct {
	Estimate         estimateResponse   `json:"estimate"`
	WorkOrder        workorder.Response `json:"work_order"`
	AlreadyConverted bool               `json:"already_converted"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params estimate.CreateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status, err := respond.QueryEnum(r, "status", estimate.ParseStatus)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	clientID, err := respond.QueryID(r, "client_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	estimates, err := h.svc.List(r.Context(), estimate.ListFilter{Status: status, ClientID: clientID})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]estimateResponse, len(estimates))
	for i, e := range estimates {
		resp[i] = toResponse(e)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(e))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req struct {
		Status estimate.Status `json:"status"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(e))
}

// convert answers 201 when a work order was created and 200 on a repeated conversion.
func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.Convert(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.AlreadyConverted {
		status = http.StatusOK
	}

	respond.JSON(w, r, status, conversionResponse{
		Estimate:         toResponse(res.Estimate),
		WorkOrder:        workorder.ToResponse(res.WorkOrder),
		AlreadyConverted: res.AlreadyConverted,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
