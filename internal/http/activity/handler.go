package activity

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
)

type Handler struct {
	svc *activity.Service
}

func NewHandler(svc *activity.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.recent)
}

type entryResponse struct {
	ID          uuid.UUID         `json:"id"`
	ActorID     *uuid.UUID        `json:"actor_id,omitempty"`
	ActorName   string            `json:"actor_name"`
	Action      string            `json:"action"`
	EntityType  string            `json:"entity_type"`
	EntityID    uuid.UUID         `json:"entity_id"`
	Description string            `json:"description"`
	Severity    activity.Severity `json:"severity"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	limit, err := respond.QueryInt(r, "limit", activity.DefaultLimit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	entries, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse{
			ID:          e.ID,
			ActorID:     e.ActorID,
			ActorName:   e.ActorName,
			Action:      e.Action,
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			Description: e.Description,
			Severity:    e.Severity,
			CreatedAt:   e.CreatedAt,
		}
	}

	respond.JSON(w, r, http.StatusOK, resp)
}
