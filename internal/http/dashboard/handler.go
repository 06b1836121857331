package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
)

type Handler struct {
	svc *dashboard.Service
	now func() time.Time
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/pipelines", h.pipelines)
	r.Get("/revenue", h.revenue)
	r.Get("/overdue", h.overdue)
	r.Get("/top-clients", h.topClients)
}

func (h *Handler) ReportRoutes(r chi.Router) {
	r.Get("/quarterly", h.quarterly)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context(), h.now())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, s)
}

func (h *Handler) pipelines(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Pipelines(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, p)
}

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	months, err := h.svc.Revenue(r.Context(), h.now())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, months)
}

func (h *Handler) overdue(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.Overdue(r.Context(), h.now())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, invoices)
}

func (h *Handler) topClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.TopClients(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, clients)
}

func (h *Handler) quarterly(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Quarterly(r.Context(), h.now())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, q)
}
