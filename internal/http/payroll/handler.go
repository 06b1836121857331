package payroll

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
	"github.com/MrJamesThe3rd/upkeep/internal/payroll"
)

type Handler struct {
	svc *payroll.Service
}

func NewHandler(svc *payroll.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/runs", h.createRun)
	r.Get("/runs", h.listRuns)
	r.Get("/runs/{id}", h.getRun)
	r.Post("/runs/{id}/entries", h.addEntry)
	r.Patch("/entries/{id}", h.updateEntry)
	r.Delete("/entries/{id}", h.deleteEntry)
}

type runResponse struct {
	ID              uuid.UUID       `json:"id"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	TotalGrossCents int64           `json:"total_gross_cents"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	Entries         []entryResponse `json:"entries,omitempty"`
}

type entryResponse struct {
	ID           uuid.UUID       `json:"id"`
	RunID        uuid.UUID       `json:"run_id"`
	EmployeeID   uuid.UUID       `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	Hours        decimal.Decimal `json:"hours"`
	GrossCents   int64           `json:"gross_cents"`
}

func toRunResponse(run *payroll.Run) runResponse {
	return runResponse{
		ID:              run.ID,
		PeriodStart:     run.PeriodStart,
		PeriodEnd:       run.PeriodEnd,
		TotalGrossCents: run.TotalGrossCents,
		CreatedAt:       run.CreatedAt,
		UpdatedAt:       run.UpdatedAt,
	}
}

func toEntryResponse(e *payroll.Entry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		RunID:        e.RunID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		Hours:        e.Hours,
		GrossCents:   e.GrossCents,
	}
}

func (h *Handler) createRun(w http.ResponseWriter, r *http.Request) {
	var params payroll.RunParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	run, err := h.svc.CreateRun(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toRunResponse(run))
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]runResponse, len(runs))
	for i, run := range runs {
		resp[i] = toRunResponse(run)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	detail, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := toRunResponse(detail.Run)
	resp.Entries = make([]entryResponse, len(detail.Entries))

	for i, e := range detail.Entries {
		resp.Entries[i] = toEntryResponse(e)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) addEntry(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params payroll.EntryParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.AddEntry(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toEntryResponse(e))
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params payroll.UpdateEntryParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.UpdateEntry(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toEntryResponse(e))
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteEntry(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
