package lead

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
	"github.com/MrJamesThe3rd/upkeep/internal/importer"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
)

const maxImportSize = 10 << 20

type Handler struct {
	svc      *lead.Service
	importer *importer.Service
}

func NewHandler(svc *lead.Service, imp *importer.Service) *Handler {
	return &Handler{svc: svc, importer: imp}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/import", h.importCSV)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params lead.CreateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(l))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status, err := respond.QueryEnum(r, "status", lead.ParseStatus)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	leads, err := h.svc.List(r.Context(), lead.ListFilter{Status: status, Search: r.URL.Query().Get("q")})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponseList(leads))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(l))
}

type updateStatusRequest struct {
	Status lead.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(l))
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

// importCSV takes the CSV file as the raw request body.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "csv-import"
	}

	res, err := h.importer.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxImportSize), source)
	if errors.Is(err, importer.ErrNoHeader) {
		err = apperr.Invalid("file: " + err.Error())
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := importResponse{Created: toResponseList(res.Created), Rejected: make([]rejectedRow, len(res.Rejected))}
	for i, rej := range res.Rejected {
		resp.Rejected[i] = rejectedRow{Line: rej.Line, Reason: rej.Reason}
	}

	respond.JSON(w, r, http.StatusOK, resp)
}
