package workorder

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/http/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
	invoicesvc "github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

type Handler struct {
	svc      *workorder.Service
	invoices *invoicesvc.Service
}

func NewHandler(svc *workorder.Service, invoices *invoicesvc.Service) *Handler {
	return &Handler{svc: svc, invoices: invoices}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/board", h.board)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Patch("/{id}/assignee", h.assign)
	r.Post("/{id}/hours", h.logHours)
	r.Get("/{id}/schedule", h.schedule)
	r.Post("/{id}/schedule", h.addScheduleItem)
	r.Post("/{id}/invoice", h.issueInvoice)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params workorder.CreateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, ToResponse(wo))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		filter workorder.ListFilter
		err    error
	)

	if filter.Status, err = respond.QueryEnum(r, "status", workorder.ParseStatus); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.EmployeeID, err = respond.QueryID(r, "employee_id"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.ClientID, err = respond.QueryID(r, "client_id"); err != nil {
		respond.Error(w, r, err)
		return
	}

	orders, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]Response, len(orders))
	for i, wo := range orders {
		resp[i] = ToResponse(wo)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, ToResponse(wo))
}

// board lists schedule items between the from and to dates, inclusive of from.
func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	from, err := respond.QueryDate(r, "from")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	to, err := respond.QueryDate(r, "to")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var missing []string
	if from == nil {
		missing = append(missing, "from: is required")
	}

	if to == nil {
		missing = append(missing, "to: is required")
	}

	if len(missing) > 0 {
		respond.Error(w, r, apperr.Invalid(missing...))
		return
	}

	entries, err := h.svc.Board(r.Context(), *from, to.AddDate(0, 0, 1))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]boardEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = boardEntryResponse{
			scheduleItemResponse: toScheduleResponse(&e.ScheduleItem),
			Code:                 e.Code,
			Title:                e.Title,
			Status:               e.Status,
			Priority:             e.Priority,
			EmployeeName:         e.EmployeeName,
		}
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req struct {
		Status workorder.Status `json:"status"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, ToResponse(wo))
}

// assign sets or clears (employee_id null) the assignee.
func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req struct {
		EmployeeID *uuid.UUID `json:"employee_id"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.Assign(r.Context(), id, req.EmployeeID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, ToResponse(wo))
}

func (h *Handler) logHours(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req struct {
		Hours decimal.Decimal `json:"hours"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	wo, err := h.svc.LogHours(r.Context(), id, req.Hours)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, ToResponse(wo))
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	items, err := h.svc.ScheduleItems(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]scheduleItemResponse, len(items))
	for i, it := range items {
		resp[i] = toScheduleResponse(it)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) addScheduleItem(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params workorder.ScheduleParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	it, err := h.svc.AddScheduleItem(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toScheduleResponse(it))
}

// issueInvoice answers 201 for a new invoice and 200 when the work order was already invoiced.
func (h *Handler) issueInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params invoicesvc.IssueParams
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &params); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	res, err := h.invoices.IssueForWorkOrder(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.AlreadyIssued {
		status = http.StatusOK
	}

	respond.JSON(w, r, status, invoice.IssueResponse{
		Invoice:       invoice.ToResponse(res.Invoice),
		AlreadyIssued: res.AlreadyIssued,
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
