package invoice

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
	now func() time.Time
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/mark-overdue", h.markOverdue)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/payments", h.payments)
	r.Post("/{id}/payments", h.settle)
	r.Post("/{id}/quick-settle", h.quickSettle)
	r.Post("/{id}/charge", h.charge)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params invoice.CreateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, ToResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status, err := respond.QueryEnum(r, "status", invoice.ParseStatus)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	clientID, err := respond.QueryID(r, "client_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	invoices, err := h.svc.List(r.Context(), invoice.ListFilter{Status: status, ClientID: clientID})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponseList(invoices))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, ToResponse(inv))
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

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	payments, err := h.svc.Payments(r.Context(), invoice.PaymentFilter{InvoiceID: &id})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

// settle records a manual payment. The invoice comes from the path; a body invoice_id is ignored.
func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params invoice.SettleParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	params.InvoiceID = id

	res, err := h.svc.Settle(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toSettleResponse(res))
}

func (h *Handler) quickSettle(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.QuickSettle(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := toSettleResponse(&res.SettleResult)
	resp.AlreadySettled = res.AlreadySettled

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) charge(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params invoice.ChargeParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.Charge(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toSettleResponse(res))
}

// markOverdue flags sent invoices past due as of today, or as of the optional as_of date.
func (h *Handler) markOverdue(w http.ResponseWriter, r *http.Request) {
	asOf, err := respond.QueryDate(r, "as_of")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	at := h.now()
	if asOf != nil {
		at = *asOf
	}

	invoices, err := h.svc.MarkOverdue(r.Context(), at)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponseList(invoices))
}
