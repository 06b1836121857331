package client

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/upkeep/internal/client"
	"github.com/MrJamesThe3rd/upkeep/internal/contact"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
)

// Handler serves clients together with their properties and contact people.
type Handler struct {
	clients  *client.Service
	contacts *contact.Service
}

func NewHandler(clients *client.Service, contacts *contact.Service) *Handler {
	return &Handler{clients: clients, contacts: contacts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/properties", h.listProperties)
	r.Post("/{id}/properties", h.addProperty)
	r.Get("/{id}/contacts", h.listContacts)
	r.Post("/{id}/contacts", h.createContact)
}

// ContactRoutes mounts the endpoints addressing a contact by its own id.
func (h *Handler) ContactRoutes(r chi.Router) {
	r.Put("/{id}", h.updateContact)
	r.Delete("/{id}", h.deleteContact)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params client.CreateParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.clients.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]clientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toResponse(c)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(c))
}

func (h *Handler) listProperties(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	props, err := h.clients.ListProperties(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]propertyResponse, len(props))
	for i, p := range props {
		resp[i] = toPropertyResponse(p)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) addProperty(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params client.PropertyParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.clients.AddProperty(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toPropertyResponse(p))
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	people, err := h.contacts.List(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]contactResponse, len(people))
	for i, p := range people {
		resp[i] = toContactResponse(p)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params contact.Params
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.contacts.Create(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toContactResponse(p))
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params contact.Params
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.contacts.Update(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toContactResponse(p))
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.contacts.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
