// Package respond holds the JSON plumbing shared by the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/logger"
)

type errorBody struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// Error maps err onto a status code. Unexpected errors are logged and answered with a generic
// message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError

	switch {
	case errors.As(err, &ve):
		JSON(w, r, http.StatusBadRequest, errorBody{Error: "validation failed", Violations: ve.Violations})
	case errors.Is(err, apperr.ErrUnauthorized):
		JSON(w, r, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, apperr.ErrNotFound):
		JSON(w, r, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		JSON(w, r, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		logger.FromContext(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, r, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// Decode reads a JSON body into v. Malformed bodies are validation errors.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return err
		}

		return apperr.Invalid("body: " + err.Error())
	}

	return nil
}

// ID parses the named URL parameter as a UUID.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Invalid(fmt.Sprintf("%s: %q is not a valid id", name, raw))
	}

	return id, nil
}

// QueryID parses an optional UUID query parameter.
func QueryID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Invalid(fmt.Sprintf("%s: %q is not a valid id", name, raw))
	}

	return &id, nil
}

// QueryEnum parses an optional enum query parameter with the domain's parser.
func QueryEnum[T ~string](r *http.Request, name string, parse func(string) (T, error)) (*T, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	v, err := parse(raw)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperr.Invalid(fmt.Sprintf("%s: must be a date (YYYY-MM-DD)", name))
	}

	return &t, nil
}

// QueryInt parses an optional integer query parameter, returning def when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid(fmt.Sprintf("%s: must be an integer", name))
	}

	return n, nil
}
