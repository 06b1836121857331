package export

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/upkeep/internal/export"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{file}", h.download)
}

// download serves /{kind}.csv as an attachment. The file is rendered fully before the first byte
// is sent so a failure still gets a proper error status.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".csv")
	if !ok {
		http.NotFound(w, r)
		return
	}

	kind, err := export.ParseKind(name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Write(r.Context(), kind, &buf); err != nil {
		respond.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", kind, h.now().Format("20060102"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
