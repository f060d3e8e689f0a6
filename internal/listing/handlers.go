package listing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-tix/internal/catalog"
	"github.com/noah-isme/backend-tix/internal/common"
	"github.com/noah-isme/backend-tix/internal/offer"
)

// Catalog lists event summaries for the admin overview.
type Catalog interface {
	ListEvents(ctx context.Context) ([]catalog.EventSummary, error)
}

// Handler exposes the admin event endpoints.
type Handler struct {
	Svc     *Service
	Catalog Catalog
	MaxBody int64
}

// Create handles POST /api/v1/admin/events.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxBody
	if limit <= 0 {
		limit = 1 << 20
	}
	var in EventInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", map[string]string{"error": err.Error()})
		return
	}
	ev, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, ev)
}

// Index handles GET /api/v1/admin/events.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "event listing not configured", nil)
		return
	}
	out, err := h.Catalog.ListEvents(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, out)
}

// Delete handles DELETE /api/v1/admin/events/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var comp *CompositionError
	switch {
	case errors.As(err, &comp):
		err = common.NewAppError("INVALID_LISTING", "listing composition is invalid", http.StatusUnprocessableEntity, err).
			WithDetails(comp.Messages())
	case errors.Is(err, offer.ErrSlugTaken):
		err = common.NewAppError("SLUG_TAKEN", "an event with this slug already exists", http.StatusConflict, err)
	case errors.Is(err, offer.ErrEventNotFound):
		err = common.NewAppError("EVENT_NOT_FOUND", "event not found", http.StatusNotFound, err)
	}
	common.WriteError(w, err)
}
