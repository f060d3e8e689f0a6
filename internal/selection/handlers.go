package selection

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-tix/internal/common"
	"github.com/noah-isme/backend-tix/internal/offer"
)

// Handler exposes the offer board and toggle endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Board handles GET /api/v1/events/{slug}/offers.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "selection service not configured", nil)
		return
	}
	board, err := h.service.Board(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("session"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, board)
}

// Toggle handles POST /api/v1/selections/{session}/offers/{offerID}/variants/{variantID}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "selection service not configured", nil)
		return
	}
	board, err := h.service.Toggle(r.Context(),
		chi.URLParam(r, "session"),
		chi.URLParam(r, "offerID"),
		chi.URLParam(r, "variantID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, board)
}

func writeError(w http.ResponseWriter, err error) {
	common.WriteError(w, MapError(err))
}

// MapError translates selection and catalog errors into API errors.
func MapError(err error) error {
	switch {
	case errors.Is(err, offer.ErrEventNotFound):
		return common.NewAppError("EVENT_NOT_FOUND", "event not found", http.StatusNotFound, err)
	case errors.Is(err, offer.ErrOfferNotFound):
		return common.NewAppError("OFFER_NOT_FOUND", "offer not found", http.StatusNotFound, err)
	case errors.Is(err, ErrSessionNotFound):
		return common.NewAppError("SESSION_NOT_FOUND", "selection session not found or expired", http.StatusNotFound, err)
	case errors.Is(err, ErrUnknownVariant):
		return common.NewAppError("VARIANT_NOT_FOUND", "variant is not part of the loaded offers", http.StatusNotFound, err)
	case errors.Is(err, ErrConcurrentUpdate):
		return common.NewAppError("CONFLICT", "selection changed concurrently, retry", http.StatusConflict, err)
	default:
		return err
	}
}
