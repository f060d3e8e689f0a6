package checkout

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-tix/internal/common"
	"github.com/noah-isme/backend-tix/internal/selection"
)

// Handler exposes the checkout handoff endpoint.
type Handler struct {
	Svc *Service
}

// Checkout handles POST /api/v1/selections/{session}/offers/{offerID}/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	payload, err := h.Svc.Submit(r.Context(), chi.URLParam(r, "session"), chi.URLParam(r, "offerID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, payload)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSelection):
		err = common.NewAppError("NO_SELECTION", "select at least one seat to continue", http.StatusConflict, err)
	case errors.Is(err, ErrNoPaymentTarget):
		err = common.NewAppError("NO_PAYMENT_TARGET", "checkout is unavailable for this offer, try later", http.StatusConflict, err)
	case errors.Is(err, ErrInProgress):
		err = common.NewAppError("CHECKOUT_IN_PROGRESS", "a checkout for this offer is already in progress", http.StatusConflict, err)
	default:
		err = selection.MapError(err)
	}
	common.WriteError(w, err)
}
