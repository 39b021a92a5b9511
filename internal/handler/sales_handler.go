package handler

import (
	"net/http"

	"mini-pos/internal/model"
	"mini-pos/internal/service"

	"github.com/rs/zerolog"
)

// SalesHandler handles the cart preview and checkout endpoints.
type SalesHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(service service.CheckoutService, logger zerolog.Logger) *SalesHandler {
	return &SalesHandler{
		service: service,
		logger:  logger.With().Str("handler", "sales").Logger(),
	}
}

// Cart handles POST /api/cart requests. Nothing is reserved; the preview only
// confirms the product exists and has enough stock right now.
func (h *SalesHandler) Cart(w http.ResponseWriter, r *http.Request) {
	var req model.CartPreviewRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	preview, err := h.service.PreviewLine(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// Checkout handles POST /api/checkout requests.
func (h *SalesHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.Checkout(r.Context(), &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.CheckoutResponse{
		Success: true,
		Message: "Checkout successful",
		SaleID:  &result.SaleID,
		Total:   &result.Total,
	})
}
