package handler

import (
	"net/http"

	"mini-pos/internal/model"
	"mini-pos/internal/service"

	"github.com/rs/zerolog"
)

// ReportHandler serves the sales reports and the admin dashboard.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("handler", "report").Logger(),
	}
}

// Daily handles GET /api/reports/daily requests.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Daily(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Weekly handles GET /api/reports/weekly requests.
func (h *ReportHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Weekly(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Filter handles POST /api/reports/filter requests.
func (h *ReportHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req model.ReportRangeRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	report, err := h.service.Range(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Dashboard handles GET /api/dashboard requests.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}
