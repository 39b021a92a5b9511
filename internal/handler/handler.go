package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mini-pos/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already out; nothing useful to send.
		return
	}
}

// writeError writes a model.ErrorResponse with the given status, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Int("status", status).Msg(message)
	writeJSON(w, status, model.ErrorResponse{
		Success: false,
		Error:   code,
		Message: message,
	})
}

// respondError maps a service error onto an HTTP status. Errors outside the
// domain taxonomy are logged and reported as a generic 500.
func respondError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeError(w, http.StatusConflict, model.ErrCodeInsufficientStock, stockErr.Error(), logger)
		return
	}

	var notFoundErr *model.ProductNotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, http.StatusNotFound, model.ErrCodeProductNotFound, notFoundErr.Error(), logger)
		return
	}

	if de, ok := model.AsDomainError(err); ok {
		writeError(w, statusForKind(de.Kind), de.Code, de.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Success: false,
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	})
}

func statusForKind(kind model.Kind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindUnauthenticated:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// decodeJSON reads the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid id", logger)
		return 0, false
	}
	return id, true
}
