package http

import (
	"net/http"

	apperrors "stockdash/internal/errors"
)

// MetricsHandler exposes the prometheus registry of the meter provider
type MetricsHandler struct {
	exposition   http.Handler
	errorHandler *apperrors.ErrorHandler
}

// NewMetricsHandler creates a metrics handler. exposition may be nil when
// metrics are disabled.
func NewMetricsHandler(exposition http.Handler, errorHandler *apperrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		h.errorHandler.HandleError(w, r, apperrors.NewWithDetails(
			http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE",
			"Metrics are disabled",
			nil,
		))
		return
	}
	h.exposition.ServeHTTP(w, r)
}
