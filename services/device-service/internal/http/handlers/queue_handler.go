package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"queuesense/pkg/estimation"
)

// QueueHandler answers /api/queue with a wait-time estimate computed from the
// latest sensor snapshot.
type QueueHandler struct {
	service Service
	logger  *zap.Logger
}

// NewQueueHandler builds handler.
func NewQueueHandler(service Service, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{service: service, logger: logger}
}

type queueResponse struct {
	WaitTimeMinutes *float64 `json:"wait_time_minutes"`
	QueueLength     int      `json:"queue_length"`
	Status          string   `json:"status"`
	ErrorCode       *string  `json:"error_code"`
	Timestamp       string   `json:"timestamp"`
}

// HandleQueue predicts against the current readings snapshot. Degraded
// outcomes become 503, except INTERNAL_ERROR which is a 500.
func (h *QueueHandler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	estimate := h.service.Predict(r.Context())

	if estimate.Status == estimation.StatusOK {
		if estimate.WaitTimeMinutes == nil {
			h.logger.Error("estimate reported ok without a value")
			writeError(w, http.StatusInternalServerError, estimation.ErrCodeInternalError, estimate.Timestamp)
			return
		}
		writeJSON(w, http.StatusOK, queueResponse{
			WaitTimeMinutes: estimate.WaitTimeMinutes,
			QueueLength:     h.service.Summary().OccupiedCount,
			Status:          string(estimation.StatusOK),
			Timestamp:       estimate.Timestamp.UTC().Format(time.RFC3339),
		})
		return
	}

	code := estimate.ErrorCode
	if code == "" {
		code = estimation.ErrCodeInternalError
	}
	status := http.StatusServiceUnavailable
	if code == estimation.ErrCodeInternalError {
		status = http.StatusInternalServerError
	}

	h.logger.Warn("queue estimate unavailable", zap.String("error_code", code))
	writeError(w, status, code, estimate.Timestamp)
}
