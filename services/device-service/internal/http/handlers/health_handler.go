package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"queuesense/services/device-service/internal/service"
)

// HealthHandler reports aggregate device health on /api/health.
type HealthHandler struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

// NewHealthHandler builds handler.
func NewHealthHandler(svc Service, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{service: svc, logger: logger, now: time.Now}
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HandleHealth maps device health onto the HTTP status: a device that cannot
// produce any estimate answers 503.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health()

	status := http.StatusOK
	if health == service.HealthKO {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, healthResponse{
		Status:    health,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
