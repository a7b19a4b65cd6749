package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ReadingsHandler dumps the raw readings snapshot on /api/debug/readings.
type ReadingsHandler struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

// NewReadingsHandler builds handler.
func NewReadingsHandler(svc Service, logger *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{service: svc, logger: logger, now: time.Now}
}

type readingPayload struct {
	SensorID   uint32  `json:"sensor_id"`
	DistanceMM *int    `json:"distance_mm"`
	Timestamp  string  `json:"timestamp"`
	ErrorCode  *string `json:"error_code,omitempty"`
}

type readingsResponse struct {
	Readings  []readingPayload `json:"readings"`
	Timestamp string           `json:"timestamp"`
}

// HandleReadings returns the last poll cycle verbatim, before any calibration
// filtering.
func (h *ReadingsHandler) HandleReadings(w http.ResponseWriter, r *http.Request) {
	readings := h.service.Readings()

	payload := make([]readingPayload, 0, len(readings))
	for _, reading := range readings {
		entry := readingPayload{
			SensorID:  reading.SensorID,
			Timestamp: reading.Timestamp.UTC().Format(time.RFC3339),
		}
		if reading.OK() {
			distance := reading.DistanceMM
			entry.DistanceMM = &distance
		} else {
			code := reading.ErrorCode
			entry.ErrorCode = &code
		}
		payload = append(payload, entry)
	}

	writeJSON(w, http.StatusOK, readingsResponse{
		Readings:  payload,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
