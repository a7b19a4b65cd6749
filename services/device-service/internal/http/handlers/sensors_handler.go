package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"queuesense/services/device-service/internal/sensor"
)

// SensorsHandler exposes per-sensor health on /api/sensors.
type SensorsHandler struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

// NewSensorsHandler builds handler.
func NewSensorsHandler(svc Service, logger *zap.Logger) *SensorsHandler {
	return &SensorsHandler{service: svc, logger: logger, now: time.Now}
}

type sensorPayload struct {
	SensorID   uint32  `json:"sensor_id"`
	I2CAddress string  `json:"i2c_address"`
	Status     string  `json:"status"`
	ErrorCode  *string `json:"error_code,omitempty"`
}

type sensorsResponse struct {
	Sensors   []sensorPayload `json:"sensors"`
	Timestamp string          `json:"timestamp"`
}

// HandleSensors always answers 200; sensor failures are data here, not
// transport errors.
func (h *SensorsHandler) HandleSensors(w http.ResponseWriter, r *http.Request) {
	infos := h.service.Sensors()

	payload := make([]sensorPayload, 0, len(infos))
	for _, info := range infos {
		entry := sensorPayload{
			SensorID:   info.SensorID,
			I2CAddress: sensor.FormatAddress(info.I2CAddress),
			Status:     string(info.Status),
		}
		if info.Status == sensor.StatusError {
			code := info.ErrorCode
			entry.ErrorCode = &code
		}
		payload = append(payload, entry)
	}

	writeJSON(w, http.StatusOK, sensorsResponse{
		Sensors:   payload,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
