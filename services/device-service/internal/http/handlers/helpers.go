package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"queuesense/pkg/estimation"
	"queuesense/services/device-service/internal/evaluator"
	"queuesense/services/device-service/internal/occupancy"
	"queuesense/services/device-service/internal/sensor"
)

// Service is the slice of the queue service the HTTP layer consumes.
type Service interface {
	Predict(ctx context.Context) evaluator.Estimate
	Summary() occupancy.Summary
	Health() string
	Sensors() []sensor.Info
	Readings() []sensor.Reading
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Timestamp    string `json:"timestamp"`
}

func writeError(w http.ResponseWriter, status int, code string, timestamp time.Time) {
	writeJSON(w, status, errorBody{
		ErrorCode:    code,
		ErrorMessage: errorMessage(code),
		Timestamp:    timestamp.UTC().Format(time.RFC3339),
	})
}

func errorMessage(code string) string {
	switch code {
	case estimation.ErrCodeNoData:
		return "no valid sensor readings available"
	case estimation.ErrCodeConfigError:
		return "calibration rejected by the estimation model"
	case estimation.ErrCodeInternalError:
		return "internal error"
	default:
		return "wait time estimate unavailable"
	}
}
