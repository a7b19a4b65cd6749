package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"queuesense/pkg/estimation"
)

// PredictHandler serves POST /predict for the device service.
type PredictHandler struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewPredictHandler builds handler.
func NewPredictHandler(logger *zap.Logger) *PredictHandler {
	return &PredictHandler{
		logger: logger,
		now:    time.Now,
	}
}

type predictRequest struct {
	APIVersion   string                 `json:"api_version"`
	ModelID      string                 `json:"model_id"`
	Params       map[string]interface{} `json:"params"`
	Timestamp    string                 `json:"timestamp"`
	Obstructions []obstructionPayload   `json:"obstructions"`
}

type obstructionPayload struct {
	SensorID   uint32 `json:"sensor_id"`
	Obstructed *bool  `json:"obstructed"`
	Timestamp  string `json:"timestamp"`
}

type predictResponse struct {
	WaitTimeMinutes *float64 `json:"wait_time_minutes"`
	Status          string   `json:"status"`
	ErrorCode       *string  `json:"error_code"`
	Timestamp       string   `json:"timestamp"`
}

// HandlePredict dispatches the request to the registered model. Model and
// parameter failures are reported in-band on a 200 so the caller can pass the
// error code through unchanged; only an unreadable body is a 400.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("predict request body unreadable", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, h.degraded(estimation.ErrCodeInternalError, ""))
		return
	}

	obstructions := make([]estimation.Obstruction, 0, len(req.Obstructions))
	for _, payload := range req.Obstructions {
		if payload.Obstructed == nil {
			// Sensors without a usable reading are excluded by the caller;
			// tolerate stray nulls instead of failing the whole request.
			continue
		}
		ts, err := time.Parse(time.RFC3339, payload.Timestamp)
		if err != nil {
			ts = time.Time{}
		}
		obstructions = append(obstructions, estimation.Obstruction{
			SensorID:   payload.SensorID,
			Obstructed: *payload.Obstructed,
			Timestamp:  ts,
		})
	}

	outcome := estimation.Dispatch(req.ModelID, req.Params, obstructions)

	if outcome.Status != estimation.StatusOK {
		h.logger.Warn("prediction degraded",
			zap.String("model_id", req.ModelID),
			zap.String("error_code", outcome.ErrorCode),
			zap.Int("obstructions", len(obstructions)),
		)
		writeJSON(w, http.StatusOK, h.degraded(outcome.ErrorCode, req.Timestamp))
		return
	}

	h.logger.Debug("prediction served",
		zap.String("model_id", req.ModelID),
		zap.Float64("wait_time_minutes", *outcome.WaitTimeMinutes),
	)
	writeJSON(w, http.StatusOK, predictResponse{
		WaitTimeMinutes: outcome.WaitTimeMinutes,
		Status:          string(estimation.StatusOK),
		ErrorCode:       nil,
		Timestamp:       h.timestamp(req.Timestamp),
	})
}

func (h *PredictHandler) degraded(errorCode, requestTimestamp string) predictResponse {
	code := errorCode
	return predictResponse{
		WaitTimeMinutes: nil,
		Status:          string(estimation.StatusDegraded),
		ErrorCode:       &code,
		Timestamp:       h.timestamp(requestTimestamp),
	}
}

// timestamp echoes the caller's timestamp when present so responses stay
// correlated with the request snapshot.
func (h *PredictHandler) timestamp(requestTimestamp string) string {
	if requestTimestamp != "" {
		return requestTimestamp
	}
	return h.now().UTC().Format(time.RFC3339)
}
