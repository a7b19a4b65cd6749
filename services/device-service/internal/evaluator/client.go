package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"queuesense/pkg/estimation"
)

// Client calls the model service's POST /predict under a fixed timeout.
// A failed call is classified and reported within the same request; there is
// no retry, the caller must stay latency-bounded.
type Client struct {
	endpoint        string
	timeout         time.Duration
	unavailableCode string
	client          *http.Client
	logger          *zap.Logger
}

// NewClient returns client wrapper. unavailableCode is the error code
// surfaced when the evaluator cannot be reached; the mapping is a deployment
// decision, so it arrives from configuration.
func NewClient(endpoint string, timeout time.Duration, unavailableCode string, logger *zap.Logger) *Client {
	if unavailableCode == "" {
		unavailableCode = estimation.ErrCodeModelUnavailable
	}
	return &Client{
		endpoint:        endpoint,
		timeout:         timeout,
		unavailableCode: unavailableCode,
		client:          &http.Client{},
		logger:          logger,
	}
}

type wireObstruction struct {
	SensorID   uint32 `json:"sensor_id"`
	Obstructed bool   `json:"obstructed"`
	Timestamp  string `json:"timestamp"`
}

type wireRequest struct {
	APIVersion   string                 `json:"api_version"`
	ModelID      string                 `json:"model_id"`
	Params       map[string]interface{} `json:"params"`
	Timestamp    string                 `json:"timestamp"`
	Obstructions []wireObstruction      `json:"obstructions"`
}

type wireResponse struct {
	WaitTimeMinutes *float64 `json:"wait_time_minutes"`
	Status          string   `json:"status"`
	ErrorCode       *string  `json:"error_code"`
	Timestamp       string   `json:"timestamp"`
}

// Predict implements Evaluator. Transport failures map to the configured
// unavailable code, malformed responses to INTERNAL_ERROR, and evaluator
// error codes pass through unchanged.
func (c *Client) Predict(ctx context.Context, req Request) Estimate {
	requestID := uuid.NewString()

	obstructions := make([]wireObstruction, 0, len(req.Obstructions))
	for _, o := range req.Obstructions {
		obstructions = append(obstructions, wireObstruction{
			SensorID:   o.SensorID,
			Obstructed: o.Obstructed,
			Timestamp:  o.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	payload, err := json.Marshal(wireRequest{
		APIVersion:   estimation.APIVersion,
		ModelID:      req.ModelID,
		Params:       req.Params,
		Timestamp:    req.Timestamp.UTC().Format(time.RFC3339),
		Obstructions: obstructions,
	})
	if err != nil {
		c.logger.Error("predict request marshal failed",
			zap.String("request_id", requestID), zap.Error(err))
		return Degraded(estimation.ErrCodeInternalError, req.Timestamp)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost,
		fmt.Sprintf("%s/predict", c.endpoint), bytes.NewReader(payload))
	if err != nil {
		c.logger.Error("predict request build failed",
			zap.String("request_id", requestID), zap.Error(err))
		return Degraded(estimation.ErrCodeInternalError, req.Timestamp)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("evaluator unreachable",
			zap.String("request_id", requestID),
			zap.String("endpoint", c.endpoint),
			zap.Duration("timeout", c.timeout),
			zap.Error(err),
		)
		return Degraded(c.unavailableCode, req.Timestamp)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("evaluator returned non-success",
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return Degraded(estimation.ErrCodeInternalError, req.Timestamp)
	}

	var body wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("evaluator response undecodable",
			zap.String("request_id", requestID), zap.Error(err))
		return Degraded(estimation.ErrCodeInternalError, req.Timestamp)
	}

	return c.fromWire(body, requestID, req.Timestamp)
}

func (c *Client) fromWire(body wireResponse, requestID string, fallback time.Time) Estimate {
	timestamp, err := time.Parse(time.RFC3339, body.Timestamp)
	if err != nil {
		timestamp = fallback
	}

	switch estimation.Status(body.Status) {
	case estimation.StatusOK:
		if body.WaitTimeMinutes == nil {
			c.logger.Warn("evaluator reported ok without a value",
				zap.String("request_id", requestID))
			return Degraded(estimation.ErrCodeInternalError, timestamp)
		}
		return Estimate{
			WaitTimeMinutes: body.WaitTimeMinutes,
			Status:          estimation.StatusOK,
			Timestamp:       timestamp,
		}
	case estimation.StatusDegraded:
		code := estimation.ErrCodeInternalError
		if body.ErrorCode != nil && *body.ErrorCode != "" {
			// Evaluator-reported codes pass through unchanged.
			code = *body.ErrorCode
		}
		return Degraded(code, timestamp)
	default:
		c.logger.Warn("evaluator reported unknown status",
			zap.String("request_id", requestID),
			zap.String("status", body.Status),
		)
		return Degraded(estimation.ErrCodeInternalError, timestamp)
	}
}
