// Package evaluator abstracts the wait-time computation behind a single
// Predict operation. The remote client talks to the model service over HTTP;
// Local runs the same registry in-process when no endpoint is configured.
package evaluator

import (
	"context"
	"time"

	"queuesense/pkg/estimation"
)

// Request is the input snapshot for one prediction.
type Request struct {
	ModelID      string
	Params       map[string]interface{}
	Timestamp    time.Time
	Obstructions []estimation.Obstruction
}

// Estimate is the prediction outcome. Failures travel in-band as a degraded
// status with an error code; ErrorCode is empty exactly when Status is ok.
type Estimate struct {
	WaitTimeMinutes *float64
	Status          estimation.Status
	ErrorCode       string
	Timestamp       time.Time
}

// Degraded builds a failed estimate.
func Degraded(errorCode string, timestamp time.Time) Estimate {
	return Estimate{
		Status:    estimation.StatusDegraded,
		ErrorCode: errorCode,
		Timestamp: timestamp,
	}
}

// Evaluator computes a wait-time estimate from an obstruction snapshot.
type Evaluator interface {
	Predict(ctx context.Context, req Request) Estimate
}
