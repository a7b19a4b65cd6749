package evaluator

import (
	"context"

	"queuesense/pkg/estimation"
)

// Local evaluates predictions in-process against the shared model registry.
// Used when no remote endpoint is configured; the error contract is identical
// to the remote client's, minus the transport failure class.
type Local struct{}

// NewLocal builds the in-process evaluator.
func NewLocal() *Local {
	return &Local{}
}

// Predict implements Evaluator.
func (l *Local) Predict(_ context.Context, req Request) Estimate {
	outcome := estimation.Dispatch(req.ModelID, req.Params, req.Obstructions)
	return Estimate{
		WaitTimeMinutes: outcome.WaitTimeMinutes,
		Status:          outcome.Status,
		ErrorCode:       outcome.ErrorCode,
		Timestamp:       req.Timestamp,
	}
}
