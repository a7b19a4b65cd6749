// Package estimation holds the wait-time model registry shared by the model
// service (dispatch) and the device service (calibration validation and the
// in-process evaluator).
package estimation

import "time"

// APIVersion is the prediction wire contract version.
const APIVersion = "1.0"

// Status of a wait-time outcome.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Error codes shared across both HTTP surfaces.
const (
	ErrCodeNoData           = "NO_DATA"
	ErrCodeConfigError      = "CONFIG_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeModelUnavailable = "MODEL_UNAVAILABLE"
)

// Obstruction is one sensor's boolean obstruction sample. Sensors without a
// usable reading are excluded before this point and never reach a model.
type Obstruction struct {
	SensorID   uint32    `json:"sensor_id"`
	Obstructed bool      `json:"obstructed"`
	Timestamp  time.Time `json:"timestamp"`
}

// Outcome is the result of dispatching a prediction to a model.
// ErrorCode is empty exactly when Status is ok.
type Outcome struct {
	WaitTimeMinutes *float64
	Status          Status
	ErrorCode       string
}

// Input carries the aggregate figures a model formula may consume.
type Input struct {
	OccupancyPercent float64
	ObstructedCount  int
	ValidCount       int
}

// InputFromObstructions aggregates the boolean samples into model input.
// Returns ok=false when there is nothing to aggregate.
func InputFromObstructions(obstructions []Obstruction) (Input, bool) {
	valid := len(obstructions)
	if valid == 0 {
		return Input{}, false
	}

	obstructed := 0
	for _, o := range obstructions {
		if o.Obstructed {
			obstructed++
		}
	}

	percent := float64(obstructed) / float64(valid) * 100.0
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return Input{
		OccupancyPercent: percent,
		ObstructedCount:  obstructed,
		ValidCount:       valid,
	}, true
}
