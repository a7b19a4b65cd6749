// Package calibration loads and validates the static calibration file. The
// file is read once at startup; changing it requires a restart.
package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"queuesense/pkg/estimation"
)

// Calibration selects the active model and the sensor interpretation limits.
// Immutable after Load; safe for concurrent reads.
type Calibration struct {
	Model                string
	OccupancyThresholdMM int
	SensorMinMM          int
	SensorMaxMM          int
	Params               map[string]interface{}
}

type calibrationFile struct {
	Model                *string                `json:"model"`
	OccupancyThresholdMM *int                   `json:"occupancy_threshold_mm"`
	SensorMinMM          *int                   `json:"sensor_min_mm"`
	SensorMaxMM          *int                   `json:"sensor_max_mm"`
	Params               map[string]interface{} `json:"params"`
}

// Load reads the calibration JSON and validates it against the model
// registry. Any failure here is fatal to startup, never deferred to requests.
func Load(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calibration: read file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw calibration JSON.
func Parse(data []byte) (*Calibration, error) {
	var file calibrationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("calibration: decode json: %w", err)
	}

	if file.Model == nil || *file.Model == "" {
		return nil, errors.New("calibration: model is required")
	}
	if file.OccupancyThresholdMM == nil {
		return nil, errors.New("calibration: occupancy_threshold_mm is required")
	}
	if file.SensorMinMM == nil {
		return nil, errors.New("calibration: sensor_min_mm is required")
	}
	if file.SensorMaxMM == nil {
		return nil, errors.New("calibration: sensor_max_mm is required")
	}
	if file.Params == nil {
		return nil, errors.New("calibration: params is required")
	}
	if *file.SensorMinMM >= *file.SensorMaxMM {
		return nil, fmt.Errorf("calibration: sensor_min_mm %d must be below sensor_max_mm %d",
			*file.SensorMinMM, *file.SensorMaxMM)
	}

	if err := estimation.ValidateParams(*file.Model, file.Params); err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}

	return &Calibration{
		Model:                *file.Model,
		OccupancyThresholdMM: *file.OccupancyThresholdMM,
		SensorMinMM:          *file.SensorMinMM,
		SensorMaxMM:          *file.SensorMaxMM,
		Params:               file.Params,
	}, nil
}
