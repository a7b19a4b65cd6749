// Package occupancy turns raw distance readings into per-sensor obstruction
// states and an aggregate occupancy figure. Pure transformation over a
// snapshot; no side effects.
package occupancy

import (
	"time"

	"queuesense/pkg/estimation"
	"queuesense/services/device-service/internal/calibration"
	"queuesense/services/device-service/internal/sensor"
)

// State classifies one sensor for a single poll cycle.
type State string

const (
	StateObstructed State = "obstructed"
	StateClear      State = "clear"
	StateUnknown    State = "unknown"
)

// SensorState is one sensor's derived classification.
type SensorState struct {
	SensorID   uint32
	State      State
	DistanceMM int
	Timestamp  time.Time
}

// Summary aggregates a cycle. OccupancyPercent is nil when no sensor produced
// a usable reading; that condition short-circuits the prediction pipeline.
type Summary struct {
	ValidCount       int
	OccupiedCount    int
	ErrorCount       int
	OccupancyPercent *float64
}

// NoData reports whether the cycle produced nothing usable.
func (s Summary) NoData() bool {
	return s.ValidCount == 0
}

// Derive classifies every reading against the calibration limits. A reading
// is usable only when the read succeeded and the distance sits inside
// [sensor_min_mm, sensor_max_mm]; anything else is unknown and excluded from
// every count and from the outgoing obstruction list.
func Derive(readings []sensor.Reading, cal *calibration.Calibration) ([]SensorState, Summary) {
	states := make([]SensorState, 0, len(readings))
	summary := Summary{}

	for _, reading := range readings {
		state := SensorState{
			SensorID:   reading.SensorID,
			DistanceMM: reading.DistanceMM,
			Timestamp:  reading.Timestamp,
		}

		switch {
		case !reading.OK(),
			reading.DistanceMM < cal.SensorMinMM,
			reading.DistanceMM > cal.SensorMaxMM:
			state.State = StateUnknown
			summary.ErrorCount++
		case reading.DistanceMM <= cal.OccupancyThresholdMM:
			state.State = StateObstructed
			summary.ValidCount++
			summary.OccupiedCount++
		default:
			state.State = StateClear
			summary.ValidCount++
		}

		states = append(states, state)
	}

	if summary.ValidCount > 0 {
		percent := float64(summary.OccupiedCount) / float64(summary.ValidCount) * 100.0
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		summary.OccupancyPercent = &percent
	}

	return states, summary
}

// Obstructions builds the wire obstruction list: boolean samples only,
// unknown sensors omitted.
func Obstructions(states []SensorState) []estimation.Obstruction {
	out := make([]estimation.Obstruction, 0, len(states))
	for _, state := range states {
		if state.State == StateUnknown {
			continue
		}
		out = append(out, estimation.Obstruction{
			SensorID:   state.SensorID,
			Obstructed: state.State == StateObstructed,
			Timestamp:  state.Timestamp,
		})
	}
	return out
}
