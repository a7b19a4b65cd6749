package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"queuesense/pkg/estimation"
	"queuesense/services/device-service/internal/calibration"
	"queuesense/services/device-service/internal/evaluator"
	"queuesense/services/device-service/internal/occupancy"
	"queuesense/services/device-service/internal/sensor"
)

// Health of the device as a whole.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthKO       = "ko"
)

// SensorSource supplies readings and per-sensor health; implemented by the
// sensor poller.
type SensorSource interface {
	Poll() []sensor.Reading
	Sensors() []sensor.Info
}

// Listener receives refresh-cycle updates. Nil callbacks are skipped.
type Listener struct {
	OnReadings func([]sensor.Reading)
	OnEstimate func(evaluator.Estimate)
}

// QueueService owns the estimation pipeline: it polls sensors on a fixed
// cadence, derives occupancy, and asks the evaluator for a wait time. The
// calibration is immutable, so concurrent predictions need no coordination
// beyond the readings snapshot lock.
type QueueService struct {
	source SensorSource
	cal    *calibration.Calibration
	eval   evaluator.Evaluator
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	readings  []sensor.Reading
	states    []occupancy.SensorState
	summary   occupancy.Summary
	estimate  *evaluator.Estimate
	listeners []Listener
}

// NewQueueService builds service.
func NewQueueService(
	source SensorSource,
	cal *calibration.Calibration,
	eval evaluator.Evaluator,
	logger *zap.Logger,
) *QueueService {
	return &QueueService{
		source: source,
		cal:    cal,
		eval:   eval,
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe registers a refresh listener. Not safe to call after RunRefresh
// has started; wiring happens during app construction.
func (s *QueueService) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// RunRefresh polls and re-estimates until the context is cancelled.
func (s *QueueService) RunRefresh(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh runs one pipeline cycle: poll, derive, predict, publish.
func (s *QueueService) Refresh(ctx context.Context) {
	readings := s.source.Poll()
	states, summary := occupancy.Derive(readings, s.cal)

	s.mu.Lock()
	s.readings = readings
	s.states = states
	s.summary = summary
	s.mu.Unlock()

	if summary.NoData() {
		s.logger.Warn("no valid sensor readings this cycle",
			zap.Int("sensor_errors", summary.ErrorCount))
	} else if summary.ErrorCount > 0 {
		s.logger.Warn("occupancy derived with sensor errors",
			zap.Int("valid", summary.ValidCount),
			zap.Int("sensor_errors", summary.ErrorCount))
	}

	estimate := s.Predict(ctx)

	s.mu.Lock()
	s.estimate = &estimate
	s.mu.Unlock()

	for _, l := range s.listeners {
		if l.OnReadings != nil {
			l.OnReadings(readings)
		}
		if l.OnEstimate != nil {
			l.OnEstimate(estimate)
		}
	}
}

// Predict produces a fresh estimate from the latest readings snapshot. When
// no sensor produced a usable reading the evaluator is never contacted; the
// degraded NO_DATA outcome is produced locally.
func (s *QueueService) Predict(ctx context.Context) evaluator.Estimate {
	s.mu.RLock()
	states := s.states
	summary := s.summary
	s.mu.RUnlock()

	now := s.now().UTC()
	if summary.NoData() {
		return evaluator.Degraded(estimation.ErrCodeNoData, now)
	}

	return s.eval.Predict(ctx, evaluator.Request{
		ModelID:      s.cal.Model,
		Params:       s.cal.Params,
		Timestamp:    now,
		Obstructions: occupancy.Obstructions(states),
	})
}

// Summary returns the occupancy summary derived by the last refresh cycle.
func (s *QueueService) Summary() occupancy.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Readings returns the latest readings snapshot.
func (s *QueueService) Readings() []sensor.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sensor.Reading, len(s.readings))
	copy(out, s.readings)
	return out
}

// Estimate returns the estimate cached by the last refresh cycle, or nil
// before the first cycle completes.
func (s *QueueService) Estimate() *evaluator.Estimate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.estimate == nil {
		return nil
	}
	copied := *s.estimate
	return &copied
}

// Sensors returns per-sensor health records.
func (s *QueueService) Sensors() []sensor.Info {
	return s.source.Sensors()
}

// Health aggregates per-sensor status into the device health: ok when every
// sensor answers, degraded when some do, ko when none can.
func (s *QueueService) Health() string {
	sensors := s.source.Sensors()
	if len(sensors) == 0 {
		return HealthKO
	}

	ready := 0
	for _, info := range sensors {
		if info.Status == sensor.StatusOK {
			ready++
		}
	}

	switch {
	case ready == 0:
		return HealthKO
	case ready < len(sensors):
		return HealthDegraded
	default:
		return HealthOK
	}
}
