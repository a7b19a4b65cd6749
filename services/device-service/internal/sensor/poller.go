package sensor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// A sensor failing this many cycles in a row gets re-initialised.
const maxConsecutiveErrors = 5

// Poller reads every driver once per cycle and tracks per-sensor health.
type Poller struct {
	mu        sync.RWMutex
	drivers   []Driver
	infos     []Info
	errCounts map[uint32]int
	logger    *zap.Logger
	now       func() time.Time
}

// NewPoller assigns sequential sensor ids starting at 1 and initialises every
// driver. A failed init marks the sensor errored rather than failing bring-up;
// a single dead sensor must not take the device down.
func NewPoller(drivers []Driver, logger *zap.Logger) *Poller {
	p := &Poller{
		drivers:   drivers,
		infos:     make([]Info, len(drivers)),
		errCounts: make(map[uint32]int),
		logger:    logger,
		now:       time.Now,
	}

	for i, driver := range drivers {
		id := uint32(i + 1)
		info := Info{
			SensorID:   id,
			I2CAddress: driver.Address(),
			Status:     StatusOK,
		}
		if err := driver.Init(); err != nil {
			code := CodeForError(err)
			logger.Warn("sensor init failed",
				zap.Uint32("sensor_id", id),
				zap.String("i2c_address", FormatAddress(driver.Address())),
				zap.String("error_code", code),
				zap.Error(err),
			)
			info.Status = StatusError
			info.ErrorCode = code
		}
		p.infos[i] = info
	}

	return p
}

// Sensors returns a snapshot of per-sensor health.
func (p *Poller) Sensors() []Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Info, len(p.infos))
	copy(out, p.infos)
	return out
}

// Poll reads every sensor once and returns the readings. Read failures are
// reported as error readings, counted, and trigger a driver re-init after
// maxConsecutiveErrors cycles.
func (p *Poller) Poll() []Reading {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now().UTC()
	readings := make([]Reading, 0, len(p.drivers))

	for i, driver := range p.drivers {
		info := &p.infos[i]

		distance, err := driver.ReadDistance()
		if err != nil {
			code := CodeForError(err)
			p.logger.Warn("sensor read failed",
				zap.Uint32("sensor_id", info.SensorID),
				zap.String("i2c_address", FormatAddress(info.I2CAddress)),
				zap.String("error_code", code),
				zap.Error(err),
			)
			info.Status = StatusError
			info.ErrorCode = code
			readings = append(readings, Reading{
				SensorID:  info.SensorID,
				Timestamp: now,
				ErrorCode: code,
			})
			p.countError(driver, info)
			continue
		}

		p.errCounts[info.SensorID] = 0
		info.Status = StatusOK
		info.ErrorCode = ""
		readings = append(readings, Reading{
			SensorID:   info.SensorID,
			DistanceMM: distance,
			Timestamp:  now,
		})
	}

	return readings
}

func (p *Poller) countError(driver Driver, info *Info) {
	p.errCounts[info.SensorID]++
	if p.errCounts[info.SensorID] < maxConsecutiveErrors {
		return
	}

	p.logger.Warn("sensor exceeded error limit, re-initialising",
		zap.Uint32("sensor_id", info.SensorID),
		zap.Int("consecutive_errors", p.errCounts[info.SensorID]),
	)
	if err := driver.Init(); err != nil {
		p.logger.Warn("sensor re-init failed",
			zap.Uint32("sensor_id", info.SensorID),
			zap.Error(err),
		)
		return
	}
	p.errCounts[info.SensorID] = 0
}
