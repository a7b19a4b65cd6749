// Package sensor defines the ranging-sensor boundary: the driver interface,
// per-sensor health, and the poll cycle that snapshots distance readings.
// Physical I2C transactions live behind the Driver interface.
package sensor

import (
	"errors"
	"fmt"
	"time"
)

// 7-bit I2C addressing. Sensors boot at the default address and are moved to
// sequential addresses starting at AddressBase during bring-up.
const (
	DefaultAddress uint8 = 0x29
	AddressBase    uint8 = 0x30
	addressMax     uint8 = 0x77
)

// Status of a sensor as exposed on /api/sensors.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Per-sensor hardware error codes, passed through verbatim from the driver.
const (
	CodeNoResponse     = "NO_RESPONSE"
	CodeI2CError       = "I2C_ERROR"
	CodeTimeout        = "TIMEOUT"
	CodeInvalidReading = "INVALID_READING"
)

// Driver failure classes. Drivers wrap these so the poller can classify
// without knowing bus details.
var (
	ErrNoResponse     = errors.New("sensor not responding")
	ErrI2C            = errors.New("i2c transaction failed")
	ErrTimeout        = errors.New("sensor read timed out")
	ErrInvalidReading = errors.New("invalid distance reading")
)

// CodeForError maps a driver error onto the wire error code.
func CodeForError(err error) string {
	switch {
	case errors.Is(err, ErrNoResponse):
		return CodeNoResponse
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrInvalidReading):
		return CodeInvalidReading
	default:
		return CodeI2CError
	}
}

// Info describes one sensor's identity and health.
type Info struct {
	SensorID   uint32
	I2CAddress uint8
	Status     Status
	ErrorCode  string // set only when Status is error
}

// Reading is one distance sample. ErrorCode is empty for a successful read;
// range validity against the calibration limits is judged downstream.
type Reading struct {
	SensorID   uint32
	DistanceMM int
	Timestamp  time.Time
	ErrorCode  string
}

// OK reports whether the read itself succeeded.
func (r Reading) OK() bool {
	return r.ErrorCode == ""
}

// Driver reads distances from a single ranging sensor.
type Driver interface {
	// Init prepares the sensor for continuous ranging.
	Init() error
	// ReadDistance returns the current distance in millimetres.
	ReadDistance() (int, error)
	// Address returns the sensor's 7-bit I2C address.
	Address() uint8
}

// FormatAddress renders a 7-bit address in the 0x-prefixed hex form used by
// logs and the sensors endpoint.
func FormatAddress(address uint8) string {
	return fmt.Sprintf("0x%02x", address)
}

// AllocateAddresses returns sequential 7-bit addresses starting at
// AddressBase, failing when the allocation would leave the valid range.
func AllocateAddresses(count int) ([]uint8, error) {
	if count < 0 {
		return nil, errors.New("sensor: negative count")
	}
	if int(AddressBase)+count-1 > int(addressMax) {
		return nil, fmt.Errorf("sensor: %d sensors exceed 7-bit address range", count)
	}
	addresses := make([]uint8, count)
	for i := range addresses {
		addresses[i] = AddressBase + uint8(i)
	}
	return addresses, nil
}
