package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAllocateAddresses(t *testing.T) {
	t.Parallel()

	addresses, err := AllocateAddresses(3)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x30, 0x31, 0x32}, addresses)

	_, err = AllocateAddresses(100)
	assert.Error(t, err)
}

func TestCodeForError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeNoResponse, CodeForError(ErrNoResponse))
	assert.Equal(t, CodeTimeout, CodeForError(ErrTimeout))
	assert.Equal(t, CodeInvalidReading, CodeForError(ErrInvalidReading))
	assert.Equal(t, CodeI2CError, CodeForError(ErrI2C))
	assert.Equal(t, CodeI2CError, CodeForError(assert.AnError))
}

func TestFormatAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x29", FormatAddress(DefaultAddress))
	assert.Equal(t, "0x30", FormatAddress(AddressBase))
}

func TestPollerReadsAllSensors(t *testing.T) {
	t.Parallel()

	drivers := []Driver{
		NewMockDriver(0x30, 800),
		NewMockDriver(0x31, 2500),
	}
	poller := NewPoller(drivers, zap.NewNop())
	poller.now = func() time.Time { return time.Unix(100, 0) }

	readings := poller.Poll()

	require.Len(t, readings, 2)
	assert.Equal(t, uint32(1), readings[0].SensorID)
	assert.Equal(t, 800, readings[0].DistanceMM)
	assert.True(t, readings[0].OK())
	assert.Equal(t, uint32(2), readings[1].SensorID)
	assert.Equal(t, 2500, readings[1].DistanceMM)

	sensors := poller.Sensors()
	require.Len(t, sensors, 2)
	assert.Equal(t, StatusOK, sensors[0].Status)
	assert.Equal(t, uint8(0x30), sensors[0].I2CAddress)
}

func TestPollerClassifiesReadFailures(t *testing.T) {
	t.Parallel()

	failing := NewMockDriver(0x30, 0)
	failing.QueueError(ErrTimeout)
	failing.QueueError(ErrTimeout)
	drivers := []Driver{failing, NewMockDriver(0x31, 900)}

	poller := NewPoller(drivers, zap.NewNop())
	poller.Poll() // consume the initial scripted success
	readings := poller.Poll()

	require.Len(t, readings, 2)
	assert.False(t, readings[0].OK())
	assert.Equal(t, CodeTimeout, readings[0].ErrorCode)
	assert.True(t, readings[1].OK())

	sensors := poller.Sensors()
	assert.Equal(t, StatusError, sensors[0].Status)
	assert.Equal(t, CodeTimeout, sensors[0].ErrorCode)
	assert.Equal(t, StatusOK, sensors[1].Status)
}

func TestPollerRecoversAfterSuccessfulRead(t *testing.T) {
	t.Parallel()

	driver := NewMockDriver(0x30, 1000)
	driver.QueueError(ErrI2C)
	driver.QueueDistance(1100)

	poller := NewPoller([]Driver{driver}, zap.NewNop())
	poller.Poll()
	failed := poller.Poll()
	recovered := poller.Poll()

	assert.False(t, failed[0].OK())
	assert.True(t, recovered[0].OK())
	assert.Equal(t, 1100, recovered[0].DistanceMM)
	assert.Equal(t, StatusOK, poller.Sensors()[0].Status)
	assert.Empty(t, poller.Sensors()[0].ErrorCode)
}

func TestPollerMarksFailedInit(t *testing.T) {
	t.Parallel()

	bad := NewMockDriver(0x30, 0)
	bad.FailInit(ErrNoResponse)

	poller := NewPoller([]Driver{bad}, zap.NewNop())

	sensors := poller.Sensors()
	require.Len(t, sensors, 1)
	assert.Equal(t, StatusError, sensors[0].Status)
	assert.Equal(t, CodeNoResponse, sensors[0].ErrorCode)
}

func TestPollerReinitialisesAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	driver := NewMockDriver(0x30, 700)
	for i := 0; i < maxConsecutiveErrors; i++ {
		driver.QueueError(ErrNoResponse)
	}
	driver.QueueDistance(750)

	poller := NewPoller([]Driver{driver}, zap.NewNop())
	poller.Poll()
	for i := 0; i < maxConsecutiveErrors; i++ {
		poller.Poll()
	}

	// After the re-init the next cycle reads successfully again.
	readings := poller.Poll()
	assert.True(t, readings[0].OK())
	assert.Equal(t, 750, readings[0].DistanceMM)
}
