package sensor

import "sync"

// MockDriver is a scriptable in-memory driver used in tests and on platforms
// without the sensor bus. Scripted results are consumed in order; the last
// one repeats once the script is exhausted.
type MockDriver struct {
	mu      sync.Mutex
	address uint8
	script  []mockResult
	index   int
	initErr error
}

type mockResult struct {
	distanceMM int
	err        error
}

// NewMockDriver builds a driver that reports the given distance forever.
func NewMockDriver(address uint8, distanceMM int) *MockDriver {
	return &MockDriver{
		address: address,
		script:  []mockResult{{distanceMM: distanceMM}},
	}
}

// QueueDistance appends a successful scripted read.
func (d *MockDriver) QueueDistance(distanceMM int) *MockDriver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script = append(d.script, mockResult{distanceMM: distanceMM})
	return d
}

// QueueError appends a failing scripted read.
func (d *MockDriver) QueueError(err error) *MockDriver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script = append(d.script, mockResult{err: err})
	return d
}

// FailInit makes Init return the given error.
func (d *MockDriver) FailInit(err error) *MockDriver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initErr = err
	return d
}

// Init implements Driver.
func (d *MockDriver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initErr
}

// ReadDistance implements Driver.
func (d *MockDriver) ReadDistance() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := d.script[d.index]
	if d.index < len(d.script)-1 {
		d.index++
	}
	if result.err != nil {
		return 0, result.err
	}
	return result.distanceMM, nil
}

// Address implements Driver.
func (d *MockDriver) Address() uint8 {
	return d.address
}
