package capture

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource counts resource acquisition so tests can assert the
// controller never holds anything while idle and never double-acquires.
type fakeSource struct {
	mu       sync.Mutex
	held     int
	starts   int
	stops    int
	failNext bool
	cap      Capability
}

func (f *fakeSource) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.failNext {
		return errors.New("facility unavailable")
	}
	f.held++
	return nil
}

func (f *fakeSource) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.held--
}

func (f *fakeSource) CheckCapability() Capability  { return f.cap }
func (f *fakeSource) RequestCapability() bool      { return f.cap.Available }
func (f *fakeSource) resources() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held
}

func TestStartStopLifecycle(t *testing.T) {
	src := &fakeSource{cap: Capability{Available: true}}
	c := NewController(src)

	assert.False(t, c.IsCapturing())
	assert.Zero(t, src.resources())

	require.True(t, c.Start())
	assert.True(t, c.IsCapturing())
	assert.Equal(t, 1, src.resources())

	c.Stop()
	assert.False(t, c.IsCapturing())
	assert.Zero(t, src.resources())
}

func TestStartIsIdempotentWhileRunning(t *testing.T) {
	src := &fakeSource{}
	c := NewController(src)

	require.True(t, c.Start())
	require.True(t, c.Start())
	require.True(t, c.Start())

	assert.Equal(t, 1, src.starts, "second Start must not re-acquire")
	assert.Equal(t, 1, src.resources())

	c.Stop()
	assert.Zero(t, src.resources())
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	src := &fakeSource{}
	c := NewController(src)

	c.Stop()
	c.Stop()

	assert.Zero(t, src.stops)
	assert.False(t, c.IsCapturing())
}

func TestFailedStartLeavesIdleWithNothingHeld(t *testing.T) {
	src := &fakeSource{failNext: true, cap: Capability{
		Available: false,
		Details:   map[string]bool{"x11_record": false},
	}}
	c := NewController(src)

	assert.False(t, c.Start())
	assert.False(t, c.IsCapturing())
	assert.Zero(t, src.resources())

	// Capability report after the failure still says absent.
	assert.False(t, c.CheckCapability().Available)
	assert.False(t, c.RequestCapability())

	// Stop after a failed Start must not release anything.
	c.Stop()
	assert.Zero(t, src.stops)
}

func TestRecoveryAfterFailedStart(t *testing.T) {
	src := &fakeSource{failNext: true}
	c := NewController(src)

	require.False(t, c.Start())

	src.mu.Lock()
	src.failNext = false
	src.mu.Unlock()

	require.True(t, c.Start())
	assert.True(t, c.IsCapturing())
	c.Stop()
	assert.Zero(t, src.resources())
}

func TestStartStopSequencesNeverLeak(t *testing.T) {
	src := &fakeSource{}
	c := NewController(src)

	for i := 0; i < 50; i++ {
		require.True(t, c.Start())
		if i%3 == 0 {
			require.True(t, c.Start())
		}
		c.Stop()
		c.Stop()
		require.Zero(t, src.resources())
	}
}

func TestConcurrentStartStop(t *testing.T) {
	src := &fakeSource{}
	c := NewController(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Start()
				c.IsCapturing()
				c.Stop()
			}
		}()
	}
	wg.Wait()

	c.Stop()
	assert.Zero(t, src.resources())
	assert.False(t, c.IsCapturing())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "stopping", StateStopping.String())
}
