// Package capture implements system-wide input capture behind a
// platform-neutral controller. The platform variants (X11 RECORD stream,
// Windows low-level hooks) live in build-tagged files; everything else
// depends only on the Source interface.
package capture

import (
	"log"
	"sync"
	"sync/atomic"
)

// Capability reports whether the platform capture facility is usable,
// plus platform-dependent detail flags (e.g. "x11_record", "hooks").
type Capability struct {
	Available bool            `json:"available"`
	Details   map[string]bool `json:"details,omitempty"`
}

// Options tune platform source behavior.
type Options struct {
	// SwallowEvents consumes captured events instead of forwarding them
	// down the system hook chain, on platforms that support it (Windows).
	// The X11 RECORD extension is observe-only; the flag is ignored there.
	SwallowEvents bool
}

// Source is one platform capture mechanism. Start acquires every OS
// resource the mechanism needs, in a fixed order, and must release them in
// reverse order if any acquisition fails: a failed Start leaves nothing
// held. Stop blocks until no decode or callback can still execute.
type Source interface {
	Start() error
	Stop()
	CheckCapability() Capability
	RequestCapability() bool
}

// State is the controller lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// Controller owns the lifecycle of a single Source. At most one capture
// session exists per controller; Start while running is idempotent and
// Stop while idle is a no-op.
type Controller struct {
	mu     sync.Mutex
	state  atomic.Int32
	source Source
}

// NewController returns an idle controller driving src.
func NewController(src Source) *Controller {
	return &Controller{source: src}
}

// Start begins capturing. It reports whether capture is active after the
// call: true when already running, false when the platform facility is
// unavailable or a resource could not be acquired. A failed Start leaves
// the controller idle with zero resources held.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if State(c.state.Load()) == StateRunning {
		return true
	}

	c.state.Store(int32(StateStarting))
	if err := c.source.Start(); err != nil {
		log.Printf("capture: start failed: %v", err)
		c.state.Store(int32(StateIdle))
		return false
	}
	c.state.Store(int32(StateRunning))
	log.Printf("capture: started")
	return true
}

// Stop halts capture. It returns only after any capture worker has
// terminated and all OS resources are released, so no decode or callback
// runs once Stop returns. Safe to call at teardown and when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if State(c.state.Load()) != StateRunning {
		return
	}

	c.state.Store(int32(StateStopping))
	c.source.Stop()
	c.state.Store(int32(StateIdle))
	log.Printf("capture: stopped")
}

// IsCapturing reports whether a capture session is active. Pure state
// query; never blocks, even while Start or Stop is in flight.
func (c *Controller) IsCapturing() bool {
	return State(c.state.Load()) == StateRunning
}

// CheckCapability reports platform facility availability without side
// effects.
func (c *Controller) CheckCapability() Capability {
	return c.source.CheckCapability()
}

// RequestCapability asks the platform to enable the capture facility. On
// platforms with no explicit grant step it mirrors availability.
func (c *Controller) RequestCapability() bool {
	return c.source.RequestCapability()
}
