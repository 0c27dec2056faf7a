// Package sink holds the single registered consumer of normalized events.
package sink

import (
	"sync/atomic"

	"inputcap/internal/event"
)

// Consumer receives normalized events. Deliver must not block: the capture
// path runs on an OS-owned thread (or inside a time-budgeted hook callback)
// and is never allowed to wait on a slow consumer.
type Consumer interface {
	Deliver(event.Event)
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(event.Event)

// Deliver calls fn(e).
func (fn ConsumerFunc) Deliver(e event.Event) { fn(e) }

// Sink delivers events to at most one registered consumer. Registration is
// last-writer-wins. The consumer cell is an atomic pointer so a Send racing
// with Set/Clear observes either the old consumer or none, never a torn
// value.
type Sink struct {
	consumer atomic.Pointer[Consumer]
}

// New returns a Sink with no consumer registered.
func New() *Sink {
	return &Sink{}
}

// Set registers c, replacing any previous consumer.
func (s *Sink) Set(c Consumer) {
	if c == nil {
		s.consumer.Store(nil)
		return
	}
	s.consumer.Store(&c)
}

// Clear removes the registered consumer. Safe to call repeatedly.
func (s *Sink) Clear() {
	s.consumer.Store(nil)
}

// Send pushes e to the registered consumer. Without a consumer it is a
// no-op, never an error; delivery is fire-and-forget.
func (s *Sink) Send(e event.Event) {
	if c := s.consumer.Load(); c != nil {
		(*c).Deliver(e)
	}
}
