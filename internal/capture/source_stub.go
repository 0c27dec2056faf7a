//go:build !linux && !windows

package capture

import (
	"errors"

	"inputcap/internal/sink"
)

var errUnsupported = errors.New("input capture is not supported on this platform")

type unsupportedSource struct{}

// NewSource returns a source that reports the capture facility as absent.
func NewSource(_ *sink.Sink, _ Options) Source {
	return unsupportedSource{}
}

func (unsupportedSource) Start() error { return errUnsupported }

func (unsupportedSource) Stop() {}

func (unsupportedSource) CheckCapability() Capability {
	return Capability{Available: false}
}

func (unsupportedSource) RequestCapability() bool { return false }
