//go:build !linux && !windows

package winctl

// New returns a control whose operations all report unavailability.
func New() (Control, error) {
	return Unavailable(), nil
}
