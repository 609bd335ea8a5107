package models

import "fmt"

// Backend identifies which runtime serves a prompt.
type Backend string

const (
	// BackendLocal is the free, locally hosted inference runtime.
	BackendLocal Backend = "local"
	// BackendPaid is the metered cloud completion API.
	BackendPaid Backend = "paid"
)

// ParseBackend validates a backend identifier. The empty string passes
// through so callers can express "no override".
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendLocal, BackendPaid:
		return Backend(s), nil
	}
	return "", fmt.Errorf("unknown backend %q", s)
}

// Other returns the opposite backend.
func (b Backend) Other() Backend {
	if b == BackendLocal {
		return BackendPaid
	}
	return BackendLocal
}
