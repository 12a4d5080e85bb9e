package credential

import "errors"

var (
	// ErrDenied indicates the upstream rejected a credential as unauthorized.
	// It disqualifies that candidate for the current resolution only; access
	// can be granted later, so the next cycle retries from scratch.
	ErrDenied = errors.New("authorization denied")

	// ErrNoAccessible indicates every candidate was denied.
	ErrNoAccessible = errors.New("no accessible credential")
)
