package metric

import "errors"

var (
	// ErrInvalidRecord indicates a record that must not be appended.
	ErrInvalidRecord = errors.New("invalid metric record")
	// ErrNoRecords indicates a project with no metric history yet.
	ErrNoRecords = errors.New("no metric records")
)
