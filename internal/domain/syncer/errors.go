package syncer

import "errors"

var (
	// ErrTransient marks a sync failure worth retrying next cycle with all
	// state preserved (timeouts, lock contention, network).
	ErrTransient = errors.New("transient sync failure")

	// ErrPermanent marks a sync failure that forces credential re-resolution
	// next cycle (authorization revoked, project deleted upstream).
	ErrPermanent = errors.New("permanent sync failure")
)
