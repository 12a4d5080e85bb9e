package tracker

import "time"

// SetClock overrides the tracker's time source for tests.
func SetClock(t *Tracker, now func() time.Time) {
	t.now = now
}
