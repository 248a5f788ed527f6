package engine

import "time"

// Clock supplies created_at / updated_at timestamps.
//
// Timestamps never take part in ordering; global_order is the only arrival
// index. Tests inject a fixed clock to get stable snapshots.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
