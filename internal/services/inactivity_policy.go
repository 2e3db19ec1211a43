package services

import "time"

// IsInactive reports whether a user is overdue: no check-in on record, or
// strictly more than the threshold elapsed since the last one. A user who
// has never checked in is overdue immediately; whether that triggers an
// alert depends only on them having emergency contacts.
func IsInactive(lastCheckin *time.Time, threshold time.Duration, now time.Time) bool {
	if lastCheckin == nil {
		return true
	}
	return now.Sub(*lastCheckin) > threshold
}
