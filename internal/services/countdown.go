package services

import "time"

// DefaultUrgencyWindow is the fixed sub-threshold under which the
// remaining time is flagged urgent. It drives presentation only and never
// affects dispatch.
const DefaultUrgencyWindow = 12 * time.Hour

// Countdown is the decomposed time left until the check-in deadline.
// Expired countdowns are floored at zero; an expired countdown is always
// urgent as well.
type Countdown struct {
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Urgent  bool `json:"urgent"`
	Expired bool `json:"expired"`
}

// Remaining computes the countdown for a user whose latest check-in was at
// lastCheckin. It reports false when the user has never checked in, in
// which case no countdown can be shown. The function is pure: identical
// inputs always produce identical outputs.
//
// The deadline is lastCheckin + threshold, inclusive: at exactly the
// deadline the countdown is already expired. Decomposition into whole
// hours, minutes and seconds uses floor division throughout.
func Remaining(lastCheckin *time.Time, threshold time.Duration, urgentWindow time.Duration, now time.Time) (Countdown, bool) {
	if lastCheckin == nil {
		return Countdown{}, false
	}
	if urgentWindow <= 0 {
		urgentWindow = DefaultUrgencyWindow
	}

	deadline := lastCheckin.Add(threshold)
	diff := deadline.Sub(now)
	if diff <= 0 {
		return Countdown{Urgent: true, Expired: true}, true
	}

	return Countdown{
		Hours:   int(diff / time.Hour),
		Minutes: int((diff % time.Hour) / time.Minute),
		Seconds: int((diff % time.Minute) / time.Second),
		Urgent:  diff < urgentWindow,
		Expired: false,
	}, true
}
