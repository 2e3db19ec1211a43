package services

import "time"

// DateAtLocation truncates an instant to midnight of its calendar day in
// the given location. The whole codebase derives calendar days through
// this one function so the "same day" notion stays consistent between the
// check-in ledger and the client-facing predicates.
func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func SameDay(a time.Time, b time.Time, location *time.Location) bool {
	return DateAtLocation(a, location).Equal(DateAtLocation(b, location))
}
