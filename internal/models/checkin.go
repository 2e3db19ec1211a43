package models

import "time"

// Checkin holds at most one row per (user, calendar day). Date is the
// UTC-normalized midnight of the day; CheckedAt is the exact instant of
// the latest check-in that day. A repeat check-in on the same day updates
// CheckedAt in place.
type Checkin struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:uidx_checkin_user_date"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:uidx_checkin_user_date"`
	CheckedAt time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
