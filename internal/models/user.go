package models

import "time"

// User identity is bootstrap-on-demand: the first request carrying an
// unknown device id creates the row. There is no account or credential
// attached to a user beyond the opaque device id.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	DeviceID  string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
