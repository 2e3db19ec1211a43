package models

import "time"

// EmergencyContact is a party alerted when the owning user goes overdue.
// Emails are deliberately not unique: the same person may watch over
// several users, or appear twice for one user.
type EmergencyContact struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
