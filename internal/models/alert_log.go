package models

import "time"

const (
	AlertKindScheduled = "scheduled"
	AlertKindManual    = "manual"
)

// AlertLogEntry records one delivered alert. Rows are append-only and are
// never mutated or purged; the sweep reads them back through a sliding
// cooldown window to suppress repeat alerts to the same contact.
type AlertLogEntry struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index:idx_alert_log_user_sent"`
	ContactID uint      `gorm:"not null"`
	SentAt    time.Time `gorm:"not null;index:idx_alert_log_user_sent"`
	Kind      string    `gorm:"not null;default:scheduled"`
}
