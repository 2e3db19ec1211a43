package db

import (
	"time"

	"github.com/terraincognita07/stillhere/internal/models"
	"gorm.io/gorm"
)

type AlertLogRepository struct {
	database *gorm.DB
}

func NewAlertLogRepository(database *gorm.DB) *AlertLogRepository {
	return &AlertLogRepository{database: database}
}

// RecentContactIDs returns the set of contacts already alerted for the
// user since the given instant.
func (repo *AlertLogRepository) RecentContactIDs(userID uint, since time.Time) (map[uint]struct{}, error) {
	entries := make([]models.AlertLogEntry, 0)
	if err := repo.database.
		Select("contact_id").
		Where("user_id = ? AND sent_at > ?", userID, since).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	contactIDs := make(map[uint]struct{}, len(entries))
	for _, entry := range entries {
		contactIDs[entry.ContactID] = struct{}{}
	}
	return contactIDs, nil
}

// AppendIfNotRecent records an alert unless one already exists for the
// (user, contact) pair after the since instant. The check and the insert
// run as a single statement, so two sweeps racing inside one cooldown
// window can never both append.
func (repo *AlertLogRepository) AppendIfNotRecent(userID uint, contactID uint, since time.Time, sentAt time.Time, kind string) (bool, error) {
	result := repo.database.Exec(`
INSERT INTO alert_log_entries (user_id, contact_id, sent_at, kind)
SELECT ?, ?, ?, ?
WHERE NOT EXISTS (
  SELECT 1 FROM alert_log_entries
  WHERE user_id = ? AND contact_id = ? AND sent_at > ?
)`, userID, contactID, sentAt, kind, userID, contactID, since)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *AlertLogRepository) ListByUser(userID uint) ([]models.AlertLogEntry, error) {
	entries := make([]models.AlertLogEntry, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("sent_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *AlertLogRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.AlertLogEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
