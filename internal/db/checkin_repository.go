package db

import (
	"time"

	"github.com/terraincognita07/stillhere/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckinRepository struct {
	database *gorm.DB
}

func NewCheckinRepository(database *gorm.DB) *CheckinRepository {
	return &CheckinRepository{database: database}
}

// Upsert writes the check-in for (userID, day). A second call for the same
// day updates checked_at in place through the unique index rather than
// inserting a duplicate row, so concurrent callers converge on the
// last-applied instant.
func (repo *CheckinRepository) Upsert(userID uint, day time.Time, checkedAt time.Time) (models.Checkin, error) {
	entry := models.Checkin{
		UserID:    userID,
		Date:      day,
		CheckedAt: checkedAt,
	}
	err := repo.database.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"checked_at": checkedAt,
			"updated_at": checkedAt,
		}),
	}).Create(&entry).Error
	if err != nil {
		return models.Checkin{}, err
	}

	// Re-read so the caller sees the stored row even when the insert was
	// turned into an update of an existing one.
	stored, found, err := repo.FindByUserAndDate(userID, day)
	if err != nil {
		return models.Checkin{}, err
	}
	if !found {
		return entry, nil
	}
	return stored, nil
}

func (repo *CheckinRepository) FindByUserAndDate(userID uint, day time.Time) (models.Checkin, bool, error) {
	var entry models.Checkin
	result := repo.database.
		Where("user_id = ? AND date = ?", userID, day).
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.Checkin{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Checkin{}, false, nil
	}
	return entry, true, nil
}

// LastCheckedAt returns the latest check-in instant across all of the
// user's rows, or nil when the user has never checked in.
func (repo *CheckinRepository) LastCheckedAt(userID uint) (*time.Time, error) {
	var entry models.Checkin
	result := repo.database.
		Where("user_id = ?", userID).
		Order("checked_at DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	checkedAt := entry.CheckedAt
	return &checkedAt, nil
}

func (repo *CheckinRepository) ListSince(userID uint, fromDay time.Time) ([]models.Checkin, error) {
	entries := make([]models.Checkin, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ?", userID, fromDay).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
