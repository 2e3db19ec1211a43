package db

import (
	"github.com/terraincognita07/stillhere/internal/models"
	"gorm.io/gorm"
)

type ContactRepository struct {
	database *gorm.DB
}

func NewContactRepository(database *gorm.DB) *ContactRepository {
	return &ContactRepository{database: database}
}

func (repo *ContactRepository) Create(contact *models.EmergencyContact) error {
	return repo.database.Create(contact).Error
}

func (repo *ContactRepository) ListByUser(userID uint) ([]models.EmergencyContact, error) {
	contacts := make([]models.EmergencyContact, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// DeleteByUserAndID removes a contact only when it belongs to the user;
// reports whether a row was actually deleted.
func (repo *ContactRepository) DeleteByUserAndID(userID uint, contactID uint) (bool, error) {
	result := repo.database.
		Where("user_id = ? AND id = ?", userID, contactID).
		Delete(&models.EmergencyContact{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
