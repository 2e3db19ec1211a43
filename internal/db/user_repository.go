package db

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/stillhere/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) CountUsers() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByDeviceID(deviceID string) (models.User, bool, error) {
	var user models.User
	result := repo.database.Where("device_id = ?", deviceID).Limit(1).Find(&user)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, false, nil
	}
	return user, true, nil
}

// FindOrCreateByDeviceID is the identity bootstrap: an unknown device id
// gets a fresh user row. Two devices racing on the same id converge on the
// single row the unique index lets through.
func (repo *UserRepository) FindOrCreateByDeviceID(deviceID string) (models.User, error) {
	user, found, err := repo.FindByDeviceID(deviceID)
	if err != nil {
		return models.User{}, err
	}
	if found {
		return user, nil
	}

	user = models.User{
		DeviceID:  deviceID,
		CreatedAt: time.Now().UTC(),
	}
	createErr := repo.database.Create(&user).Error
	if createErr == nil {
		return user, nil
	}

	if isUniqueConstraintError(createErr) {
		user, found, err = repo.FindByDeviceID(deviceID)
		if err != nil {
			return models.User{}, err
		}
		if found {
			return user, nil
		}
	}
	return models.User{}, createErr
}

func (repo *UserRepository) ListAll() ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
