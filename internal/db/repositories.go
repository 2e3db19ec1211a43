package db

import "gorm.io/gorm"

type Repositories struct {
	Users    *UserRepository
	Checkins *CheckinRepository
	Contacts *ContactRepository
	AlertLog *AlertLogRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(database),
		Checkins: NewCheckinRepository(database),
		Contacts: NewContactRepository(database),
		AlertLog: NewAlertLogRepository(database),
	}
}
