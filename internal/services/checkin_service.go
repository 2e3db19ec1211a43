package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/stillhere/internal/models"
)

var (
	ErrCheckinSaveFailed = errors.New("save check-in failed")
	ErrCheckinLoadFailed = errors.New("load check-ins failed")
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 90
)

type CheckinLedger interface {
	Upsert(userID uint, day time.Time, checkedAt time.Time) (models.Checkin, error)
	FindByUserAndDate(userID uint, day time.Time) (models.Checkin, bool, error)
	LastCheckedAt(userID uint) (*time.Time, error)
	ListSince(userID uint, fromDay time.Time) ([]models.Checkin, error)
}

type CheckinService struct {
	checkins CheckinLedger
	location *time.Location
}

func NewCheckinService(checkins CheckinLedger, location *time.Location) *CheckinService {
	if location == nil {
		location = time.UTC
	}
	return &CheckinService{
		checkins: checkins,
		location: location,
	}
}

// RecordCheckin upserts today's check-in for the user. Calling it again on
// the same calendar day moves checked_at forward without creating a second
// row, so the operation is idempotent per (user, day).
func (service *CheckinService) RecordCheckin(userID uint, now time.Time) (models.Checkin, error) {
	day := DateAtLocation(now, service.location)
	entry, err := service.checkins.Upsert(userID, day, now)
	if err != nil {
		return models.Checkin{}, ErrCheckinSaveFailed
	}
	return entry, nil
}

func (service *CheckinService) LastCheckin(userID uint) (*time.Time, error) {
	last, err := service.checkins.LastCheckedAt(userID)
	if err != nil {
		return nil, ErrCheckinLoadFailed
	}
	return last, nil
}

// HasCheckedInToday reports whether the user's most recent check-in falls
// on the current calendar day. True immediately after any RecordCheckin
// that day.
func (service *CheckinService) HasCheckedInToday(userID uint, now time.Time) (bool, error) {
	day := DateAtLocation(now, service.location)
	_, found, err := service.checkins.FindByUserAndDate(userID, day)
	if err != nil {
		return false, ErrCheckinLoadFailed
	}
	return found, nil
}

// History returns the user's check-ins over the recent window, newest
// first. The window defaults to 30 days and is capped at 90.
func (service *CheckinService) History(userID uint, now time.Time, days int) ([]models.Checkin, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	fromDay := DateAtLocation(now, service.location).AddDate(0, 0, -(days - 1))
	entries, err := service.checkins.ListSince(userID, fromDay)
	if err != nil {
		return nil, ErrCheckinLoadFailed
	}
	return entries, nil
}
