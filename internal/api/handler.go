package api

import (
	"time"

	"gorm.io/gorm"

	"github.com/terraincognita07/stillhere/internal/config"
	"github.com/terraincognita07/stillhere/internal/db"
	"github.com/terraincognita07/stillhere/internal/notify"
	"github.com/terraincognita07/stillhere/internal/services"
)

type Handler struct {
	repositories   *db.Repositories
	checkinService *services.CheckinService
	contactService *services.ContactService
	sweepService   *services.SweepService
	location       *time.Location
	cfg            config.Config
}

func NewHandler(database *gorm.DB, cfg config.Config, location *time.Location, notifier notify.Notifier) *Handler {
	if location == nil {
		location = time.UTC
	}

	repositories := db.NewRepositories(database)
	return &Handler{
		repositories:   repositories,
		checkinService: services.NewCheckinService(repositories.Checkins, location),
		contactService: services.NewContactService(repositories.Contacts),
		sweepService: services.NewSweepService(
			repositories.Users,
			repositories.Checkins,
			repositories.Contacts,
			repositories.AlertLog,
			notifier,
			services.SweepConfig{
				InactivityThreshold:  cfg.InactivityThreshold,
				NotificationCooldown: cfg.NotificationCooldown,
				Concurrency:          cfg.SweepConcurrency,
				Location:             location,
			},
		),
		location: location,
		cfg:      cfg,
	}
}

// SweepService exposes the engine for the background scheduler; the HTTP
// layer and the scheduler share one instance so manual and scheduled
// alerts dedup against the same log.
func (handler *Handler) SweepService() *services.SweepService {
	return handler.sweepService
}
