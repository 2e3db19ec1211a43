package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/stillhere/internal/services"
)

// Checkin records today's check-in for the calling user. Safe to call any
// number of times a day; repeats only move the checked-at instant forward.
func (handler *Handler) Checkin(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "device id required")
	}

	now := time.Now()
	entry, err := handler.checkinService.RecordCheckin(user.ID, now)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "record check-in failed")
	}

	countdown := handler.countdownView(&entry.CheckedAt, now)
	return c.JSON(fiber.Map{
		"checked_in_today": true,
		"checked_at":       entry.CheckedAt.UTC().Format(time.RFC3339),
		"date":             entry.Date.Format("2006-01-02"),
		"countdown":        countdown,
	})
}

// CheckinStatus is the read-only derivation the presentation layer polls:
// the daily predicate plus the countdown, or an unknown countdown for a
// user who has never checked in.
func (handler *Handler) CheckinStatus(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "device id required")
	}

	now := time.Now()
	checkedInToday, err := handler.checkinService.HasCheckedInToday(user.ID, now)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "load check-in status failed")
	}

	lastCheckin, err := handler.checkinService.LastCheckin(user.ID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "load check-in status failed")
	}

	var lastCheckinValue any
	if lastCheckin != nil {
		lastCheckinValue = lastCheckin.UTC().Format(time.RFC3339)
	}

	return c.JSON(fiber.Map{
		"has_checked_in_today": checkedInToday,
		"last_checkin":         lastCheckinValue,
		"countdown":            handler.countdownView(lastCheckin, now),
	})
}

// CheckinHistory returns the recent check-in window, newest first.
func (handler *Handler) CheckinHistory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "device id required")
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return respondError(c, fiber.StatusBadRequest, "invalid days parameter")
		}
		days = parsed
	}

	entries, err := handler.checkinService.History(user.ID, time.Now(), days)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "load check-in history failed")
	}

	history := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		history = append(history, fiber.Map{
			"date":       entry.Date.Format("2006-01-02"),
			"checked_at": entry.CheckedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"checkins": history,
	})
}

func (handler *Handler) countdownView(lastCheckin *time.Time, now time.Time) *services.Countdown {
	countdown, known := services.Remaining(lastCheckin, handler.cfg.InactivityThreshold, handler.cfg.UrgencyWindow, now)
	if !known {
		return nil
	}
	return &countdown
}
