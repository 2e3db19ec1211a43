package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terraincognita07/stillhere/internal/models"
	"github.com/terraincognita07/stillhere/internal/notify"
)

var ErrNoEmergencyContacts = errors.New("user has no emergency contacts")

const (
	// NeverCheckedInDisplay is what contacts see in place of a last
	// check-in instant for a user with no check-in on record.
	NeverCheckedInDisplay = "never"

	defaultSweepConcurrency = 4
)

type SweepUserStore interface {
	ListAll() ([]models.User, error)
}

type SweepCheckinStore interface {
	LastCheckedAt(userID uint) (*time.Time, error)
}

type SweepContactStore interface {
	ListByUser(userID uint) ([]models.EmergencyContact, error)
}

type SweepAlertLog interface {
	RecentContactIDs(userID uint, since time.Time) (map[uint]struct{}, error)
	AppendIfNotRecent(userID uint, contactID uint, since time.Time, sentAt time.Time, kind string) (bool, error)
}

type SweepConfig struct {
	InactivityThreshold  time.Duration
	NotificationCooldown time.Duration
	// Concurrency bounds parallel notifier calls within one pass so the
	// delivery transport's rate limits are respected.
	Concurrency int
	Location    *time.Location
}

type AlertRecord struct {
	UserID       uint   `json:"user_id"`
	ContactID    uint   `json:"contact_id"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	Kind         string `json:"kind"`
}

type AlertFailure struct {
	UserID       uint   `json:"user_id"`
	ContactID    uint   `json:"contact_id"`
	ContactEmail string `json:"contact_email"`
	Error        string `json:"error"`
}

// SweepSummary reports one pass. Notifier failures are aggregated here
// rather than failing the pass; store failures abort it.
type SweepSummary struct {
	UsersScanned int            `json:"users_scanned"`
	AlertsSent   int            `json:"alerts_sent"`
	Deduped      int            `json:"deduped"`
	Alerts       []AlertRecord  `json:"alerts"`
	Failures     []AlertFailure `json:"failures"`
}

// SweepService is the inactivity-detection and dispatch engine: it scans
// every user, decides who is overdue, suppresses contacts alerted inside
// the cooldown window, and records each successful delivery.
type SweepService struct {
	users    SweepUserStore
	checkins SweepCheckinStore
	contacts SweepContactStore
	alertLog SweepAlertLog
	notifier notify.Notifier
	cfg      SweepConfig
}

func NewSweepService(
	users SweepUserStore,
	checkins SweepCheckinStore,
	contacts SweepContactStore,
	alertLog SweepAlertLog,
	notifier notify.Notifier,
	cfg SweepConfig,
) *SweepService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = defaultSweepConcurrency
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SweepService{
		users:    users,
		checkins: checkins,
		contacts: contacts,
		alertLog: alertLog,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Run executes one sweep pass over all users. A store error aborts the
// pass (alerts already logged stand); notifier errors are per-contact and
// only surface in the summary.
func (service *SweepService) Run(ctx context.Context, now time.Time) (SweepSummary, error) {
	summary := SweepSummary{
		Alerts:   make([]AlertRecord, 0),
		Failures: make([]AlertFailure, 0),
	}

	users, err := service.users.ListAll()
	if err != nil {
		return summary, fmt.Errorf("list users: %w", err)
	}

	for _, user := range users {
		summary.UsersScanned++

		lastCheckin, err := service.checkins.LastCheckedAt(user.ID)
		if err != nil {
			return summary, fmt.Errorf("last check-in for user %d: %w", user.ID, err)
		}
		if !IsInactive(lastCheckin, service.cfg.InactivityThreshold, now) {
			continue
		}

		contacts, err := service.contacts.ListByUser(user.ID)
		if err != nil {
			return summary, fmt.Errorf("contacts for user %d: %w", user.ID, err)
		}
		if len(contacts) == 0 {
			continue
		}

		if err := service.dispatch(ctx, user.ID, lastCheckin, contacts, now, models.AlertKindScheduled, &summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// NotifyNow is the user-initiated "alert my contacts" path. It skips the
// inactivity check entirely but shares the cooldown dedup with the sweep:
// a contact alerted inside the window is not alerted again.
func (service *SweepService) NotifyNow(ctx context.Context, userID uint, now time.Time) (SweepSummary, error) {
	summary := SweepSummary{
		Alerts:   make([]AlertRecord, 0),
		Failures: make([]AlertFailure, 0),
	}

	contacts, err := service.contacts.ListByUser(userID)
	if err != nil {
		return summary, fmt.Errorf("contacts for user %d: %w", userID, err)
	}
	if len(contacts) == 0 {
		return summary, ErrNoEmergencyContacts
	}

	lastCheckin, err := service.checkins.LastCheckedAt(userID)
	if err != nil {
		return summary, fmt.Errorf("last check-in for user %d: %w", userID, err)
	}

	summary.UsersScanned = 1
	if err := service.dispatch(ctx, userID, lastCheckin, contacts, now, models.AlertKindManual, &summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// dispatch alerts every contact of one user that is outside the cooldown
// window. Contacts are independent: deliveries run concurrently under the
// configured limit, and one failure never blocks the others. An alert is
// logged only after the notifier reports success, through a conditional
// append that keeps two racing passes from double-recording.
func (service *SweepService) dispatch(
	ctx context.Context,
	userID uint,
	lastCheckin *time.Time,
	contacts []models.EmergencyContact,
	now time.Time,
	kind string,
	summary *SweepSummary,
) error {
	since := now.Add(-service.cfg.NotificationCooldown)
	alerted, err := service.alertLog.RecentContactIDs(userID, since)
	if err != nil {
		return fmt.Errorf("recent alerts for user %d: %w", userID, err)
	}

	payload := notify.Payload{
		LastCheckinDisplay: service.formatLastCheckin(lastCheckin),
		Reason:             kind,
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(service.cfg.Concurrency)

	for _, contact := range contacts {
		contact := contact
		if _, done := alerted[contact.ID]; done {
			mu.Lock()
			summary.Deduped++
			mu.Unlock()
			continue
		}

		group.Go(func() error {
			contactPayload := payload
			contactPayload.RecipientName = contact.Name

			if err := service.notifier.Send(groupCtx, contact, contactPayload); err != nil {
				mu.Lock()
				summary.Failures = append(summary.Failures, AlertFailure{
					UserID:       userID,
					ContactID:    contact.ID,
					ContactEmail: contact.Email,
					Error:        err.Error(),
				})
				mu.Unlock()
				return nil
			}

			appended, err := service.alertLog.AppendIfNotRecent(userID, contact.ID, since, now, kind)
			if err != nil {
				return fmt.Errorf("append alert log for user %d contact %d: %w", userID, contact.ID, err)
			}

			mu.Lock()
			if appended {
				summary.AlertsSent++
				summary.Alerts = append(summary.Alerts, AlertRecord{
					UserID:       userID,
					ContactID:    contact.ID,
					ContactName:  contact.Name,
					ContactEmail: contact.Email,
					Kind:         kind,
				})
			} else {
				summary.Deduped++
			}
			mu.Unlock()
			return nil
		})
	}

	return group.Wait()
}

func (service *SweepService) formatLastCheckin(lastCheckin *time.Time) string {
	if lastCheckin == nil {
		return NeverCheckedInDisplay
	}
	return lastCheckin.In(service.cfg.Location).Format("Jan 2, 2006 15:04 MST")
}
