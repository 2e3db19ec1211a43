// Package notify delivers alert emails to emergency contacts. Delivery is
// an external collaborator: the engine only observes success or failure
// per contact and never retries on its own, the next sweep pass does.
package notify

import (
	"context"

	"github.com/terraincognita07/stillhere/internal/models"
)

const (
	ReasonScheduled = "scheduled"
	ReasonManual    = "manual"
)

// Payload describes one alert to one contact.
type Payload struct {
	RecipientName string
	// LastCheckinDisplay is the human-readable last check-in instant, or
	// "never" when the user has no check-in on record.
	LastCheckinDisplay string
	Reason             string
}

type Notifier interface {
	Send(ctx context.Context, contact models.EmergencyContact, payload Payload) error
}
