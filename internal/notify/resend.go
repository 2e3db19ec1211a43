package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/terraincognita07/stillhere/internal/models"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

// ResendNotifier sends alert emails through the Resend HTTP API. The
// client timeout bounds every send; a timeout counts as a failure and
// leaves the contact eligible for the next sweep.
type ResendNotifier struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

func NewResendNotifier(apiKey string, from string, timeout time.Duration) *ResendNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResendNotifier{
		apiKey:   apiKey,
		from:     from,
		endpoint: defaultResendEndpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether the notifier has credentials to deliver with.
func (notifier *ResendNotifier) Enabled() bool {
	return notifier.apiKey != ""
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (notifier *ResendNotifier) Send(ctx context.Context, contact models.EmergencyContact, payload Payload) error {
	if !notifier.Enabled() {
		return fmt.Errorf("resend api key is not configured")
	}

	subject, html := renderAlertEmail(payload)
	body, err := json.Marshal(resendEmailRequest{
		From:    notifier.from,
		To:      []string{contact.Email},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notifier.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+notifier.apiKey)

	resp, err := notifier.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend status %d: %s", resp.StatusCode, string(snippet))
	}

	return nil
}

func renderAlertEmail(payload Payload) (string, string) {
	if payload.Reason == ReasonManual {
		subject := "Test notification - Still Here"
		html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #f97316;">Test notification</h1>
  <p>Dear %s,</p>
  <p>This is a <strong>test email</strong> from the Still Here app.</p>
  <p>You are set as an emergency contact. If the user goes 48 hours without checking in, you will receive an alert like this one.</p>
  <div style="background: #f8f9fa; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <p style="margin: 0;"><strong>Last check-in:</strong> %s</p>
  </div>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Sent automatically by Still Here. Please do not reply.</p>
</div>`, payload.RecipientName, payload.LastCheckinDisplay)
		return subject, html
	}

	subject := "Urgent: someone you care about has not checked in"
	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #e74c3c; border-bottom: 2px solid #e74c3c; padding-bottom: 10px;">Urgent notice</h1>
  <p>Hello %s,</p>
  <p>You are listed as an emergency contact. The user has gone <strong>past their check-in deadline</strong> in the Still Here app.</p>
  <div style="background: #fef2f2; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <p style="margin: 0; color: #991b1b;"><strong>Last check-in:</strong> %s</p>
  </div>
  <p style="color: #e74c3c; font-weight: bold;">Please reach out and confirm they are safe.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Sent automatically by Still Here. Please do not reply.</p>
</div>`, payload.RecipientName, payload.LastCheckinDisplay)
	return subject, html
}
