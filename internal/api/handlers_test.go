package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/stillhere/internal/config"
	"github.com/terraincognita07/stillhere/internal/db"
	"github.com/terraincognita07/stillhere/internal/models"
	"github.com/terraincognita07/stillhere/internal/notify"
)

const testAdminToken = "test-admin-token"

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.EmergencyContact
}

func (notifier *recordingNotifier) Send(_ context.Context, contact models.EmergencyContact, _ notify.Payload) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.sent = append(notifier.sent, contact)
	return nil
}

func (notifier *recordingNotifier) sentCount() int {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return len(notifier.sent)
}

func newTestApp(t *testing.T) (*fiber.App, *db.Repositories, *recordingNotifier) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "stillhere-api-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	cfg := config.Config{
		InactivityThreshold:  48 * time.Hour,
		NotificationCooldown: 24 * time.Hour,
		UrgencyWindow:        12 * time.Hour,
		SweepInterval:        time.Hour,
		SweepConcurrency:     2,
		AdminToken:           testAdminToken,
	}

	notifier := &recordingNotifier{}
	handler := NewHandler(database, cfg, time.UTC, notifier)

	app := fiber.New()
	RegisterRoutes(app, handler)

	return app, db.NewRepositories(database), notifier
}

func performRequest(t *testing.T, app *fiber.App, method string, target string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, target, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return response
}

func decodeJSONBody(t *testing.T, response *http.Response) map[string]any {
	t.Helper()

	defer response.Body.Close()
	payload := make(map[string]any)
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload
}

func deviceHeaders(deviceID string) map[string]string {
	return map[string]string{"X-Device-ID": deviceID}
}

func TestHealthEndpoint(t *testing.T) {
	app, _, _ := newTestApp(t)

	response := performRequest(t, app, http.MethodGet, "/healthz", nil, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}

	body := decodeJSONBody(t, response)
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
}

func TestIssueDeviceReturnsFreshID(t *testing.T) {
	app, _, _ := newTestApp(t)

	first := performRequest(t, app, http.MethodPost, "/api/device", nil, nil)
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.StatusCode)
	}
	firstBody := decodeJSONBody(t, first)
	firstID, _ := firstBody["device_id"].(string)
	if firstID == "" {
		t.Fatal("expected a non-empty device id")
	}

	second := performRequest(t, app, http.MethodPost, "/api/device", nil, nil)
	secondBody := decodeJSONBody(t, second)
	if secondBody["device_id"] == firstID {
		t.Fatal("expected each issued device id to be unique")
	}
}

func TestCheckinRequiresDeviceID(t *testing.T) {
	app, _, _ := newTestApp(t)

	response := performRequest(t, app, http.MethodPost, "/api/checkin", nil, nil)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without a device id, got %d", response.StatusCode)
	}
}

func TestCheckinFlow(t *testing.T) {
	app, _, _ := newTestApp(t)
	headers := deviceHeaders("device-checkin-flow")

	// Fresh device: no check-in yet.
	status := performRequest(t, app, http.MethodGet, "/api/checkin/status", nil, headers)
	if status.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 status, got %d", status.StatusCode)
	}
	statusBody := decodeJSONBody(t, status)
	if statusBody["has_checked_in_today"] != false {
		t.Fatal("expected a fresh device to not have checked in")
	}
	if statusBody["last_checkin"] != nil {
		t.Fatalf("expected null last_checkin, got %v", statusBody["last_checkin"])
	}
	if statusBody["countdown"] != nil {
		t.Fatalf("expected null countdown before the first check-in, got %v", statusBody["countdown"])
	}

	// Check in.
	checkin := performRequest(t, app, http.MethodPost, "/api/checkin", nil, headers)
	if checkin.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for check-in, got %d", checkin.StatusCode)
	}
	checkinBody := decodeJSONBody(t, checkin)
	if checkinBody["checked_in_today"] != true {
		t.Fatal("expected checked_in_today true after checking in")
	}
	countdown, ok := checkinBody["countdown"].(map[string]any)
	if !ok {
		t.Fatalf("expected a countdown object, got %v", checkinBody["countdown"])
	}
	if urgent, _ := countdown["urgent"].(bool); urgent {
		t.Fatal("expected a fresh check-in to not be urgent")
	}

	// Status reflects it.
	status = performRequest(t, app, http.MethodGet, "/api/checkin/status", nil, headers)
	statusBody = decodeJSONBody(t, status)
	if statusBody["has_checked_in_today"] != true {
		t.Fatal("expected has_checked_in_today true after checking in")
	}
	if statusBody["last_checkin"] == nil {
		t.Fatal("expected last_checkin to be set after checking in")
	}

	// Repeat check-in on the same day stays a single history entry.
	performRequest(t, app, http.MethodPost, "/api/checkin", nil, headers)
	history := performRequest(t, app, http.MethodGet, "/api/checkin/history", nil, headers)
	historyBody := decodeJSONBody(t, history)
	entries, ok := historyBody["checkins"].([]any)
	if !ok {
		t.Fatalf("expected a checkins array, got %v", historyBody["checkins"])
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry after repeated same-day check-ins, got %d", len(entries))
	}
}

func TestCheckinHistoryRejectsInvalidDays(t *testing.T) {
	app, _, _ := newTestApp(t)
	headers := deviceHeaders("device-history-days")

	for _, raw := range []string{"0", "-3", "abc"} {
		response := performRequest(t, app, http.MethodGet, "/api/checkin/history?days="+raw, nil, headers)
		if response.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for days=%s, got %d", raw, response.StatusCode)
		}
	}
}

func TestContactsCRUD(t *testing.T) {
	app, _, _ := newTestApp(t)
	headers := deviceHeaders("device-contacts")

	// Empty list for a fresh device.
	list := performRequest(t, app, http.MethodGet, "/api/contacts", nil, headers)
	listBody := decodeJSONBody(t, list)
	if contacts, _ := listBody["contacts"].([]any); len(contacts) != 0 {
		t.Fatalf("expected no contacts initially, got %v", listBody["contacts"])
	}

	// Add one.
	created := performRequest(t, app, http.MethodPost, "/api/contacts", map[string]string{
		"name":  "Ada",
		"email": "ada@example.com",
	}, headers)
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.StatusCode)
	}
	createdBody := decodeJSONBody(t, created)
	if createdBody["email"] != "ada@example.com" {
		t.Fatalf("unexpected created contact %v", createdBody)
	}

	// Listed now.
	list = performRequest(t, app, http.MethodGet, "/api/contacts", nil, headers)
	listBody = decodeJSONBody(t, list)
	contacts, _ := listBody["contacts"].([]any)
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}

	// Delete it.
	contactID := int(createdBody["id"].(float64))
	deleted := performRequest(t, app, http.MethodDelete, "/api/contacts/"+strconv.Itoa(contactID), nil, headers)
	if deleted.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", deleted.StatusCode)
	}

	// Deleting again is a 404.
	deleted = performRequest(t, app, http.MethodDelete, "/api/contacts/"+strconv.Itoa(contactID), nil, headers)
	if deleted.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", deleted.StatusCode)
	}
}

func TestAddContactValidation(t *testing.T) {
	app, _, _ := newTestApp(t)
	headers := deviceHeaders("device-contact-validation")

	tests := []struct {
		name  string
		input map[string]string
	}{
		{name: "missing name", input: map[string]string{"email": "ada@example.com"}},
		{name: "missing email", input: map[string]string{"name": "Ada"}},
		{name: "malformed email", input: map[string]string{"name": "Ada", "email": "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := performRequest(t, app, http.MethodPost, "/api/contacts", tt.input, headers)
			if response.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", response.StatusCode)
			}
		})
	}
}

func TestContactsAreScopedToDevice(t *testing.T) {
	app, _, _ := newTestApp(t)

	created := performRequest(t, app, http.MethodPost, "/api/contacts", map[string]string{
		"name":  "Ada",
		"email": "ada@example.com",
	}, deviceHeaders("device-owner"))
	createdBody := decodeJSONBody(t, created)
	contactID := int(createdBody["id"].(float64))

	// Another device cannot see or delete it.
	list := performRequest(t, app, http.MethodGet, "/api/contacts", nil, deviceHeaders("device-other"))
	listBody := decodeJSONBody(t, list)
	if contacts, _ := listBody["contacts"].([]any); len(contacts) != 0 {
		t.Fatal("expected another device to see no contacts")
	}

	deleted := performRequest(t, app, http.MethodDelete, "/api/contacts/"+strconv.Itoa(contactID), nil, deviceHeaders("device-other"))
	if deleted.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-device delete, got %d", deleted.StatusCode)
	}
}

func TestTestAlertWithoutContacts(t *testing.T) {
	app, _, notifier := newTestApp(t)

	response := performRequest(t, app, http.MethodPost, "/api/alerts/test", nil, deviceHeaders("device-no-contacts"))
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without contacts, got %d", response.StatusCode)
	}
	if notifier.sentCount() != 0 {
		t.Fatal("expected no deliveries without contacts")
	}
}

func TestTestAlertDeliversAndDedups(t *testing.T) {
	app, _, notifier := newTestApp(t)
	headers := deviceHeaders("device-test-alert")

	performRequest(t, app, http.MethodPost, "/api/contacts", map[string]string{
		"name":  "Ada",
		"email": "ada@example.com",
	}, headers)

	first := performRequest(t, app, http.MethodPost, "/api/alerts/test", nil, headers)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.StatusCode)
	}
	firstBody := decodeJSONBody(t, first)
	if firstBody["alerts_sent"] != float64(1) {
		t.Fatalf("expected 1 alert sent, got %v", firstBody["alerts_sent"])
	}

	// Second trigger inside the cooldown is suppressed.
	second := performRequest(t, app, http.MethodPost, "/api/alerts/test", nil, headers)
	secondBody := decodeJSONBody(t, second)
	if secondBody["alerts_sent"] != float64(0) {
		t.Fatalf("expected 0 alerts on repeat, got %v", secondBody["alerts_sent"])
	}
	if secondBody["deduped"] != float64(1) {
		t.Fatalf("expected 1 deduped contact, got %v", secondBody["deduped"])
	}
	if notifier.sentCount() != 1 {
		t.Fatalf("expected 1 delivery total, got %d", notifier.sentCount())
	}
}

func TestRunSweepRequiresAdminToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	unauthorized := performRequest(t, app, http.MethodPost, "/api/sweep", nil, nil)
	if unauthorized.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin token, got %d", unauthorized.StatusCode)
	}

	wrongToken := performRequest(t, app, http.MethodPost, "/api/sweep", nil, map[string]string{
		"X-Admin-Token": "wrong",
	})
	if wrongToken.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a wrong token, got %d", wrongToken.StatusCode)
	}

	authorized := performRequest(t, app, http.MethodPost, "/api/sweep", nil, map[string]string{
		"X-Admin-Token": testAdminToken,
	})
	if authorized.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with the admin token, got %d", authorized.StatusCode)
	}
}

func TestRunSweepAlertsOverdueUser(t *testing.T) {
	app, repositories, notifier := newTestApp(t)
	headers := deviceHeaders("device-overdue")

	performRequest(t, app, http.MethodPost, "/api/contacts", map[string]string{
		"name":  "Ada",
		"email": "ada@example.com",
	}, headers)

	// Backdate the user's only check-in past the threshold.
	user, found, err := repositories.Users.FindByDeviceID("device-overdue")
	if err != nil || !found {
		t.Fatalf("load user: found=%v err=%v", found, err)
	}
	stale := time.Now().Add(-72 * time.Hour)
	day := time.Date(stale.Year(), stale.Month(), stale.Day(), 0, 0, 0, 0, time.UTC)
	if _, err := repositories.Checkins.Upsert(user.ID, day, stale); err != nil {
		t.Fatalf("seed stale check-in: %v", err)
	}

	response := performRequest(t, app, http.MethodPost, "/api/sweep", nil, map[string]string{
		"X-Admin-Token": testAdminToken,
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}

	body := decodeJSONBody(t, response)
	if body["alerts_sent"] != float64(1) {
		t.Fatalf("expected 1 alert from the sweep, got %v", body["alerts_sent"])
	}
	if notifier.sentCount() != 1 {
		t.Fatalf("expected 1 delivery, got %d", notifier.sentCount())
	}
}
