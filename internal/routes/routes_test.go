package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/metrics"
	"healthcare-booking-server/internal/realtime"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store/gormstore"
	"healthcare-booking-server/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, enforceOwnership bool) *httptest.Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := gormstore.New(db)
	require.NoError(t, s.Migrate(context.Background()))

	cfg := &config.Config{
		Origin:                    "http://localhost:5173",
		Environment:               "development",
		JWTSecret:                 "access",
		JWTRefreshSecret:          "refresh",
		JWTExpirationMinutes:      5,
		JWTRefreshExpirationHours: 1,
		EnforceStatusOwner:        enforceOwnership,
		MaxUploadBytes:            1 << 20,
	}
	m := metrics.New()
	hub := realtime.NewHub(zerolog.Nop())
	tokens := utils.NewTokenManager(cfg)
	svc := services.New(s, services.Options{
		Tokens:           tokens,
		Publisher:        hub,
		Recorder:         m,
		EnforceOwnership: cfg.EnforceStatusOwner,
		MaxUploadBytes:   cfg.MaxUploadBytes,
	})

	router := NewRouter(Dependencies{
		Config:   cfg,
		Store:    s,
		Services: svc,
		Tokens:   tokens,
		Hub:      hub,
		Metrics:  m,
		Logger:   zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		_ = s.Close(context.Background())
	})
	return srv
}

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func (c client) call(method, path string, body interface{}, token string) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func (c client) json(method, path string, body interface{}, token string, wantStatus int) map[string]interface{} {
	c.t.Helper()
	status, data := c.call(method, path, body, token)
	require.Equal(c.t, wantStatus, status, string(data))
	var out map[string]interface{}
	if len(data) > 0 {
		require.NoError(c.t, json.Unmarshal(data, &out), string(data))
	}
	return out
}

type account struct {
	id, token string
}

func (c client) register(name, email, role string) account {
	c.t.Helper()
	body := c.json(http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": "secret123", "role": role,
	}, "", http.StatusCreated)
	user := body["user"].(map[string]interface{})
	return account{id: user["id"].(string), token: body["accessToken"].(string)}
}

func (c client) unread(userID string) int {
	c.t.Helper()
	body := c.json(http.MethodGet, "/api/notifications/unread-count?userId="+userID, nil, "", http.StatusOK)
	return int(body["count"].(float64))
}

func TestBookingLifecycle(t *testing.T) {
	c := client{t: t, srv: newServer(t, false)}

	p := c.register("Pat", "pat@example.com", "patient")
	d := c.register("Who", "who@example.com", "doctor")

	created := c.json(http.MethodPost, "/api/appointments", map[string]string{
		"patientId": p.id, "doctorId": d.id, "date": "2024-01-01", "time": "10:00", "type": "offline",
	}, "", http.StatusCreated)
	appointment := created["appointment"].(map[string]interface{})
	assert.Equal(t, "pending", appointment["status"])
	id := appointment["id"].(string)
	assert.Equal(t, 1, c.unread(p.id))
	assert.Equal(t, 1, c.unread(d.id))

	c.json(http.MethodPatch, "/api/appointments/"+id+"/status", map[string]string{"status": "confirmed"}, "", http.StatusOK)
	assert.Equal(t, 2, c.unread(p.id))
	assert.Equal(t, 1, c.unread(d.id))

	// same status again notifies nobody
	c.json(http.MethodPost, "/api/appointments/status", map[string]string{"appointmentId": id, "status": "confirmed"}, "", http.StatusOK)
	assert.Equal(t, 2, c.unread(p.id))

	c.json(http.MethodPatch, "/api/appointments/"+id+"/status", map[string]string{"status": "cancelled"}, "", http.StatusOK)
	assert.Equal(t, 3, c.unread(p.id))
	assert.Equal(t, 2, c.unread(d.id))

	page := c.json(http.MethodGet, "/api/notifications?userId="+d.id, nil, "", http.StatusOK)
	data := page["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "appointment_cancelled", data[0].(map[string]interface{})["type"])

	status, body := c.call(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `http_requests_total{endpoint="/api/appointments/:id/status",method="PATCH",status_code="200"} 2`)
}

func TestUnavailableDoctorCannotBeBooked(t *testing.T) {
	c := client{t: t, srv: newServer(t, false)}
	p := c.register("Pat", "pat@example.com", "patient")
	d := c.register("Who", "who@example.com", "doctor")

	c.json(http.MethodPatch, "/api/users/"+d.id+"/availability", map[string]bool{"isAvailable": false}, "", http.StatusOK)

	body := c.json(http.MethodPost, "/api/appointments", map[string]string{
		"patientId": p.id, "doctorId": d.id, "date": "2024-01-01", "time": "10:00", "type": "online",
	}, "", http.StatusBadRequest)
	assert.Equal(t, "Doctor is not available.", body["error"])
	assert.Equal(t, 0, c.unread(p.id))
}

func TestStatusOwnershipEnforced(t *testing.T) {
	c := client{t: t, srv: newServer(t, true)}
	p := c.register("Pat", "pat@example.com", "patient")
	d := c.register("Who", "who@example.com", "doctor")
	other := c.register("Other", "other@example.com", "doctor")

	created := c.json(http.MethodPost, "/api/appointments", map[string]string{
		"patientId": p.id, "doctorId": d.id, "date": "2024-01-01", "time": "10:00", "type": "offline",
	}, "", http.StatusCreated)
	path := "/api/appointments/" + created["appointment"].(map[string]interface{})["id"].(string) + "/status"
	confirm := map[string]string{"status": "confirmed"}

	c.json(http.MethodPatch, path, confirm, "", http.StatusUnauthorized)
	c.json(http.MethodPatch, path, confirm, "not-a-token", http.StatusUnauthorized)
	c.json(http.MethodPatch, path, confirm, other.token, http.StatusForbidden)
	c.json(http.MethodPatch, path, confirm, d.token, http.StatusOK)
	assert.Equal(t, 2, c.unread(p.id))
}

func TestDeleteAccountCascade(t *testing.T) {
	c := client{t: t, srv: newServer(t, false)}
	p := c.register("Pat", "pat@example.com", "patient")
	d := c.register("Who", "who@example.com", "doctor")

	c.json(http.MethodPost, "/api/appointments", map[string]string{
		"patientId": p.id, "doctorId": d.id, "date": "2024-01-01", "time": "10:00", "type": "offline",
	}, "", http.StatusCreated)

	body := c.json(http.MethodDelete, "/api/users/"+p.id, nil, "", http.StatusOK)
	assert.Equal(t, map[string]interface{}{"success": true}, body)

	c.json(http.MethodGet, "/api/users/"+p.id, nil, "", http.StatusNotFound)
	c.json(http.MethodDelete, "/api/users/"+p.id, nil, "", http.StatusNotFound)

	status, data := c.call(http.MethodGet, "/api/appointments?userId="+d.id+"&role=doctor", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(data))
	assert.Equal(t, 1, c.unread(d.id))
}

func TestContentWritesRequireDoctor(t *testing.T) {
	c := client{t: t, srv: newServer(t, false)}
	p := c.register("Pat", "pat@example.com", "patient")
	d := c.register("Who", "who@example.com", "doctor")

	faq := map[string]interface{}{"question": "Open on Sundays?", "answer": "No.", "order": 1}
	c.json(http.MethodPost, "/api/faqs", faq, "", http.StatusUnauthorized)
	c.json(http.MethodPost, "/api/faqs", faq, p.token, http.StatusForbidden)
	created := c.json(http.MethodPost, "/api/faqs", faq, d.token, http.StatusCreated)

	updated := c.json(http.MethodPatch, "/api/faqs/"+created["id"].(string), map[string]string{"answer": "Yes."}, d.token, http.StatusOK)
	assert.Equal(t, "Yes.", updated["answer"])
	c.json(http.MethodPatch, "/api/faqs/missing", map[string]string{"answer": "x"}, d.token, http.StatusNotFound)

	department := c.json(http.MethodPost, "/api/departments", map[string]string{"name": "Cardiology"}, d.token, http.StatusCreated)
	got := c.json(http.MethodGet, "/api/departments/"+department["id"].(string), nil, "", http.StatusOK)
	assert.Equal(t, "Cardiology", got["name"])
	assert.Equal(t, []interface{}{}, got["doctorIds"])
}

func TestAuthSessionRoutes(t *testing.T) {
	c := client{t: t, srv: newServer(t, false)}
	p := c.register("Pat", "pat@example.com", "patient")

	me := c.json(http.MethodGet, "/api/auth/me", nil, p.token, http.StatusOK)
	assert.Equal(t, p.id, me["id"])
	c.json(http.MethodGet, "/api/auth/me", nil, "", http.StatusUnauthorized)

	login := c.json(http.MethodPost, "/api/auth/login", map[string]string{"email": "PAT@example.com", "password": "secret123"}, "", http.StatusOK)
	refresh := login["refreshToken"].(string)

	c.json(http.MethodPost, "/api/auth/logout", map[string]string{"refreshToken": refresh}, "", http.StatusUnauthorized)
	c.json(http.MethodPost, "/api/auth/logout", map[string]string{"refreshToken": refresh}, p.token, http.StatusOK)
	c.json(http.MethodPost, "/api/auth/refresh-token", map[string]string{"refreshToken": refresh}, "", http.StatusUnauthorized)

	social := c.json(http.MethodPost, "/api/auth/social-login", map[string]string{
		"provider": "google", "providerId": "g-1", "email": "new@example.com", "name": "Newbie", "role": "patient",
	}, "", http.StatusOK)
	assert.Equal(t, "new@example.com", social["email"])
	assert.Equal(t, "patient", social["role"])
}

func TestNotificationStreamIdentity(t *testing.T) {
	c := client{t: t, srv: newServer(t, false)}
	patient := c.register("Pia", "pia@example.com", "patient")
	doctor := c.register("Dr. Doe", "doe@example.com", "doctor")

	body := c.json(http.MethodGet, "/api/notifications/stream?userId="+doctor.id+"&access_token="+patient.token, nil, "", http.StatusForbidden)
	assert.Equal(t, "You can only subscribe to your own notifications.", body["error"])

	body = c.json(http.MethodGet, "/api/notifications/stream?access_token=forged", nil, "", http.StatusUnauthorized)
	assert.NotEmpty(t, body["error"])

	wsURL := "ws" + strings.TrimPrefix(c.srv.URL, "http") + "/api/notifications/stream?access_token=" + patient.token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestRouterEdges(t *testing.T) {
	c := client{t: t, srv: newServer(t, false)}

	body := c.json(http.MethodGet, "/api/nowhere", nil, "", http.StatusNotFound)
	assert.Equal(t, "Route not found.", body["error"])

	health := c.json(http.MethodGet, "/api/health", nil, "", http.StatusOK)
	assert.Equal(t, "ok", health["status"])

	req, err := http.NewRequest(http.MethodGet, c.srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "trace-1")
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := c.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "trace-1", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
