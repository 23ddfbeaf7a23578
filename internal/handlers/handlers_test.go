package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/realtime"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store/gormstore"
	"healthcare-booking-server/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	svc    *services.Services
	tokens *utils.TokenManager
}

func newTestServer(t *testing.T) *testServer {
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
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	cfg := &config.Config{
		Environment:               "development",
		JWTSecret:                 "access",
		JWTRefreshSecret:          "refresh",
		JWTExpirationMinutes:      5,
		JWTRefreshExpirationHours: 1,
		MaxUploadBytes:            1024,
	}
	tokens := utils.NewTokenManager(cfg)
	svc := services.New(s, services.Options{Tokens: tokens, MaxUploadBytes: cfg.MaxUploadBytes})

	auth := NewAuthHandler(svc.Auth, cfg)
	users := NewUserHandler(svc.Users, cfg.MaxUploadBytes)
	appointments := NewAppointmentHandler(svc.Appointments)
	records := NewMedicalRecordHandler(svc.Records)
	notifications := NewNotificationHandler(svc.Notifications, realtime.NewHub(zerolog.Nop()))
	content := NewContentHandler(svc.Content)

	r := gin.New()
	r.GET("/api/health", NewHealthHandler(s).Health)
	r.POST("/api/auth/register", auth.Register)
	r.POST("/api/auth/login", auth.Login)
	r.POST("/api/auth/refresh-token", auth.RefreshToken)
	r.GET("/api/auth/me", middleware.AuthMiddleware(tokens), auth.Me)
	r.GET("/api/users/doctors", users.GetDoctors)
	r.GET("/api/users/:id", users.GetUserByID)
	r.PATCH("/api/users/:id", users.UpdateProfile)
	r.POST("/api/users/availability", users.UpdateAvailability)
	r.POST("/api/users/:id/profile-picture", users.UploadProfilePicture)
	r.GET("/api/files/:id", users.GetFile)
	r.POST("/api/appointments", appointments.CreateAppointment)
	r.GET("/api/appointments", appointments.GetAppointments)
	r.POST("/api/appointments/status", appointments.UpdateAppointmentStatus)
	r.PATCH("/api/appointments/:id/details", appointments.UpdateAppointmentDetails)
	r.POST("/api/medical-records", middleware.AuthMiddleware(tokens), records.CreateMedicalRecord)
	r.GET("/api/medical-records", records.GetMedicalRecords)
	r.GET("/api/notifications", notifications.GetNotifications)
	r.GET("/api/notifications/unread-count", notifications.GetUnreadCount)
	r.GET("/api/notifications/stream", notifications.Stream)
	r.POST("/api/notifications/mark-all-read", notifications.MarkAllRead)
	r.POST("/api/notifications/read", notifications.MarkAsRead)
	r.DELETE("/api/notifications/:id", notifications.DeleteNotification)
	r.POST("/api/news", content.CreateNews)
	r.GET("/api/news", content.GetNews)
	r.GET("/api/news/category/:category", content.GetNews)
	r.POST("/api/faqs", content.CreateFAQ)
	r.GET("/api/faqs", content.GetFAQs)

	return &testServer{router: r, svc: svc, tokens: tokens}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (ts *testServer) register(t *testing.T, name, email, role string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]interface{})
	return user["id"].(string)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthHandlers(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Pat", "email": "  Pat@Example.COM ", "password": "secret123", "role": "patient",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["accessToken"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "pat@example.com", user["email"])
	assert.Equal(t, "patient", user["role"])
	assert.Equal(t, user["id"], user["_id"])
	assert.NotContains(t, user, "password")

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/api/auth", cookie.Path)

	rec = ts.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Pat", "email": "pat@example.com", "password": "x", "role": "patient",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"User with this email already exists."}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/auth/register", `{"name":"A","email":"a@b.c","password":"p","role":"patient","isAdmin":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "PAT@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode(t, rec)
	assert.Equal(t, "pat@example.com", login["email"])
	access := login["accessToken"].(string)
	refresh := login["refreshToken"].(string)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "pat@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pat", decode(t, rec)["name"])

	rec = ts.do(t, http.MethodPost, "/api/auth/refresh-token", gin.H{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEqual(t, refresh, decode(t, rec)["refreshToken"])

	// the rotated token is spent
	rec = ts.do(t, http.MethodPost, "/api/auth/refresh-token", gin.H{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetDoctors_Pagination(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 13; i++ {
		ts.register(t, fmt.Sprintf("Doctor %02d", i), fmt.Sprintf("doc%d@example.com", i), "doctor")
	}
	ts.register(t, "Pat", "pat@example.com", "patient")

	rec := ts.do(t, http.MethodGet, "/api/users/doctors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["data"], 12)
	assert.Equal(t, map[string]interface{}{"page": 1.0, "limit": 12.0, "total": 13.0, "hasMore": true}, body["pagination"])

	rec = ts.do(t, http.MethodGet, "/api/users/doctors?page=2&limit=12", nil)
	body = decode(t, rec)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, false, body["pagination"].(map[string]interface{})["hasMore"])

	rec = ts.do(t, http.MethodGet, "/api/users/doctors?limit=500&page=-3", nil)
	pagination := decode(t, rec)["pagination"].(map[string]interface{})
	assert.EqualValues(t, 100, pagination["limit"])
	assert.EqualValues(t, 1, pagination["page"])

	rec = ts.do(t, http.MethodGet, "/api/users/doctors?limit=0", nil)
	assert.EqualValues(t, 1, decode(t, rec)["pagination"].(map[string]interface{})["limit"])
}

func TestUserProfileHandlers(t *testing.T) {
	ts := newTestServer(t)
	doctorID := ts.register(t, "Who", "who@example.com", "doctor")

	rec := ts.do(t, http.MethodGet, "/api/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found."}`, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, "/api/users/"+doctorID, gin.H{"clinic": "North", "consultationFee": "45.5"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "North", user["clinic"])
	assert.Equal(t, 45.5, user["consultationFee"])

	rec = ts.do(t, http.MethodPatch, "/api/users/"+doctorID, `{"consultationFee":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode(t, rec)["user"].(map[string]interface{})["consultationFee"])

	rec = ts.do(t, http.MethodPost, "/api/users/availability", gin.H{"doctorId": doctorID, "isAvailable": false, "availableSlots": []string{"09:00"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user = decode(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, false, user["isAvailable"])
	assert.Equal(t, []interface{}{"09:00"}, user["availableSlots"])
}

func TestUpdateProfile_DataURLImage(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "Pat", "pat@example.com", "patient")

	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x89}, 1000))
	require.Greater(t, len(image), 1024)

	rec := ts.do(t, http.MethodPatch, "/api/users/"+id, gin.H{"profileImage": image})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, image, decode(t, rec)["user"].(map[string]interface{})["profileImage"])

	rec = ts.do(t, http.MethodGet, "/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, image, decode(t, rec)["profileImage"])

	tooLarge := "data:image/png;base64," + base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x89}, 2000))
	rec = ts.do(t, http.MethodPatch, "/api/users/"+id, gin.H{"profileImage": tooLarge})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"profileImage exceeds the 1496 byte limit."}`, rec.Body.String())
}

func multipartUpload(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadProfilePicture(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "Pat", "pat@example.com", "patient")

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	body, contentType := multipartUpload(t, "file", "me.png", png)
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+id+"/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	url := decode(t, rec)["url"].(string)
	require.Contains(t, url, services.FilesPathPrefix)

	rec = ts.do(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())

	body, contentType = multipartUpload(t, "file", "notes.txt", []byte("plain text, not an image"))
	req = httptest.NewRequest(http.MethodPost, "/api/users/"+id+"/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType = multipartUpload(t, "file", "big.png", append(png, bytes.Repeat([]byte{1}, 2048)...))
	req = httptest.NewRequest(http.MethodPost, "/api/users/"+id+"/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "1024 byte limit")

	rec = ts.do(t, http.MethodPost, "/api/users/"+id+"/profile-picture", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppointmentHandlers(t *testing.T) {
	ts := newTestServer(t)
	patientID := ts.register(t, "Pat", "pat@example.com", "patient")
	doctorID := ts.register(t, "Who", "who@example.com", "doctor")

	rec := ts.do(t, http.MethodPost, "/api/appointments", gin.H{"patientId": patientID, "doctorId": doctorID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"patientId, doctorId, date, time, and type are required."}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/appointments", gin.H{
		"patientId": doctorID, "doctorId": doctorID, "date": "2024-01-01", "time": "10:00", "type": "offline",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/appointments", gin.H{
		"patientId": patientID, "doctorId": doctorID, "date": "2024-01-01", "time": "10:00", "type": "offline",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	appointment := body["appointment"].(map[string]interface{})
	assert.Equal(t, "pending", appointment["status"])
	assert.Equal(t, "offline", appointment["type"])
	assert.Equal(t, "2024-01-01T00:00:00.000Z", appointment["date"])
	appointmentID := appointment["id"].(string)

	rec = ts.do(t, http.MethodPost, "/api/appointments/status", gin.H{"appointmentId": appointmentID, "status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "confirmed", decode(t, rec)["appointment"].(map[string]interface{})["status"])

	rec = ts.do(t, http.MethodPost, "/api/appointments/status", gin.H{"appointmentId": appointmentID, "status": "CONFIRMED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/appointments/status", gin.H{"appointmentId": "missing", "status": "cancelled"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/api/appointments/"+appointmentID+"/details", gin.H{"prescription": "Rest"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Rest", decode(t, rec)["appointment"].(map[string]interface{})["prescription"])

	rec = ts.do(t, http.MethodGet, "/api/appointments?userId="+patientID+"&role=patient", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, appointmentID, list[0]["id"])

	// booking (1) + confirmed (1) + prescription (1)
	rec = ts.do(t, http.MethodGet, "/api/notifications/unread-count?userId="+patientID, nil)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
	rec = ts.do(t, http.MethodGet, "/api/notifications/unread-count?userId="+doctorID, nil)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}

func TestNotificationHandlers(t *testing.T) {
	ts := newTestServer(t)
	patientID := ts.register(t, "Pat", "pat@example.com", "patient")
	doctorID := ts.register(t, "Who", "who@example.com", "doctor")

	for _, date := range []string{"2024-01-01", "2024-01-02"} {
		rec := ts.do(t, http.MethodPost, "/api/appointments", gin.H{
			"patientId": patientID, "doctorId": doctorID, "date": date, "time": "10:00", "type": "online",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/notifications", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/notifications?userId="+patientID+"&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, map[string]interface{}{"page": 1.0, "limit": 1.0, "total": 2.0, "hasMore": true}, body["pagination"])
	first := data[0].(map[string]interface{})
	assert.Equal(t, "appointment_created", first["type"])
	assert.Nil(t, first["readAt"])

	rec = ts.do(t, http.MethodPost, "/api/notifications/read", gin.H{"notificationId": first["id"]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	read := decode(t, rec)["notification"].(map[string]interface{})
	assert.Equal(t, true, read["read"])
	assert.NotNil(t, read["readAt"])

	rec = ts.do(t, http.MethodPost, "/api/notifications/mark-all-read", gin.H{"userId": patientID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"count":1}`, rec.Body.String())

	rec = ts.do(t, http.MethodDelete, "/api/notifications/"+first["id"].(string), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/notifications/"+first["id"].(string), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/notifications/stream?userId="+patientID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/notifications/stream", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMedicalRecord_DefaultsDoctorToCaller(t *testing.T) {
	ts := newTestServer(t)
	patientID := ts.register(t, "Pat", "pat@example.com", "patient")
	doctorID := ts.register(t, "Who", "who@example.com", "doctor")

	doctor := &models.User{Role: models.RoleDoctor}
	doctor.ID = doctorID
	access, _, err := ts.tokens.GenerateTokens(doctor)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/medical-records", gin.H{
		"patientId": patientID, "diagnosis": "Flu", "date": "2024-02-01",
	}, "Authorization", "Bearer "+access)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode(t, rec)["record"].(map[string]interface{})
	assert.Equal(t, doctorID, record["doctorId"])
	assert.Equal(t, "Who", record["doctor"].(map[string]interface{})["name"])
	assert.Equal(t, []interface{}{}, record["reports"])

	rec = ts.do(t, http.MethodGet, "/api/medical-records?patientId="+patientID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = ts.do(t, http.MethodGet, "/api/medical-records", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentHandlers(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/news", gin.H{"title": "Checkups", "category": "Wellness", "content": "Go yearly.", "author": "Dr. Chen"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotNil(t, decode(t, rec)["publishedAt"])

	rec = ts.do(t, http.MethodPost, "/api/news", gin.H{"title": "Draft", "category": "Wellness", "content": "x", "author": "y", "published": false})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/news", gin.H{"title": "Missing author", "category": "Wellness", "content": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/news/category/Wellness", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var news []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &news))
	require.Len(t, news, 1)
	assert.Equal(t, "Checkups", news[0]["title"])

	rec = ts.do(t, http.MethodGet, "/api/news?category=Medical", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, order := range []int{2, 1} {
		rec = ts.do(t, http.MethodPost, "/api/faqs", gin.H{"question": fmt.Sprintf("Q%d", order), "answer": "A", "order": order})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec = ts.do(t, http.MethodGet, "/api/faqs", nil)
	var faqs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &faqs))
	require.Len(t, faqs, 2)
	assert.Equal(t, "Q1", faqs[0]["question"])
}
