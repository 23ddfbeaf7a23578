package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), store.ErrNotFound)
	assert.ErrorIs(t, translate(store.ErrNotFound), store.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), store.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestFoldPatternsQuoteInput(t *testing.T) {
	assert.Equal(t, bson.M{"$regex": `^Cardio\.logy$`, "$options": "i"}, equalFold("Cardio.logy"))
	assert.Equal(t, bson.M{"$regex": `a\+b`, "$options": "i"}, containsFold("a+b"))
}

func TestOrderOfTreatsMissingAsZero(t *testing.T) {
	two := 2
	assert.Equal(t, 0, orderOf(models.FAQ{}))
	assert.Equal(t, 2, orderOf(models.FAQ{Order: &two}))
}

// newTestStore connects to MONGO_TEST_URI (set by TestMain when Docker is available)
// and isolates each test in its own database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Connect(ctx, uri, "booking_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestUsersAndDoctors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	available := false
	doc := &models.User{Name: "Ana Smith", Email: "ana@example.com", Role: models.RoleDoctor, Specialization: "Cardiology", Location: "Tirana", IsAvailable: &available}
	require.NoError(t, s.Users().Create(ctx, doc))
	require.NoError(t, s.Users().Create(ctx, &models.User{Name: "Pat", Email: "pat@example.com", Role: models.RolePatient}))

	err := s.Users().Create(ctx, &models.User{Name: "Dup", Email: "ana@example.com", Role: models.RolePatient})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	found, err := s.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, found.ID)
	require.NotNil(t, found.IsAvailable)
	assert.False(t, *found.IsAvailable)

	doctors, total, err := s.Users().ListDoctors(ctx, store.DoctorFilter{Specialization: "cardiology", Location: "IRA", Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, doctors, 1)

	_, err = s.Users().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppointmentsPopulateParties(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	patient := &models.User{Name: "Pat", Email: "p@example.com", Role: models.RolePatient}
	doctor := &models.User{Name: "Doc", Email: "d@example.com", Role: models.RoleDoctor}
	require.NoError(t, s.Users().Create(ctx, patient))
	require.NoError(t, s.Users().Create(ctx, doctor))

	appt := &models.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, Date: time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC), Time: "10:00", Type: models.AppointmentOnline}
	require.NoError(t, s.Appointments().Create(ctx, appt))

	got, err := s.Appointments().UpdateStatus(ctx, appt.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	require.NotNil(t, got.Patient)
	assert.Equal(t, "Pat", got.Patient.Name)
	require.NotNil(t, got.Doctor)
	assert.Equal(t, "Doc", got.Doctor.Name)

	_, err = s.Appointments().UpdateStatus(ctx, "missing", models.StatusConfirmed)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNotificationLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Notifications()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{UserID: "u1", Type: models.NotificationSystem, Title: "t", Message: "m"}))
	}
	unread, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	page, total, err := repo.ListByUser(ctx, "u1", 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	read, err := repo.MarkRead(ctx, page[0].ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, read.Read)

	n, err := repo.MarkAllRead(ctx, "u1", time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.Delete(ctx, page[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, page[0].ID), store.ErrNotFound)
}

func TestListDoctorsPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Users().Create(ctx, &models.User{
			Name: fmt.Sprintf("Doctor %d", i), Email: fmt.Sprintf("doc%d@example.com", i), Role: models.RoleDoctor,
		}))
	}

	first, total, err := s.Users().ListDoctors(ctx, store.DoctorFilter{Offset: 0, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, first, 3)

	second, _, err := s.Users().ListDoctors(ctx, store.DoctorFilter{Offset: 3, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, second, 2)

	beyond, total, err := s.Users().ListDoctors(ctx, store.DoctorFilter{Offset: 1_000_000, Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Empty(t, beyond)
}

func countDocs(t *testing.T, s *Store, collection string, filter bson.M) int64 {
	t.Helper()
	n, err := s.c(collection).CountDocuments(context.Background(), filter)
	require.NoError(t, err)
	return n
}

func TestDeleteUserCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	patient := &models.User{Name: "Pat", Email: "p@example.com", Role: models.RolePatient}
	doctor := &models.User{Name: "Doc", Email: "d@example.com", Role: models.RoleDoctor}
	require.NoError(t, s.Users().Create(ctx, patient))
	require.NoError(t, s.Users().Create(ctx, doctor))

	appt := &models.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, Date: time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC), Time: "10:00", Type: models.AppointmentOnline}
	require.NoError(t, s.Appointments().Create(ctx, appt))
	require.NoError(t, s.MedicalRecords().Create(ctx, &models.MedicalRecord{PatientID: patient.ID, DoctorID: doctor.ID, Diagnosis: "flu", Date: appt.Date}))
	require.NoError(t, s.Notifications().Create(ctx, &models.Notification{UserID: patient.ID, Type: models.NotificationSystem, Title: "t", Message: "m"}))
	require.NoError(t, s.Notifications().Create(ctx, &models.Notification{UserID: doctor.ID, Type: models.NotificationSystem, Title: "t", Message: "m"}))
	require.NoError(t, s.Tokens().Create(ctx, &models.RefreshToken{UserID: patient.ID, Token: "refresh-1", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, s.DeleteUserCascade(ctx, patient.ID))

	_, err := s.Users().GetByID(ctx, patient.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, countDocs(t, s, colAppointments, bson.M{"patientId": patient.ID}))
	assert.Zero(t, countDocs(t, s, colMedicalRecords, bson.M{"patientId": patient.ID}))
	assert.Zero(t, countDocs(t, s, colNotifications, bson.M{"userId": patient.ID}))
	assert.Zero(t, countDocs(t, s, colRefreshTokens, bson.M{"userId": patient.ID}))

	_, err = s.Users().GetByID(ctx, doctor.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, countDocs(t, s, colNotifications, bson.M{"userId": doctor.ID}))

	assert.ErrorIs(t, s.DeleteUserCascade(ctx, patient.ID), store.ErrNotFound)
}
