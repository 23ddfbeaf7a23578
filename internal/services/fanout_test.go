package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcare-booking-server/internal/models"
)

func sampleAppointment() *models.Appointment {
	a := &models.Appointment{
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		Date:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Time:      "10:00",
		Patient:   &models.User{Name: "Jane Roe"},
		Doctor:    &models.User{Name: "Smith"},
	}
	a.ID = "appt-1"
	return a
}

func TestStatusChangeNotifications_ByDestination(t *testing.T) {
	a := sampleAppointment()

	tests := []struct {
		name       string
		from, to   models.AppointmentStatus
		recipients []string
		typ        models.NotificationType
		actionURL  string
	}{
		{"confirmed", models.StatusPending, models.StatusConfirmed, []string{"patient-1"}, models.NotificationAppointmentConfirmed, "/appointments"},
		{"cancelled", models.StatusPending, models.StatusCancelled, []string{"patient-1", "doctor-1"}, models.NotificationAppointmentCancelled, "/appointments"},
		{"completed", models.StatusConfirmed, models.StatusCompleted, []string{"patient-1"}, models.NotificationAppointmentCompleted, "/medical-records"},
		{"completed from cancelled", models.StatusCancelled, models.StatusCompleted, []string{"patient-1"}, models.NotificationAppointmentCompleted, "/medical-records"},
		{"back to pending", models.StatusCompleted, models.StatusPending, nil, "", ""},
		{"unchanged confirmed", models.StatusConfirmed, models.StatusConfirmed, nil, "", ""},
		{"unchanged cancelled", models.StatusCancelled, models.StatusCancelled, nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusChangeNotifications(a, tt.from, tt.to)
			require.Len(t, got, len(tt.recipients))

			var recipients []string
			for _, n := range got {
				recipients = append(recipients, n.UserID)
				assert.Equal(t, tt.typ, n.Type)
				assert.Equal(t, tt.actionURL, n.ActionURL)
				require.NotNil(t, n.AppointmentID)
				assert.Equal(t, "appt-1", *n.AppointmentID)
				assert.False(t, n.Read)
			}
			assert.ElementsMatch(t, tt.recipients, recipients)
		})
	}
}

func TestStatusChangeNotifications_Messages(t *testing.T) {
	a := sampleAppointment()

	confirmed := StatusChangeNotifications(a, models.StatusPending, models.StatusConfirmed)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "Appointment Confirmed", confirmed[0].Title)
	assert.Equal(t, "Your appointment with Dr. Smith on 1/5/2024 at 10:00 has been confirmed.", confirmed[0].Message)

	cancelled := StatusChangeNotifications(a, models.StatusConfirmed, models.StatusCancelled)
	messages := map[string]string{}
	for _, n := range cancelled {
		assert.Equal(t, "Appointment Cancelled", n.Title)
		messages[n.UserID] = n.Message
	}
	assert.Equal(t, "Your appointment with Dr. Smith on 1/5/2024 has been cancelled.", messages["patient-1"])
	assert.Equal(t, "Appointment with Jane Roe on 1/5/2024 has been cancelled.", messages["doctor-1"])

	completed := StatusChangeNotifications(a, models.StatusConfirmed, models.StatusCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "Appointment Completed", completed[0].Title)
	assert.Equal(t, "Your appointment with Dr. Smith on 1/5/2024 has been completed.", completed[0].Message)
}

func TestStatusChangeNotifications_FallbackNames(t *testing.T) {
	a := sampleAppointment()
	a.Patient, a.Doctor = nil, &models.User{}

	got := StatusChangeNotifications(a, models.StatusPending, models.StatusCancelled)
	messages := map[string]string{}
	for _, n := range got {
		messages[n.UserID] = n.Message
	}
	assert.Equal(t, "Your appointment with Dr. Doctor on 1/5/2024 has been cancelled.", messages["patient-1"])
	assert.Equal(t, "Appointment with Patient on 1/5/2024 has been cancelled.", messages["doctor-1"])
}

func TestBookingNotifications(t *testing.T) {
	got := BookingNotifications(sampleAppointment())
	require.Len(t, got, 2)

	byUser := map[string]models.Notification{}
	for _, n := range got {
		assert.Equal(t, models.NotificationAppointmentCreated, n.Type)
		assert.Equal(t, "/appointments", n.ActionURL)
		byUser[n.UserID] = n
	}
	assert.Equal(t, "Appointment Booked", byUser["patient-1"].Title)
	assert.Equal(t, "Your appointment with Dr. Smith on 1/5/2024 at 10:00 has been booked successfully.", byUser["patient-1"].Message)
	assert.Equal(t, "New Appointment Request", byUser["doctor-1"].Title)
	assert.Equal(t, "Jane Roe has requested an appointment on 1/5/2024 at 10:00.", byUser["doctor-1"].Message)
}

func TestReminderAndRecordNotifications(t *testing.T) {
	reminder := ReminderNotification(sampleAppointment())
	assert.Equal(t, "patient-1", reminder.UserID)
	assert.Equal(t, models.NotificationAppointmentReminder, reminder.Type)
	assert.Equal(t, "Reminder: your appointment with Dr. Smith is scheduled for 1/5/2024 at 10:00.", reminder.Message)

	record := &models.MedicalRecord{PatientID: "patient-1", Diagnosis: "Flu", Doctor: &models.User{Name: "Smith"}}
	record.ID = "rec-1"
	n := MedicalRecordNotification(record)
	assert.Equal(t, models.NotificationMedicalRecordAdded, n.Type)
	assert.Equal(t, "New Medical Record", n.Title)
	assert.Equal(t, "Dr. Smith added a new medical record to your history.", n.Message)
	assert.NotContains(t, n.Message, "Flu")
	assert.Equal(t, "/medical-records", n.ActionURL)
	require.NotNil(t, n.MedicalRecordID)
	assert.Equal(t, "rec-1", *n.MedicalRecordID)
}
