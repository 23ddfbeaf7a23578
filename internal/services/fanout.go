package services

import (
	"fmt"

	"healthcare-booking-server/internal/models"
)

const (
	fallbackDoctorName  = "Doctor"
	fallbackPatientName = "Patient"

	appointmentsURL   = "/appointments"
	medicalRecordsURL = "/medical-records"
)

func appointmentNotification(a *models.Appointment, userID string, typ models.NotificationType, title, message, actionURL string) models.Notification {
	id := a.ID
	return models.Notification{
		UserID:        userID,
		Type:          typ,
		Title:         title,
		Message:       message,
		AppointmentID: &id,
		ActionURL:     actionURL,
	}
}

// StatusChangeNotifications returns the notifications owed for moving an appointment
// from one status to another. The kind depends on the destination only; an unchanged
// status or a move to pending yields none. The appointment must carry its parties.
func StatusChangeNotifications(a *models.Appointment, from, to models.AppointmentStatus) []models.Notification {
	if from == to {
		return nil
	}

	doctor := models.DisplayName(a.Doctor, fallbackDoctorName)
	patient := models.DisplayName(a.Patient, fallbackPatientName)
	date := a.DisplayDate()

	switch to {
	case models.StatusConfirmed:
		return []models.Notification{
			appointmentNotification(a, a.PatientID, models.NotificationAppointmentConfirmed,
				"Appointment Confirmed",
				fmt.Sprintf("Your appointment with Dr. %s on %s at %s has been confirmed.", doctor, date, a.Time),
				appointmentsURL),
		}
	case models.StatusCancelled:
		return []models.Notification{
			appointmentNotification(a, a.PatientID, models.NotificationAppointmentCancelled,
				"Appointment Cancelled",
				fmt.Sprintf("Your appointment with Dr. %s on %s has been cancelled.", doctor, date),
				appointmentsURL),
			appointmentNotification(a, a.DoctorID, models.NotificationAppointmentCancelled,
				"Appointment Cancelled",
				fmt.Sprintf("Appointment with %s on %s has been cancelled.", patient, date),
				appointmentsURL),
		}
	case models.StatusCompleted:
		return []models.Notification{
			appointmentNotification(a, a.PatientID, models.NotificationAppointmentCompleted,
				"Appointment Completed",
				fmt.Sprintf("Your appointment with Dr. %s on %s has been completed.", doctor, date),
				medicalRecordsURL),
		}
	default:
		return nil
	}
}

// BookingNotifications returns the pair of notifications sent when an appointment is booked.
func BookingNotifications(a *models.Appointment) []models.Notification {
	doctor := models.DisplayName(a.Doctor, fallbackDoctorName)
	patient := models.DisplayName(a.Patient, fallbackPatientName)
	date := a.DisplayDate()

	return []models.Notification{
		appointmentNotification(a, a.PatientID, models.NotificationAppointmentCreated,
			"Appointment Booked",
			fmt.Sprintf("Your appointment with Dr. %s on %s at %s has been booked successfully.", doctor, date, a.Time),
			appointmentsURL),
		appointmentNotification(a, a.DoctorID, models.NotificationAppointmentCreated,
			"New Appointment Request",
			fmt.Sprintf("%s has requested an appointment on %s at %s.", patient, date, a.Time),
			appointmentsURL),
	}
}

// ReminderNotification is sent to the patient the day before a confirmed appointment.
func ReminderNotification(a *models.Appointment) models.Notification {
	doctor := models.DisplayName(a.Doctor, fallbackDoctorName)
	return appointmentNotification(a, a.PatientID, models.NotificationAppointmentReminder,
		"Appointment Reminder",
		fmt.Sprintf("Reminder: your appointment with Dr. %s is scheduled for %s at %s.", doctor, a.DisplayDate(), a.Time),
		appointmentsURL)
}

// MedicalRecordNotification tells the patient a new record was filed.
func MedicalRecordNotification(r *models.MedicalRecord) models.Notification {
	id := r.ID
	doctor := models.DisplayName(r.Doctor, fallbackDoctorName)
	return models.Notification{
		UserID:          r.PatientID,
		Type:            models.NotificationMedicalRecordAdded,
		Title:           "New Medical Record",
		Message:         fmt.Sprintf("Dr. %s added a new medical record to your history.", doctor),
		AppointmentID:   r.AppointmentID,
		MedicalRecordID: &id,
		ActionURL:       medicalRecordsURL,
	}
}

// PrescriptionNotification tells the patient a prescription was attached to their appointment.
func PrescriptionNotification(a *models.Appointment) models.Notification {
	doctor := models.DisplayName(a.Doctor, fallbackDoctorName)
	return appointmentNotification(a, a.PatientID, models.NotificationPrescriptionAdded,
		"Prescription Added",
		fmt.Sprintf("Dr. %s added a prescription for your appointment on %s.", doctor, a.DisplayDate()),
		appointmentsURL)
}
