package services

import (
	"context"
	"fmt"
	"strings"

	"healthcare-booking-server/internal/apperrors"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

// CreateRecordInput carries a new medical record. Date accepts a calendar date or RFC 3339.
type CreateRecordInput struct {
	PatientID     string
	DoctorID      string
	AppointmentID string
	Diagnosis     string
	Reports       []string
	Prescription  string
	Notes         string
	Date          string
}

type MedicalRecordService struct {
	store         store.Store
	notifications *NotificationService
}

func NewMedicalRecordService(s store.Store, notifications *NotificationService) *MedicalRecordService {
	return &MedicalRecordService{store: s, notifications: notifications}
}

func (s *MedicalRecordService) ListByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, apperrors.InvalidArgument("patientId is required.")
	}
	records, err := s.store.MedicalRecords().ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return records, nil
}

func (s *MedicalRecordService) Get(ctx context.Context, id string) (*models.MedicalRecord, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("record id is required.")
	}
	record, err := s.store.MedicalRecords().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Medical record not found.")
	}
	return record, nil
}

// Create files a record for a patient and notifies them.
func (s *MedicalRecordService) Create(ctx context.Context, in CreateRecordInput) (*models.MedicalRecord, error) {
	if in.PatientID == "" || in.DoctorID == "" || strings.TrimSpace(in.Diagnosis) == "" || in.Date == "" {
		return nil, apperrors.InvalidArgument("patientId, doctorId, diagnosis, and date are required.")
	}

	patient, err := s.store.Users().GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, storeError(err, "Patient not found.")
	}
	if patient.Role != models.RolePatient {
		return nil, apperrors.NotFound("Patient not found.")
	}
	doctor, err := s.store.Users().GetByID(ctx, in.DoctorID)
	if err != nil {
		return nil, storeError(err, "Doctor not found.")
	}
	if doctor.Role != models.RoleDoctor {
		return nil, apperrors.NotFound("Doctor not found.")
	}

	date, err := models.ParseAppointmentDate(in.Date)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "Invalid record date.", err)
	}

	record := &models.MedicalRecord{
		PatientID:    patient.ID,
		DoctorID:     doctor.ID,
		Diagnosis:    in.Diagnosis,
		Reports:      in.Reports,
		Prescription: in.Prescription,
		Notes:        in.Notes,
		Date:         date,
	}
	if record.Reports == nil {
		record.Reports = []string{}
	}
	if in.AppointmentID != "" {
		if _, err := s.store.Appointments().GetByID(ctx, in.AppointmentID); err != nil {
			return nil, storeError(err, "Appointment not found.")
		}
		appointmentID := in.AppointmentID
		record.AppointmentID = &appointmentID
	}

	if err := s.store.MedicalRecords().Create(ctx, record); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create medical record: %w", err))
	}
	record.Patient = patient
	record.Doctor = doctor

	if _, err := s.notifications.Send(ctx, MedicalRecordNotification(record)); err != nil {
		return nil, err
	}
	return record, nil
}
