package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"healthcare-booking-server/internal/apperrors"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

// CreateAppointmentInput carries wire values as received from the client.
type CreateAppointmentInput struct {
	PatientID string
	DoctorID  string
	Date      string
	Time      string
	Type      string
	Notes     string
}

// AppointmentOptions tunes the appointment rules.
type AppointmentOptions struct {
	// EnforceOwnership restricts status changes to the appointment's doctor.
	EnforceOwnership bool
}

type AppointmentService struct {
	store         store.Store
	notifications *NotificationService
	recorder      Recorder
	opts          AppointmentOptions
}

func NewAppointmentService(s store.Store, notifications *NotificationService, recorder Recorder, opts AppointmentOptions) *AppointmentService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AppointmentService{store: s, notifications: notifications, recorder: recorder, opts: opts}
}

func (s *AppointmentService) EnforcesOwnership() bool {
	return s.opts.EnforceOwnership
}

// loadParty fetches a user and checks the role; a missing user and a wrong role look the same.
func (s *AppointmentService) loadParty(ctx context.Context, id string, role models.Role, notFound string) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, notFound)
	}
	if user.Role != role {
		return nil, apperrors.NotFound(notFound)
	}
	return user, nil
}

// Create books a pending appointment and notifies both parties.
func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error) {
	if in.PatientID == "" || in.DoctorID == "" || in.Date == "" || in.Time == "" || in.Type == "" {
		return nil, apperrors.InvalidArgument("patientId, doctorId, date, time, and type are required.")
	}

	patient, err := s.loadParty(ctx, in.PatientID, models.RolePatient, "Patient not found.")
	if err != nil {
		return nil, err
	}
	doctor, err := s.loadParty(ctx, in.DoctorID, models.RoleDoctor, "Doctor not found.")
	if err != nil {
		return nil, err
	}
	if !doctor.AcceptsBookings() {
		return nil, apperrors.InvalidArgument("Doctor is not available.")
	}

	date, err := models.ParseAppointmentDate(in.Date)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "Invalid appointment date.", err)
	}
	typ, err := models.ParseAppointmentType(in.Type)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "Invalid appointment type.", err)
	}

	appointment := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      date,
		Time:      in.Time,
		Status:    models.StatusPending,
		Type:      typ,
		Notes:     in.Notes,
	}
	if err := s.store.Appointments().Create(ctx, appointment); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create appointment: %w", err))
	}
	appointment.Patient = patient
	appointment.Doctor = doctor

	if _, err := s.notifications.Send(ctx, BookingNotifications(appointment)...); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("appointment_id", appointment.ID).
		Str("patient_id", patient.ID).
		Str("doctor_id", doctor.ID).
		Msg("appointment booked")
	return appointment, nil
}

// List returns the appointments where the user takes the given role, newest first.
func (s *AppointmentService) List(ctx context.Context, userID, role, status string) ([]models.Appointment, error) {
	if userID == "" || role == "" {
		return nil, apperrors.InvalidArgument("userId and role are required.")
	}
	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "role must be patient or doctor.", err)
	}

	filter := store.AppointmentFilter{}
	if parsedRole == models.RolePatient {
		filter.PatientID = userID
	} else {
		filter.DoctorID = userID
	}
	if status != "" {
		parsed, err := models.ParseAppointmentStatus(status)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "Invalid appointment status.", err)
		}
		filter.Status = parsed
	}

	appointments, err := s.store.Appointments().List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("Appointment id is required.")
	}
	appointment, err := s.store.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Appointment not found.")
	}
	return appointment, nil
}

// UpdateStatus persists the new status and then fans out the notifications owed for the change.
// The notification writes are not part of the status write; a failure there surfaces as internal.
// actorID is the authenticated caller and only matters when ownership is enforced.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id, status, actorID string) (*models.Appointment, error) {
	if id == "" || status == "" {
		return nil, apperrors.InvalidArgument("appointmentId and status are required.")
	}

	current, err := s.store.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Appointment not found.")
	}

	next, err := models.ParseAppointmentStatus(status)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "Invalid appointment status.", err)
	}

	if s.opts.EnforceOwnership {
		if actorID == "" {
			return nil, apperrors.Unauthenticated("Authentication required.")
		}
		if actorID != current.DoctorID {
			return nil, apperrors.PermissionDenied("Only the appointment's doctor can change its status.")
		}
	}

	updated, err := s.store.Appointments().UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, storeError(err, "Appointment not found.")
	}

	if current.Status != next {
		s.recorder.StatusTransition(current.Status.Wire(), next.Wire())
		if _, err := s.notifications.Send(ctx, StatusChangeNotifications(updated, current.Status, next)...); err != nil {
			return nil, err
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("appointment_id", id).
		Str("from", current.Status.Wire()).
		Str("to", next.Wire()).
		Msg("appointment status updated")
	return updated, nil
}

// UpdateDetails records consultation notes and prescription. Setting a new, non-empty
// prescription notifies the patient.
func (s *AppointmentService) UpdateDetails(ctx context.Context, id string, details store.AppointmentDetails) (*models.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("appointmentId is required.")
	}

	current, err := s.store.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Appointment not found.")
	}

	updated, err := s.store.Appointments().UpdateDetails(ctx, id, details)
	if err != nil {
		return nil, storeError(err, "Appointment not found.")
	}

	if details.Prescription != nil {
		prescription := strings.TrimSpace(*details.Prescription)
		if prescription != "" && prescription != strings.TrimSpace(current.Prescription) {
			if _, err := s.notifications.Send(ctx, PrescriptionNotification(updated)); err != nil {
				return nil, err
			}
		}
	}
	return updated, nil
}

