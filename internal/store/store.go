// Package store declares the persistence contracts the domain services depend on.
// gormstore and mongostore provide the relational and document bindings.
package store

import (
	"context"
	"errors"
	"time"

	"healthcare-booking-server/internal/models"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// DoctorFilter narrows the doctor directory.
type DoctorFilter struct {
	Specialization string // case-insensitive equality
	Location       string // case-insensitive substring
	Search         string // case-insensitive substring of name, specialization or clinic
	Offset         int
	Limit          int
}

// UserUpdate lists the profile fields to change; nil pointers are left untouched.
type UserUpdate struct {
	Name                 *string
	Phone                *string
	Address              *string
	ProfileImage         *string
	Specialization       *string
	Experience           *string
	ConsultationFee      *float64
	ClearConsultationFee bool
	Clinic               *string
	Location             *string
	IsAvailable          *bool
	AvailableSlots       *[]string
	Provider             *string
	ProviderID           *string
}

// AppointmentFilter selects appointments by participant and optional status.
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Status    models.AppointmentStatus
}

// AppointmentDetails carries the consultation outcome fields.
type AppointmentDetails struct {
	ConsultationNotes *string
	Prescription      *string
}

// DepartmentUpdate lists the department fields to change.
type DepartmentUpdate struct {
	Name        *string
	Description *string
	Icon        *string
	DoctorIDs   *[]string
}

// FAQUpdate lists the FAQ fields to change.
type FAQUpdate struct {
	Question *string
	Answer   *string
	Category *string
	Order    *int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// List returns users ordered by creation time, newest first. An empty role matches everyone.
	List(ctx context.Context, role models.Role) ([]models.User, error)
	// ListDoctors returns one page of doctors ordered by last update, plus the unpaged total.
	ListDoctors(ctx context.Context, filter DoctorFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id string, update UserUpdate) (*models.User, error)
	Touch(ctx context.Context, id string) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	// GetByID loads the appointment with its patient and doctor.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// List orders by date then creation time, newest first.
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// ListBetween returns appointments with the status whose date is in [from, to).
	ListBetween(ctx context.Context, status models.AppointmentStatus, from, to time.Time) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error)
	UpdateDetails(ctx context.Context, id string, details AppointmentDetails) (*models.Appointment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// ListByUser returns one page ordered by creation time, newest first, plus the unpaged total.
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string, at time.Time) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
	ExistsForAppointment(ctx context.Context, userID, appointmentID string, typ models.NotificationType) (bool, error)
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, record *models.MedicalRecord) error
	GetByID(ctx context.Context, id string) (*models.MedicalRecord, error)
	// ListByPatient orders by record date then creation time, newest first.
	ListByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error)
}

type DepartmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	GetByID(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, id string, update DepartmentUpdate) (*models.Department, error)
}

type NewsRepository interface {
	// ListPublished orders by publication time, newest first. limit <= 0 means no limit.
	ListPublished(ctx context.Context, category string, limit int) ([]models.News, error)
	Create(ctx context.Context, news *models.News) error
}

type FAQRepository interface {
	List(ctx context.Context) ([]models.FAQ, error)
	Create(ctx context.Context, faq *models.FAQ) error
	Update(ctx context.Context, id string, update FAQUpdate) (*models.FAQ, error)
}

type TokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	// FindActive returns an unrevoked, unexpired token issued to the user.
	FindActive(ctx context.Context, token, userID string, now time.Time) (*models.RefreshToken, error)
	// Revoke marks the token revoked and reports whether an active token was found.
	Revoke(ctx context.Context, token string, now time.Time) (bool, error)
}

type FileRepository interface {
	Create(ctx context.Context, file *models.StoredFile) error
	GetByID(ctx context.Context, id string) (*models.StoredFile, error)
	Delete(ctx context.Context, id string) error
}

// Store bundles every repository behind one handle whose lifecycle is owned by main.
type Store interface {
	Users() UserRepository
	Appointments() AppointmentRepository
	Notifications() NotificationRepository
	MedicalRecords() MedicalRecordRepository
	Departments() DepartmentRepository
	News() NewsRepository
	FAQs() FAQRepository
	Tokens() TokenRepository
	Files() FileRepository

	// DeleteUserCascade removes the user's notifications, medical records, appointments,
	// refresh tokens and files, then the user, all or nothing.
	DeleteUserCascade(ctx context.Context, userID string) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
