// Package services holds the booking domain logic shared by every storage binding.
// Services return *apperrors.Error values; handlers translate them into responses.
package services

import (
	"errors"
	"math"
	"time"

	"healthcare-booking-server/internal/apperrors"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100

	// MaxPage keeps page*MaxPageLimit inside int.
	MaxPage = math.MaxInt / MaxPageLimit
)

// Publisher receives notifications once they are persisted.
type Publisher interface {
	Publish(notification models.Notification)
}

// Recorder receives domain counters.
type Recorder interface {
	NotificationCreated(notificationType string)
	StatusTransition(from, to string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(models.Notification) {}

type nopRecorder struct{}

func (nopRecorder) NotificationCreated(string)     {}
func (nopRecorder) StatusTransition(string, string) {}

// Page is one slice of an ordered result plus the unpaged total.
type Page[T any] struct {
	Items   []T
	Page    int
	Limit   int
	Total   int64
	HasMore bool
}

// NormalizePage clamps the limit into [1, MaxPageLimit] and the page into [1, MaxPage].
// Callers substitute DefaultPageLimit for a missing or unparsable limit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func newPage[T any](items []T, page, limit int, total int64) Page[T] {
	return Page[T]{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: int64(page)*int64(limit) < total,
	}
}

// storeError maps persistence failures onto the error taxonomy.
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperrors.Wrap(apperrors.KindNotFound, notFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return apperrors.Wrap(apperrors.KindConflict, "Resource already exists.", err)
	default:
		return apperrors.Internal(err)
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Options wires the collaborators shared by the services.
type Options struct {
	Tokens           TokenIssuer
	Publisher        Publisher
	Recorder         Recorder
	EnforceOwnership bool
	MaxUploadBytes   int64
}

// Services bundles every domain service over one store.
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Appointments  *AppointmentService
	Notifications *NotificationService
	Records       *MedicalRecordService
	Content       *ContentService
}

func New(s store.Store, opts Options) *Services {
	notifications := NewNotificationService(s, opts.Publisher, opts.Recorder)
	return &Services{
		Auth:          NewAuthService(s, opts.Tokens),
		Users:         NewUserService(s, opts.MaxUploadBytes),
		Appointments:  NewAppointmentService(s, notifications, opts.Recorder, AppointmentOptions{EnforceOwnership: opts.EnforceOwnership}),
		Notifications: notifications,
		Records:       NewMedicalRecordService(s, notifications),
		Content:       NewContentService(s),
	}
}
