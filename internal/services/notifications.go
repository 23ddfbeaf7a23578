package services

import (
	"context"
	"fmt"
	"strings"

	"healthcare-booking-server/internal/apperrors"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

// NotificationService persists notifications and forwards them to live subscribers.
type NotificationService struct {
	store     store.Store
	publisher Publisher
	recorder  Recorder
}

func NewNotificationService(s store.Store, publisher Publisher, recorder Recorder) *NotificationService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &NotificationService{store: s, publisher: publisher, recorder: recorder}
}

// Send stores each notification in order and stops at the first failure.
// Notifications stored before the failure are kept and already published.
func (s *NotificationService) Send(ctx context.Context, notifications ...models.Notification) ([]models.Notification, error) {
	created := make([]models.Notification, 0, len(notifications))
	for i := range notifications {
		n := notifications[i]
		if !n.Type.Valid() {
			return created, apperrors.Internal(fmt.Errorf("notification type %q: %w", n.Type, models.ErrUnknownVariant))
		}
		n.Read = false
		n.ReadAt = nil
		if err := s.store.Notifications().Create(ctx, &n); err != nil {
			return created, apperrors.Internal(fmt.Errorf("create %s notification for %s: %w", n.Type, n.UserID, err))
		}
		created = append(created, n)
		s.publisher.Publish(n)
		s.recorder.NotificationCreated(n.Type.Wire())
	}
	return created, nil
}

func requireUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.InvalidArgument("userId is required.")
	}
	return nil
}

// List returns one page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, page, limit int) (Page[models.Notification], error) {
	if err := requireUserID(userID); err != nil {
		return Page[models.Notification]{}, err
	}
	page, limit = NormalizePage(page, limit)

	items, total, err := s.store.Notifications().ListByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return Page[models.Notification]{}, apperrors.Internal(err)
	}
	return newPage(items, page, limit, total), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if err := requireUserID(userID); err != nil {
		return 0, err
	}
	count, err := s.store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidArgument("notificationId is required.")
	}
	n, err := s.store.Notifications().MarkRead(ctx, id, utcNow())
	if err != nil {
		return nil, storeError(err, "Notification not found.")
	}
	return n, nil
}

// MarkAllRead returns how many unread notifications were flipped.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if err := requireUserID(userID); err != nil {
		return 0, err
	}
	count, err := s.store.Notifications().MarkAllRead(ctx, userID, utcNow())
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return count, nil
}

func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidArgument("notificationId is required.")
	}
	return storeError(s.store.Notifications().Delete(ctx, id), "Notification not found.")
}
