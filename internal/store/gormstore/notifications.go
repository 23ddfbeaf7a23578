package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type notificationRepo struct {
	db *gorm.DB
}

func (r notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(notification).Error)
}

func (r notificationRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var notifications []models.Notification
	err := query.Order("created_at desc").Order("id").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return notifications, total, nil
}

func (r notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, translate(err)
}

func (r notificationRepo) MarkRead(ctx context.Context, id string, at time.Time) (*models.Notification, error) {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
	if err != nil {
		return nil, translate(err)
	}

	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &notification, nil
}

func (r notificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (r notificationRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r notificationRepo) ExistsForAppointment(ctx context.Context, userID, appointmentID string, typ models.NotificationType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND appointment_id = ? AND type = ?", userID, appointmentID, typ).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}
