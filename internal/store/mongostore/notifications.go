package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type notificationRepo struct {
	s *Store
}

func (r notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	prepare(&notification.BaseModel)
	_, err := r.s.c(colNotifications).InsertOne(ctx, notification)
	return translate(err)
}

func (r notificationRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.Notification, int64, error) {
	query := bson.M{"userId": userID}
	total, err := r.s.c(colNotifications).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, translate(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	notifications, err := findAll[models.Notification](ctx, r.s.c(colNotifications), query, opts)
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := r.s.c(colNotifications).CountDocuments(ctx, bson.M{"userId": userID, "read": false})
	return count, translate(err)
}

func (r notificationRepo) MarkRead(ctx context.Context, id string, at time.Time) (*models.Notification, error) {
	if err := updateByID(ctx, r.s.c(colNotifications), id, bson.M{"read": true, "readAt": at}); err != nil {
		return nil, err
	}
	return findOne[models.Notification](ctx, r.s.c(colNotifications), bson.M{"_id": id})
}

func (r notificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.s.c(colNotifications).UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": at}},
	)
	if err != nil {
		return 0, translate(err)
	}
	return res.ModifiedCount, nil
}

func (r notificationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.s.c(colNotifications).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r notificationRepo) ExistsForAppointment(ctx context.Context, userID, appointmentID string, typ models.NotificationType) (bool, error) {
	count, err := r.s.c(colNotifications).CountDocuments(ctx,
		bson.M{"userId": userID, "appointmentId": appointmentID, "type": typ},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}
