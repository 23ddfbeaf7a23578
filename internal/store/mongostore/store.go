// Package mongostore binds the store contracts to MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

const (
	colUsers          = "users"
	colAppointments   = "appointments"
	colNotifications  = "notifications"
	colMedicalRecords = "medical_records"
	colDepartments    = "departments"
	colNews           = "news"
	colFAQs           = "faqs"
	colRefreshTokens  = "refresh_tokens"
	colFiles          = "stored_files"
)

// Store implements store.Store on a MongoDB database.
// Account deletion uses a multi-document transaction, which needs a replica set.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Connect dials the server and verifies it answers.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) c(name string) *mongo.Collection { return s.db.Collection(name) }

func (s *Store) Users() store.UserRepository                   { return userRepo{s: s} }
func (s *Store) Appointments() store.AppointmentRepository     { return appointmentRepo{s: s} }
func (s *Store) Notifications() store.NotificationRepository   { return notificationRepo{s: s} }
func (s *Store) MedicalRecords() store.MedicalRecordRepository { return recordRepo{s: s} }
func (s *Store) Departments() store.DepartmentRepository       { return departmentRepo{s: s} }
func (s *Store) News() store.NewsRepository                    { return newsRepo{s: s} }
func (s *Store) FAQs() store.FAQRepository                     { return faqRepo{s: s} }
func (s *Store) Tokens() store.TokenRepository                 { return tokenRepo{s: s} }
func (s *Store) Files() store.FileRepository                   { return fileRepo{s: s} }

// DeleteUserCascade removes everything owned by the user inside one session transaction.
func (s *Store) DeleteUserCascade(ctx context.Context, userID string) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	party := bson.M{"$or": bson.A{bson.M{"patientId": userID}, bson.M{"doctorId": userID}}}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.c(colNotifications).DeleteMany(sc, bson.M{"userId": userID}); err != nil {
			return nil, fmt.Errorf("delete notifications: %w", err)
		}
		if _, err := s.c(colMedicalRecords).DeleteMany(sc, party); err != nil {
			return nil, fmt.Errorf("delete medical records: %w", err)
		}
		if _, err := s.c(colAppointments).DeleteMany(sc, party); err != nil {
			return nil, fmt.Errorf("delete appointments: %w", err)
		}
		if _, err := s.c(colRefreshTokens).DeleteMany(sc, bson.M{"userId": userID}); err != nil {
			return nil, fmt.Errorf("delete refresh tokens: %w", err)
		}
		if _, err := s.c(colFiles).DeleteMany(sc, bson.M{"ownerId": userID}); err != nil {
			return nil, fmt.Errorf("delete files: %w", err)
		}
		res, err := s.c(colUsers).DeleteOne(sc, bson.M{"_id": userID})
		if err != nil {
			return nil, fmt.Errorf("delete user: %w", err)
		}
		if res.DeletedCount == 0 {
			return nil, store.ErrNotFound
		}
		return nil, nil
	})
	return translate(err)
}

// Migrate creates the indexes backing every query pattern.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "updatedAt", Value: -1}}},
			{Keys: bson.D{{Key: "specialization", Value: 1}}},
		},
		colAppointments: {
			{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
		},
		colNotifications: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "appointmentId", Value: 1}}},
		},
		colMedicalRecords: {
			{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "doctorId", Value: 1}}},
		},
		colNews: {
			{Keys: bson.D{{Key: "published", Value: 1}, {Key: "publishedAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		colFAQs:          {{Keys: bson.D{{Key: "order", Value: 1}}}},
		colDepartments:   {{Keys: bson.D{{Key: "name", Value: 1}}}},
		colRefreshTokens: {{Keys: bson.D{{Key: "token", Value: 1}, {Key: "userId", Value: 1}}}},
		colFiles:         {{Keys: bson.D{{Key: "ownerId", Value: 1}}}},
	}
	for name, models := range indexes {
		if _, err := s.c(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err)
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// updateByID applies $set and reports ErrNotFound when nothing matched.
func updateByID(ctx context.Context, coll *mongo.Collection, id string, set bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func prepare(base *models.BaseModel) {
	base.EnsureID()
	base.Touch(time.Now().UTC())
}

func equalFold(value string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(value) + "$", "$options": "i"}
}

func containsFold(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}
