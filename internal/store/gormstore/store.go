// Package gormstore binds the store contracts to a relational database through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

const (
	mysqlDuplicateEntry     = 1062
	postgresUniqueViolation = "23505"
)

// Store implements store.Store on a *gorm.DB.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open connection. The caller keeps ownership until Close.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Users() store.UserRepository                   { return userRepo{db: s.db} }
func (s *Store) Appointments() store.AppointmentRepository     { return appointmentRepo{db: s.db} }
func (s *Store) Notifications() store.NotificationRepository   { return notificationRepo{db: s.db} }
func (s *Store) MedicalRecords() store.MedicalRecordRepository { return recordRepo{db: s.db} }
func (s *Store) Departments() store.DepartmentRepository       { return departmentRepo{db: s.db} }
func (s *Store) News() store.NewsRepository                    { return newsRepo{db: s.db} }
func (s *Store) FAQs() store.FAQRepository                     { return faqRepo{db: s.db} }
func (s *Store) Tokens() store.TokenRepository                 { return tokenRepo{db: s.db} }
func (s *Store) Files() store.FileRepository                   { return fileRepo{db: s.db} }

// DeleteUserCascade runs every delete in one transaction.
func (s *Store) DeleteUserCascade(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		if err := tx.Where("patient_id = ? OR doctor_id = ?", userID, userID).Delete(&models.MedicalRecord{}).Error; err != nil {
			return fmt.Errorf("delete medical records: %w", err)
		}
		if err := tx.Where("patient_id = ? OR doctor_id = ?", userID, userID).Delete(&models.Appointment{}).Error; err != nil {
			return fmt.Errorf("delete appointments: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return fmt.Errorf("delete refresh tokens: %w", err)
		}
		if err := tx.Where("owner_id = ?", userID).Delete(&models.StoredFile{}).Error; err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
		res := tx.Where("id = ?", userID).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	return translate(err)
}

func (s *Store) Migrate(ctx context.Context) error {
	return models.Migrate(s.db.WithContext(ctx))
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case isDuplicate(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolation {
		return true
	}
	// sqlite reports constraint failures through its message only
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// likePattern builds a lowercase substring pattern for LOWER(column) LIKE ?.
func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}
