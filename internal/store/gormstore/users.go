package gormstore

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type userRepo struct {
	db *gorm.DB
}

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (r userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r userRepo) List(ctx context.Context, role models.Role) ([]models.User, error) {
	query := r.db.WithContext(ctx).Order("created_at desc")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r userRepo) ListDoctors(ctx context.Context, filter store.DoctorFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleDoctor)

	if filter.Specialization != "" {
		query = query.Where("LOWER(specialization) = ?", strings.ToLower(filter.Specialization))
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", likePattern(filter.Location))
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(specialization) LIKE ? OR LOWER(clinic) LIKE ?)", p, p, p)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var doctors []models.User
	err := query.Order("updated_at desc").Order("id").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&doctors).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return doctors, total, nil
}

func (r userRepo) Update(ctx context.Context, id string, update store.UserUpdate) (*models.User, error) {
	changes := map[string]interface{}{"updated_at": time.Now().UTC()}
	setString := func(column string, v *string) {
		if v != nil {
			changes[column] = *v
		}
	}
	setString("name", update.Name)
	setString("phone", update.Phone)
	setString("address", update.Address)
	setString("profile_image", update.ProfileImage)
	setString("specialization", update.Specialization)
	setString("experience", update.Experience)
	setString("clinic", update.Clinic)
	setString("location", update.Location)
	setString("provider", update.Provider)
	setString("provider_id", update.ProviderID)

	if update.ClearConsultationFee {
		changes["consultation_fee"] = nil
	} else if update.ConsultationFee != nil {
		changes["consultation_fee"] = *update.ConsultationFee
	}
	if update.IsAvailable != nil {
		changes["is_available"] = *update.IsAvailable
	}
	if update.AvailableSlots != nil {
		changes["available_slots"] = datatypes.JSONSlice[string](*update.AvailableSlots)
	}

	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

func (r userRepo) Touch(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("updated_at", time.Now().UTC())
	return translate(res.Error)
}
