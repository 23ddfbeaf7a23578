package gormstore

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type departmentRepo struct {
	db *gorm.DB
}

func (r departmentRepo) List(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&departments).Error; err != nil {
		return nil, translate(err)
	}
	return departments, nil
}

func (r departmentRepo) GetByID(ctx context.Context, id string) (*models.Department, error) {
	var department models.Department
	if err := r.db.WithContext(ctx).First(&department, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &department, nil
}

func (r departmentRepo) Create(ctx context.Context, department *models.Department) error {
	return translate(r.db.WithContext(ctx).Create(department).Error)
}

func (r departmentRepo) Update(ctx context.Context, id string, update store.DepartmentUpdate) (*models.Department, error) {
	changes := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.Icon != nil {
		changes["icon"] = *update.Icon
	}
	if update.DoctorIDs != nil {
		changes["doctor_ids"] = datatypes.JSONSlice[string](*update.DoctorIDs)
	}

	if err := r.db.WithContext(ctx).Model(&models.Department{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

type newsRepo struct {
	db *gorm.DB
}

func (r newsRepo) ListPublished(ctx context.Context, category string, limit int) ([]models.News, error) {
	query := r.db.WithContext(ctx).Where("published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	query = query.Order("published_at desc").Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var news []models.News
	if err := query.Find(&news).Error; err != nil {
		return nil, translate(err)
	}
	return news, nil
}

func (r newsRepo) Create(ctx context.Context, news *models.News) error {
	return translate(r.db.WithContext(ctx).Create(news).Error)
}

type faqRepo struct {
	db *gorm.DB
}

func (r faqRepo) List(ctx context.Context) ([]models.FAQ, error) {
	var faqs []models.FAQ
	if err := r.db.WithContext(ctx).Order("COALESCE(sort_order, 0) asc").Order("created_at asc").Find(&faqs).Error; err != nil {
		return nil, translate(err)
	}
	return faqs, nil
}

func (r faqRepo) Create(ctx context.Context, faq *models.FAQ) error {
	return translate(r.db.WithContext(ctx).Create(faq).Error)
}

func (r faqRepo) Update(ctx context.Context, id string, update store.FAQUpdate) (*models.FAQ, error) {
	changes := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.Question != nil {
		changes["question"] = *update.Question
	}
	if update.Answer != nil {
		changes["answer"] = *update.Answer
	}
	if update.Category != nil {
		changes["category"] = *update.Category
	}
	if update.Order != nil {
		changes["sort_order"] = *update.Order
	}

	if err := r.db.WithContext(ctx).Model(&models.FAQ{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return nil, translate(err)
	}

	var faq models.FAQ
	if err := r.db.WithContext(ctx).First(&faq, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &faq, nil
}

type tokenRepo struct {
	db *gorm.DB
}

func (r tokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

func (r tokenRepo) FindActive(ctx context.Context, token, userID string, now time.Time) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?", token, userID, false, now).
		First(&stored).Error
	if err != nil {
		return nil, translate(err)
	}
	return &stored, nil
}

func (r tokenRepo) Revoke(ctx context.Context, token string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", token, false).
		Updates(map[string]interface{}{"is_revoked": true, "expires_at": now})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
