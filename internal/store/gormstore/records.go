package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthcare-booking-server/internal/models"
)

type recordRepo struct {
	db *gorm.DB
}

func (r recordRepo) Create(ctx context.Context, record *models.MedicalRecord) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error)
}

func (r recordRepo) GetByID(ctx context.Context, id string) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	err := r.db.WithContext(ctx).Preload("Patient").Preload("Doctor").First(&record, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r recordRepo) ListByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := r.db.WithContext(ctx).Preload("Patient").Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("date desc").Order("created_at desc").
		Find(&records).Error
	if err != nil {
		return nil, translate(err)
	}
	return records, nil
}

type fileRepo struct {
	db *gorm.DB
}

func (r fileRepo) Create(ctx context.Context, file *models.StoredFile) error {
	return translate(r.db.WithContext(ctx).Create(file).Error)
}

func (r fileRepo) GetByID(ctx context.Context, id string) (*models.StoredFile, error) {
	var file models.StoredFile
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r fileRepo) Delete(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.StoredFile{}).Error)
}
