package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type appointmentRepo struct {
	db *gorm.DB
}

func (r appointmentRepo) withParties(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Patient").Preload("Doctor")
}

func (r appointmentRepo) Create(ctx context.Context, appointment *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error)
}

func (r appointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.withParties(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

func (r appointmentRepo) List(ctx context.Context, filter store.AppointmentFilter) ([]models.Appointment, error) {
	query := r.withParties(ctx)
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.DoctorID != "" {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var appointments []models.Appointment
	if err := query.Order("date desc").Order("created_at desc").Find(&appointments).Error; err != nil {
		return nil, translate(err)
	}
	return appointments, nil
}

func (r appointmentRepo) ListBetween(ctx context.Context, status models.AppointmentStatus, from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.withParties(ctx).
		Where("status = ? AND date >= ? AND date < ?", status, from, to).
		Order("date asc").
		Find(&appointments).Error
	if err != nil {
		return nil, translate(err)
	}
	return appointments, nil
}

func (r appointmentRepo) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

func (r appointmentRepo) UpdateDetails(ctx context.Context, id string, details store.AppointmentDetails) (*models.Appointment, error) {
	changes := map[string]interface{}{"updated_at": time.Now().UTC()}
	if details.ConsultationNotes != nil {
		changes["consultation_notes"] = *details.ConsultationNotes
	}
	if details.Prescription != nil {
		changes["prescription"] = *details.Prescription
	}

	if err := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}
