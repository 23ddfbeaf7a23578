package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type recordRepo struct {
	s *Store
}

func (r recordRepo) withParties(ctx context.Context, records []models.MedicalRecord) error {
	ids := make([]string, 0, len(records)*2)
	for _, rec := range records {
		ids = append(ids, rec.PatientID, rec.DoctorID)
	}
	users, err := userRepo{s: r.s}.usersByID(ctx, ids)
	if err != nil {
		return err
	}
	for i := range records {
		records[i].Patient = users[records[i].PatientID]
		records[i].Doctor = users[records[i].DoctorID]
	}
	return nil
}

func (r recordRepo) Create(ctx context.Context, record *models.MedicalRecord) error {
	prepare(&record.BaseModel)
	_, err := r.s.c(colMedicalRecords).InsertOne(ctx, record)
	return translate(err)
}

func (r recordRepo) GetByID(ctx context.Context, id string) (*models.MedicalRecord, error) {
	record, err := findOne[models.MedicalRecord](ctx, r.s.c(colMedicalRecords), bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	one := []models.MedicalRecord{*record}
	if err := r.withParties(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r recordRepo) ListByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	records, err := findAll[models.MedicalRecord](ctx, r.s.c(colMedicalRecords), bson.M{"patientId": patientID}, opts)
	if err != nil {
		return nil, err
	}
	if err := r.withParties(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

type fileRepo struct {
	s *Store
}

func (r fileRepo) Create(ctx context.Context, file *models.StoredFile) error {
	prepare(&file.BaseModel)
	_, err := r.s.c(colFiles).InsertOne(ctx, file)
	return translate(err)
}

func (r fileRepo) GetByID(ctx context.Context, id string) (*models.StoredFile, error) {
	return findOne[models.StoredFile](ctx, r.s.c(colFiles), bson.M{"_id": id})
}

func (r fileRepo) Delete(ctx context.Context, id string) error {
	_, err := r.s.c(colFiles).DeleteOne(ctx, bson.M{"_id": id})
	return translate(err)
}

var _ store.FileRepository = fileRepo{}
