package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type appointmentRepo struct {
	s *Store
}

// withParties attaches patient and doctor documents, mirroring a relational preload.
func (r appointmentRepo) withParties(ctx context.Context, appointments []models.Appointment) error {
	ids := make([]string, 0, len(appointments)*2)
	for _, a := range appointments {
		ids = append(ids, a.PatientID, a.DoctorID)
	}
	users, err := userRepo{s: r.s}.usersByID(ctx, ids)
	if err != nil {
		return err
	}
	for i := range appointments {
		appointments[i].Patient = users[appointments[i].PatientID]
		appointments[i].Doctor = users[appointments[i].DoctorID]
	}
	return nil
}

func (r appointmentRepo) Create(ctx context.Context, appointment *models.Appointment) error {
	prepare(&appointment.BaseModel)
	if appointment.Status == "" {
		appointment.Status = models.StatusPending
	}
	_, err := r.s.c(colAppointments).InsertOne(ctx, appointment)
	return translate(err)
}

func (r appointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, err := findOne[models.Appointment](ctx, r.s.c(colAppointments), bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	one := []models.Appointment{*appointment}
	if err := r.withParties(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r appointmentRepo) List(ctx context.Context, filter store.AppointmentFilter) ([]models.Appointment, error) {
	query := bson.M{}
	if filter.PatientID != "" {
		query["patientId"] = filter.PatientID
	}
	if filter.DoctorID != "" {
		query["doctorId"] = filter.DoctorID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	appointments, err := findAll[models.Appointment](ctx, r.s.c(colAppointments), query, opts)
	if err != nil {
		return nil, err
	}
	if err := r.withParties(ctx, appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r appointmentRepo) ListBetween(ctx context.Context, status models.AppointmentStatus, from, to time.Time) ([]models.Appointment, error) {
	query := bson.M{
		"status": status,
		"date":   bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	appointments, err := findAll[models.Appointment](ctx, r.s.c(colAppointments), query, opts)
	if err != nil {
		return nil, err
	}
	if err := r.withParties(ctx, appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r appointmentRepo) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if err := updateByID(ctx, r.s.c(colAppointments), id, set); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r appointmentRepo) UpdateDetails(ctx context.Context, id string, details store.AppointmentDetails) (*models.Appointment, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if details.ConsultationNotes != nil {
		set["consultationNotes"] = *details.ConsultationNotes
	}
	if details.Prescription != nil {
		set["prescription"] = *details.Prescription
	}
	if err := updateByID(ctx, r.s.c(colAppointments), id, set); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
