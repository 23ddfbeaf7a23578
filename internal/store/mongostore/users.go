package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type userRepo struct {
	s *Store
}

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	prepare(&user.BaseModel)
	_, err := r.s.c(colUsers).InsertOne(ctx, user)
	return translate(err)
}

func (r userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, r.s.c(colUsers), bson.M{"_id": id})
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.s.c(colUsers), bson.M{"email": email})
}

func (r userRepo) List(ctx context.Context, role models.Role) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.User](ctx, r.s.c(colUsers), filter, opts)
}

func (r userRepo) ListDoctors(ctx context.Context, filter store.DoctorFilter) ([]models.User, int64, error) {
	query := bson.M{"role": models.RoleDoctor}
	if filter.Specialization != "" {
		query["specialization"] = equalFold(filter.Specialization)
	}
	if filter.Location != "" {
		query["location"] = containsFold(filter.Location)
	}
	if filter.Search != "" {
		pattern := containsFold(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"specialization": pattern},
			bson.M{"clinic": pattern},
		}
	}

	total, err := r.s.c(colUsers).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, translate(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	doctors, err := findAll[models.User](ctx, r.s.c(colUsers), query, opts)
	if err != nil {
		return nil, 0, err
	}
	return doctors, total, nil
}

func (r userRepo) Update(ctx context.Context, id string, update store.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	setString := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	setString("name", update.Name)
	setString("phone", update.Phone)
	setString("address", update.Address)
	setString("profileImage", update.ProfileImage)
	setString("specialization", update.Specialization)
	setString("experience", update.Experience)
	setString("clinic", update.Clinic)
	setString("location", update.Location)
	setString("provider", update.Provider)
	setString("providerId", update.ProviderID)

	if update.ClearConsultationFee {
		set["consultationFee"] = nil
	} else if update.ConsultationFee != nil {
		set["consultationFee"] = *update.ConsultationFee
	}
	if update.IsAvailable != nil {
		set["isAvailable"] = *update.IsAvailable
	}
	if update.AvailableSlots != nil {
		set["availableSlots"] = *update.AvailableSlots
	}

	if err := updateByID(ctx, r.s.c(colUsers), id, set); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r userRepo) Touch(ctx context.Context, id string) error {
	_, err := r.s.c(colUsers).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}})
	return translate(err)
}

// usersByID loads the given users in one round trip.
func (r userRepo) usersByID(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := findAll[models.User](ctx, r.s.c(colUsers), bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}
