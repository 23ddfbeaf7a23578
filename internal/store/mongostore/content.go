package mongostore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

type departmentRepo struct {
	s *Store
}

func (r departmentRepo) List(ctx context.Context) ([]models.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return findAll[models.Department](ctx, r.s.c(colDepartments), bson.M{}, opts)
}

func (r departmentRepo) GetByID(ctx context.Context, id string) (*models.Department, error) {
	return findOne[models.Department](ctx, r.s.c(colDepartments), bson.M{"_id": id})
}

func (r departmentRepo) Create(ctx context.Context, department *models.Department) error {
	prepare(&department.BaseModel)
	_, err := r.s.c(colDepartments).InsertOne(ctx, department)
	return translate(err)
}

func (r departmentRepo) Update(ctx context.Context, id string, update store.DepartmentUpdate) (*models.Department, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Icon != nil {
		set["icon"] = *update.Icon
	}
	if update.DoctorIDs != nil {
		set["doctorIds"] = *update.DoctorIDs
	}
	if err := updateByID(ctx, r.s.c(colDepartments), id, set); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

type newsRepo struct {
	s *Store
}

func (r newsRepo) ListPublished(ctx context.Context, category string, limit int) ([]models.News, error) {
	query := bson.M{"published": true}
	if category != "" {
		query["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.News](ctx, r.s.c(colNews), query, opts)
}

func (r newsRepo) Create(ctx context.Context, news *models.News) error {
	prepare(&news.BaseModel)
	_, err := r.s.c(colNews).InsertOne(ctx, news)
	return translate(err)
}

type faqRepo struct {
	s *Store
}

// List sorts in memory so that a missing order counts as zero, matching the relational binding.
func (r faqRepo) List(ctx context.Context) ([]models.FAQ, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	faqs, err := findAll[models.FAQ](ctx, r.s.c(colFAQs), bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(faqs, func(i, j int) bool {
		return orderOf(faqs[i]) < orderOf(faqs[j])
	})
	return faqs, nil
}

func orderOf(f models.FAQ) int {
	if f.Order == nil {
		return 0
	}
	return *f.Order
}

func (r faqRepo) Create(ctx context.Context, faq *models.FAQ) error {
	prepare(&faq.BaseModel)
	_, err := r.s.c(colFAQs).InsertOne(ctx, faq)
	return translate(err)
}

func (r faqRepo) Update(ctx context.Context, id string, update store.FAQUpdate) (*models.FAQ, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Question != nil {
		set["question"] = *update.Question
	}
	if update.Answer != nil {
		set["answer"] = *update.Answer
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Order != nil {
		set["order"] = *update.Order
	}
	if err := updateByID(ctx, r.s.c(colFAQs), id, set); err != nil {
		return nil, err
	}
	return findOne[models.FAQ](ctx, r.s.c(colFAQs), bson.M{"_id": id})
}

type tokenRepo struct {
	s *Store
}

func (r tokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	prepare(&token.BaseModel)
	_, err := r.s.c(colRefreshTokens).InsertOne(ctx, token)
	return translate(err)
}

func (r tokenRepo) FindActive(ctx context.Context, token, userID string, now time.Time) (*models.RefreshToken, error) {
	return findOne[models.RefreshToken](ctx, r.s.c(colRefreshTokens), bson.M{
		"token":     token,
		"userId":    userID,
		"isRevoked": false,
		"expiresAt": bson.M{"$gt": now},
	})
}

func (r tokenRepo) Revoke(ctx context.Context, token string, now time.Time) (bool, error) {
	res, err := r.s.c(colRefreshTokens).UpdateMany(ctx,
		bson.M{"token": token, "isRevoked": false},
		bson.M{"$set": bson.M{"isRevoked": true, "expiresAt": now}},
	)
	if err != nil {
		return false, translate(err)
	}
	return res.ModifiedCount > 0, nil
}
