package services

import (
	"context"
	"fmt"
	"strings"

	"healthcare-booking-server/internal/apperrors"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

// ContentService serves the departments, news and FAQ pages.
type ContentService struct {
	store store.Store
}

func NewContentService(s store.Store) *ContentService {
	return &ContentService{store: s}
}

func (s *ContentService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.store.Departments().List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return departments, nil
}

func (s *ContentService) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.store.Departments().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Department not found.")
	}
	return department, nil
}

func (s *ContentService) CreateDepartment(ctx context.Context, name, description, icon string) (*models.Department, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidArgument("name is required.")
	}
	department := &models.Department{
		Name:        name,
		Description: description,
		Icon:        icon,
		DoctorIDs:   []string{},
	}
	if err := s.store.Departments().Create(ctx, department); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create department: %w", err))
	}
	return department, nil
}

func (s *ContentService) UpdateDepartment(ctx context.Context, id string, update store.DepartmentUpdate) (*models.Department, error) {
	department, err := s.store.Departments().Update(ctx, id, update)
	if err != nil {
		return nil, storeError(err, "Department not found.")
	}
	return department, nil
}

// ListNews returns published articles, newest first. An empty category matches all.
func (s *ContentService) ListNews(ctx context.Context, category string, limit int) ([]models.News, error) {
	if limit < 0 {
		limit = 0
	}
	news, err := s.store.News().ListPublished(ctx, category, limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return news, nil
}

// CreateNews stamps publishedAt when the article goes out immediately.
func (s *ContentService) CreateNews(ctx context.Context, news *models.News) (*models.News, error) {
	if news.Title == "" || news.Category == "" || news.Content == "" || news.Author == "" {
		return nil, apperrors.InvalidArgument("title, category, content, and author are required.")
	}
	news.PublishedAt = nil
	if news.Published {
		now := utcNow()
		news.PublishedAt = &now
	}
	if err := s.store.News().Create(ctx, news); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create news: %w", err))
	}
	return news, nil
}

func (s *ContentService) ListFAQs(ctx context.Context) ([]models.FAQ, error) {
	faqs, err := s.store.FAQs().List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return faqs, nil
}

func (s *ContentService) CreateFAQ(ctx context.Context, faq *models.FAQ) (*models.FAQ, error) {
	if strings.TrimSpace(faq.Question) == "" || strings.TrimSpace(faq.Answer) == "" {
		return nil, apperrors.InvalidArgument("question and answer are required.")
	}
	if err := s.store.FAQs().Create(ctx, faq); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create faq: %w", err))
	}
	return faq, nil
}

func (s *ContentService) UpdateFAQ(ctx context.Context, id string, update store.FAQUpdate) (*models.FAQ, error) {
	faq, err := s.store.FAQs().Update(ctx, id, update)
	if err != nil {
		return nil, storeError(err, "FAQ not found.")
	}
	return faq, nil
}
