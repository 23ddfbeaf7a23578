package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/utils"
)

// ContentHandler serves departments, news and FAQs.
type ContentHandler struct {
	content *services.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"max=255"`
	Description string `json:"description" validate:"max=5000"`
	Icon        string `json:"icon" validate:"max=255"`
}

type UpdateDepartmentRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=255"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Icon        *string   `json:"icon" validate:"omitempty,max=255"`
	DoctorIDs   *[]string `json:"doctorIds" validate:"omitempty,dive,max=64"`
}

type CreateNewsRequest struct {
	Title     string `json:"title" validate:"max=255"`
	Category  string `json:"category" validate:"max=100"`
	Content   string `json:"content"`
	Author    string `json:"author" validate:"max=255"`
	Image     string `json:"image" validate:"max=1024"`
	Published *bool  `json:"published"`
}

type CreateFAQRequest struct {
	Question string `json:"question" validate:"max=2000"`
	Answer   string `json:"answer" validate:"max=10000"`
	Category string `json:"category" validate:"max=100"`
	Order    *int   `json:"order"`
}

type UpdateFAQRequest struct {
	Question *string `json:"question" validate:"omitempty,max=2000"`
	Answer   *string `json:"answer" validate:"omitempty,max=10000"`
	Category *string `json:"category" validate:"omitempty,max=100"`
	Order    *int    `json:"order"`
}

func (h *ContentHandler) GetDepartments(c *gin.Context) {
	departments, err := h.content.ListDepartments(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, mapViews(departments, departmentView))
}

func (h *ContentHandler) GetDepartmentByID(c *gin.Context) {
	department, err := h.content.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, department.View())
}

func (h *ContentHandler) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	department, err := h.content.CreateDepartment(c.Request.Context(), req.Name, req.Description, req.Icon)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, department.View())
}

func (h *ContentHandler) UpdateDepartment(c *gin.Context) {
	var req UpdateDepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	department, err := h.content.UpdateDepartment(c.Request.Context(), c.Param("id"), store.DepartmentUpdate{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		DoctorIDs:   req.DoctorIDs,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, department.View())
}

// GetNews lists published articles, newest first. limit=0 or absent means all.
func (h *ContentHandler) GetNews(c *gin.Context) {
	category := firstNonEmpty(c.Param("category"), c.Query("category"))
	news, err := h.content.ListNews(c.Request.Context(), category, utils.QueryInt(c, "limit", 0))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, mapViews(news, newsView))
}

// CreateNews publishes immediately unless published is false.
func (h *ContentHandler) CreateNews(c *gin.Context) {
	var req CreateNewsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}
	news, err := h.content.CreateNews(c.Request.Context(), &models.News{
		Title:     req.Title,
		Category:  req.Category,
		Content:   req.Content,
		Author:    req.Author,
		Image:     req.Image,
		Published: published,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, news.View())
}

func (h *ContentHandler) GetFAQs(c *gin.Context) {
	faqs, err := h.content.ListFAQs(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, mapViews(faqs, faqView))
}

func (h *ContentHandler) CreateFAQ(c *gin.Context) {
	var req CreateFAQRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	faq, err := h.content.CreateFAQ(c.Request.Context(), &models.FAQ{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Order:    req.Order,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, faq.View())
}

func (h *ContentHandler) UpdateFAQ(c *gin.Context) {
	var req UpdateFAQRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	faq, err := h.content.UpdateFAQ(c.Request.Context(), c.Param("id"), store.FAQUpdate{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Order:    req.Order,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, faq.View())
}
