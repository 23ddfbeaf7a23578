// Package handlers adapts HTTP requests onto the domain services.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
)

// Pagination is the paging block of list responses.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// PageResponse is a page of views plus its pagination block.
type PageResponse[V any] struct {
	Data       []V        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func pageResponse[T, V any](page services.Page[T], view func(*T) V) PageResponse[V] {
	data := make([]V, 0, len(page.Items))
	for i := range page.Items {
		data = append(data, view(&page.Items[i]))
	}
	return PageResponse[V]{
		Data: data,
		Pagination: Pagination{
			Page:    page.Page,
			Limit:   page.Limit,
			Total:   page.Total,
			HasMore: page.HasMore,
		},
	}
}

func mapViews[T, V any](items []T, view func(*T) V) []V {
	out := make([]V, 0, len(items))
	for i := range items {
		out = append(out, view(&items[i]))
	}
	return out
}

func userView(u *models.User) models.UserSanitized { return u.Sanitize() }

func doctorView(u *models.User) models.DoctorListItem { return u.DoctorListing() }

func appointmentView(a *models.Appointment) models.AppointmentView { return a.View() }

func recordView(r *models.MedicalRecord) models.MedicalRecordView { return r.View() }

func notificationView(n *models.Notification) models.NotificationView { return n.View() }

func departmentView(d *models.Department) models.DepartmentView { return d.View() }

func newsView(n *models.News) models.NewsView { return n.View() }

func faqView(f *models.FAQ) models.FAQView { return f.View() }

// firstNonEmpty prefers the path parameter and falls back to the body value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
