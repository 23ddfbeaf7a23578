package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/utils"
)

// UserHandler handles user, doctor directory and profile picture requests.
type UserHandler struct {
	users          *services.UserService
	maxUploadBytes int64
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, maxUploadBytes int64) *UserHandler {
	return &UserHandler{users: users, maxUploadBytes: maxUploadBytes}
}

// UpdateProfileRequest lists the editable profile fields. Absent fields are untouched;
// consultationFee null (or "") clears the fee.
type UpdateProfileRequest struct {
	Name            *string             `json:"name" validate:"omitempty,max=255"`
	Phone           *string             `json:"phone" validate:"omitempty,max=50"`
	Address         *string             `json:"address" validate:"omitempty,max=500"`
	ProfileImage    *string             `json:"profileImage"`
	Specialization  *string             `json:"specialization" validate:"omitempty,max=255"`
	Experience      *string             `json:"experience" validate:"omitempty,max=255"`
	ConsultationFee utils.NullableFloat `json:"consultationFee"`
	Clinic          *string             `json:"clinic" validate:"omitempty,max=255"`
	Location        *string             `json:"location" validate:"omitempty,max=255"`
	IsAvailable     *bool               `json:"isAvailable"`
}

// AvailabilityRequest toggles bookings and optionally replaces the slots.
type AvailabilityRequest struct {
	DoctorID       string    `json:"doctorId"`
	IsAvailable    *bool     `json:"isAvailable"`
	AvailableSlots *[]string `json:"availableSlots" validate:"omitempty,dive,max=50"`
}

// GetUsers lists users, optionally filtered by role.
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, mapViews(users, userView))
}

// GetDoctors serves the paginated doctor directory.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	page, err := h.users.ListDoctors(c.Request.Context(), services.DoctorQuery{
		Specialization: c.Query("specialization"),
		Location:       c.Query("location"),
		Search:         c.Query("search"),
		Page:           utils.QueryInt(c, "page", 1),
		Limit:          utils.QueryInt(c, "limit", services.DefaultPageLimit),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, pageResponse(page, doctorView))
}

// GetUserByID returns one user.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, user.Sanitize())
}

// UpdateProfile applies a partial profile update.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	update := store.UserUpdate{
		Name:           req.Name,
		Phone:          req.Phone,
		Address:        req.Address,
		ProfileImage:   req.ProfileImage,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Clinic:         req.Clinic,
		Location:       req.Location,
		IsAvailable:    req.IsAvailable,
	}
	if req.ConsultationFee.Set {
		if req.ConsultationFee.Null {
			update.ClearConsultationFee = true
		} else {
			update.ConsultationFee = req.ConsultationFee.Ptr()
		}
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true, "user": user.Sanitize()})
}

// UpdateAvailability serves both PATCH /users/:id/availability and POST /users/availability.
func (h *UserHandler) UpdateAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	id := firstNonEmpty(c.Param("id"), req.DoctorID)
	user, err := h.users.SetAvailability(c.Request.Context(), id, req.IsAvailable, req.AvailableSlots)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true, "user": user.Sanitize()})
}

// DeleteUser removes the account and everything it owns.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true})
}

// UploadProfilePicture accepts a multipart "file" field holding an image.
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		// leave room for the multipart envelope
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+64<<10)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.BadRequest(c, fmt.Sprintf("File exceeds the %d byte limit.", h.maxUploadBytes))
			return
		}
		utils.BadRequest(c, "file is required.")
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		utils.BadRequest(c, fmt.Sprintf("File exceeds the %d byte limit.", h.maxUploadBytes))
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequest(c, "Could not read the uploaded file.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.BadRequest(c, "Could not read the uploaded file.")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	user, err := h.users.UploadProfilePicture(c.Request.Context(), c.Param("id"), services.Upload{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true, "url": user.ProfileImage, "user": user.Sanitize()})
}

// RemoveProfilePicture clears the profile image.
func (h *UserHandler) RemoveProfilePicture(c *gin.Context) {
	if _, err := h.users.RemoveProfilePicture(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true})
}

// GetFile streams a stored file.
func (h *UserHandler) GetFile(c *gin.Context) {
	file, err := h.users.GetFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=86400")
	c.Header("Content-Length", strconv.FormatInt(int64(len(file.Data)), 10))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
