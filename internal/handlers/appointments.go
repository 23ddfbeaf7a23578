package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	appointments *services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// CreateAppointmentRequest represents the request body for booking an appointment.
// Date is a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp; Type is online or offline.
type CreateAppointmentRequest struct {
	PatientID string `json:"patientId" validate:"max=64"`
	DoctorID  string `json:"doctorId" validate:"max=64"`
	Date      string `json:"date" validate:"max=64"`
	Time      string `json:"time" validate:"max=32"`
	Type      string `json:"type" validate:"max=32"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// UpdateStatusRequest carries the new status. AppointmentID is read when the path has no id.
type UpdateStatusRequest struct {
	AppointmentID string `json:"appointmentId"`
	Status        string `json:"status"`
}

// UpdateDetailsRequest carries consultation notes and prescription.
type UpdateDetailsRequest struct {
	AppointmentID     string  `json:"appointmentId"`
	ConsultationNotes *string `json:"consultationNotes" validate:"omitempty,max=10000"`
	Prescription      *string `json:"prescription" validate:"omitempty,max=10000"`
}

// CreateAppointment books an appointment and notifies both parties.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.appointments.Create(c.Request.Context(), services.CreateAppointmentInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Type:      req.Type,
		Notes:     req.Notes,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, gin.H{"success": true, "appointment": appointment.View()})
}

// GetAppointments lists a user's appointments, newest first.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	appointments, err := h.appointments.List(c.Request.Context(), c.Query("userId"), c.Query("role"), c.Query("status"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, mapViews(appointments, appointmentView))
}

// GetAppointmentByID returns one appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment, err := h.appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, appointment.View())
}

// UpdateAppointmentStatus changes the status and fans out the notifications it implies.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// empty unless a bearer token was presented
	actorID, _ := middleware.GetUserIDFromContext(c)

	id := firstNonEmpty(c.Param("id"), req.AppointmentID)
	appointment, err := h.appointments.UpdateStatus(c.Request.Context(), id, req.Status, actorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true, "appointment": appointment.View()})
}

// UpdateAppointmentDetails records consultation notes and prescription.
func (h *AppointmentHandler) UpdateAppointmentDetails(c *gin.Context) {
	var req UpdateDetailsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	id := firstNonEmpty(c.Param("id"), req.AppointmentID)
	appointment, err := h.appointments.UpdateDetails(c.Request.Context(), id, store.AppointmentDetails{
		ConsultationNotes: req.ConsultationNotes,
		Prescription:      req.Prescription,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true, "appointment": appointment.View()})
}
