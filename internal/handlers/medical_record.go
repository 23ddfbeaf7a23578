package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/utils"
)

// MedicalRecordHandler handles medical record related requests.
type MedicalRecordHandler struct {
	records *services.MedicalRecordService
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(records *services.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{records: records}
}

// CreateMedicalRecordRequest represents the request body for creating a medical record.
// DoctorID defaults to the authenticated doctor.
type CreateMedicalRecordRequest struct {
	PatientID     string   `json:"patientId" validate:"max=64"`
	DoctorID      string   `json:"doctorId" validate:"max=64"`
	AppointmentID string   `json:"appointmentId" validate:"max=64"`
	Diagnosis     string   `json:"diagnosis" validate:"max=2000"`
	Reports       []string `json:"reports" validate:"max=50,dive,max=1024"`
	Prescription  string   `json:"prescription" validate:"max=10000"`
	Notes         string   `json:"notes" validate:"max=10000"`
	Date          string   `json:"date" validate:"max=64"`
}

// CreateMedicalRecord files a record and notifies the patient.
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	var req CreateMedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID := req.DoctorID
	if doctorID == "" {
		doctorID, _ = middleware.GetUserIDFromContext(c)
	}

	record, err := h.records.Create(c.Request.Context(), services.CreateRecordInput{
		PatientID:     req.PatientID,
		DoctorID:      doctorID,
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Reports:       req.Reports,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
		Date:          req.Date,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, gin.H{"success": true, "record": record.View()})
}

// GetMedicalRecords lists a patient's records, newest first.
func (h *MedicalRecordHandler) GetMedicalRecords(c *gin.Context) {
	records, err := h.records.ListByPatient(c.Request.Context(), c.Query("patientId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, mapViews(records, recordView))
}

// GetMedicalRecordByID returns one record.
func (h *MedicalRecordHandler) GetMedicalRecordByID(c *gin.Context) {
	record, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, record.View())
}
