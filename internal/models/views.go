package models

import (
	"time"
)

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID              string   `json:"id"`
	LegacyID        string   `json:"_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	Phone           string   `json:"phone"`
	Address         string   `json:"address"`
	Provider        string   `json:"provider,omitempty"`
	ProviderID      string   `json:"providerId,omitempty"`
	ProfileImage    string   `json:"profileImage"`
	Specialization  string   `json:"specialization"`
	Experience      string   `json:"experience"`
	ConsultationFee *float64 `json:"consultationFee"`
	Rating          *float64 `json:"rating"`
	PatientStories  *int     `json:"patientStories"`
	Clinic          string   `json:"clinic"`
	Location        string   `json:"location"`
	IsAvailable     bool     `json:"isAvailable"`
	AvailableSlots  []string `json:"availableSlots"`
	CreatedAt       int64    `json:"createdAt"`
	UpdatedAt       int64    `json:"updatedAt"`
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	slots := []string(u.AvailableSlots)
	if slots == nil {
		slots = []string{}
	}
	return UserSanitized{
		ID:              u.ID,
		LegacyID:        u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role.Wire(),
		Phone:           u.Phone,
		Address:         u.Address,
		Provider:        u.Provider,
		ProviderID:      u.ProviderID,
		ProfileImage:    u.ProfileImage,
		Specialization:  u.Specialization,
		Experience:      u.Experience,
		ConsultationFee: u.ConsultationFee,
		Rating:          u.Rating,
		PatientStories:  u.PatientStories,
		Clinic:          u.Clinic,
		Location:        u.Location,
		IsAvailable:     u.IsAvailable != nil && *u.IsAvailable,
		AvailableSlots:  slots,
		CreatedAt:       u.CreatedAt.UnixMilli(),
		UpdatedAt:       u.UpdatedAt.UnixMilli(),
	}
}

// UserSummary is the compact form embedded in appointments and records.
type UserSummary struct {
	ID             string `json:"id"`
	LegacyID       string `json:"_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	ProfileImage   string `json:"profileImage"`
	Specialization string `json:"specialization"`
	Clinic         string `json:"clinic"`
	Location       string `json:"location"`
	Role           string `json:"role"`
}

// Summarize returns nil for a missing user.
func Summarize(u *User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:             u.ID,
		LegacyID:       u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		ProfileImage:   u.ProfileImage,
		Specialization: u.Specialization,
		Clinic:         u.Clinic,
		Location:       u.Location,
		Role:           u.Role.Wire(),
	}
}

// DoctorListItem is one row of the doctor directory.
type DoctorListItem struct {
	ID              string   `json:"id"`
	LegacyID        string   `json:"_id"`
	Name            string   `json:"name"`
	Specialization  string   `json:"specialization"`
	Experience      string   `json:"experience"`
	Location        string   `json:"location"`
	Clinic          string   `json:"clinic"`
	ConsultationFee *float64 `json:"consultationFee"`
	Rating          *float64 `json:"rating"`
	PatientStories  *int     `json:"patientStories"`
	ProfileImage    string   `json:"profileImage"`
	IsAvailable     bool     `json:"isAvailable"`
}

func (u *User) DoctorListing() DoctorListItem {
	return DoctorListItem{
		ID:              u.ID,
		LegacyID:        u.ID,
		Name:            u.Name,
		Specialization:  u.Specialization,
		Experience:      u.Experience,
		Location:        u.Location,
		Clinic:          u.Clinic,
		ConsultationFee: u.ConsultationFee,
		Rating:          u.Rating,
		PatientStories:  u.PatientStories,
		ProfileImage:    u.ProfileImage,
		IsAvailable:     u.IsAvailable != nil && *u.IsAvailable,
	}
}

// AppointmentView is the client representation of an appointment.
type AppointmentView struct {
	ID                string       `json:"id"`
	LegacyID          string       `json:"_id"`
	PatientID         string       `json:"patientId"`
	DoctorID          string       `json:"doctorId"`
	Date              string       `json:"date"`
	Time              string       `json:"time"`
	Status            string       `json:"status"`
	Type              string       `json:"type"`
	Notes             string       `json:"notes"`
	Prescription      string       `json:"prescription"`
	ConsultationNotes string       `json:"consultationNotes"`
	CreatedAt         int64        `json:"createdAt"`
	UpdatedAt         int64        `json:"updatedAt"`
	Patient           *UserSummary `json:"patient"`
	Doctor            *UserSummary `json:"doctor"`
}

func (a *Appointment) View() AppointmentView {
	return AppointmentView{
		ID:                a.ID,
		LegacyID:          a.ID,
		PatientID:         a.PatientID,
		DoctorID:          a.DoctorID,
		Date:              isoTime(a.Date),
		Time:              a.Time,
		Status:            a.Status.Wire(),
		Type:              a.Type.Wire(),
		Notes:             a.Notes,
		Prescription:      a.Prescription,
		ConsultationNotes: a.ConsultationNotes,
		CreatedAt:         a.CreatedAt.UnixMilli(),
		UpdatedAt:         a.UpdatedAt.UnixMilli(),
		Patient:           Summarize(a.Patient),
		Doctor:            Summarize(a.Doctor),
	}
}

// RecordDoctor is the doctor block attached to a medical record.
type RecordDoctor struct {
	ID             string `json:"id"`
	LegacyID       string `json:"_id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

// MedicalRecordView is the client representation of a medical record.
type MedicalRecordView struct {
	ID            string        `json:"id"`
	LegacyID      string        `json:"_id"`
	PatientID     string        `json:"patientId"`
	DoctorID      string        `json:"doctorId"`
	AppointmentID *string       `json:"appointmentId"`
	Diagnosis     string        `json:"diagnosis"`
	Reports       []string      `json:"reports"`
	Prescription  string        `json:"prescription"`
	Notes         string        `json:"notes"`
	Date          string        `json:"date"`
	CreatedAt     int64         `json:"createdAt"`
	UpdatedAt     int64         `json:"updatedAt"`
	Doctor        *RecordDoctor `json:"doctor"`
	Patient       *UserSummary  `json:"patient"`
}

func (r *MedicalRecord) View() MedicalRecordView {
	reports := []string(r.Reports)
	if reports == nil {
		reports = []string{}
	}
	view := MedicalRecordView{
		ID:            r.ID,
		LegacyID:      r.ID,
		PatientID:     r.PatientID,
		DoctorID:      r.DoctorID,
		AppointmentID: r.AppointmentID,
		Diagnosis:     r.Diagnosis,
		Reports:       reports,
		Prescription:  r.Prescription,
		Notes:         r.Notes,
		Date:          isoTime(r.Date),
		CreatedAt:     r.CreatedAt.UnixMilli(),
		UpdatedAt:     r.UpdatedAt.UnixMilli(),
		Patient:       Summarize(r.Patient),
	}
	if r.Doctor != nil {
		view.Doctor = &RecordDoctor{
			ID:             r.Doctor.ID,
			LegacyID:       r.Doctor.ID,
			Name:           r.Doctor.Name,
			Specialization: r.Doctor.Specialization,
		}
	}
	return view
}

// NotificationView is the client representation of a notification.
type NotificationView struct {
	ID              string  `json:"id"`
	LegacyID        string  `json:"_id"`
	UserID          string  `json:"userId"`
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Message         string  `json:"message"`
	Read            bool    `json:"read"`
	AppointmentID   *string `json:"appointmentId"`
	MedicalRecordID *string `json:"medicalRecordId"`
	ActionURL       string  `json:"actionUrl"`
	CreatedAt       int64   `json:"createdAt"`
	ReadAt          *int64  `json:"readAt"`
}

func (n *Notification) View() NotificationView {
	return NotificationView{
		ID:              n.ID,
		LegacyID:        n.ID,
		UserID:          n.UserID,
		Type:            n.Type.Wire(),
		Title:           n.Title,
		Message:         n.Message,
		Read:            n.Read,
		AppointmentID:   n.AppointmentID,
		MedicalRecordID: n.MedicalRecordID,
		ActionURL:       n.ActionURL,
		CreatedAt:       n.CreatedAt.UnixMilli(),
		ReadAt:          millisPtr(n.ReadAt),
	}
}

// DepartmentView is the client representation of a department.
type DepartmentView struct {
	ID          string   `json:"id"`
	LegacyID    string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	DoctorIDs   []string `json:"doctorIds"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

func (d *Department) View() DepartmentView {
	ids := []string(d.DoctorIDs)
	if ids == nil {
		ids = []string{}
	}
	return DepartmentView{
		ID:          d.ID,
		LegacyID:    d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		DoctorIDs:   ids,
		CreatedAt:   d.CreatedAt.UnixMilli(),
		UpdatedAt:   d.UpdatedAt.UnixMilli(),
	}
}

// NewsView is the client representation of a news article.
type NewsView struct {
	ID          string `json:"id"`
	LegacyID    string `json:"_id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	Image       string `json:"image"`
	Published   bool   `json:"published"`
	PublishedAt *int64 `json:"publishedAt"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

func (n *News) View() NewsView {
	return NewsView{
		ID:          n.ID,
		LegacyID:    n.ID,
		Title:       n.Title,
		Category:    n.Category,
		Content:     n.Content,
		Author:      n.Author,
		Image:       n.Image,
		Published:   n.Published,
		PublishedAt: millisPtr(n.PublishedAt),
		CreatedAt:   n.CreatedAt.UnixMilli(),
		UpdatedAt:   n.UpdatedAt.UnixMilli(),
	}
}

// FAQView is the client representation of a FAQ entry.
type FAQView struct {
	ID        string `json:"id"`
	LegacyID  string `json:"_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Category  string `json:"category"`
	Order     *int   `json:"order"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (f *FAQ) View() FAQView {
	return FAQView{
		ID:        f.ID,
		LegacyID:  f.ID,
		Question:  f.Question,
		Answer:    f.Answer,
		Category:  f.Category,
		Order:     f.Order,
		CreatedAt: f.CreatedAt.UnixMilli(),
		UpdatedAt: f.UpdatedAt.UnixMilli(),
	}
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
