package models

import (
	"time"
)

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel         `bson:",inline"`
	PatientID         string            `gorm:"size:36;index;not null" json:"patientId" bson:"patientId"`
	DoctorID          string            `gorm:"size:36;index;not null" json:"doctorId" bson:"doctorId"`
	Date              time.Time         `gorm:"index" json:"date" bson:"date"`
	Time              string            `gorm:"size:20" json:"time" bson:"time"`
	Status            AppointmentStatus `gorm:"size:20;index;default:'PENDING'" json:"status" bson:"status"`
	Type              AppointmentType   `gorm:"size:20" json:"type" bson:"type"`
	Notes             string            `gorm:"type:text" json:"notes" bson:"notes"`
	ConsultationNotes string            `gorm:"type:text" json:"consultationNotes" bson:"consultationNotes"`
	Prescription      string            `gorm:"type:text" json:"prescription" bson:"prescription"`

	// Relations (not always preloaded)
	Patient *User `gorm:"foreignKey:PatientID" json:"-" bson:"-"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"-" bson:"-"`
}

// DisplayDate renders the appointment day the way notifications quote it.
func (a *Appointment) DisplayDate() string {
	return a.Date.UTC().Format("1/2/2006")
}

// ParseAppointmentDate accepts a calendar date or a full RFC 3339 timestamp.
func ParseAppointmentDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
