package models

import (
	"time"

	"gorm.io/datatypes"
)

// MedicalRecord represents the outcome of a consultation for a patient
type MedicalRecord struct {
	BaseModel     `bson:",inline"`
	PatientID     string                      `gorm:"size:36;index;not null" json:"patientId" bson:"patientId"`
	DoctorID      string                      `gorm:"size:36;index;not null" json:"doctorId" bson:"doctorId"`
	AppointmentID *string                     `gorm:"size:36;index" json:"appointmentId" bson:"appointmentId"`
	Diagnosis     string                      `gorm:"type:text;not null" json:"diagnosis" bson:"diagnosis"`
	Reports       datatypes.JSONSlice[string] `json:"reports" bson:"reports"` // file URLs
	Prescription  string                      `gorm:"type:text" json:"prescription" bson:"prescription"`
	Notes         string                      `gorm:"type:text" json:"notes" bson:"notes"`
	Date          time.Time                   `gorm:"index" json:"date" bson:"date"`

	// Relations
	Patient *User `gorm:"foreignKey:PatientID" json:"-" bson:"-"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"-" bson:"-"`
}

// StoredFile holds an uploaded blob such as a profile picture
type StoredFile struct {
	BaseModel   `bson:",inline"`
	OwnerID     string `gorm:"size:36;index;not null" json:"ownerId" bson:"ownerId"`
	FileName    string `gorm:"not null" json:"fileName" bson:"fileName"`
	ContentType string `gorm:"size:255;not null" json:"contentType" bson:"contentType"`
	Size        int64  `json:"size" bson:"size"`
	Data        []byte `gorm:"not null" json:"-" bson:"data"`
}
