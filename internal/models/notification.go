package models

import (
	"time"
)

// Notification is an advisory message addressed to a single user
type Notification struct {
	BaseModel       `bson:",inline"`
	UserID          string           `gorm:"size:36;index:idx_notifications_user_read,priority:1;not null" json:"userId" bson:"userId"`
	Type            NotificationType `gorm:"size:40;not null" json:"type" bson:"type"`
	Title           string           `gorm:"size:255;not null" json:"title" bson:"title"`
	Message         string           `gorm:"type:text;not null" json:"message" bson:"message"`
	Read            bool             `gorm:"column:is_read;index:idx_notifications_user_read,priority:2;default:false" json:"read" bson:"read"`
	AppointmentID   *string          `gorm:"size:36;index" json:"appointmentId" bson:"appointmentId"`
	MedicalRecordID *string          `gorm:"size:36" json:"medicalRecordId" bson:"medicalRecordId"`
	ActionURL       string           `gorm:"size:255" json:"actionUrl" bson:"actionUrl"`
	ReadAt          *time.Time       `json:"readAt" bson:"readAt"`
}
