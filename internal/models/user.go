package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 10

// User represents a patient or doctor account
type User struct {
	BaseModel       `bson:",inline"`
	Name            string                      `gorm:"size:255;not null" json:"name" bson:"name"`
	Email           string                      `gorm:"uniqueIndex;size:255;not null" json:"email" bson:"email"`
	Password        string                      `gorm:"size:255" json:"-" bson:"password,omitempty"` // empty for social accounts
	Role            Role                        `gorm:"size:20;index;not null" json:"role" bson:"role"`
	Provider        string                      `gorm:"size:50" json:"provider,omitempty" bson:"provider,omitempty"`
	ProviderID      string                      `gorm:"size:255" json:"providerId,omitempty" bson:"providerId,omitempty"`
	Phone           string                      `gorm:"size:50" json:"phone" bson:"phone"`
	Address         string                      `gorm:"size:500" json:"address" bson:"address"`
	ProfileImage    string                      `gorm:"type:text" json:"profileImage" bson:"profileImage"`
	Specialization  string                      `gorm:"size:255;index" json:"specialization" bson:"specialization"`
	Experience      string                      `gorm:"size:255" json:"experience" bson:"experience"`
	ConsultationFee *float64                    `json:"consultationFee" bson:"consultationFee"`
	Rating          *float64                    `json:"rating" bson:"rating"`
	PatientStories  *int                        `json:"patientStories" bson:"patientStories"`
	Clinic          string                      `gorm:"size:255" json:"clinic" bson:"clinic"`
	Location        string                      `gorm:"size:255" json:"location" bson:"location"`
	IsAvailable     *bool                       `json:"isAvailable" bson:"isAvailable"`
	AvailableSlots  datatypes.JSONSlice[string] `json:"availableSlots" bson:"availableSlots"`
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password.
// Accounts without a stored hash never match.
func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// AcceptsBookings is false only when a doctor explicitly marked themselves unavailable.
func (u *User) AcceptsBookings() bool {
	return u.IsAvailable == nil || *u.IsAvailable
}

// DisplayName falls back to the given placeholder for a missing user.
func DisplayName(u *User, fallback string) string {
	if u == nil || u.Name == "" {
		return fallback
	}
	return u.Name
}
