package models

import (
	"time"
)

// RefreshToken represents a JWT refresh token in the database
type RefreshToken struct {
	BaseModel `bson:",inline"`
	UserID    string    `gorm:"size:36;index" json:"userId" bson:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-" bson:"token"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked" bson:"isRevoked"`
}

// Active reports whether the token can still be exchanged at the given instant.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.IsRevoked && t.ExpiresAt.After(now)
}
