package models

import (
	"time"
)

// RefreshToken is a server-side record of an issued refresh token. Tokens
// rotate on use; logout and password reset revoke them instead of deleting,
// so a replayed token fails cleanly.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
