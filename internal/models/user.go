package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleHospitalAdmin Role = "hospitaladmin"
	RoleUser          Role = "user"
)

// User represents a principal in the system. Admins and hospital admins are
// the same credential type parameterized by Role; hospital-admin specific
// state lives in HospitalAdminProfile.
type User struct {
	BaseModel
	Email                   string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password                string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName               string     `gorm:"size:100" json:"firstName"`
	LastName                string     `gorm:"size:100" json:"lastName"`
	Role                    Role       `gorm:"size:20;default:'user'" json:"role"`
	BloodType               string     `gorm:"size:5" json:"bloodType,omitempty"`
	PhoneNumber             string     `json:"phoneNumber,omitempty"`
	Address                 string     `json:"address,omitempty"`
	IsVerified              bool       `gorm:"default:false" json:"isVerified"`
	VerificationTokenHash   string     `gorm:"size:64;index" json:"-"`
	VerificationTokenExpiry *time.Time `json:"-"`
	ResetTokenHash          string     `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry        *time.Time `json:"-"`

	// Relations (not always preloaded)
	RefreshTokens  []RefreshToken         `gorm:"foreignKey:UserID" json:"-"`
	Reviews        []Review               `gorm:"foreignKey:UserID" json:"-"`
	MedicalCard    *MedicalCard           `gorm:"foreignKey:UserID" json:"-"`
	ProfilePhoto   *ProfilePhoto          `gorm:"foreignKey:UserID" json:"-"`
	AdminProfile   *HospitalAdminProfile  `gorm:"foreignKey:UserID" json:"-"`
	AcceptedBloods []AcceptedBloodRequest `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Role        Role      `json:"role"`
	BloodType   string    `json:"bloodType,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Address     string    `json:"address,omitempty"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		BloodType:   u.BloodType,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
