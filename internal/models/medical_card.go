package models

import (
	"time"
)

// MedicalCard is a user's digital medical card. One per user; the first POST
// creates it and later submissions upsert.
type MedicalCard struct {
	BaseModel
	UserID                string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	FullName              string     `gorm:"size:200" json:"fullName"`
	DateOfBirth           *time.Time `json:"dateOfBirth,omitempty"`
	Gender                string     `gorm:"size:20" json:"gender,omitempty"`
	BloodType             string     `gorm:"size:5" json:"bloodType,omitempty"`
	Allergies             string     `gorm:"size:500" json:"allergies,omitempty"`
	ChronicConditions     string     `gorm:"size:500" json:"chronicConditions,omitempty"`
	Medications           string     `gorm:"size:500" json:"medications,omitempty"`
	EmergencyContactName  string     `gorm:"size:200" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string     `gorm:"size:30" json:"emergencyContactPhone,omitempty"`
	InsuranceProvider     string     `gorm:"size:200" json:"insuranceProvider,omitempty"`
	InsuranceNumber       string     `gorm:"size:100" json:"insuranceNumber,omitempty"`
	PrimaryPhysician      string     `gorm:"size:200" json:"primaryPhysician,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
