package models

import (
	"time"
)

// UrgencyLevel represents the priority of a blood request
type UrgencyLevel string

const (
	UrgencyNormal   UrgencyLevel = "Normal"
	UrgencyUrgent   UrgencyLevel = "Urgent"
	UrgencyCritical UrgencyLevel = "Critical"
)

// RequestStatus represents the lifecycle state of a blood request
type RequestStatus string

const (
	RequestPosted          RequestStatus = "posted"
	RequestPendingApproval RequestStatus = "pending-approval"
	RequestApproved        RequestStatus = "approved"
)

// BloodRequest represents a request for blood donors at a hospital
type BloodRequest struct {
	BaseModel
	RequestID       string        `gorm:"size:40;uniqueIndex;not null" json:"requestId"`
	HospitalID      string        `gorm:"size:36;index" json:"hospitalId"`
	BloodType       string        `gorm:"size:5;not null;index" json:"bloodType"`
	Units           int           `gorm:"not null" json:"units"`
	Urgency         UrgencyLevel  `gorm:"size:20;default:'Normal'" json:"urgency"`
	Location        string        `gorm:"size:255" json:"location"`
	DatePosted      time.Time     `json:"datePosted"`
	Accepted        bool          `gorm:"default:false" json:"accepted"`
	AcceptedBy      string        `gorm:"size:36" json:"acceptedBy,omitempty"`
	Status          RequestStatus `gorm:"size:20;default:'posted';index" json:"status"`
	RejectionReason string        `gorm:"size:500" json:"rejectionReason,omitempty"`

	// Relations
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"-"`
}

// AcceptedBloodRequest records a donor's commitment to a request together
// with a snapshot of their medical card at acceptance time.
type AcceptedBloodRequest struct {
	BaseModel
	BloodRequestID      string    `gorm:"size:36;index" json:"bloodRequestId"`
	UserID              string    `gorm:"size:36;index" json:"userId"`
	AcceptedAt          time.Time `json:"acceptedAt"`
	MedicalCardSnapshot string    `gorm:"type:text" json:"-"`

	// Relations
	BloodRequest BloodRequest `gorm:"foreignKey:BloodRequestID" json:"-"`
	User         User         `gorm:"foreignKey:UserID" json:"-"`
}

// ValidBloodTypes lists the accepted ABO/Rh groups.
var ValidBloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// IsValidBloodType reports whether bt is a recognized blood group.
func IsValidBloodType(bt string) bool {
	for _, v := range ValidBloodTypes {
		if bt == v {
			return true
		}
	}
	return false
}

// IsValidUrgency reports whether u is a recognized urgency level.
func IsValidUrgency(u UrgencyLevel) bool {
	switch u {
	case UrgencyNormal, UrgencyUrgent, UrgencyCritical:
		return true
	}
	return false
}
