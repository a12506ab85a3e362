package models

// ApprovalStatus represents the review state of a hospital admin application
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// HospitalAdminProfile links a hospitaladmin user to the hospital they manage.
// Login is refused until Status is approved.
type HospitalAdminProfile struct {
	BaseModel
	UserID            string         `gorm:"size:36;uniqueIndex" json:"userId"`
	HospitalID        string         `gorm:"size:36;index" json:"hospitalId"`
	Status            ApprovalStatus `gorm:"size:20;default:'pending'" json:"status"`
	CanManageRequests bool           `gorm:"default:true" json:"canManageRequests"`
	CanEditProfile    bool           `gorm:"default:true" json:"canEditProfile"`

	// Relations
	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"-"`
}
