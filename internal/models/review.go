package models

// Review represents a user's rating of a hospital.
// One review per (hospital, user) pair, enforced by the compound index.
type Review struct {
	BaseModel
	HospitalID   string `gorm:"size:36;not null;uniqueIndex:idx_hospital_user" json:"hospitalId"`
	UserID       string `gorm:"size:36;not null;uniqueIndex:idx_hospital_user" json:"userId"`
	Rating       int    `gorm:"not null" json:"rating"`
	Comment      string `gorm:"type:text" json:"comment"`
	HelpfulVotes int    `gorm:"default:0" json:"helpfulVotes"`

	// Relations
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"-"`
	User     User     `gorm:"foreignKey:UserID" json:"-"`
}
