package models

// ProfilePhoto holds metadata for a user's uploaded profile picture.
// The file itself lives on disk under the configured upload directory;
// deleting the photo removes both the row and the file.
type ProfilePhoto struct {
	BaseModel
	UserID   string `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	FileName string `gorm:"size:255;not null" json:"fileName"`
	FilePath string `gorm:"size:500;not null" json:"-"`
	MimeType string `gorm:"size:100" json:"mimeType"`
	Size     int64  `json:"size"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
