package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"emcon-server/internal/middleware"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProfilePhotoHandler handles profile picture upload and removal.
type ProfilePhotoHandler struct {
	DB        *gorm.DB
	UploadDir string
}

// NewProfilePhotoHandler creates a new ProfilePhotoHandler.
func NewProfilePhotoHandler(db *gorm.DB, uploadDir string) *ProfilePhotoHandler {
	return &ProfilePhotoHandler{DB: db, UploadDir: uploadDir}
}

const maxPhotoSize = 5 << 20 // 5 MiB

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadProfilePhoto stores the uploaded file on disk and upserts the
// metadata row. A previous photo is replaced, file included.
func (h *ProfilePhotoHandler) UploadProfilePhoto(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		utils.BadRequest(c, "A 'photo' file field is required: "+err.Error())
		return
	}
	if file.Size > maxPhotoSize {
		utils.BadRequest(c, "Photo exceeds the 5MB size limit")
		return
	}

	mimeType := file.Header.Get("Content-Type")
	ext, ok := allowedPhotoTypes[strings.ToLower(mimeType)]
	if !ok {
		utils.BadRequest(c, "Unsupported photo type: "+mimeType)
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		utils.InternalServerError(c, "Failed to prepare upload directory: "+err.Error())
		return
	}

	storedName := uuid.New().String() + ext
	storedPath := filepath.Join(h.UploadDir, storedName)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		utils.InternalServerError(c, "Failed to store photo: "+err.Error())
		return
	}

	var photo models.ProfilePhoto
	err = h.DB.First(&photo, "user_id = ?", userID).Error
	isNew := err == gorm.ErrRecordNotFound
	if err != nil && !isNew {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	oldPath := photo.FilePath
	photo.UserID = userID
	photo.FileName = file.Filename
	photo.FilePath = storedPath
	photo.MimeType = mimeType
	photo.Size = file.Size

	if isNew {
		err = h.DB.Create(&photo).Error
	} else {
		err = h.DB.Save(&photo).Error
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to save photo metadata: "+err.Error())
		return
	}

	if oldPath != "" && oldPath != storedPath {
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", oldPath).Warn("Failed to remove replaced photo")
		}
	}

	utils.Created(c, "Profile photo uploaded successfully", photo)
}

// GetProfilePhoto serves the calling user's photo file.
func (h *ProfilePhotoHandler) GetProfilePhoto(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var photo models.ProfilePhoto
	if err := h.DB.First(&photo, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "No profile photo on file")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	c.Header("Content-Type", photo.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", photo.FileName))
	c.File(photo.FilePath)
}

// DeleteProfilePhoto removes the metadata row and the file on disk.
func (h *ProfilePhotoHandler) DeleteProfilePhoto(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var photo models.ProfilePhoto
	if err := h.DB.First(&photo, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "No profile photo on file")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&photo).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete photo: "+err.Error())
		return
	}
	if err := os.Remove(photo.FilePath); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", photo.FilePath).Warn("Failed to remove photo file")
	}

	utils.Success(c, "Profile photo deleted successfully", nil)
}
