package handlers

import (
	"os"

	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserHandler handles user management (admin operations).
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// GetUsers handles fetching all users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitizedUsers := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitizedUsers[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitizedUsers)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// DeleteUser handles deleting a user by ID (admin). The user's reviews,
// acceptances, photo, card and tokens go with them; each affected hospital's
// rating is recomputed in the same transaction, and requests still waiting on
// the user's acceptance reopen for other donors.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	// The photo file is removed after the transaction commits.
	var photo models.ProfilePhoto
	photoPath := ""
	if err := h.DB.First(&photo, "user_id = ?", userID).Error; err == nil {
		photoPath = photo.FilePath
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var affectedHospitals []string
		if err := tx.Model(&models.Review{}).
			Where("user_id = ?", userID).
			Distinct("hospital_id").
			Pluck("hospital_id", &affectedHospitals).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Review{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		for _, hospitalID := range affectedHospitals {
			if err := recomputeHospitalRating(tx, hospitalID); err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.RefreshToken{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.MedicalCard{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProfilePhoto{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		// Requests the user accepted but the hospital has not yet decided on
		// go back to posted so another donor can step in.
		if err := tx.Model(&models.BloodRequest{}).
			Where("accepted_by = ? AND status = ?", userID, models.RequestPendingApproval).
			Updates(map[string]interface{}{
				"accepted":    false,
				"accepted_by": "",
				"status":      models.RequestPosted,
			}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.AcceptedBloodRequest{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.HospitalAdminProfile{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", userID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	if photoPath != "" {
		if err := os.Remove(photoPath); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", photoPath).Warn("Failed to remove photo file")
		}
	}

	utils.Success(c, "User deleted successfully", nil)
}
