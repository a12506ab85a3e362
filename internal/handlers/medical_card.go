package handlers

import (
	"time"

	"emcon-server/internal/middleware"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MedicalCardHandler handles the per-user digital medical card.
type MedicalCardHandler struct {
	DB *gorm.DB
}

// NewMedicalCardHandler creates a new MedicalCardHandler.
func NewMedicalCardHandler(db *gorm.DB) *MedicalCardHandler {
	return &MedicalCardHandler{DB: db}
}

// GetMedicalCard fetches the calling user's card.
func (h *MedicalCardHandler) GetMedicalCard(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var card models.MedicalCard
	if err := h.DB.First(&card, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "No medical card on file")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Medical card fetched successfully", card)
}

// UpsertMedicalCardRequest represents the medical card submission body.
type UpsertMedicalCardRequest struct {
	FullName              string     `json:"fullName" binding:"required"`
	DateOfBirth           *time.Time `json:"dateOfBirth"`
	Gender                string     `json:"gender"`
	BloodType             string     `json:"bloodType"`
	Allergies             string     `json:"allergies"`
	ChronicConditions     string     `json:"chronicConditions"`
	Medications           string     `json:"medications"`
	EmergencyContactName  string     `json:"emergencyContactName"`
	EmergencyContactPhone string     `json:"emergencyContactPhone"`
	InsuranceProvider     string     `json:"insuranceProvider"`
	InsuranceNumber       string     `json:"insuranceNumber"`
	PrimaryPhysician      string     `json:"primaryPhysician"`
}

// UpsertMedicalCard creates the calling user's card on first submission and
// updates it thereafter.
func (h *MedicalCardHandler) UpsertMedicalCard(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpsertMedicalCardRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.BloodType != "" && !models.IsValidBloodType(req.BloodType) {
		utils.BadRequest(c, "Invalid blood type")
		return
	}

	var card models.MedicalCard
	err := h.DB.First(&card, "user_id = ?", userID).Error
	isNew := err == gorm.ErrRecordNotFound
	if err != nil && !isNew {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	card.UserID = userID
	card.FullName = req.FullName
	card.DateOfBirth = req.DateOfBirth
	card.Gender = req.Gender
	card.BloodType = req.BloodType
	card.Allergies = req.Allergies
	card.ChronicConditions = req.ChronicConditions
	card.Medications = req.Medications
	card.EmergencyContactName = req.EmergencyContactName
	card.EmergencyContactPhone = req.EmergencyContactPhone
	card.InsuranceProvider = req.InsuranceProvider
	card.InsuranceNumber = req.InsuranceNumber
	card.PrimaryPhysician = req.PrimaryPhysician

	if isNew {
		if err := h.DB.Create(&card).Error; err != nil {
			utils.InternalServerError(c, "Failed to create medical card: "+err.Error())
			return
		}
		utils.Created(c, "Medical card created successfully", card)
		return
	}

	if err := h.DB.Save(&card).Error; err != nil {
		utils.InternalServerError(c, "Failed to update medical card: "+err.Error())
		return
	}
	utils.Success(c, "Medical card updated successfully", card)
}
