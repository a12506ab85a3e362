package handlers

import (
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HospitalHandler handles hospital profile management (admin operations).
type HospitalHandler struct {
	DB *gorm.DB
}

// NewHospitalHandler creates a new HospitalHandler.
func NewHospitalHandler(db *gorm.DB) *HospitalHandler {
	return &HospitalHandler{DB: db}
}

// CreateHospitalRequest represents the request body for creating a hospital.
type CreateHospitalRequest struct {
	Name           string  `json:"name" binding:"required"`
	Address        string  `json:"address" binding:"required"`
	City           string  `json:"city" binding:"required"`
	Latitude       float64 `json:"latitude" binding:"required"`
	Longitude      float64 `json:"longitude" binding:"required"`
	ContactPhone   string  `json:"contactPhone"`
	ContactEmail   string  `json:"contactEmail" binding:"omitempty,email"`
	ICUBeds        int     `json:"icuBeds"`
	Ventilators    int     `json:"ventilators"`
	HasBloodBank   bool    `json:"hasBloodBank"`
	MedicalImaging string  `json:"medicalImaging"`
	ImagingCosts   string  `json:"imagingCosts"`
	Insurances     string  `json:"insurances"`
	Services       string  `json:"services"`
}

// CreateHospital handles creating a new hospital (admin).
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var req CreateHospitalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hospital := models.Hospital{
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		ContactPhone:   req.ContactPhone,
		ContactEmail:   req.ContactEmail,
		ICUBeds:        req.ICUBeds,
		Ventilators:    req.Ventilators,
		HasBloodBank:   req.HasBloodBank,
		MedicalImaging: req.MedicalImaging,
		ImagingCosts:   req.ImagingCosts,
		Insurances:     req.Insurances,
		Services:       req.Services,
	}

	if err := h.DB.Create(&hospital).Error; err != nil {
		utils.InternalServerError(c, "Failed to create hospital: "+err.Error())
		return
	}

	utils.Created(c, "Hospital created successfully", hospital)
}

// GetHospitals handles fetching all hospitals.
func (h *HospitalHandler) GetHospitals(c *gin.Context) {
	var hospitals []models.Hospital
	if err := h.DB.Order("ratings DESC, name ASC").Find(&hospitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch hospitals: "+err.Error())
		return
	}
	utils.Success(c, "Hospitals fetched successfully", hospitals)
}

// GetHospitalByID handles fetching a single hospital by ID.
func (h *HospitalHandler) GetHospitalByID(c *gin.Context) {
	hospitalID := c.Param("id")

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Hospital fetched successfully", hospital)
}

// UpdateHospitalRequest represents the request body for updating a hospital.
// Pointer fields distinguish "not supplied" from zero values.
type UpdateHospitalRequest struct {
	Name           *string  `json:"name"`
	Address        *string  `json:"address"`
	City           *string  `json:"city"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	ContactPhone   *string  `json:"contactPhone"`
	ContactEmail   *string  `json:"contactEmail"`
	ICUBeds        *int     `json:"icuBeds"`
	Ventilators    *int     `json:"ventilators"`
	HasBloodBank   *bool    `json:"hasBloodBank"`
	MedicalImaging *string  `json:"medicalImaging"`
	ImagingCosts   *string  `json:"imagingCosts"`
	Insurances     *string  `json:"insurances"`
	Services       *string  `json:"services"`
}

func (req *UpdateHospitalRequest) apply(hospital *models.Hospital) {
	if req.Name != nil {
		hospital.Name = *req.Name
	}
	if req.Address != nil {
		hospital.Address = *req.Address
	}
	if req.City != nil {
		hospital.City = *req.City
	}
	if req.Latitude != nil {
		hospital.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		hospital.Longitude = *req.Longitude
	}
	if req.ContactPhone != nil {
		hospital.ContactPhone = *req.ContactPhone
	}
	if req.ContactEmail != nil {
		hospital.ContactEmail = *req.ContactEmail
	}
	if req.ICUBeds != nil {
		hospital.ICUBeds = *req.ICUBeds
	}
	if req.Ventilators != nil {
		hospital.Ventilators = *req.Ventilators
	}
	if req.HasBloodBank != nil {
		hospital.HasBloodBank = *req.HasBloodBank
	}
	if req.MedicalImaging != nil {
		hospital.MedicalImaging = *req.MedicalImaging
	}
	if req.ImagingCosts != nil {
		hospital.ImagingCosts = *req.ImagingCosts
	}
	if req.Insurances != nil {
		hospital.Insurances = *req.Insurances
	}
	if req.Services != nil {
		hospital.Services = *req.Services
	}
}

// UpdateHospital handles updating a hospital by ID (admin).
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	hospitalID := c.Param("id")

	var req UpdateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	req.apply(&hospital)

	if err := h.DB.Save(&hospital).Error; err != nil {
		utils.InternalServerError(c, "Failed to update hospital: "+err.Error())
		return
	}

	utils.Success(c, "Hospital updated successfully", hospital)
}

// DeleteHospital handles deleting a hospital by ID (admin). Reviews and blood
// requests that reference the hospital go with it.
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	hospitalID := c.Param("id")

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Review{}, "hospital_id = ?", hospitalID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.BloodRequest{}, "hospital_id = ?", hospitalID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Hospital{}, "id = ?", hospitalID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete hospital: "+err.Error())
		return
	}

	utils.Success(c, "Hospital deleted successfully", nil)
}
