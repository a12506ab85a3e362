package handlers

import (
	"emcon-server/internal/config"
	"emcon-server/internal/middleware"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HospitalAdminHandler handles hospital admin applications and their
// hospital-scoped operations.
type HospitalAdminHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer *utils.Mailer
}

// NewHospitalAdminHandler creates a new HospitalAdminHandler.
func NewHospitalAdminHandler(db *gorm.DB, cfg *config.Config, mailer *utils.Mailer) *HospitalAdminHandler {
	return &HospitalAdminHandler{DB: db, Cfg: cfg, Mailer: mailer}
}

// ApplyRequest represents a hospital admin application.
type ApplyRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	HospitalID      string `json:"hospitalId" binding:"required"`
}

// Apply registers a hospital admin account in the pending state. The account
// cannot log in until an admin approves the application.
func (h *HospitalAdminHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.Password != req.ConfirmPassword {
		utils.BadRequest(c, "Password confirmation does not match")
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", req.HospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.RoleHospitalAdmin,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.HospitalAdminProfile{
			UserID:     user.ID,
			HospitalID: req.HospitalID,
			Status:     models.ApprovalPending,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create application: "+err.Error())
		return
	}

	utils.Created(c, "Application submitted. You will be able to log in once approved.", user.Sanitize())
}

// ApplicationView pairs an application with the applicant and hospital.
type ApplicationView struct {
	models.HospitalAdminProfile
	User     models.UserSanitized `json:"user"`
	Hospital models.Hospital      `json:"hospital"`
}

// ListApplications lists hospital admin applications (admin), filterable by
// status.
func (h *HospitalAdminHandler) ListApplications(c *gin.Context) {
	query := h.DB.Model(&models.HospitalAdminProfile{}).
		Preload("User").Preload("Hospital")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var profiles []models.HospitalAdminProfile
	if err := query.Order("created_at DESC").Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch applications: "+err.Error())
		return
	}

	views := make([]ApplicationView, len(profiles))
	for i, p := range profiles {
		views[i] = ApplicationView{
			HospitalAdminProfile: p,
			User:                 p.User.Sanitize(),
			Hospital:             p.Hospital,
		}
	}
	utils.Success(c, "Applications fetched successfully", views)
}

func (h *HospitalAdminHandler) setApplicationStatus(c *gin.Context, status models.ApprovalStatus, message string) {
	applicationID := c.Param("id")

	var profile models.HospitalAdminProfile
	if err := h.DB.Preload("User").First(&profile, "id = ?", applicationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Application not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if profile.Status != models.ApprovalPending {
		utils.BadRequest(c, "Application has already been reviewed")
		return
	}

	profile.Status = status
	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update application: "+err.Error())
		return
	}

	subject := "Your EMCON hospital admin application"
	body := "Your hospital admin application has been " + string(status) + "."
	if err := h.Mailer.Send(profile.User.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("email", profile.User.Email).Warn("Failed to send application status email")
	}

	utils.Success(c, message, profile)
}

// ApproveApplication approves a pending application (admin).
func (h *HospitalAdminHandler) ApproveApplication(c *gin.Context) {
	h.setApplicationStatus(c, models.ApprovalApproved, "Application approved")
}

// RejectApplication rejects a pending application (admin).
func (h *HospitalAdminHandler) RejectApplication(c *gin.Context) {
	h.setApplicationStatus(c, models.ApprovalRejected, "Application rejected")
}

// HospitalDashboard summarizes the managed hospital's blood requests.
type HospitalDashboard struct {
	Hospital       models.Hospital       `json:"hospital"`
	TotalRequests  int64                 `json:"totalRequests"`
	OpenRequests   int64                 `json:"openRequests"`
	ByBloodType    []BloodTypeSummary    `json:"byBloodType"`
	RecentRequests []models.BloodRequest `json:"recentRequests"`
}

// Dashboard returns the calling hospital admin's request summary: totals and
// a per-blood-type breakdown with pending/accepted sub-counts.
func (h *HospitalAdminHandler) Dashboard(c *gin.Context) {
	profile, ok := middleware.GetAdminProfileFromContext(c)
	if !ok {
		utils.Forbidden(c, "No hospital admin profile found for this account")
		return
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", profile.HospitalID).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch hospital: "+err.Error())
		return
	}

	var requests []models.BloodRequest
	if err := h.DB.Where("hospital_id = ?", profile.HospitalID).
		Order("date_posted DESC").Find(&requests).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch blood requests: "+err.Error())
		return
	}

	dashboard := HospitalDashboard{
		Hospital:      hospital,
		TotalRequests: int64(len(requests)),
		ByBloodType:   GroupRequestsByBloodType(requests),
	}
	for _, r := range requests {
		if r.Status == models.RequestPosted {
			dashboard.OpenRequests++
		}
	}
	if len(requests) > 5 {
		dashboard.RecentRequests = requests[:5]
	} else {
		dashboard.RecentRequests = requests
	}

	utils.Success(c, "Dashboard fetched successfully", dashboard)
}

// UpdateOwnHospital lets an approved hospital admin update the profile of the
// hospital they manage.
func (h *HospitalAdminHandler) UpdateOwnHospital(c *gin.Context) {
	profile, ok := middleware.GetAdminProfileFromContext(c)
	if !ok {
		utils.Forbidden(c, "No hospital admin profile found for this account")
		return
	}
	if !profile.CanEditProfile {
		utils.Forbidden(c, "Your account is not permitted to edit the hospital profile")
		return
	}

	var req UpdateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", profile.HospitalID).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch hospital: "+err.Error())
		return
	}

	req.apply(&hospital)

	if err := h.DB.Save(&hospital).Error; err != nil {
		utils.InternalServerError(c, "Failed to update hospital: "+err.Error())
		return
	}

	utils.Success(c, "Hospital updated successfully", hospital)
}
