package handlers

import (
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler serves the super-admin dashboard.
type DashboardHandler struct {
	DB *gorm.DB
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

const recentLimit = 5

// AdminDashboard aggregates system-wide counts and the most recent entries
// of each collection. Read-only; no write side effects.
type AdminDashboard struct {
	UserCount         int64                  `json:"userCount"`
	HospitalCount     int64                  `json:"hospitalCount"`
	BloodRequestCount int64                  `json:"bloodRequestCount"`
	ReviewCount       int64                  `json:"reviewCount"`
	RecentUsers       []models.UserSanitized `json:"recentUsers"`
	RecentHospitals   []models.Hospital      `json:"recentHospitals"`
	RecentRequests    []models.BloodRequest  `json:"recentRequests"`
	RecentReviews     []models.Review        `json:"recentReviews"`
}

// GetDashboard handles GET /admin/dashboard.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	var dashboard AdminDashboard

	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.User{}, &dashboard.UserCount},
		{&models.Hospital{}, &dashboard.HospitalCount},
		{&models.BloodRequest{}, &dashboard.BloodRequestCount},
		{&models.Review{}, &dashboard.ReviewCount},
	}
	for _, item := range counts {
		if err := h.DB.Model(item.model).Count(item.dst).Error; err != nil {
			utils.InternalServerError(c, "Failed to aggregate counts: "+err.Error())
			return
		}
	}

	var users []models.User
	if err := h.DB.Order("created_at DESC").Limit(recentLimit).Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch recent users: "+err.Error())
		return
	}
	dashboard.RecentUsers = make([]models.UserSanitized, len(users))
	for i, u := range users {
		dashboard.RecentUsers[i] = u.Sanitize()
	}

	if err := h.DB.Order("created_at DESC").Limit(recentLimit).Find(&dashboard.RecentHospitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch recent hospitals: "+err.Error())
		return
	}
	if err := h.DB.Order("date_posted DESC").Limit(recentLimit).Find(&dashboard.RecentRequests).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch recent blood requests: "+err.Error())
		return
	}
	if err := h.DB.Order("created_at DESC").Limit(recentLimit).Find(&dashboard.RecentReviews).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch recent reviews: "+err.Error())
		return
	}

	utils.Success(c, "Dashboard fetched successfully", dashboard)
}
