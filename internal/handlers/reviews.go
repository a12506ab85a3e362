package handlers

import (
	"math"
	"strings"

	"emcon-server/internal/cache"
	"emcon-server/internal/middleware"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReviewHandler handles hospital reviews and rating recomputation.
type ReviewHandler struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(db *gorm.DB, redisClient *redis.Client) *ReviewHandler {
	return &ReviewHandler{DB: db, Redis: redisClient}
}

// AverageRating computes the arithmetic mean of ratings rounded to one
// decimal. An empty slice yields 0.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10
}

// recomputeHospitalRating rewrites the hospital's stored rating and review
// count from the review rows. Must run inside the same transaction as the
// review write so the aggregate can never drift.
func recomputeHospitalRating(tx *gorm.DB, hospitalID string) error {
	var ratings []int
	if err := tx.Model(&models.Review{}).
		Where("hospital_id = ?", hospitalID).
		Pluck("rating", &ratings).Error; err != nil {
		return err
	}
	return tx.Model(&models.Hospital{}).
		Where("id = ?", hospitalID).
		Updates(map[string]interface{}{
			"ratings":      AverageRating(ratings),
			"review_count": len(ratings),
		}).Error
}

func (h *ReviewHandler) invalidateCountCache(c *gin.Context) {
	if h.Redis == nil {
		return
	}
	if err := cache.InvalidateReviewCounts(c.Request.Context(), h.Redis); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate review count cache")
	}
}

// GetReviews handles listing reviews, filterable by hospitalId.
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	query := h.DB.Model(&models.Review{})
	if hospitalID := c.Query("hospitalId"); hospitalID != "" {
		query = query.Where("hospital_id = ?", hospitalID)
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC").Find(&reviews).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch reviews: "+err.Error())
		return
	}
	utils.Success(c, "Reviews fetched successfully", reviews)
}

// CreateReviewRequest represents the request body for posting a review.
type CreateReviewRequest struct {
	HospitalID string `json:"hospitalId" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
}

// CreateReview posts a review and recomputes the hospital's rating in the
// same transaction. One review per (hospital, user) pair.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateReviewRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.BadRequest(c, "Rating must be between 1 and 5")
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

	review := models.Review{
		HospitalID: req.HospitalID,
		UserID:     userID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeHospitalRating(tx, req.HospitalID)
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			utils.Conflict(c, "You have already reviewed this hospital")
		} else {
			utils.InternalServerError(c, "Failed to create review: "+err.Error())
		}
		return
	}

	h.invalidateCountCache(c)
	utils.Created(c, "Review created successfully", review)
}

// DeleteReview removes a review (owner or admin) and recomputes the rating.
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID := c.Param("id")
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var review models.Review
	if err := h.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Review not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if review.UserID != userID && role != models.RoleAdmin {
		utils.Forbidden(c, "You can only delete your own reviews")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeHospitalRating(tx, review.HospitalID)
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete review: "+err.Error())
		return
	}

	h.invalidateCountCache(c)
	utils.Success(c, "Review deleted successfully", nil)
}

// VoteHelpful increments a review's helpful-vote count.
func (h *ReviewHandler) VoteHelpful(c *gin.Context) {
	reviewID := c.Param("id")

	res := h.DB.Model(&models.Review{}).
		Where("id = ?", reviewID).
		Update("helpful_votes", gorm.Expr("helpful_votes + 1"))
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to record vote: "+res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Review not found")
		return
	}

	var review models.Review
	if err := h.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	utils.Success(c, "Vote recorded", review)
}

// isDuplicateKeyError detects unique-index violations across GORM and the
// MySQL driver.
func isDuplicateKeyError(err error) bool {
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "duplicate key")
}
