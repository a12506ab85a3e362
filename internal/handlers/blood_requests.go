package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"emcon-server/internal/middleware"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BloodRequestHandler handles the blood request lifecycle.
type BloodRequestHandler struct {
	DB *gorm.DB
}

// NewBloodRequestHandler creates a new BloodRequestHandler.
func NewBloodRequestHandler(db *gorm.DB) *BloodRequestHandler {
	return &BloodRequestHandler{DB: db}
}

// errAlreadyAccepted signals a lost compare-and-set on accept.
var errAlreadyAccepted = errors.New("blood request already accepted")

// NewRequestID generates a human-readable unique request identifier.
func NewRequestID() string {
	return "BR-" + strings.ToUpper(uuid.New().String()[:8])
}

// CreateBloodRequestRequest represents the request body for posting a request.
type CreateBloodRequestRequest struct {
	HospitalID string              `json:"hospitalId" binding:"required"`
	BloodType  string              `json:"bloodType" binding:"required"`
	Units      int                 `json:"units" binding:"required,min=1"`
	Urgency    models.UrgencyLevel `json:"urgency"`
	Location   string              `json:"location"`
}

func (req *CreateBloodRequestRequest) validate() error {
	if !models.IsValidBloodType(req.BloodType) {
		return fmt.Errorf("invalid blood type: %q", req.BloodType)
	}
	if req.Urgency != "" && !models.IsValidUrgency(req.Urgency) {
		return fmt.Errorf("invalid urgency level: %q", req.Urgency)
	}
	if req.Units < 1 {
		return fmt.Errorf("units must be at least 1")
	}
	return nil
}

func (req *CreateBloodRequestRequest) toModel() models.BloodRequest {
	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}
	return models.BloodRequest{
		RequestID:  NewRequestID(),
		HospitalID: req.HospitalID,
		BloodType:  req.BloodType,
		Units:      req.Units,
		Urgency:    urgency,
		Location:   req.Location,
		DatePosted: time.Now(),
		Status:     models.RequestPosted,
	}
}

// CanPostForHospital reports whether the caller may post a request on behalf
// of the given hospital. Plain admins are unrestricted; hospital admins need
// the manage-requests permission and may only post for their own hospital.
func CanPostForHospital(role models.Role, profile *models.HospitalAdminProfile, hospitalID string) error {
	if role == models.RoleAdmin {
		return nil
	}
	if profile == nil {
		return errors.New("No hospital admin profile found for this account")
	}
	if !profile.CanManageRequests {
		return errors.New("Your account is not permitted to manage requests")
	}
	if profile.HospitalID != hospitalID {
		return errors.New("You do not manage the hospital for this request")
	}
	return nil
}

// CreateBloodRequest handles posting a new blood request (hospital admin or admin).
func (h *BloodRequestHandler) CreateBloodRequest(c *gin.Context) {
	var req CreateBloodRequestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	profile, _ := middleware.GetAdminProfileFromContext(c)
	if err := CanPostForHospital(role, profile, req.HospitalID); err != nil {
		utils.Forbidden(c, err.Error())
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

	request := req.toModel()
	if err := h.DB.Create(&request).Error; err != nil {
		utils.InternalServerError(c, "Failed to create blood request: "+err.Error())
		return
	}

	utils.Created(c, "Blood request created successfully", request)
}

// BulkCreateResult reports the outcome of a bulk insert; partial success is
// expected and normal.
type BulkCreateResult struct {
	Created []models.BloodRequest `json:"created"`
	Failed  []BulkCreateFailure   `json:"failed,omitempty"`
}

// BulkCreateFailure records one rejected item and why.
type BulkCreateFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BulkCreateBloodRequests accepts an array of requests and inserts them,
// continuing past individual failures.
func (h *BloodRequestHandler) BulkCreateBloodRequests(c *gin.Context) {
	var reqs []CreateBloodRequestRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if len(reqs) == 0 {
		utils.BadRequest(c, "At least one blood request is required")
		return
	}

	result := BulkCreateResult{Created: make([]models.BloodRequest, 0, len(reqs))}
	for i, req := range reqs {
		if err := req.validate(); err != nil {
			result.Failed = append(result.Failed, BulkCreateFailure{Index: i, Error: err.Error()})
			continue
		}
		request := req.toModel()
		if err := h.DB.Create(&request).Error; err != nil {
			result.Failed = append(result.Failed, BulkCreateFailure{Index: i, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, request)
	}

	utils.Created(c, fmt.Sprintf("%d of %d blood requests created", len(result.Created), len(reqs)), result)
}

// GetBloodRequests handles listing requests, filterable by hospital, status
// and blood type.
func (h *BloodRequestHandler) GetBloodRequests(c *gin.Context) {
	query := h.DB.Model(&models.BloodRequest{})
	if hospitalID := c.Query("hospitalId"); hospitalID != "" {
		query = query.Where("hospital_id = ?", hospitalID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if bloodType := c.Query("bloodType"); bloodType != "" {
		if !models.IsValidBloodType(bloodType) {
			utils.BadRequest(c, "Invalid blood type: "+bloodType)
			return
		}
		query = query.Where("blood_type = ?", bloodType)
	}

	var requests []models.BloodRequest
	if err := query.Order("date_posted DESC").Find(&requests).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch blood requests: "+err.Error())
		return
	}
	utils.Success(c, "Blood requests fetched successfully", requests)
}

// GetBloodRequestByID handles fetching a single request by its requestId.
func (h *BloodRequestHandler) GetBloodRequestByID(c *gin.Context) {
	requestID := c.Param("requestId")

	var request models.BloodRequest
	if err := h.DB.First(&request, "request_id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood request not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Blood request fetched successfully", request)
}

// AcceptBloodRequest marks a request as accepted by the calling donor. The
// accept is an atomic compare-and-set so two simultaneous donors cannot both
// win; a snapshot of the donor's medical card is recorded alongside.
func (h *BloodRequestHandler) AcceptBloodRequest(c *gin.Context) {
	requestID := c.Param("requestId")
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var request models.BloodRequest
	if err := h.DB.First(&request, "request_id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood request not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	// Snapshot the donor's medical card, if they have one.
	snapshot := ""
	var card models.MedicalCard
	if err := h.DB.First(&card, "user_id = ?", userID).Error; err == nil {
		if raw, err := json.Marshal(card); err == nil {
			snapshot = string(raw)
		}
	}

	now := time.Now()
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BloodRequest{}).
			Where("request_id = ? AND accepted = ?", requestID, false).
			Updates(map[string]interface{}{
				"accepted":    true,
				"accepted_by": userID,
				"status":      models.RequestPendingApproval,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyAccepted
		}
		acceptance := models.AcceptedBloodRequest{
			BloodRequestID:      request.ID,
			UserID:              userID,
			AcceptedAt:          now,
			MedicalCardSnapshot: snapshot,
		}
		return tx.Create(&acceptance).Error
	})
	if err != nil {
		if errors.Is(err, errAlreadyAccepted) {
			utils.Conflict(c, "Blood request has already been accepted")
		} else {
			utils.InternalServerError(c, "Failed to accept blood request: "+err.Error())
		}
		return
	}

	if err := h.DB.First(&request, "request_id = ?", requestID).Error; err == nil {
		utils.Success(c, "Blood request accepted. Pending hospital approval.", request)
		return
	}
	utils.Success(c, "Blood request accepted. Pending hospital approval.", nil)
}

// ApproveBloodRequest transitions a pending acceptance to approved (hospital admin).
func (h *BloodRequestHandler) ApproveBloodRequest(c *gin.Context) {
	requestID := c.Param("requestId")

	request, ok := h.loadOwnRequest(c, requestID)
	if !ok {
		return
	}
	if request.Status != models.RequestPendingApproval {
		utils.BadRequest(c, "Blood request is not pending approval")
		return
	}

	request.Status = models.RequestApproved
	if err := h.DB.Save(request).Error; err != nil {
		utils.InternalServerError(c, "Failed to approve blood request: "+err.Error())
		return
	}
	utils.Success(c, "Blood request approved", request)
}

// RejectBloodRequestRequest carries the free-text rejection reason.
type RejectBloodRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectBloodRequest rejects a pending acceptance, recording the reason and
// returning the request to the posted state so another donor can accept it.
func (h *BloodRequestHandler) RejectBloodRequest(c *gin.Context) {
	requestID := c.Param("requestId")

	var req RejectBloodRequestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	request, ok := h.loadOwnRequest(c, requestID)
	if !ok {
		return
	}
	if request.Status != models.RequestPendingApproval {
		utils.BadRequest(c, "Blood request is not pending approval")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AcceptedBloodRequest{},
			"blood_request_id = ? AND user_id = ?", request.ID, request.AcceptedBy).Error; err != nil {
			return err
		}
		return tx.Model(request).Updates(map[string]interface{}{
			"accepted":         false,
			"accepted_by":      "",
			"status":           models.RequestPosted,
			"rejection_reason": req.Reason,
		}).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to reject blood request: "+err.Error())
		return
	}

	utils.Success(c, "Blood request rejected and reopened", request)
}

// DeleteBloodRequest handles deleting a request (admin).
func (h *BloodRequestHandler) DeleteBloodRequest(c *gin.Context) {
	requestID := c.Param("requestId")

	var request models.BloodRequest
	if err := h.DB.First(&request, "request_id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood request not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AcceptedBloodRequest{}, "blood_request_id = ?", request.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&request).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete blood request: "+err.Error())
		return
	}

	utils.Success(c, "Blood request deleted successfully", nil)
}

// loadOwnRequest fetches a request and verifies the calling hospital admin
// manages its hospital. Plain admins may act on any request.
func (h *BloodRequestHandler) loadOwnRequest(c *gin.Context, requestID string) (*models.BloodRequest, bool) {
	var request models.BloodRequest
	if err := h.DB.First(&request, "request_id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood request not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RoleAdmin {
		return &request, true
	}

	profile, ok := middleware.GetAdminProfileFromContext(c)
	if !ok || profile.HospitalID != request.HospitalID {
		utils.Forbidden(c, "You do not manage the hospital for this request")
		return nil, false
	}
	if !profile.CanManageRequests {
		utils.Forbidden(c, "Your account is not permitted to manage requests")
		return nil, false
	}
	return &request, true
}

// BloodTypeSummary aggregates a hospital's requests for one blood group.
type BloodTypeSummary struct {
	BloodType string `json:"bloodType"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Accepted  int    `json:"accepted"`
}

// GroupRequestsByBloodType buckets requests per blood group with pending and
// accepted sub-counts, sorted by blood group for stable output.
func GroupRequestsByBloodType(requests []models.BloodRequest) []BloodTypeSummary {
	byType := make(map[string]*BloodTypeSummary)
	for _, r := range requests {
		s, ok := byType[r.BloodType]
		if !ok {
			s = &BloodTypeSummary{BloodType: r.BloodType}
			byType[r.BloodType] = s
		}
		s.Total++
		if r.Accepted {
			s.Accepted++
		} else {
			s.Pending++
		}
	}

	out := make([]BloodTypeSummary, 0, len(byType))
	for _, bt := range models.ValidBloodTypes {
		if s, ok := byType[bt]; ok {
			out = append(out, *s)
		}
	}
	return out
}
