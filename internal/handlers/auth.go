package handlers

import (
	"time"

	"emcon-server/internal/cache"
	"emcon-server/internal/config"
	"emcon-server/internal/middleware"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Redis  *redis.Client
	Mailer *utils.Mailer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, redisClient *redis.Client, mailer *utils.Mailer) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Redis: redisClient, Mailer: mailer}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	BloodType       string `json:"bloodType"`
	PhoneNumber     string `json:"phoneNumber"`
	Address         string `json:"address"`
	AdminSecret     string `json:"adminSecret"`
}

// Register handles user registration. Supplying the correct admin secret
// registers the account with the admin role; otherwise the role is user.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
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
	if req.BloodType != "" && !models.IsValidBloodType(req.BloodType) {
		utils.BadRequest(c, "Invalid blood type")
		return
	}

	role := models.RoleUser
	if req.AdminSecret != "" {
		if h.Cfg.AdminSecret == "" || req.AdminSecret != h.Cfg.AdminSecret {
			utils.Forbidden(c, "Invalid admin secret")
			return
		}
		role = models.RoleAdmin
	}

	// Check if user already exists
	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	verificationToken, err := utils.GenerateSecureToken()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate verification token: "+err.Error())
		return
	}
	tokenExpiry := time.Now().Add(time.Duration(h.Cfg.VerificationTokenExpiry) * time.Hour)

	user := models.User{
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		Email:                   req.Email,
		Role:                    role,
		BloodType:               req.BloodType,
		PhoneNumber:             req.PhoneNumber,
		Address:                 req.Address,
		VerificationTokenHash:   utils.HashToken(verificationToken),
		VerificationTokenExpiry: &tokenExpiry,
	}

	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	if err := h.Mailer.SendVerificationEmail(user.Email, h.Cfg.AppURL, verificationToken); err != nil {
		// Registration stands; the user can request a new link later.
		logrus.WithError(err).WithField("email", user.Email).Warn("Failed to send verification email")
	}

	utils.Created(c, "User registered successfully. Please verify your email.", user.Sanitize())
}

// VerifyEmail handles the email verification link.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.BadRequest(c, "Verification token is required")
		return
	}

	var user models.User
	err := h.DB.Where("verification_token_hash = ? AND verification_token_expiry > ?",
		utils.HashToken(token), time.Now()).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "Verification token is invalid or has expired")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	user.IsVerified = true
	user.VerificationTokenHash = ""
	user.VerificationTokenExpiry = nil
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to verify email: "+err.Error())
		return
	}

	utils.Success(c, "Email verified successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login. Hospital admins are refused until their
// application has been approved.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if user.Role == models.RoleHospitalAdmin {
		var profile models.HospitalAdminProfile
		if err := h.DB.First(&profile, "user_id = ?", user.ID).Error; err != nil {
			utils.Forbidden(c, "No hospital admin profile found for this account")
			return
		}
		if profile.Status != models.ApprovalApproved {
			utils.Forbidden(c, "Hospital admin application has not been approved")
			return
		}
	}

	accessToken, refreshTokenString, err := utils.GenerateTokens(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}
	// Store refresh token in DB
	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&refreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store refresh token: "+err.Error())
		return
	}

	// Set refresh token as HTTP-only cookie
	c.SetCookie(
		"refresh_token",
		refreshTokenString,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles refreshing an access token using a refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// First try to get the refresh token from HTTP-only cookie
	refreshTokenString, err := c.Cookie("refresh_token")

	// If no cookie, fall back to request body
	if err != nil || refreshTokenString == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		refreshTokenString = req.RefreshToken
	}

	claims, err := utils.ValidateToken(refreshTokenString, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token structure or signature: "+err.Error())
		return
	}
	// Check if refresh token is revoked or still valid in DB
	var storedToken models.RefreshToken
	if err := h.DB.Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?",
		refreshTokenString, claims.UserID, false, time.Now()).First(&storedToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token: "+err.Error())
		}
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.InternalServerError(c, "Failed to find user associated with token: "+err.Error())
		return
	}

	// Refresh token rotation: revoke the old token, issue and store new ones.
	storedToken.IsRevoked = true
	h.DB.Save(&storedToken)

	newAccessToken, newRefreshTokenString, err := utils.GenerateTokens(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}

	newRefreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     newRefreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&newRefreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store new refresh token: "+err.Error())
		return
	}

	c.SetCookie(
		"refresh_token",
		newRefreshTokenString,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenString,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Logout revokes the refresh token and denylists the current access token
// until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.RefreshToken == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	// Denylist the access token used on this request.
	if accessToken, exists := c.Get("accessToken"); exists && h.Redis != nil {
		ttl := time.Duration(h.Cfg.JWTExpirationMinutes) * time.Minute
		if err := cache.DenylistAccessToken(c.Request.Context(), h.Redis, accessToken.(string), ttl); err != nil {
			logrus.WithError(err).Warn("Failed to denylist access token")
		}
	}

	var storedToken models.RefreshToken
	if err := h.DB.Where("token = ? AND is_revoked = ?", req.RefreshToken, false).First(&storedToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Token not found or already revoked, which is acceptable for logout.
			utils.Success(c, "Logout successful (token not found or already invalid).", nil)
		} else {
			utils.InternalServerError(c, "Database error during logout: "+err.Error())
		}
		return
	}

	storedToken.IsRevoked = true
	storedToken.ExpiresAt = time.Now()
	if err := h.DB.Save(&storedToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
		return
	}

	c.SetCookie(
		"refresh_token",
		"",
		-1,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)

	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// ForgotPasswordRequest represents the request body for a password reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a single-use, time-boxed reset token and mails the
// link. The response is identical whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	const okMessage = "If an account exists for this email, a reset link has been sent."

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Success(c, okMessage, nil)
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	resetToken, err := utils.GenerateSecureToken()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate reset token: "+err.Error())
		return
	}
	expiry := time.Now().Add(time.Duration(h.Cfg.PasswordResetTokenExpiry) * time.Minute)
	user.ResetTokenHash = utils.HashToken(resetToken)
	user.ResetTokenExpiry = &expiry

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to store reset token: "+err.Error())
		return
	}

	if err := h.Mailer.SendPasswordResetEmail(user.Email, h.Cfg.AppURL, resetToken); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("Failed to send password reset email")
	}

	utils.Success(c, okMessage, nil)
}

// ResetPasswordRequest represents the request body for completing a reset.
type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ResetPassword completes a password reset using the emailed token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.BadRequest(c, "Reset token is required")
		return
	}

	var req ResetPasswordRequest
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

	var user models.User
	err := h.DB.Where("reset_token_hash = ? AND reset_token_expiry > ?",
		utils.HashToken(token), time.Now()).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "Reset token is invalid or has expired")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	user.ResetTokenHash = ""
	user.ResetTokenExpiry = nil

	// Revoke outstanding refresh tokens; old sessions die with the password.
	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND is_revoked = ?", user.ID, false).
			Update("is_revoked", true).Error
	}); err != nil {
		utils.InternalServerError(c, "Failed to reset password: "+err.Error())
		return
	}

	utils.Success(c, "Password reset successfully", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating user profile.
type UpdateProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BloodType   string `json:"bloodType"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// UpdateProfile handles updating the currently authenticated user's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.BloodType != "" && !models.IsValidBloodType(req.BloodType) {
		utils.BadRequest(c, "Invalid blood type")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.BloodType != "" {
		user.BloodType = req.BloodType
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		user.Address = req.Address
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}
