package routes

import (
	"emcon-server/internal/config"
	"emcon-server/internal/handlers"
	"emcon-server/internal/middleware"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	mailer := utils.NewMailer(cfg.Mailer)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, redisClient, mailer)
	userHandler := handlers.NewUserHandler(db)
	hospitalHandler := handlers.NewHospitalHandler(db)
	searchHandler := handlers.NewSearchHandler(db, redisClient)
	hospitalAdminHandler := handlers.NewHospitalAdminHandler(db, cfg, mailer)
	bloodRequestHandler := handlers.NewBloodRequestHandler(db)
	reviewHandler := handlers.NewReviewHandler(db, redisClient)
	medicalCardHandler := handlers.NewMedicalCardHandler(db)
	profilePhotoHandler := handlers.NewProfilePhotoHandler(db, cfg.UploadDir)

	requireAuth := middleware.AuthMiddleware(cfg, redisClient)
	requireAdmin := middleware.RoleAuthMiddleware(models.RoleAdmin)
	requireHospitalAdmin := middleware.RoleAuthMiddleware(models.RoleHospitalAdmin, models.RoleAdmin)
	approvedHospitalAdmin := middleware.ApprovedHospitalAdminMiddleware(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.GET("/verify-email/:token", authHandler.VerifyEmail)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/reset-password/:token", authHandler.ResetPassword)
		}

		// Hospital discovery is public.
		public.GET("/hospitals", hospitalHandler.GetHospitals)
		public.GET("/hospitals/search", searchHandler.Search)
		public.GET("/hospitals/:id", hospitalHandler.GetHospitalByID)
		public.GET("/reviews", reviewHandler.GetReviews)
		public.GET("/blood-requests", bloodRequestHandler.GetBloodRequests)
		public.GET("/blood-requests/:requestId", bloodRequestHandler.GetBloodRequestByID)

		// Hospital admin applications come from unauthenticated applicants.
		public.POST("/hospital-admins/apply", hospitalAdminHandler.Apply)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(requireAuth)
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Donor-facing blood request operations
		bloodRoutes := private.Group("/blood-requests")
		{
			bloodRoutes.POST("/bulk", bloodRequestHandler.BulkCreateBloodRequests)
			bloodRoutes.PATCH("/:requestId/accept", bloodRequestHandler.AcceptBloodRequest)

			// Posting and deciding on requests is a hospital-side operation.
			manage := bloodRoutes.Group("")
			manage.Use(requireHospitalAdmin)
			{
				manage.POST("", hospitalAdminScoped(db, bloodRequestHandler.CreateBloodRequest))
				manage.PATCH("/:requestId/approve", hospitalAdminScoped(db, bloodRequestHandler.ApproveBloodRequest))
				manage.PATCH("/:requestId/reject", hospitalAdminScoped(db, bloodRequestHandler.RejectBloodRequest))
			}
			bloodRoutes.DELETE("/:requestId", requireAdmin, bloodRequestHandler.DeleteBloodRequest)
		}

		// Reviews
		reviewRoutes := private.Group("/reviews")
		{
			reviewRoutes.POST("", reviewHandler.CreateReview)
			reviewRoutes.DELETE("/:id", reviewHandler.DeleteReview)
			reviewRoutes.POST("/:id/helpful", reviewHandler.VoteHelpful)
		}

		// Medical card (singleton per authenticated user)
		cardRoutes := private.Group("/medical-card")
		{
			cardRoutes.GET("", medicalCardHandler.GetMedicalCard)
			cardRoutes.POST("", medicalCardHandler.UpsertMedicalCard)
		}

		// Profile photo
		photoRoutes := private.Group("/profile-photo")
		{
			photoRoutes.POST("", profilePhotoHandler.UploadProfilePhoto)
			photoRoutes.GET("", profilePhotoHandler.GetProfilePhoto)
			photoRoutes.DELETE("", profilePhotoHandler.DeleteProfilePhoto)
		}

		// Hospital admin routes (approved accounts only)
		hospitalAdminRoutes := private.Group("/hospital-admins")
		hospitalAdminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleHospitalAdmin), approvedHospitalAdmin)
		{
			hospitalAdminRoutes.GET("/dashboard", hospitalAdminHandler.Dashboard)
			hospitalAdminRoutes.PUT("/hospital", hospitalAdminHandler.UpdateOwnHospital)
		}

		// Admin routes
		adminRoutes := private.Group("/admin")
		adminRoutes.Use(requireAdmin)
		{
			adminRoutes.GET("/dashboard", handlers.NewDashboardHandler(db).GetDashboard)
			adminRoutes.GET("/users", userHandler.GetUsers)
			adminRoutes.GET("/users/:id", userHandler.GetUserByID)
			adminRoutes.DELETE("/users/:id", userHandler.DeleteUser)
			adminRoutes.POST("/hospitals", hospitalHandler.CreateHospital)
			adminRoutes.PUT("/hospitals/:id", hospitalHandler.UpdateHospital)
			adminRoutes.DELETE("/hospitals/:id", hospitalHandler.DeleteHospital)
			adminRoutes.GET("/hospital-admins", hospitalAdminHandler.ListApplications)
			adminRoutes.PATCH("/hospital-admins/:id/approve", hospitalAdminHandler.ApproveApplication)
			adminRoutes.PATCH("/hospital-admins/:id/reject", hospitalAdminHandler.RejectApplication)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}

// hospitalAdminScoped loads and checks the caller's hospital admin profile
// before running the handler; plain admins pass straight through.
func hospitalAdminScoped(db *gorm.DB, handler gin.HandlerFunc) gin.HandlerFunc {
	loadProfile := middleware.ApprovedHospitalAdminMiddleware(db)
	return func(c *gin.Context) {
		if role, _ := middleware.GetUserRoleFromContext(c); role == models.RoleAdmin {
			handler(c)
			return
		}
		loadProfile(c)
		if c.IsAborted() {
			return
		}
		handler(c)
	}
}
