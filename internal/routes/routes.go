package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/handlers"
	"healthcare-booking-server/internal/metrics"
	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/realtime"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/utils"
)

// Dependencies is everything the HTTP layer needs, constructed in main.
type Dependencies struct {
	Config   *config.Config
	Store    store.Store
	Services *services.Services
	Tokens   *utils.TokenManager
	Hub      *realtime.Hub
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		middleware.Recovery(deps.Logger),
	)
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{deps.Config.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "Route not found.")
	})

	SetupRoutes(router, deps)
	return router
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	svc := deps.Services
	cfg := deps.Config

	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.Users, cfg.MaxUploadBytes)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Appointments)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(svc.Records)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications, deps.Hub)
	contentHandler := handlers.NewContentHandler(svc.Content)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	requireAuth := middleware.AuthMiddleware(deps.Tokens)
	doctorsOnly := middleware.RoleAuthMiddleware(models.RoleDoctor)

	// Status changes carry the caller's identity only when ownership is enforced.
	var statusAuth gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if svc.Appointments.EnforcesOwnership() {
		statusAuth = middleware.OptionalAuthMiddleware(deps.Tokens)
	}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api")
	api.GET("/health", healthHandler.Health)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/social-login", authHandler.SocialLogin)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		authRoutes.POST("/logout", requireAuth, authHandler.Logout)
		authRoutes.GET("/me", requireAuth, authHandler.Me)
	}

	userRoutes := api.Group("/users")
	{
		userRoutes.GET("", userHandler.GetUsers)
		userRoutes.GET("/doctors", userHandler.GetDoctors)
		userRoutes.POST("/availability", userHandler.UpdateAvailability)
		userRoutes.GET("/:id", userHandler.GetUserByID)
		userRoutes.PATCH("/:id", userHandler.UpdateProfile)
		userRoutes.DELETE("/:id", userHandler.DeleteUser)
		userRoutes.PATCH("/:id/availability", userHandler.UpdateAvailability)
		userRoutes.POST("/:id/profile-picture", userHandler.UploadProfilePicture)
		userRoutes.DELETE("/:id/profile-picture", userHandler.RemoveProfilePicture)
	}

	api.GET("/files/:id", userHandler.GetFile)

	appointmentRoutes := api.Group("/appointments")
	{
		appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
		appointmentRoutes.GET("", appointmentHandler.GetAppointments)
		appointmentRoutes.POST("/status", statusAuth, appointmentHandler.UpdateAppointmentStatus)
		appointmentRoutes.POST("/details", appointmentHandler.UpdateAppointmentDetails)
		appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
		appointmentRoutes.PATCH("/:id/status", statusAuth, appointmentHandler.UpdateAppointmentStatus)
		appointmentRoutes.PATCH("/:id/details", appointmentHandler.UpdateAppointmentDetails)
	}

	medicalRecordRoutes := api.Group("/medical-records")
	{
		medicalRecordRoutes.GET("", medicalRecordHandler.GetMedicalRecords)
		medicalRecordRoutes.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)
		// Doctors create medical records
		medicalRecordRoutes.POST("", requireAuth, doctorsOnly, medicalRecordHandler.CreateMedicalRecord)
	}

	notificationRoutes := api.Group("/notifications")
	{
		notificationRoutes.GET("", notificationHandler.GetNotifications)
		notificationRoutes.GET("/unread-count", notificationHandler.GetUnreadCount)
		notificationRoutes.GET("/stream", middleware.QueryTokenAuthMiddleware(deps.Tokens), notificationHandler.Stream)
		notificationRoutes.POST("/mark-all-read", notificationHandler.MarkAllRead)
		notificationRoutes.POST("/read", notificationHandler.MarkAsRead)
		notificationRoutes.POST("/:id/read", notificationHandler.MarkAsRead)
		notificationRoutes.DELETE("/:id", notificationHandler.DeleteNotification)
	}

	departmentRoutes := api.Group("/departments")
	{
		departmentRoutes.GET("", contentHandler.GetDepartments)
		departmentRoutes.GET("/:id", contentHandler.GetDepartmentByID)
		departmentRoutes.POST("", requireAuth, doctorsOnly, contentHandler.CreateDepartment)
		departmentRoutes.PATCH("/:id", requireAuth, doctorsOnly, contentHandler.UpdateDepartment)
	}

	newsRoutes := api.Group("/news")
	{
		newsRoutes.GET("", contentHandler.GetNews)
		newsRoutes.GET("/category/:category", contentHandler.GetNews)
		newsRoutes.POST("", requireAuth, doctorsOnly, contentHandler.CreateNews)
	}

	faqRoutes := api.Group("/faqs")
	{
		faqRoutes.GET("", contentHandler.GetFAQs)
		faqRoutes.POST("", requireAuth, doctorsOnly, contentHandler.CreateFAQ)
		faqRoutes.PATCH("/:id", requireAuth, doctorsOnly, contentHandler.UpdateFAQ)
	}

	// Legacy liveness probe
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
