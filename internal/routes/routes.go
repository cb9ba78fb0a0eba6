package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/booking"
	"clinic-app-server/internal/config"
	"clinic-app-server/internal/handlers"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/receipt"
	"clinic-app-server/internal/recommend"
)

// Deps carries the shared collaborators the handlers are built from.
type Deps struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Booking  *booking.Service
	Receipts *receipt.Generator
	Engine   *recommend.Engine
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Cfg)
	userHandler := handlers.NewUserHandler(deps.DB, deps.Booking.Dispatcher)
	doctorHandler := handlers.NewDoctorHandler(deps.DB, deps.Booking.Dispatcher)
	appointmentHandler := handlers.NewAppointmentHandler(deps.DB, deps.Booking, deps.Receipts)
	recommendHandler := handlers.NewRecommendHandler(deps.Engine)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}

		// The doctor directory and symptom-based recommendations are
		// browsable without an account.
		public.GET("/doctors", doctorHandler.GetDoctors)
		public.GET("/doctors/top-rated", doctorHandler.GetTopRatedDoctors)
		public.GET("/doctors/:id", doctorHandler.GetDoctor)
		public.POST("/recommendations", recommendHandler.Recommend)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(deps.Cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes (admin only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUser)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		// Doctor profile mutations (owner or admin; checked in handler)
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), doctorHandler.UpdateDoctor)
			doctorRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), doctorHandler.DeleteDoctor)

			// The authenticated doctor's own views
			doctorRoutes.GET("/me/dashboard", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.GetDoctorDashboard)
			doctorRoutes.GET("/me/patients", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.GetDoctorPatients)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/booked-slots", appointmentHandler.GetBookedSlots)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointment)
			appointmentRoutes.GET("/:id/receipt", appointmentHandler.GetReceipt)
			appointmentRoutes.POST("/:id/cancel", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CancelAppointment)
			appointmentRoutes.POST("/:id/complete", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.CompleteAppointment)
			appointmentRoutes.POST("/:id/no-show", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.MarkNoShow)
			appointmentRoutes.PATCH("/:id/notes", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.UpdateNotes)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
