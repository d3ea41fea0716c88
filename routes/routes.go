package routes

import (
	"teravolta-backend/config"
	"teravolta-backend/controllers"
	"teravolta-backend/models"
	"teravolta-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://teravolta.energy",
			"https://portal.teravolta.energy",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	// Public endpoints: marketing site forms, catalog, magic-link exchange
	public := r.Group("/public")
	{
		public.POST("/contact", controllers.CreateInquiry)
		public.POST("/quotes", controllers.CreateQuote)
		public.GET("/services", controllers.GetServices)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/magic-link/exchange", controllers.ExchangeMagicLink)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		admin := utils.RequireRole(models.RoleAdmin)

		// Inquiry routes (admin only)
		inquiries := api.Group("/inquiries", admin)
		{
			inquiries.GET("", controllers.GetInquiries)
			inquiries.GET("/:id", controllers.GetInquiry)
			inquiries.PUT("/:id/status", controllers.UpdateInquiryStatus)
			inquiries.DELETE("/:id", controllers.DeleteInquiry)
		}

		// Quote routes (admin only)
		quotes := api.Group("/quotes", admin)
		{
			quotes.GET("", controllers.GetQuotes)
			quotes.GET("/:id", controllers.GetQuote)
			quotes.POST("/:id/review", controllers.ReviewQuote)
			quotes.POST("/:id/approve", controllers.ApproveQuote)
			quotes.POST("/:id/pay", controllers.MarkQuotePaid)
			quotes.POST("/:id/reject", controllers.RejectQuote)
			quotes.POST("/:id/cancel", controllers.CancelQuote)
			quotes.POST("/:id/onboard", controllers.OnboardQuote)
			quotes.POST("/:id/convert", controllers.ConvertQuote)
			quotes.POST("/:id/phases", controllers.AddPhase)
			quotes.DELETE("/:id/phases/:phaseId", controllers.DeletePhase)
		}

		// Project routes (customer + admin; customer ownership checked per handler)
		projects := api.Group("/projects", utils.RequireRole(models.RoleCustomer, models.RoleAdmin))
		{
			projects.GET("", controllers.GetProjects)
			projects.GET("/:id", controllers.GetProject)
			projects.POST("/:id/begin-payment", admin, controllers.BeginPayment)
			projects.POST("/:id/confirm-payment", controllers.ConfirmPayment)
			projects.POST("/:id/submit-documents", controllers.SubmitDocuments)
			projects.POST("/:id/schedule", controllers.ScheduleProject)
			projects.POST("/:id/transition", admin, controllers.TransitionProject)
			projects.POST("/:id/documents", controllers.AddProjectDocument)
			projects.POST("/:id/phases/:phaseId/pay", controllers.PayProjectPhase)
		}

		// Appointment routes (technician + admin; ownership checked per handler)
		appointments := api.Group("/appointments")
		{
			appointments.POST("", admin, controllers.CreateAppointment)
			appointments.GET("", controllers.GetAppointments)
			appointments.GET("/:id", controllers.GetAppointment)
			appointments.POST("/:id/status", controllers.UpdateAppointmentStatus)
			appointments.POST("/:id/incident", controllers.ReportIncident)
			appointments.POST("/:id/photos", controllers.AddAppointmentPhotos)
			appointments.PUT("/:id/notes", controllers.UpdateAppointmentNotes)
		}

		// Technician routes
		technicians := api.Group("/technicians", admin)
		{
			technicians.POST("", controllers.CreateTechnician)
			technicians.GET("", controllers.GetTechnicians)
			technicians.PUT("/:id", controllers.UpdateTechnician)
		}

		// Leave routes
		leaves := api.Group("/leaves")
		{
			leaves.POST("", controllers.CreateLeave)
			leaves.GET("", controllers.GetLeaves)
			leaves.PUT("/:id/resolve", admin, controllers.ResolveLeave)
		}

		// Service catalog (admin)
		catalog := api.Group("/services", admin)
		{
			catalog.POST("", controllers.CreateService)
			catalog.GET("", controllers.GetServices)
			catalog.PUT("/:id", controllers.UpdateService)
		}

		// Notifications
		notifications := api.Group("/notifications")
		{
			notifications.GET("", controllers.GetNotifications)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
		}

		// Profile routes
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
			profile.PUT("/notifications", controllers.UpdateNotificationPrefs)
		}

		//Reports routes
		reportController := controllers.ReportController{}
		api.GET("/reports", admin, reportController.GetReportAnalytics)

		// Dashboard routes
		api.GET("/dashboard", admin, controllers.GetDashboardOverview)
	}

	return r
}
