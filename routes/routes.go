package routes

import (
	"wellness-ops-backend/config"
	"wellness-ops-backend/firebase"
	"wellness-ops-backend/handlers"
	"wellness-ops-backend/middleware"
	"wellness-ops-backend/notifications"
	"wellness-ops-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries the collaborators the handlers are built from.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Mailer   *notifications.Mailer
	Feedback *notifications.FeedbackDispatcher
	Storage  firebase.StorageClient
	OTP      *services.OTPService
	Closing  *services.ClosingService
	Archive  *services.ArchiveService

	// AuthLimiter throttles login and the OTP endpoints. Nil disables it.
	AuthLimiter *middleware.RateLimiter
}

func SetupRoutes(r *gin.Engine, d Deps) {
	authHandler := &handlers.AuthHandler{DB: d.DB, OTP: d.OTP}
	healthHandler := &handlers.HealthHandler{DB: d.DB}
	propertyHandler := &handlers.PropertyHandler{DB: d.DB, Archive: d.Archive}
	therapistHandler := &handlers.TherapistHandler{DB: d.DB, Archive: d.Archive, Storage: d.Storage}
	attendanceHandler := &handlers.AttendanceHandler{DB: d.DB}
	serviceHandler := &handlers.ServiceHandler{DB: d.DB}
	incentiveHandler := &handlers.IncentiveHandler{DB: d.DB, Closing: d.Closing}
	revenueHandler := &handlers.RevenueHandler{DB: d.DB}
	analyticsHandler := &handlers.AnalyticsHandler{DB: d.DB}
	expenseHandler := &handlers.ExpenseHandler{DB: d.DB}
	closingHandler := &handlers.ClosingHandler{DB: d.DB, Closing: d.Closing}

	// Typed nils must not reach the handler interfaces.
	if d.Mailer != nil {
		therapistHandler.Mailer = d.Mailer
		serviceHandler.Mailer = d.Mailer
	}
	if d.Feedback != nil {
		serviceHandler.Feedback = d.Feedback
	}
	if d.Config != nil {
		serviceHandler.FeedbackURL = d.Config.WhatsApp.FeedbackURL
	}

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if d.AuthLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{d.AuthLimiter.Middleware(), h}
	}

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", limited(authHandler.Login)...)
		api.POST("/auth/request-otp", limited(authHandler.RequestOTP)...)
		api.POST("/auth/verify-otp", limited(authHandler.VerifyOTP)...)
		api.POST("/auth/change-password", limited(authHandler.ChangePassword)...)
	}

	// Protected routes (any role)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/properties", propertyHandler.GetProperties)
		protected.GET("/properties/:id", propertyHandler.GetProperty)
	}

	// Therapist routes
	therapist := api.Group("")
	therapist.Use(middleware.AuthMiddleware())
	therapist.Use(middleware.TherapistMiddleware())
	{
		therapist.GET("/therapists/me", therapistHandler.GetMyProfile)

		therapist.POST("/attendance/check-in", attendanceHandler.CheckIn)
		therapist.POST("/attendance/check-out", attendanceHandler.CheckOut)
		therapist.GET("/attendance/my-attendance", attendanceHandler.GetMyAttendance)

		therapist.POST("/services", serviceHandler.CreateService)
		therapist.GET("/services/my-services", serviceHandler.GetMyServices)

		therapist.GET("/incentives/my-incentive", incentiveHandler.GetMyIncentive)
	}

	// Admin routes
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Property management
		admin.POST("/properties", propertyHandler.CreateProperty)
		admin.PUT("/properties/:id", propertyHandler.UpdateProperty)
		admin.DELETE("/properties/:id", propertyHandler.ArchiveProperty)
		admin.PUT("/properties/:id/restore", propertyHandler.RestoreProperty)
		admin.DELETE("/properties/:id/permanent", propertyHandler.DeletePropertyPermanent)

		// Therapist management
		admin.POST("/therapists", therapistHandler.CreateTherapist)
		admin.GET("/therapists", therapistHandler.GetTherapists)
		admin.GET("/therapists/:id", therapistHandler.GetTherapist)
		admin.PUT("/therapists/:id", therapistHandler.UpdateTherapist)
		admin.DELETE("/therapists/:id", therapistHandler.ArchiveTherapist)
		admin.PUT("/therapists/:id/restore", therapistHandler.RestoreTherapist)
		admin.POST("/therapists/:id/documents", therapistHandler.UploadDocument)

		// Attendance
		admin.GET("/attendance/admin/daily", attendanceHandler.GetDailyAttendance)
		admin.GET("/attendance/admin/history/:therapist_id", attendanceHandler.GetTherapistHistory)

		// Services, incentives and revenue
		admin.GET("/services", serviceHandler.GetServices)
		admin.GET("/incentives", incentiveHandler.GetIncentives)
		admin.GET("/incentives/records", incentiveHandler.GetIncentiveRecords)
		admin.PUT("/incentives/records/:id/approve", incentiveHandler.ApproveIncentiveRecord)
		admin.GET("/revenue/property/:id", revenueHandler.GetPropertyRevenue)

		// Analytics
		admin.GET("/analytics/dashboard", analyticsHandler.GetDashboard)
		admin.GET("/analytics/forecast", analyticsHandler.GetForecast)

		// Expenses
		admin.POST("/expenses", expenseHandler.CreateExpense)
		admin.GET("/expenses", expenseHandler.GetExpenses)
		admin.GET("/expenses/summary/by-property", expenseHandler.GetExpenseSummary)
		admin.GET("/expenses/:id", expenseHandler.GetExpense)
		admin.PUT("/expenses/:id", expenseHandler.UpdateExpense)
		admin.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

		// Monthly closing
		admin.POST("/closings/run", closingHandler.RunClosing)
		admin.GET("/closings", closingHandler.GetClosings)
		admin.PUT("/closings/:id/approve", closingHandler.ApproveClosing)
	}
}
