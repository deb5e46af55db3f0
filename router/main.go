package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"student-fees-api/database"
	"student-fees-api/handlers"
	auth_handlers "student-fees-api/handlers/auth"
	dashboard_handlers "student-fees-api/handlers/dashboard"
	fee_handlers "student-fees-api/handlers/fee"
	payment_handlers "student-fees-api/handlers/payment"
	student_handlers "student-fees-api/handlers/student"
	"student-fees-api/services"
	"student-fees-api/services/objectstore"
	"student-fees-api/utils/auth"
	"student-fees-api/utils/cache"
	"student-fees-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "student-fees-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	// Redis backs brute force protection; the API degrades gracefully
	// without it.
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	var bruteForceProtection *middleware.BruteForceProtection
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	} else {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, store)

	// Services
	accessService := services.NewAccessService(store)
	studentService := services.NewStudentService(store, accessService)
	feeService := services.NewFeeService(store, accessService)
	ledgerService := services.NewLedgerService(store, accessService)
	reportingService := services.NewReportingService(store)

	// Report export needs object storage credentials; skip wiring when
	// they are absent.
	var exportService *services.ExportService
	if os.Getenv("SPACES_ACCESS_KEY") != "" {
		spaces, err := objectstore.NewSpacesClient(objectstore.SpacesConfig{
			AccessKey: os.Getenv("SPACES_ACCESS_KEY"),
			SecretKey: os.Getenv("SPACES_SECRET_KEY"),
			Bucket:    os.Getenv("SPACES_BUCKET"),
			Region:    os.Getenv("SPACES_REGION"),
			Endpoint:  os.Getenv("SPACES_ENDPOINT"),
			CDNURL:    os.Getenv("SPACES_CDN_URL"),
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Report export will be disabled.", err)
		} else {
			exportService = services.NewExportService(reportingService, spaces)
		}
	}

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(store, jwtManager, bruteForceProtection)
	studentHandler := student_handlers.NewStudentHandler(studentService, ledgerService)
	feeHandler := fee_handlers.NewFeeHandler(feeService)
	paymentHandler := payment_handlers.NewPaymentHandler(store, ledgerService, accessService, reportingService, exportService)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(reportingService, accessService)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	api := app.Group("/api")

	// Health check endpoint (public)
	api.Get("/health", handlers.Health(store))

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Student routes
	students := api.Group("/students", authMiddleware.Required())
	students.Get("/", middleware.RequireAdmin(), studentHandler.ListStudents)
	students.Post("/", middleware.RequireAdmin(), middleware.AuditAdminAction(store, "create", "student"), studentHandler.CreateStudent)
	students.Get("/:id", studentHandler.GetStudent)        // Admin or own profile
	students.Put("/:id", studentHandler.UpdateStudent)     // Admin or own profile (bounded fields)
	students.Delete("/:id", middleware.RequireAdmin(), middleware.AuditAdminAction(store, "delete", "student"), studentHandler.DeleteStudent)
	students.Get("/:id/payments", studentHandler.GetStudentPayments)
	students.Get("/:id/dues", studentHandler.GetStudentDues)

	// Fee routes
	fees := api.Group("/fees", authMiddleware.Required())
	fees.Get("/", feeHandler.ListFees) // Admin: all fees; student: own course
	fees.Post("/", middleware.RequireAdmin(), middleware.AuditAdminAction(store, "create", "fee"), feeHandler.CreateFee)
	fees.Get("/:id", middleware.RequireAdmin(), feeHandler.GetFee)
	fees.Put("/:id", middleware.RequireAdmin(), middleware.AuditAdminAction(store, "update", "fee"), feeHandler.UpdateFee)
	fees.Delete("/:id", middleware.RequireAdmin(), middleware.AuditAdminAction(store, "delete", "fee"), feeHandler.DeleteFee)

	// Payment routes
	payments := api.Group("/payments", authMiddleware.Required())
	payments.Get("/", paymentHandler.ListPayments)
	payments.Post("/", paymentHandler.CreatePayment)
	payments.Get("/report", middleware.RequireAdmin(), paymentHandler.PaymentReport)
	payments.Post("/report/export", middleware.RequireAdmin(), paymentHandler.ExportPaymentReport)
	payments.Put("/:id/status", middleware.RequireAdmin(), middleware.AuditAdminAction(store, "status_change", "payment"), paymentHandler.UpdatePaymentStatus)

	// Dashboard
	api.Get("/dashboard/stats", authMiddleware.Required(), dashboardHandler.GetStats)
}
