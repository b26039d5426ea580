package http

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolshelf/librarian/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF runs before the session middleware so the session context layers
	// on top of the CSRF one
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Next()
		})
	}

	// Create controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.BookService)
	studentsController := NewStudentsController(cfg.StudentsSvc)
	loansController := NewLoansController(cfg.LoansService)
	reportsController := NewReportsController(cfg.Reports)
	auditController := NewAuditController(cfg.AuditService)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth endpoints
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authHandlers := auth.NewHandlers(cfg.AuthService, cfg.SessionManager)
		router.POST("/auth/login", authHandlers.Login)
		router.POST("/auth/logout", authHandlers.Logout)
		router.GET("/auth/me", authHandlers.Me)
	}

	// Catalog endpoints
	router.GET("/api/books", booksController.List)
	router.POST("/api/books", booksController.Create)
	router.GET("/api/books/stats", booksController.Stats)
	router.GET("/api/books/:id", booksController.Get)
	router.PUT("/api/books/:id", booksController.Update)
	router.DELETE("/api/books/:id", booksController.Delete)
	router.POST("/api/books/:id/restore", booksController.Restore)

	// Student endpoints
	router.GET("/api/students", studentsController.List)
	router.POST("/api/students", studentsController.Create)
	router.GET("/api/students/stats", studentsController.Stats)
	router.GET("/api/students/:id", studentsController.Get)
	router.PUT("/api/students/:id", studentsController.Update)
	router.DELETE("/api/students/:id", studentsController.Delete)

	// Loan endpoints
	router.GET("/api/loans", loansController.List)
	router.POST("/api/loans", loansController.Create)
	router.GET("/api/loans/stats", loansController.Stats)
	router.GET("/api/loans/available-books", loansController.AvailableBooks)
	router.GET("/api/loans/:id", loansController.Get)
	router.DELETE("/api/loans/:id", loansController.Delete)
	router.POST("/api/loans/:id/return", loansController.Return)

	// Report and dashboard endpoints
	router.GET("/api/reports/books", reportsController.Books)
	router.GET("/api/reports/loans", reportsController.Loans)
	router.GET("/api/stats", reportsController.CombinedStats)
	router.GET("/api/dashboard/stats", reportsController.DashboardStats)
	router.GET("/api/activities", reportsController.Activities)
	router.GET("/api/notifications", reportsController.Notifications)

	// Audit endpoints
	router.GET("/api/audit", auditController.List)
	router.GET("/api/audit/stats", auditController.Stats)
	router.GET("/api/audit/book/:id", auditController.ByBook)

	return router
}
