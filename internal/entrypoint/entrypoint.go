package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolshelf/librarian/internal/audit"
	"github.com/schoolshelf/librarian/internal/auth"
	"github.com/schoolshelf/librarian/internal/books"
	"github.com/schoolshelf/librarian/internal/config"
	"github.com/schoolshelf/librarian/internal/database"
	auditrepo "github.com/schoolshelf/librarian/internal/database/audit"
	bookrepo "github.com/schoolshelf/librarian/internal/database/books"
	loanrepo "github.com/schoolshelf/librarian/internal/database/loans"
	studentrepo "github.com/schoolshelf/librarian/internal/database/students"
	http_controllers "github.com/schoolshelf/librarian/internal/http"
	"github.com/schoolshelf/librarian/internal/loans"
	"github.com/schoolshelf/librarian/internal/reports"
	"github.com/schoolshelf/librarian/internal/scheduler"
	"github.com/schoolshelf/librarian/internal/students"
	"github.com/schoolshelf/librarian/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	// kill -9 is SIGKILL and can't be caught, so no need to add it.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue and scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarian v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	bookRepo := bookrepo.NewRepository(db.DB)
	studentRepo := studentrepo.NewRepository(db.DB)
	loanRepo := loanrepo.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)

	// Domain services
	auditService := audit.NewService(auditRepo, cfg.Audit.DedupWindow)
	bookService := books.NewService(db.DB, bookRepo, loanRepo, auditService)
	studentService := students.NewService(studentRepo)
	loanService := loans.NewService(db.DB, loanRepo, bookRepo, studentRepo, cfg.Loans.DefaultPeriodDays)
	reportService := reports.NewService(bookRepo, studentRepo, loanRepo, bookService, studentService, loanService)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var auditScheduler *scheduler.AuditCleanupScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupAuditLogsQueue(auditService),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Schedule the nightly audit retention job
		auditScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := auditScheduler.Start(); err != nil {
			log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
		}
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. Run 'librarian create-user' to create a librarian account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		BookService:    bookService,
		StudentsSvc:    studentService,
		LoansService:   loanService,
		Reports:        reportService,
		AuditService:   auditService,
		AuthConfig:     cfg.Auth,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if auditScheduler != nil {
			auditScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
