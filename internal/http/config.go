package http

import (
	"github.com/schoolshelf/librarian/internal/audit"
	"github.com/schoolshelf/librarian/internal/auth"
	"github.com/schoolshelf/librarian/internal/books"
	"github.com/schoolshelf/librarian/internal/config"
	"github.com/schoolshelf/librarian/internal/database"
	"github.com/schoolshelf/librarian/internal/loans"
	"github.com/schoolshelf/librarian/internal/reports"
	"github.com/schoolshelf/librarian/internal/students"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database     *database.Database
	BookService  *books.Service
	StudentsSvc  *students.Service
	LoansService *loans.Service
	Reports      *reports.Service
	AuditService *audit.Service

	// Authentication (all nil/empty when auth mode is "none")
	AuthConfig     config.Auth
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string
}
