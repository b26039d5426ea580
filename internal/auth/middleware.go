package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/schoolshelf/librarian/internal/config"
	"github.com/schoolshelf/librarian/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
)

// DefaultUserID is used when authentication is disabled.
const DefaultUserID = uint(0)

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	publicPaths := map[string]bool{
		"/health":      true,
		"/ping":        true,
		"/auth/login":  true,
		"/favicon.ico": true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return m.noAuthHandler()
	}
	return m.authHandler()
}

func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, DefaultUserID)
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyUsername, user.Username)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": ErrAuthRequired.Error(),
		})
	}
}

// trySessionAuth attempts to authenticate using the session cookie.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns DefaultUserID (0) if not authenticated or auth is disabled.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}
