package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers serves the login/logout endpoints.
type Handlers struct {
	service        *Service
	sessionManager *SessionManager
}

func NewHandlers(service *Service, sessionManager *SessionManager) *Handlers {
	return &Handlers{
		service:        service,
		sessionManager: sessionManager,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrAccountLocked) {
			c.JSON(http.StatusForbidden, gin.H{"error": ErrAccountLocked.Error()})
			return
		}
		// Deliberately the same message for unknown user and wrong
		// password so the endpoint does not leak which usernames exist.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	if err := h.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session for user %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"name":     user.Name,
	})
}

// Logout handles POST /auth/logout.
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Failed to destroy session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /auth/me and reports the current session's user.
func (h *Handlers) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	user, err := h.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"username":      user.Username,
		"name":          user.Name,
	})
}
