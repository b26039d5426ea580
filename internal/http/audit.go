package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolshelf/librarian/internal/audit"
	"github.com/schoolshelf/librarian/internal/entities"
)

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// List handles GET /api/audit. The action query parameter narrows the feed
// to CREATE, UPDATE, DELETE or RESTORE entries.
func (ac *AuditController) List(c *gin.Context) {
	limit := parseLimitQuery(c, 100)
	if limit > 500 {
		limit = 500
	}

	action := c.Query("action")

	var logs []entities.AuditLog
	var err error
	if action != "" {
		logs, err = ac.auditService.ByAction(entities.AuditAction(action), limit)
	} else {
		logs, err = ac.auditService.All(limit)
	}
	if err != nil {
		respondInternalError(c, err, "list audit logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// ByBook handles GET /api/audit/book/:id and returns the full history of one
// book, including entries recorded while it was soft-deleted.
func (ac *AuditController) ByBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logs, err := ac.auditService.ByBook(id)
	if err != nil {
		respondInternalError(c, err, "audit logs by book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// Stats handles GET /api/audit/stats.
func (ac *AuditController) Stats(c *gin.Context) {
	stats, err := ac.auditService.GetStats()
	if err != nil {
		respondInternalError(c, err, "audit stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
