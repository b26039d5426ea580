package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	bookrepo "github.com/schoolshelf/librarian/internal/database/books"
	loanrepo "github.com/schoolshelf/librarian/internal/database/loans"
	"github.com/schoolshelf/librarian/internal/reports"
)

type ReportsController struct {
	service *reports.Service
}

func NewReportsController(service *reports.Service) *ReportsController {
	return &ReportsController{service: service}
}

// Books handles GET /api/reports/books.
func (controller *ReportsController) Books(c *gin.Context) {
	filter := bookrepo.Filter{
		Search: c.Query("search"),
		Genre:  c.Query("genre"),
		Status: c.Query("status"),
	}

	report, err := controller.service.BooksReport(filter)
	if err != nil {
		respondInternalError(c, err, "books report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Loans handles GET /api/reports/loans. The period query parameter accepts
// month, quarter or year and defaults to month.
func (controller *ReportsController) Loans(c *gin.Context) {
	period := c.DefaultQuery("period", loanrepo.PeriodMonth)
	if _, ok := loanrepo.PeriodStart(period, time.Now()); !ok {
		respondBadRequest(c, "invalid period, expected month, quarter or year")
		return
	}

	report, err := controller.service.LoansReport(period)
	if err != nil {
		respondInternalError(c, err, "loans report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// CombinedStats handles GET /api/stats.
func (controller *ReportsController) CombinedStats(c *gin.Context) {
	stats, err := controller.service.CombinedStats()
	if err != nil {
		respondInternalError(c, err, "combined stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DashboardStats handles GET /api/dashboard/stats.
func (controller *ReportsController) DashboardStats(c *gin.Context) {
	stats, err := controller.service.DashboardStats()
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Activities handles GET /api/activities.
func (controller *ReportsController) Activities(c *gin.Context) {
	limit := parseLimitQuery(c, 15)

	activities, err := controller.service.RecentActivities(limit)
	if err != nil {
		respondInternalError(c, err, "recent activities")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities, "count": len(activities)})
}

// Notifications handles GET /api/notifications.
func (controller *ReportsController) Notifications(c *gin.Context) {
	limit := parseLimitQuery(c, 10)

	notifications, err := controller.service.Notifications(limit)
	if err != nil {
		respondInternalError(c, err, "notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}
