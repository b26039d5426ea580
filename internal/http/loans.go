package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	loanrepo "github.com/schoolshelf/librarian/internal/database/loans"
	"github.com/schoolshelf/librarian/internal/entities"
	"github.com/schoolshelf/librarian/internal/loans"
)

type LoansController struct {
	service *loans.Service
}

func NewLoansController(service *loans.Service) *LoansController {
	return &LoansController{service: service}
}

// List handles GET /api/loans with optional search, status and period filters.
func (controller *LoansController) List(c *gin.Context) {
	filter := loanrepo.Filter{
		Search: c.Query("search"),
		Status: entities.LoanStatus(c.Query("status")),
		Period: c.Query("period"),
	}

	found, err := controller.service.Find(filter)
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": found, "count": len(found)})
}

// Get handles GET /api/loans/:id.
func (controller *LoansController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := controller.service.Get(id)
	if err != nil {
		controller.respondError(c, err, "get loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// Create handles POST /api/loans.
func (controller *LoansController) Create(c *gin.Context) {
	var data loans.CreateLoanData
	if err := c.ShouldBindJSON(&data); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if data.BookID == 0 || data.StudentID == 0 {
		respondBadRequest(c, "book_id and student_id are required")
		return
	}

	loan, err := controller.service.Create(data)
	if err != nil {
		controller.respondError(c, err, "create loan")
		return
	}
	respondCreated(c, loan)
}

// Return handles POST /api/loans/:id/return.
func (controller *LoansController) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := controller.service.Return(id)
	if err != nil {
		controller.respondError(c, err, "return loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// Delete handles DELETE /api/loans/:id. Deleting an active loan returns the
// copy to the shelf first.
func (controller *LoansController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.service.Delete(id); err != nil {
		controller.respondError(c, err, "delete loan")
		return
	}
	respondSuccess(c, "loan deleted")
}

// AvailableBooks handles GET /api/loans/available-books.
func (controller *LoansController) AvailableBooks(c *gin.Context) {
	found, err := controller.service.AvailableBooks()
	if err != nil {
		respondInternalError(c, err, "available books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": found, "count": len(found)})
}

// Stats handles GET /api/loans/stats.
func (controller *LoansController) Stats(c *gin.Context) {
	stats, err := controller.service.GetStats()
	if err != nil {
		respondInternalError(c, err, "loan stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (controller *LoansController) respondError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, loans.ErrLoanNotFound),
		errors.Is(err, loans.ErrBookNotFound),
		errors.Is(err, loans.ErrStudentNotFound):
		respondNotFound(c, err.Error())
	case errors.Is(err, loans.ErrNoCopiesAvailable),
		errors.Is(err, loans.ErrAlreadyBorrowed),
		errors.Is(err, loans.ErrAlreadyReturned):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
