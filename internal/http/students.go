package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	studentrepo "github.com/schoolshelf/librarian/internal/database/students"
	"github.com/schoolshelf/librarian/internal/students"
)

type StudentsController struct {
	service *students.Service
}

func NewStudentsController(service *students.Service) *StudentsController {
	return &StudentsController{service: service}
}

// List handles GET /api/students with optional search and grade filters.
func (controller *StudentsController) List(c *gin.Context) {
	filter := studentrepo.Filter{
		Search: c.Query("search"),
		Grade:  c.Query("grade"),
	}

	found, err := controller.service.Find(filter)
	if err != nil {
		respondInternalError(c, err, "list students")
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": found, "count": len(found)})
}

// Get handles GET /api/students/:id. The response includes the student's
// active loans.
func (controller *StudentsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := controller.service.Get(id)
	if err != nil {
		controller.respondError(c, err, "get student")
		return
	}
	c.JSON(http.StatusOK, student)
}

// Create handles POST /api/students.
func (controller *StudentsController) Create(c *gin.Context) {
	var data students.CreateStudentData
	if err := c.ShouldBindJSON(&data); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	student, err := controller.service.Create(data)
	if err != nil {
		controller.respondError(c, err, "create student")
		return
	}
	respondCreated(c, student)
}

// Update handles PUT /api/students/:id.
func (controller *StudentsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var data students.UpdateStudentData
	if err := c.ShouldBindJSON(&data); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	student, err := controller.service.Update(id, data)
	if err != nil {
		controller.respondError(c, err, "update student")
		return
	}
	c.JSON(http.StatusOK, student)
}

// Delete handles DELETE /api/students/:id.
func (controller *StudentsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.service.Delete(id); err != nil {
		controller.respondError(c, err, "delete student")
		return
	}
	respondSuccess(c, "student deleted")
}

// Stats handles GET /api/students/stats.
func (controller *StudentsController) Stats(c *gin.Context) {
	stats, err := controller.service.GetStats()
	if err != nil {
		respondInternalError(c, err, "student stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (controller *StudentsController) respondError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, students.ErrStudentNotFound):
		respondNotFound(c, err.Error())
	case errors.Is(err, students.ErrNameRequired),
		errors.Is(err, students.ErrRegistrationRequired),
		errors.Is(err, students.ErrDuplicateRegistration):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
