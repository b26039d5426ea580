package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolshelf/librarian/internal/books"
	bookrepo "github.com/schoolshelf/librarian/internal/database/books"
)

type BooksController struct {
	service *books.Service
}

func NewBooksController(service *books.Service) *BooksController {
	return &BooksController{service: service}
}

// List handles GET /api/books with optional search, genre and status filters.
func (controller *BooksController) List(c *gin.Context) {
	filter := bookrepo.Filter{
		Search: c.Query("search"),
		Genre:  c.Query("genre"),
		Status: c.Query("status"),
	}

	found, err := controller.service.Find(filter)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": found, "count": len(found)})
}

// Get handles GET /api/books/:id.
func (controller *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.service.Get(id)
	if err != nil {
		controller.respondError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Create handles POST /api/books.
func (controller *BooksController) Create(c *gin.Context) {
	var data books.CreateBookData
	if err := c.ShouldBindJSON(&data); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.service.Create(data, GetUserID(c))
	if err != nil {
		controller.respondError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// Update handles PUT /api/books/:id.
func (controller *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var data books.UpdateBookData
	if err := c.ShouldBindJSON(&data); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.service.Update(id, data, GetUserID(c))
	if err != nil {
		controller.respondError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /api/books/:id (soft delete).
func (controller *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.service.Delete(id, GetUserID(c)); err != nil {
		controller.respondError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// Restore handles POST /api/books/:id/restore.
func (controller *BooksController) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.service.Restore(id, GetUserID(c))
	if err != nil {
		controller.respondError(c, err, "restore book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Stats handles GET /api/books/stats.
func (controller *BooksController) Stats(c *gin.Context) {
	stats, err := controller.service.GetStats()
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// respondError maps catalog service errors onto HTTP statuses.
func (controller *BooksController) respondError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, books.ErrBookNotFound):
		respondNotFound(c, err.Error())
	case errors.Is(err, books.ErrDuplicateISBN),
		errors.Is(err, books.ErrDuplicateCode),
		errors.Is(err, books.ErrTitleRequired),
		errors.Is(err, books.ErrAuthorRequired),
		errors.Is(err, books.ErrGenreRequired),
		errors.Is(err, books.ErrQuantityTooLow),
		errors.Is(err, books.ErrBookNotDeleted):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
