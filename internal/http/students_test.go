package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	studentrepo "github.com/schoolshelf/librarian/internal/database/students"
	"github.com/schoolshelf/librarian/internal/entities"
	"github.com/schoolshelf/librarian/internal/students"
)

func setupStudentsTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	err = db.AutoMigrate(&entities.Student{}, &entities.Book{}, &entities.Loan{})
	require.NoError(t, err)

	controller := NewStudentsController(students.NewService(studentrepo.NewRepository(db)))

	router := gin.New()
	router.GET("/api/students", controller.List)
	router.POST("/api/students", controller.Create)
	router.GET("/api/students/stats", controller.Stats)
	router.GET("/api/students/:id", controller.Get)
	router.PUT("/api/students/:id", controller.Update)
	router.DELETE("/api/students/:id", controller.Delete)

	return router
}

func TestStudentsController_Create(t *testing.T) {
	router := setupStudentsTest(t)

	t.Run("registers a student", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/students", gin.H{
			"name": "João Silva", "registration": "2024001", "grade": "6º Ano",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, "João Silva", response["name"])
		assert.Equal(t, "2024001", response["registration"])
	})

	t.Run("rejects a duplicate registration", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/students", gin.H{
			"name": "Ana Costa", "registration": "2024001", "grade": "7º Ano",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeBody(t, w)
		assert.Contains(t, response["error"], "registration")
	})

	t.Run("rejects a student without a name", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/students", gin.H{
			"registration": "2024099",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStudentsController_UpdateAndDelete(t *testing.T) {
	router := setupStudentsTest(t)

	w := doJSON(t, router, "POST", "/api/students", gin.H{
		"name": "João Silva", "registration": "2024001", "grade": "6º Ano",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("updates fields", func(t *testing.T) {
		w := doJSON(t, router, "PUT", "/api/students/1", gin.H{"grade": "7º Ano"})

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, "7º Ano", response["grade"])
		assert.Equal(t, "João Silva", response["name"])
	})

	t.Run("updating an unknown student returns 404", func(t *testing.T) {
		w := doJSON(t, router, "PUT", "/api/students/999", gin.H{"grade": "7º Ano"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("deletes a student", func(t *testing.T) {
		w := doJSON(t, router, "DELETE", "/api/students/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/students/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStudentsController_List(t *testing.T) {
	router := setupStudentsTest(t)

	for _, s := range []gin.H{
		{"name": "João Silva", "registration": "2024001", "grade": "6º Ano"},
		{"name": "Ana Costa", "registration": "2024002", "grade": "7º Ano"},
	} {
		w := doJSON(t, router, "POST", "/api/students", s)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("lists all students", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/students", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, float64(2), response["count"])
	})

	t.Run("filters by grade", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/students?grade=7º+Ano", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, float64(1), response["count"])
	})
}
