package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolshelf/librarian/internal/database"
)

func setupHealthTestDB(t *testing.T) *database.Database {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func healthRequest(controller *HealthController) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db := setupHealthTestDB(t)
		controller := NewHealthController(db, "1.0.0")

		w := healthRequest(controller)
		assert.Equal(t, http.StatusOK, w.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.NotEmpty(t, response.Time)
	})

	t.Run("reports a missing database as not configured", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		controller := NewHealthController(nil, "1.0.0")

		w := healthRequest(controller)
		assert.Equal(t, http.StatusOK, w.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "not configured", response.Checks["database"])
	})

	t.Run("returns 503 when the database connection is closed", func(t *testing.T) {
		db := setupHealthTestDB(t)
		require.NoError(t, db.Close())

		controller := NewHealthController(db, "1.0.0")

		w := healthRequest(controller)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})
}
