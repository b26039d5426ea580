package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditrepo "github.com/schoolshelf/librarian/internal/database/audit"
	"github.com/schoolshelf/librarian/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditLog{})
	require.NoError(t, err)

	return NewService(auditrepo.NewRepository(db), DefaultDedupWindow), db
}

func countLogs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entities.AuditLog{}).Count(&count).Error)
	return count
}

func TestService_Log(t *testing.T) {
	t.Run("records an entry", func(t *testing.T) {
		svc, db := setupTestService(t)

		entry, err := svc.Log(Entry{
			BookID:      1,
			Action:      entities.AuditActionCreate,
			Description: "Book \"Dom Casmurro\" (0001/25-LIT) was added to the catalog",
		})
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
		assert.Equal(t, int64(1), countLogs(t, db))
	})

	t.Run("identical rapid entries collapse into one", func(t *testing.T) {
		svc, db := setupTestService(t)

		e := Entry{
			BookID:      1,
			Action:      entities.AuditActionUpdate,
			Description: "Field \"title\" of book \"X\" (0001/25-FAN) was changed",
		}
		first, err := svc.Log(e)
		require.NoError(t, err)
		second, err := svc.Log(e)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(1), countLogs(t, db))
	})

	t.Run("different descriptions do not collapse", func(t *testing.T) {
		svc, db := setupTestService(t)

		_, err := svc.Log(Entry{BookID: 1, Action: entities.AuditActionUpdate, Description: "first change"})
		require.NoError(t, err)
		_, err = svc.Log(Entry{BookID: 1, Action: entities.AuditActionUpdate, Description: "second change"})
		require.NoError(t, err)

		assert.Equal(t, int64(2), countLogs(t, db))
	})

	t.Run("different books do not collapse", func(t *testing.T) {
		svc, db := setupTestService(t)

		_, err := svc.Log(Entry{BookID: 1, Action: entities.AuditActionDelete, Description: "removed"})
		require.NoError(t, err)
		_, err = svc.Log(Entry{BookID: 2, Action: entities.AuditActionDelete, Description: "removed"})
		require.NoError(t, err)

		assert.Equal(t, int64(2), countLogs(t, db))
	})

	t.Run("entries older than the window are not deduplicated against", func(t *testing.T) {
		svc, db := setupTestService(t)

		// Simulate an identical entry recorded well outside the window
		require.NoError(t, db.Create(&entities.AuditLog{
			BookID:      1,
			Action:      entities.AuditActionCreate,
			Description: "added",
			CreatedAt:   time.Now().Add(-time.Minute),
		}).Error)

		_, err := svc.Log(Entry{BookID: 1, Action: entities.AuditActionCreate, Description: "added"})
		require.NoError(t, err)

		assert.Equal(t, int64(2), countLogs(t, db))
	})
}

func TestService_DeleteOldEntries(t *testing.T) {
	svc, db := setupTestService(t)

	require.NoError(t, db.Create(&entities.AuditLog{
		BookID: 1, Action: entities.AuditActionCreate, Description: "old",
		CreatedAt: time.Now().AddDate(0, 0, -400),
	}).Error)
	require.NoError(t, db.Create(&entities.AuditLog{
		BookID: 1, Action: entities.AuditActionCreate, Description: "recent",
		CreatedAt: time.Now().AddDate(0, 0, -10),
	}).Error)

	deleted, err := svc.DeleteOldEntries(365 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, int64(1), countLogs(t, db))

	var remaining entities.AuditLog
	require.NoError(t, db.First(&remaining).Error)
	assert.Equal(t, "recent", remaining.Description)
}

func TestService_BookHelpers(t *testing.T) {
	svc, _ := setupTestService(t)
	book := &entities.Book{ID: 7, Title: "Grande Sertão: Veredas", Code: "0003/25-LIT"}

	created, err := svc.LogBookCreation(book, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.AuditActionCreate, created.Action)
	assert.Contains(t, created.Description, "Grande Sertão: Veredas")
	assert.Contains(t, created.Description, "0003/25-LIT")
	assert.Equal(t, uint(1), created.UserID)

	updated, err := svc.LogBookUpdate(book, "title", "old", "new", 1)
	require.NoError(t, err)
	assert.Equal(t, entities.AuditActionUpdate, updated.Action)
	assert.Equal(t, "title", updated.FieldName)
	assert.Equal(t, "old", updated.OldValue)
	assert.Equal(t, "new", updated.NewValue)

	logs, err := svc.ByBook(book.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
