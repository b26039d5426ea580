package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schoolshelf/librarian/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{}, &entities.AuditLog{})
	require.NoError(t, err)

	return db
}

func TestRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	entry := &entities.AuditLog{
		BookID:      1,
		Action:      entities.AuditActionCreate,
		Description: "Book \"Dom Casmurro\" (0001/25-LIT) was added to the catalog",
		UserID:      1,
	}

	err := repo.Create(entry)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestRepository_FindRecentDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	entry := &entities.AuditLog{
		BookID: 1, Action: entities.AuditActionUpdate, Description: "changed",
	}
	require.NoError(t, repo.Create(entry))

	t.Run("finds an identical entry within the window", func(t *testing.T) {
		found, err := repo.FindRecentDuplicate(1, entities.AuditActionUpdate, "changed", 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, entry.ID, found.ID)
	})

	t.Run("ignores different descriptions", func(t *testing.T) {
		found, err := repo.FindRecentDuplicate(1, entities.AuditActionUpdate, "other", 5*time.Second)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("ignores different actions", func(t *testing.T) {
		found, err := repo.FindRecentDuplicate(1, entities.AuditActionDelete, "changed", 5*time.Second)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("ignores entries outside the window", func(t *testing.T) {
		old := &entities.AuditLog{
			BookID: 2, Action: entities.AuditActionUpdate, Description: "stale",
			CreatedAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, repo.Create(old))

		found, err := repo.FindRecentDuplicate(2, entities.AuditActionUpdate, "stale", 5*time.Second)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestRepository_Queries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	book := &entities.Book{
		Code: "0001/25-FAN", Title: "T", Author: "A", Genre: "Fantasia",
		Quantity: 1, CurrentQuantity: 1, EntryDate: time.Now(),
	}
	require.NoError(t, db.Create(book).Error)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(&entities.AuditLog{
			BookID: book.ID, Action: entities.AuditActionUpdate, Description: "changed",
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(&entities.AuditLog{
		BookID: 999, Action: entities.AuditActionDelete, Description: "removed",
	}))

	t.Run("All honours the limit and orders newest first", func(t *testing.T) {
		entries, err := repo.All(2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt) ||
			entries[0].CreatedAt.Equal(entries[1].CreatedAt))
	})

	t.Run("ByBook returns only one book's history with the book preloaded", func(t *testing.T) {
		entries, err := repo.ByBook(book.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, book.Title, entries[0].Book.Title)
	})

	t.Run("ByBook includes entries of soft-deleted books", func(t *testing.T) {
		require.NoError(t, db.Delete(&entities.Book{}, book.ID).Error)

		entries, err := repo.ByBook(book.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, book.Title, entries[0].Book.Title)
	})

	t.Run("ByAction filters on action", func(t *testing.T) {
		entries, err := repo.ByAction(entities.AuditActionDelete, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "removed", entries[0].Description)
	})

	t.Run("GetStats aggregates totals per action", func(t *testing.T) {
		stats, err := repo.GetStats()
		require.NoError(t, err)
		assert.Equal(t, int64(4), stats.TotalLogs)
		assert.Equal(t, int64(4), stats.RecentLogs)
		assert.Len(t, stats.LogsByAction, 2)
	})
}

func TestRepository_DeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Create(&entities.AuditLog{
		BookID: 1, Action: entities.AuditActionCreate, Description: "old",
		CreatedAt: time.Now().AddDate(-2, 0, 0),
	}))
	require.NoError(t, repo.Create(&entities.AuditLog{
		BookID: 1, Action: entities.AuditActionCreate, Description: "fresh",
	}))

	deleted, err := repo.DeleteOlderThan(time.Now().AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	entries, err := repo.All(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].Description)
}
