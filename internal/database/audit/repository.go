// Package audit provides database operations for the book audit log.
package audit

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/schoolshelf/librarian/internal/entities"
)

// ActionCount aggregates log entries per action.
type ActionCount struct {
	Action entities.AuditAction `json:"action"`
	Count  int                  `json:"count"`
}

// Stats summarizes the audit log.
type Stats struct {
	TotalLogs     int64         `json:"totalLogs"`
	RecentLogs    int64         `json:"recentLogs"` // last 30 days
	LogsByAction  []ActionCount `json:"logsByAction"`
}

// Repository handles all audit log database operations. Entries are
// append-only; nothing here updates an existing row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new log entry.
func (r *Repository) Create(entry *entities.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

// FindRecentDuplicate returns an existing entry with the same book, action
// and description created within the window, or nil if there is none.
func (r *Repository) FindRecentDuplicate(bookID uint, action entities.AuditAction, description string, window time.Duration) (*entities.AuditLog, error) {
	var entry entities.AuditLog
	err := r.db.
		Where("book_id = ? AND action = ? AND description = ? AND created_at >= ?",
			bookID, action, description, time.Now().Add(-window)).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// All retrieves the most recent entries with their books preloaded.
func (r *Repository) All(limit int) ([]entities.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []entities.AuditLog
	err := r.db.
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ByBook retrieves all entries for one book, most recent first.
func (r *Repository) ByBook(bookID uint) ([]entities.AuditLog, error) {
	var entries []entities.AuditLog
	err := r.db.
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// ByAction retrieves entries for one action, most recent first.
func (r *Repository) ByAction(action entities.AuditAction, limit int) ([]entities.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []entities.AuditLog
	err := r.db.
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("action = ?", action).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ByPeriod retrieves entries created within [start, end].
func (r *Repository) ByPeriod(start, end time.Time) ([]entities.AuditLog, error) {
	var entries []entities.AuditLog
	err := r.db.
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// GetStats summarizes the audit log.
func (r *Repository) GetStats() (*Stats, error) {
	stats := &Stats{}

	if err := r.db.Model(&entities.AuditLog{}).Count(&stats.TotalLogs).Error; err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -30)
	err := r.db.Model(&entities.AuditLog{}).
		Where("created_at >= ?", cutoff).
		Count(&stats.RecentLogs).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&entities.AuditLog{}).
		Select("action, COUNT(*) AS count").
		Group("action").
		Scan(&stats.LogsByAction).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOlderThan removes entries created before the cutoff. Returns the
// number of deleted entries.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditLog{})
	return result.RowsAffected, result.Error
}
