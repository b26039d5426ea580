// Package loans provides database operations for loan records.
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/schoolshelf/librarian/internal/entities"
)

// Period filter values accepted by Filter and Since.
const (
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// Filter narrows loan listings. Zero values mean "no filter".
type Filter struct {
	Search string // matches book title, book code or student name
	Status entities.LoanStatus
	Period string // PeriodMonth, PeriodQuarter or PeriodYear
}

// Repository handles all loan database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PeriodStart translates a period name into its cutoff time. Unknown
// periods mean "everything" and report ok=false.
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	switch period {
	case PeriodMonth:
		return now.AddDate(0, -1, 0), true
	case PeriodQuarter:
		return now.AddDate(0, -3, 0), true
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// GetByID retrieves a loan with its book and student preloaded. The book is
// loaded even if it was soft-deleted after the loan was made.
func (r *Repository) GetByID(id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Student").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Find retrieves loans matching the filter, most recent first.
func (r *Repository) Find(f Filter) ([]entities.Loan, error) {
	query := r.db.Model(&entities.Loan{}).
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Student")

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.
			Joins("JOIN books ON books.id = loans.book_id").
			Joins("JOIN students ON students.id = loans.student_id").
			Where("books.title LIKE ? OR books.code LIKE ? OR students.name LIKE ?",
				pattern, pattern, pattern)
	}
	if f.Status != "" {
		query = query.Where("loans.status = ?", f.Status)
	}
	if since, ok := PeriodStart(f.Period, time.Now()); ok {
		query = query.Where("loans.borrowed_at >= ?", since)
	}

	var loans []entities.Loan
	err := query.Order("loans.borrowed_at DESC").Find(&loans).Error
	return loans, err
}

// Since retrieves loans borrowed at or after the given time, most recent first.
func (r *Repository) Since(start time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Student").
		Where("borrowed_at >= ?", start).
		Order("borrowed_at DESC").
		Find(&loans).Error
	return loans, err
}

// HasActive reports whether the student already holds an active loan of the book.
func (r *Repository) HasActive(bookID, studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("book_id = ? AND student_id = ? AND status = ?",
			bookID, studentID, entities.LoanStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).Count(&count).Error
	return count, err
}

func (r *Repository) CountByStatus(status entities.LoanStatus) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountOverdue returns the number of active loans past their due date.
func (r *Repository) CountOverdue(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("status = ? AND due_date < ?", entities.LoanStatusActive, now).
		Count(&count).Error
	return count, err
}

// Overdue retrieves active loans past their due date, most overdue first.
func (r *Repository) Overdue(now time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Student").
		Where("status = ? AND due_date < ?", entities.LoanStatusActive, now).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// Recent retrieves the most recently created loans.
func (r *Repository) Recent(limit int) ([]entities.Loan, error) {
	if limit <= 0 {
		limit = 10
	}
	var loans []entities.Loan
	err := r.db.
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Student").
		Order("created_at DESC").
		Limit(limit).
		Find(&loans).Error
	return loans, err
}
