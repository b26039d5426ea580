// Package students provides database operations for student records.
package students

import (
	"gorm.io/gorm"

	"github.com/schoolshelf/librarian/internal/entities"
)

// Filter narrows student listings. Zero values mean "no filter".
type Filter struct {
	Search string // matches name, email or registration number
	Grade  string
}

// GradeCount aggregates students per grade.
type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

// Repository handles all student database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(student *entities.Student) error {
	return r.db.Create(student).Error
}

func (r *Repository) Update(student *entities.Student) error {
	return r.db.Save(student).Error
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Student{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a student with their active loans preloaded.
func (r *Repository) GetByID(id uint) (*entities.Student, error) {
	var student entities.Student
	err := r.db.
		Preload("Loans", "status = ?", entities.LoanStatusActive).
		First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetByRegistration retrieves a student by registration number.
func (r *Repository) GetByRegistration(registration string) (*entities.Student, error) {
	var student entities.Student
	err := r.db.Where("registration = ?", registration).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Find retrieves students matching the filter, ordered by name, with their
// active loans preloaded.
func (r *Repository) Find(f Filter) ([]entities.Student, error) {
	query := r.db.Model(&entities.Student{}).
		Preload("Loans", "status = ?", entities.LoanStatusActive)

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where(
			"name LIKE ? OR email LIKE ? OR registration LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if f.Grade != "" {
		query = query.Where("grade = ?", f.Grade)
	}

	var students []entities.Student
	err := query.Order("name ASC").Find(&students).Error
	return students, err
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Student{}).Count(&count).Error
	return count, err
}

// CountWithActiveLoans returns how many students currently hold a book.
func (r *Repository) CountWithActiveLoans() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Student{}).
		Where("id IN (?)", r.db.Model(&entities.Loan{}).
			Select("student_id").
			Where("status = ?", entities.LoanStatusActive)).
		Count(&count).Error
	return count, err
}

// CountByGrade aggregates students per grade.
func (r *Repository) CountByGrade() ([]GradeCount, error) {
	var counts []GradeCount
	err := r.db.Model(&entities.Student{}).
		Select("grade, COUNT(*) AS count").
		Group("grade").
		Order("grade ASC").
		Scan(&counts).Error
	return counts, err
}

// TopBorrowers retrieves the students with the most loans overall.
func (r *Repository) TopBorrowers(limit int) ([]entities.Student, error) {
	if limit <= 0 {
		limit = 5
	}
	var students []entities.Student
	err := r.db.Model(&entities.Student{}).
		Joins("LEFT JOIN loans ON loans.student_id = students.id").
		Group("students.id").
		Order("COUNT(loans.id) DESC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

// Recent retrieves the most recently registered students.
func (r *Repository) Recent(limit int) ([]entities.Student, error) {
	if limit <= 0 {
		limit = 10
	}
	var students []entities.Student
	err := r.db.Order("created_at DESC").Limit(limit).Find(&students).Error
	return students, err
}
