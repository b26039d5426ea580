// Package students implements student registration and lookups.
package students

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	studentrepo "github.com/schoolshelf/librarian/internal/database/students"
	"github.com/schoolshelf/librarian/internal/entities"
)

var (
	ErrStudentNotFound       = errors.New("student not found")
	ErrNameRequired          = errors.New("name is required")
	ErrRegistrationRequired  = errors.New("registration number is required")
	ErrDuplicateRegistration = errors.New("registration number already exists in the system")
)

// CreateStudentData carries the fields accepted when registering a student.
type CreateStudentData struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Registration string `json:"registration"`
	Grade        string `json:"grade"`
	Class        string `json:"class"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// UpdateStudentData carries the fields accepted when updating a student.
// Nil pointers mean "leave unchanged".
type UpdateStudentData struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Registration *string `json:"registration"`
	Grade        *string `json:"grade"`
	Class        *string `json:"class"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
}

// Stats summarizes the student body.
type Stats struct {
	TotalStudents    int64                    `json:"totalStudents"`
	ActiveStudents   int64                    `json:"activeStudents"` // holding at least one book
	InactiveStudents int64                    `json:"inactiveStudents"`
	StudentsByGrade  []studentrepo.GradeCount `json:"studentsByGrade"`
}

// Service implements student operations.
type Service struct {
	repo *studentrepo.Repository
}

func NewService(repo *studentrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new student.
func (s *Service) Create(data CreateStudentData) (*entities.Student, error) {
	if strings.TrimSpace(data.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(data.Registration) == "" {
		return nil, ErrRegistrationRequired
	}

	student := &entities.Student{
		Name:         data.Name,
		Email:        data.Email,
		Registration: data.Registration,
		Grade:        data.Grade,
		Class:        data.Class,
		Phone:        data.Phone,
		Address:      data.Address,
	}
	if err := s.repo.Create(student); err != nil {
		return nil, translateConstraintErr(err)
	}
	return student, nil
}

// Update modifies a student.
func (s *Service) Update(id uint, data UpdateStudentData) (*entities.Student, error) {
	student, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if data.Name != nil {
		student.Name = *data.Name
	}
	if data.Email != nil {
		student.Email = *data.Email
	}
	if data.Registration != nil {
		student.Registration = *data.Registration
	}
	if data.Grade != nil {
		student.Grade = *data.Grade
	}
	if data.Class != nil {
		student.Class = *data.Class
	}
	if data.Phone != nil {
		student.Phone = *data.Phone
	}
	if data.Address != nil {
		student.Address = *data.Address
	}

	if err := s.repo.Update(student); err != nil {
		return nil, translateConstraintErr(err)
	}
	return student, nil
}

// Delete removes a student record permanently.
func (s *Service) Delete(id uint) error {
	err := s.repo.Delete(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStudentNotFound
	}
	return err
}

// Get retrieves a student with active loans preloaded.
func (s *Service) Get(id uint) (*entities.Student, error) {
	student, err := s.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotFound
	}
	return student, err
}

// Find lists students matching the filter.
func (s *Service) Find(f studentrepo.Filter) ([]entities.Student, error) {
	return s.repo.Find(f)
}

// TopBorrowers lists the students with the most loans overall.
func (s *Service) TopBorrowers(limit int) ([]entities.Student, error) {
	return s.repo.TopBorrowers(limit)
}

// GetStats summarizes the student body.
func (s *Service) GetStats() (*Stats, error) {
	total, err := s.repo.Count()
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountWithActiveLoans()
	if err != nil {
		return nil, err
	}
	byGrade, err := s.repo.CountByGrade()
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalStudents:    total,
		ActiveStudents:   active,
		InactiveStudents: total - active,
		StudentsByGrade:  byGrade,
	}, nil
}

// translateConstraintErr maps the registration uniqueness violation to a
// descriptive domain error.
func translateConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "students.registration") {
		return ErrDuplicateRegistration
	}
	return err
}
