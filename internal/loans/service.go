// Package loans implements the loan lifecycle and the inventory consistency
// rule: a book's available copy count always reflects its active loans.
package loans

import (
	"errors"
	"time"

	"gorm.io/gorm"

	bookrepo "github.com/schoolshelf/librarian/internal/database/books"
	loanrepo "github.com/schoolshelf/librarian/internal/database/loans"
	studentrepo "github.com/schoolshelf/librarian/internal/database/students"
	"github.com/schoolshelf/librarian/internal/entities"
)

var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrBookNotFound      = errors.New("book not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrNoCopiesAvailable = errors.New("no copies of this book are available")
	ErrAlreadyBorrowed   = errors.New("student already has an active loan of this book")
	ErrAlreadyReturned   = errors.New("loan has already been returned")
)

// CreateLoanData carries the fields accepted when creating a loan.
type CreateLoanData struct {
	BookID    uint       `json:"book_id"`
	StudentID uint       `json:"student_id"`
	DueDate   *time.Time `json:"due_date"`
	Notes     string     `json:"notes"`
}

// Stats summarizes loans.
type Stats struct {
	TotalLoans    int64 `json:"totalLoans"`
	ActiveLoans   int64 `json:"activeLoans"`
	ReturnedLoans int64 `json:"returnedLoans"`
	OverdueLoans  int64 `json:"overdueLoans"`
}

// Service implements the loan lifecycle.
type Service struct {
	db                *gorm.DB
	loans             *loanrepo.Repository
	books             *bookrepo.Repository
	students          *studentrepo.Repository
	defaultPeriodDays int
}

func NewService(db *gorm.DB, loans *loanrepo.Repository, books *bookrepo.Repository, students *studentrepo.Repository, defaultPeriodDays int) *Service {
	if defaultPeriodDays <= 0 {
		defaultPeriodDays = 14
	}
	return &Service{
		db:                db,
		loans:             loans,
		books:             books,
		students:          students,
		defaultPeriodDays: defaultPeriodDays,
	}
}

// Create lends a book to a student. It succeeds only if the book exists and
// is not soft-deleted, at least one copy is on the shelf, and the student does
// not already hold an active loan of the same book. The availability check
// and the counter updates happen in one guarded UPDATE inside the insert
// transaction, so two concurrent requests cannot both take the last copy.
func (s *Service) Create(data CreateLoanData) (*entities.Loan, error) {
	if _, err := s.books.GetByID(data.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if _, err := s.students.GetByID(data.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	dueDate := time.Now().AddDate(0, 0, s.defaultPeriodDays)
	if data.DueDate != nil {
		dueDate = *data.DueDate
	}

	var loanID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&entities.Loan{}).
			Where("book_id = ? AND student_id = ? AND status = ?",
				data.BookID, data.StudentID, entities.LoanStatusActive).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyBorrowed
		}

		// Availability check and decrement in one statement; zero rows
		// affected means the last copy left between here and the lookup.
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND current_quantity > 0", data.BookID).
			UpdateColumns(map[string]any{
				"current_quantity": gorm.Expr("current_quantity - 1"),
				"loans_count":      gorm.Expr("loans_count + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoCopiesAvailable
		}

		loan := &entities.Loan{
			BookID:     data.BookID,
			StudentID:  data.StudentID,
			Status:     entities.LoanStatusActive,
			BorrowedAt: time.Now(),
			DueDate:    dueDate,
			Notes:      data.Notes,
		}
		if err := tx.Create(loan).Error; err != nil {
			return err
		}
		loanID = loan.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loans.GetByID(loanID)
}

// Return marks a loan as returned and puts the copy back on the shelf. The
// status transition is guarded, so returning an already-returned loan fails
// instead of incrementing the available count a second time.
func (s *Service) Return(id uint) (*entities.Loan, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Loan{}).
			Where("id = ? AND status = ?", id, entities.LoanStatusActive).
			Updates(map[string]any{
				"status":      entities.LoanStatusReturned,
				"returned_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&entities.Loan{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrLoanNotFound
			}
			return ErrAlreadyReturned
		}

		var loan entities.Loan
		if err := tx.First(&loan, id).Error; err != nil {
			return err
		}
		return restoreCopy(tx, loan.BookID)
	})
	if err != nil {
		return nil, err
	}

	return s.loans.GetByID(id)
}

// Delete removes a loan record. Deleting an active loan counts as an implicit
// return: the book's available count is restored before the row goes away.
func (s *Service) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var loan entities.Loan
		if err := tx.First(&loan, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		if loan.Status == entities.LoanStatusActive {
			if err := restoreCopy(tx, loan.BookID); err != nil {
				return err
			}
		}

		return tx.Delete(&entities.Loan{}, id).Error
	})
}

// restoreCopy increments a book's available count, capped at the total
// quantity so that stray double-returns can never push it above the number
// of copies owned. The update applies even to soft-deleted books: a returned
// copy of a withdrawn title still belongs in its inventory.
func restoreCopy(tx *gorm.DB, bookID uint) error {
	return tx.Unscoped().Model(&entities.Book{}).
		Where("id = ? AND current_quantity < quantity", bookID).
		UpdateColumn("current_quantity", gorm.Expr("current_quantity + 1")).Error
}

// Get retrieves a loan with its book and student.
func (s *Service) Get(id uint) (*entities.Loan, error) {
	loan, err := s.loans.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLoanNotFound
	}
	return loan, err
}

// Find lists loans matching the filter.
func (s *Service) Find(f loanrepo.Filter) ([]entities.Loan, error) {
	return s.loans.Find(f)
}

// AvailableBooks lists active books with at least one copy on the shelf.
func (s *Service) AvailableBooks() ([]entities.Book, error) {
	return s.books.FindAvailable()
}

// Overdue lists active loans past their due date.
func (s *Service) Overdue() ([]entities.Loan, error) {
	return s.loans.Overdue(time.Now())
}

// CanBorrow reports whether the student could take out the book right now.
func (s *Service) CanBorrow(studentID, bookID uint) (bool, error) {
	active, err := s.loans.HasActive(bookID, studentID)
	if err != nil {
		return false, err
	}
	return !active, nil
}

// GetStats summarizes loans.
func (s *Service) GetStats() (*Stats, error) {
	total, err := s.loans.Count()
	if err != nil {
		return nil, err
	}
	active, err := s.loans.CountByStatus(entities.LoanStatusActive)
	if err != nil {
		return nil, err
	}
	returned, err := s.loans.CountByStatus(entities.LoanStatusReturned)
	if err != nil {
		return nil, err
	}
	overdue, err := s.loans.CountOverdue(time.Now())
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalLoans:    total,
		ActiveLoans:   active,
		ReturnedLoans: returned,
		OverdueLoans:  overdue,
	}, nil
}
