// Package books implements the catalog service: book CRUD, automatic code
// generation and the audit trail of every mutation.
package books

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/schoolshelf/librarian/internal/audit"
	bookrepo "github.com/schoolshelf/librarian/internal/database/books"
	loanrepo "github.com/schoolshelf/librarian/internal/database/loans"
	"github.com/schoolshelf/librarian/internal/entities"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrDuplicateISBN   = errors.New("ISBN already exists in the system, use a different ISBN")
	ErrDuplicateCode   = errors.New("book code already exists, try again")
	ErrTitleRequired   = errors.New("title is required")
	ErrAuthorRequired  = errors.New("author is required")
	ErrGenreRequired   = errors.New("genre is required")
	ErrQuantityTooLow  = errors.New("quantity cannot be lower than the number of borrowed copies")
	ErrBookNotDeleted  = errors.New("book is not deleted")
)

// CreateBookData carries the fields accepted when registering a book.
type CreateBookData struct {
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Publisher   string     `json:"publisher"`
	Genre       string     `json:"genre"`
	ISBN        *string    `json:"isbn"`
	Year        *int       `json:"year"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	EntryDate   *time.Time `json:"entry_date"`
	Quantity    int        `json:"quantity"`
}

// UpdateBookData carries the fields accepted when updating a book.
// Nil pointers mean "leave unchanged".
type UpdateBookData struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Publisher   *string `json:"publisher"`
	Genre       *string `json:"genre"`
	ISBN        *string `json:"isbn"`
	Year        *int    `json:"year"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity"`
}

// Stats summarizes the catalog.
type Stats struct {
	TotalBooks     int64                 `json:"totalBooks"`
	AvailableBooks int                   `json:"availableBooks"` // copies on the shelf
	BorrowedBooks  int64                 `json:"borrowedBooks"`  // active loans
	Genres         []bookrepo.GenreCount `json:"genres"`
	BooksByYear    []bookrepo.YearCount  `json:"booksByYear"`
}

// Service implements catalog operations over the book repository.
type Service struct {
	db    *gorm.DB
	repo  *bookrepo.Repository
	loans *loanrepo.Repository
	audit *audit.Service
}

func NewService(db *gorm.DB, repo *bookrepo.Repository, loans *loanrepo.Repository, auditService *audit.Service) *Service {
	return &Service{db: db, repo: repo, loans: loans, audit: auditService}
}

// Create registers a new book. A code is claimed and the book inserted in a
// single transaction; the audit entry is written afterwards and its failure
// never fails the creation.
func (s *Service) Create(data CreateBookData, userID uint) (*entities.Book, error) {
	if strings.TrimSpace(data.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(data.Author) == "" {
		return nil, ErrAuthorRequired
	}
	if strings.TrimSpace(data.Genre) == "" {
		return nil, ErrGenreRequired
	}
	if data.Quantity <= 0 {
		data.Quantity = 1
	}

	entryDate := time.Now()
	if data.EntryDate != nil {
		entryDate = *data.EntryDate
	}

	var book *entities.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		code, err := claimBookCode(tx, data.Genre, time.Now())
		if err != nil {
			return err
		}

		book = &entities.Book{
			Code:            code,
			Title:           data.Title,
			Author:          data.Author,
			Publisher:       data.Publisher,
			Genre:           data.Genre,
			ISBN:            normalizeISBN(data.ISBN),
			Year:            data.Year,
			Location:        data.Location,
			Description:     data.Description,
			EntryDate:       entryDate,
			Quantity:        data.Quantity,
			CurrentQuantity: data.Quantity,
			LoansCount:      0,
		}
		if err := tx.Create(book).Error; err != nil {
			return translateConstraintErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.audit.LogBookCreation(book, userID); err != nil {
		log.Printf("Failed to write audit log for book %d: %v", book.ID, err)
	}

	return book, nil
}

// Update modifies a book and records one audit entry per changed field.
// Changing the total quantity adjusts the available count by the same delta
// so that it keeps tracking active loans; the new total may not drop below
// the number of copies currently out.
func (s *Service) Update(id uint, data UpdateBookData, userID uint) (*entities.Book, error) {
	current, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	changes, updates, err := diffBook(current, data)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return current, nil
	}

	err = s.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return nil, translateConstraintErr(err)
	}

	for _, change := range changes {
		if _, err := s.audit.LogBookUpdate(current, change.field, change.oldValue, change.newValue, userID); err != nil {
			log.Printf("Failed to write audit log for book %d: %v", id, err)
		}
	}

	return s.repo.GetByID(id)
}

// Delete soft-deletes a book. The row and its code remain reserved.
func (s *Service) Delete(id uint, userID uint) error {
	book, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if err := s.db.Delete(&entities.Book{}, id).Error; err != nil {
		return err
	}

	if _, err := s.audit.LogBookDeletion(book, userID); err != nil {
		log.Printf("Failed to write audit log for book %d: %v", id, err)
	}
	return nil
}

// Restore clears a book's soft-delete marker.
func (s *Service) Restore(id uint, userID uint) (*entities.Book, error) {
	book, err := s.repo.GetByIDUnscoped(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if !book.DeletedAt.Valid {
		return nil, ErrBookNotDeleted
	}

	err = s.db.Unscoped().Model(&entities.Book{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
	if err != nil {
		return nil, err
	}

	if _, err := s.audit.LogBookRestoration(book, userID); err != nil {
		log.Printf("Failed to write audit log for book %d: %v", id, err)
	}

	return s.repo.GetByID(id)
}

// Get retrieves an active book.
func (s *Service) Get(id uint) (*entities.Book, error) {
	book, err := s.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	return book, err
}

// Find lists active books matching the filter.
func (s *Service) Find(f bookrepo.Filter) ([]entities.Book, error) {
	return s.repo.Find(f)
}

// GetStats summarizes the catalog.
func (s *Service) GetStats() (*Stats, error) {
	total, err := s.repo.Count()
	if err != nil {
		return nil, err
	}
	available, err := s.repo.SumCurrentQuantity()
	if err != nil {
		return nil, err
	}
	borrowed, err := s.loans.CountByStatus(entities.LoanStatusActive)
	if err != nil {
		return nil, err
	}
	genres, err := s.repo.CountByGenre()
	if err != nil {
		return nil, err
	}
	byYear, err := s.repo.CountByYear()
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalBooks:     total,
		AvailableBooks: available,
		BorrowedBooks:  borrowed,
		Genres:         genres,
		BooksByYear:    byYear,
	}, nil
}

type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

// diffBook compares the requested update against the stored book and returns
// the audit-worthy changes plus the column updates to apply.
func diffBook(current *entities.Book, data UpdateBookData) ([]fieldChange, map[string]any, error) {
	var changes []fieldChange
	updates := map[string]any{}

	setString := func(field, column, oldValue string, newValue *string) {
		if newValue == nil || *newValue == oldValue {
			return
		}
		changes = append(changes, fieldChange{field, oldValue, *newValue})
		updates[column] = *newValue
	}

	setString("title", "title", current.Title, data.Title)
	setString("author", "author", current.Author, data.Author)
	setString("publisher", "publisher", current.Publisher, data.Publisher)
	setString("genre", "genre", current.Genre, data.Genre)
	setString("location", "location", current.Location, data.Location)
	setString("description", "description", current.Description, data.Description)

	if isbn := normalizeISBN(data.ISBN); isbn != nil && (current.ISBN == nil || *current.ISBN != *isbn) {
		oldValue := ""
		if current.ISBN != nil {
			oldValue = *current.ISBN
		}
		changes = append(changes, fieldChange{"isbn", oldValue, *isbn})
		updates["isbn"] = *isbn
	}

	if data.Year != nil && (current.Year == nil || *current.Year != *data.Year) {
		oldValue := ""
		if current.Year != nil {
			oldValue = fmt.Sprintf("%d", *current.Year)
		}
		changes = append(changes, fieldChange{"year", oldValue, fmt.Sprintf("%d", *data.Year)})
		updates["year"] = *data.Year
	}

	if data.Quantity != nil && *data.Quantity != current.Quantity {
		borrowed := current.Quantity - current.CurrentQuantity
		if *data.Quantity < borrowed {
			return nil, nil, ErrQuantityTooLow
		}
		changes = append(changes, fieldChange{
			"quantity",
			fmt.Sprintf("%d", current.Quantity),
			fmt.Sprintf("%d", *data.Quantity),
		})
		updates["quantity"] = *data.Quantity
		updates["current_quantity"] = *data.Quantity - borrowed
	}

	return changes, updates, nil
}

// normalizeISBN treats empty strings as "not provided".
func normalizeISBN(isbn *string) *string {
	if isbn == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*isbn)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// translateConstraintErr maps SQLite uniqueness violations on ISBN and code
// to descriptive domain errors. Everything else passes through untouched.
func translateConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	if strings.Contains(msg, "books.isbn") {
		return ErrDuplicateISBN
	}
	if strings.Contains(msg, "books.code") {
		return ErrDuplicateCode
	}
	return err
}
