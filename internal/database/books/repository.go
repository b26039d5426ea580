// Package books provides database operations for the book catalog.
package books

import (
	"gorm.io/gorm"

	"github.com/schoolshelf/librarian/internal/entities"
)

// Status filter values accepted by Filter.
const (
	StatusAvailable = "available"
	StatusBorrowed  = "borrowed"
)

// Filter narrows book listings. Zero values mean "no filter".
type Filter struct {
	Search string // matches title, author, code or ISBN
	Genre  string
	Status string // StatusAvailable or StatusBorrowed
}

// GenreCount aggregates books per genre.
type GenreCount struct {
	Genre     string `json:"genre"`
	Count     int    `json:"count"`
	Available int    `json:"available"`
}

// YearCount aggregates books per publication year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// LocationCount aggregates books per shelf location.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// Repository handles all book database operations. Soft-deleted books are
// excluded from every query unless stated otherwise.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves an active (not soft-deleted) book.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByIDUnscoped retrieves a book even if it has been soft-deleted.
func (r *Repository) GetByIDUnscoped(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Unscoped().First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByCode retrieves an active book by its generated code.
func (r *Repository) GetByCode(code string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("code = ?", code).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Find retrieves active books matching the filter, ordered by title.
func (r *Repository) Find(f Filter) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{})

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where(
			"title LIKE ? OR author LIKE ? OR code LIKE ? OR isbn LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if f.Genre != "" {
		query = query.Where("genre = ?", f.Genre)
	}
	switch f.Status {
	case StatusAvailable:
		query = query.Where("current_quantity > 0")
	case StatusBorrowed:
		query = query.Where("current_quantity = 0")
	}

	var books []entities.Book
	err := query.Order("title ASC").Find(&books).Error
	return books, err
}

// FindAvailable retrieves active books with at least one copy on the shelf.
func (r *Repository) FindAvailable() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("current_quantity > 0").Order("title ASC").Find(&books).Error
	return books, err
}

// Count returns the number of active books (titles, not copies).
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// SumCurrentQuantity returns the total number of copies on the shelf.
func (r *Repository) SumCurrentQuantity() (int, error) {
	var sum int
	err := r.db.Model(&entities.Book{}).
		Select("COALESCE(SUM(current_quantity), 0)").
		Scan(&sum).Error
	return sum, err
}

// SumQuantity returns the total number of copies owned.
func (r *Repository) SumQuantity() (int, error) {
	var sum int
	err := r.db.Model(&entities.Book{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	return sum, err
}

// CountByGenre aggregates active books per genre with availability.
func (r *Repository) CountByGenre() ([]GenreCount, error) {
	var counts []GenreCount
	err := r.db.Model(&entities.Book{}).
		Select("genre, COUNT(*) AS count, COALESCE(SUM(current_quantity), 0) AS available").
		Group("genre").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

// CountByYear aggregates active books per publication year.
func (r *Repository) CountByYear() ([]YearCount, error) {
	var counts []YearCount
	err := r.db.Model(&entities.Book{}).
		Select("year, COUNT(*) AS count").
		Where("year IS NOT NULL").
		Group("year").
		Order("year ASC").
		Scan(&counts).Error
	return counts, err
}

// CountByLocation aggregates active books per shelf location.
func (r *Repository) CountByLocation() ([]LocationCount, error) {
	var counts []LocationCount
	err := r.db.Model(&entities.Book{}).
		Select("location, COUNT(*) AS count").
		Where("location <> ''").
		Group("location").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

// TopLoaned retrieves the most-borrowed active books.
func (r *Repository) TopLoaned(limit int) ([]entities.Book, error) {
	if limit <= 0 {
		limit = 10
	}
	var books []entities.Book
	err := r.db.Order("loans_count DESC").Limit(limit).Find(&books).Error
	return books, err
}

// Genres lists the distinct genres of active books.
func (r *Repository) Genres() ([]string, error) {
	var genres []string
	err := r.db.Model(&entities.Book{}).
		Distinct("genre").
		Order("genre ASC").
		Pluck("genre", &genres).Error
	return genres, err
}

// RecentlyUpdated retrieves active books ordered by last modification.
func (r *Repository) RecentlyUpdated(limit int) ([]entities.Book, error) {
	if limit <= 0 {
		limit = 10
	}
	var books []entities.Book
	err := r.db.Order("updated_at DESC").Limit(limit).Find(&books).Error
	return books, err
}
