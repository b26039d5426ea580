package books

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

	err = db.AutoMigrate(&entities.Book{})
	require.NoError(t, err)

	return db
}

func seedBook(t *testing.T, db *gorm.DB, book entities.Book) *entities.Book {
	t.Helper()
	if book.EntryDate.IsZero() {
		book.EntryDate = time.Now()
	}
	require.NoError(t, db.Create(&book).Error)
	return &book
}

func TestRepository_Find(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	isbn := "978-85-7232-004-0"
	seedBook(t, db, entities.Book{
		Code: "0001/25-FAN", Title: "Harry Potter e a Pedra Filosofal", Author: "J.K. Rowling",
		Genre: "Fantasia", ISBN: &isbn, Quantity: 3, CurrentQuantity: 3,
	})
	seedBook(t, db, entities.Book{
		Code: "0002/25-LIT", Title: "Dom Casmurro", Author: "Machado de Assis",
		Genre: "Literatura Brasileira", Quantity: 2, CurrentQuantity: 0,
	})
	deleted := seedBook(t, db, entities.Book{
		Code: "0003/25-LIT", Title: "O Cortiço", Author: "Aluísio Azevedo",
		Genre: "Literatura Brasileira", Quantity: 1, CurrentQuantity: 1,
	})
	require.NoError(t, db.Delete(&entities.Book{}, deleted.ID).Error)

	t.Run("excludes soft-deleted books", func(t *testing.T) {
		books, err := repo.Find(Filter{})
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("search matches title", func(t *testing.T) {
		books, err := repo.Find(Filter{Search: "Casmurro"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Dom Casmurro", books[0].Title)
	})

	t.Run("search matches author", func(t *testing.T) {
		books, err := repo.Find(Filter{Search: "Rowling"})
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("search matches code", func(t *testing.T) {
		books, err := repo.Find(Filter{Search: "0001/25"})
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("search matches ISBN", func(t *testing.T) {
		books, err := repo.Find(Filter{Search: "978-85-7232-004"})
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("filters by genre", func(t *testing.T) {
		books, err := repo.Find(Filter{Genre: "Literatura Brasileira"})
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("filters by availability", func(t *testing.T) {
		available, err := repo.Find(Filter{Status: StatusAvailable})
		require.NoError(t, err)
		require.Len(t, available, 1)
		assert.Equal(t, "Harry Potter e a Pedra Filosofal", available[0].Title)

		borrowed, err := repo.Find(Filter{Status: StatusBorrowed})
		require.NoError(t, err)
		require.Len(t, borrowed, 1)
		assert.Equal(t, "Dom Casmurro", borrowed[0].Title)
	})
}

func TestRepository_GetByIDUnscoped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	book := seedBook(t, db, entities.Book{
		Code: "0001/25-FAN", Title: "T", Author: "A", Genre: "Fantasia",
		Quantity: 1, CurrentQuantity: 1,
	})
	require.NoError(t, db.Delete(&entities.Book{}, book.ID).Error)

	_, err := repo.GetByID(book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByIDUnscoped(book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Code, got.Code)
	assert.True(t, got.DeletedAt.Valid)
}

func TestRepository_Aggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	year1997 := 1997
	year1899 := 1899
	seedBook(t, db, entities.Book{
		Code: "0001/25-FAN", Title: "A", Author: "X", Genre: "Fantasia",
		Year: &year1997, Location: "Prateleira C1", Quantity: 3, CurrentQuantity: 2,
	})
	seedBook(t, db, entities.Book{
		Code: "0002/25-FAN", Title: "B", Author: "Y", Genre: "Fantasia",
		Year: &year1997, Location: "Prateleira C1", Quantity: 1, CurrentQuantity: 1,
	})
	seedBook(t, db, entities.Book{
		Code: "0003/25-LIT", Title: "C", Author: "Z", Genre: "Literatura Brasileira",
		Year: &year1899, Location: "Prateleira A1", Quantity: 2, CurrentQuantity: 0,
	})

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	onShelf, err := repo.SumCurrentQuantity()
	require.NoError(t, err)
	assert.Equal(t, 3, onShelf)

	owned, err := repo.SumQuantity()
	require.NoError(t, err)
	assert.Equal(t, 6, owned)

	genres, err := repo.CountByGenre()
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Fantasia", genres[0].Genre)
	assert.Equal(t, 2, genres[0].Count)
	assert.Equal(t, 3, genres[0].Available)

	years, err := repo.CountByYear()
	require.NoError(t, err)
	require.Len(t, years, 2)
	assert.Equal(t, 1899, years[0].Year)

	locations, err := repo.CountByLocation()
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Prateleira C1", locations[0].Location)
	assert.Equal(t, 2, locations[0].Count)
}

func TestRepository_TopLoaned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedBook(t, db, entities.Book{
		Code: "0001/25-FAN", Title: "Rarely Read", Author: "X", Genre: "Fantasia",
		Quantity: 1, CurrentQuantity: 1, LoansCount: 1,
	})
	seedBook(t, db, entities.Book{
		Code: "0002/25-FAN", Title: "Crowd Favourite", Author: "Y", Genre: "Fantasia",
		Quantity: 1, CurrentQuantity: 0, LoansCount: 9,
	})

	top, err := repo.TopLoaned(1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Crowd Favourite", top[0].Title)
}
