package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schoolshelf/librarian/internal/audit"
	"github.com/schoolshelf/librarian/internal/books"
	auditrepo "github.com/schoolshelf/librarian/internal/database/audit"
	bookrepo "github.com/schoolshelf/librarian/internal/database/books"
	loanrepo "github.com/schoolshelf/librarian/internal/database/loans"
	studentrepo "github.com/schoolshelf/librarian/internal/database/students"
	"github.com/schoolshelf/librarian/internal/entities"
	"github.com/schoolshelf/librarian/internal/loans"
	"github.com/schoolshelf/librarian/internal/students"
)

func setupTestService(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	err = db.AutoMigrate(
		&entities.Book{}, &entities.BookCodeSequence{},
		&entities.Student{}, &entities.Loan{}, &entities.AuditLog{},
	)
	require.NoError(t, err)

	bookRepo := bookrepo.NewRepository(db)
	studentRepo := studentrepo.NewRepository(db)
	loanRepo := loanrepo.NewRepository(db)
	auditService := audit.NewService(auditrepo.NewRepository(db), 5*time.Second)

	bookSvc := books.NewService(db, bookRepo, loanRepo, auditService)
	studentSvc := students.NewService(studentRepo)
	loanSvc := loans.NewService(db, loanRepo, bookRepo, studentRepo, 14)

	return db, NewService(bookRepo, studentRepo, loanRepo, bookSvc, studentSvc, loanSvc)
}

func seedLibrary(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now()

	booksToCreate := []*entities.Book{
		{Code: "0001/25-LIT", Title: "Dom Casmurro", Author: "Machado de Assis",
			Genre: "Literatura Brasileira", Location: "Estante A",
			Quantity: 3, CurrentQuantity: 2, LoansCount: 2, EntryDate: now},
		{Code: "0002/25-ROM", Title: "O Cortiço", Author: "Aluísio Azevedo",
			Genre: "Romance", Location: "Estante B",
			Quantity: 2, CurrentQuantity: 1, LoansCount: 1, EntryDate: now},
	}
	for _, book := range booksToCreate {
		require.NoError(t, db.Create(book).Error)
	}

	studentsToCreate := []*entities.Student{
		{Name: "João Silva", Registration: "2024001", Grade: "6º Ano"},
		{Name: "Ana Costa", Registration: "2024002", Grade: "7º Ano"},
	}
	for _, student := range studentsToCreate {
		require.NoError(t, db.Create(student).Error)
	}

	loansToCreate := []*entities.Loan{
		// João returned Dom Casmurro last week
		{BookID: 1, StudentID: 1, Status: entities.LoanStatusReturned,
			BorrowedAt: now.AddDate(0, 0, -10), DueDate: now.AddDate(0, 0, 4),
			ReturnedAt: timePtr(now.AddDate(0, 0, -3))},
		// João holds Dom Casmurro again
		{BookID: 1, StudentID: 1, Status: entities.LoanStatusActive,
			BorrowedAt: now.AddDate(0, 0, -2), DueDate: now.AddDate(0, 0, 12)},
		// Ana is overdue with O Cortiço
		{BookID: 2, StudentID: 2, Status: entities.LoanStatusActive,
			BorrowedAt: now.AddDate(0, 0, -20), DueDate: now.AddDate(0, 0, -6)},
	}
	for _, loan := range loansToCreate {
		require.NoError(t, db.Create(loan).Error)
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestService_BooksReport(t *testing.T) {
	db, service := setupTestService(t)
	seedLibrary(t, db)

	report, err := service.BooksReport(bookrepo.Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.TotalBooks)
	assert.Equal(t, 3, report.AvailableBooks)
	assert.Equal(t, 5, report.TotalQuantity)
	assert.Equal(t, 2, report.BorrowedBooks)
	assert.Len(t, report.AllBooks, 2)
	assert.Len(t, report.BooksByGenre, 2)
	assert.Len(t, report.BooksByLocation, 2)
	require.NotEmpty(t, report.TopLoanedBooks)
	assert.Equal(t, "Dom Casmurro", report.TopLoanedBooks[0].Title)
}

func TestService_LoansReport(t *testing.T) {
	db, service := setupTestService(t)
	seedLibrary(t, db)

	report, err := service.LoansReport("month")
	require.NoError(t, err)

	assert.Equal(t, "month", report.Period)
	assert.Equal(t, 3, report.TotalLoans)
	assert.Equal(t, 2, report.ActiveLoans)
	assert.Equal(t, 1, report.ReturnedLoans)
	assert.Equal(t, 1, report.OverdueLoans)
	assert.Len(t, report.LoanTrends, 4)

	require.NotEmpty(t, report.TopLoanedBooks)
	assert.Equal(t, "Dom Casmurro", report.TopLoanedBooks[0].Title)
	assert.Equal(t, 2, report.TopLoanedBooks[0].Loans)

	require.NotEmpty(t, report.TopBorrowers)
	assert.Equal(t, "João Silva", report.TopBorrowers[0].Name)
	assert.Equal(t, 2, report.TopBorrowers[0].Loans)
}

func TestService_CombinedStats(t *testing.T) {
	db, service := setupTestService(t)
	seedLibrary(t, db)

	stats, err := service.CombinedStats()
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalBooks)
	assert.Equal(t, 3, stats.AvailableBooks)
	assert.Equal(t, int64(2), stats.TotalStudents)
	assert.Equal(t, int64(2), stats.ActiveLoans)
	assert.Equal(t, int64(1), stats.OverdueLoans)
}

func TestService_DashboardStats(t *testing.T) {
	db, service := setupTestService(t)
	seedLibrary(t, db)

	stats, err := service.DashboardStats()
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalBooks)
	assert.Equal(t, 3, stats.AvailableBooks)
	assert.Equal(t, int64(2), stats.BorrowedBooks)
	assert.Equal(t, int64(1), stats.OverdueBooks)
	assert.Equal(t, int64(2), stats.TotalStudents)
}

func TestService_RecentActivities(t *testing.T) {
	db, service := setupTestService(t)
	seedLibrary(t, db)

	activities, err := service.RecentActivities(15)
	require.NoError(t, err)
	require.NotEmpty(t, activities)

	// newest first
	for i := 1; i < len(activities); i++ {
		assert.False(t, activities[i].Timestamp.After(activities[i-1].Timestamp))
	}

	types := map[string]bool{}
	for _, activity := range activities {
		types[activity.Type] = true
	}
	assert.True(t, types["loan"])
	assert.True(t, types["student"])

	limited, err := service.RecentActivities(2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(limited), 2)
}

func TestService_Notifications(t *testing.T) {
	db, service := setupTestService(t)
	seedLibrary(t, db)

	notifications, err := service.Notifications(10)
	require.NoError(t, err)
	require.NotEmpty(t, notifications)

	var hasOverdue bool
	for _, notification := range notifications {
		if notification.Type == "overdue" {
			hasOverdue = true
			assert.Contains(t, notification.Message, "overdue")
		}
	}
	assert.True(t, hasOverdue)
}
