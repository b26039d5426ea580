// Package reports aggregates catalog, student and loan data for the report
// and dashboard endpoints.
package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/schoolshelf/librarian/internal/books"
	bookrepo "github.com/schoolshelf/librarian/internal/database/books"
	loanrepo "github.com/schoolshelf/librarian/internal/database/loans"
	studentrepo "github.com/schoolshelf/librarian/internal/database/students"
	"github.com/schoolshelf/librarian/internal/entities"
	"github.com/schoolshelf/librarian/internal/loans"
	"github.com/schoolshelf/librarian/internal/students"
)

// BooksReport is the payload of GET /api/reports/books.
type BooksReport struct {
	TotalBooks      int64                    `json:"totalBooks"`
	AvailableBooks  int                      `json:"availableBooks"`
	TotalQuantity   int                      `json:"totalQuantity"`
	BorrowedBooks   int                      `json:"borrowedBooks"`
	BooksByGenre    []bookrepo.GenreCount    `json:"booksByGenre"`
	TopLoanedBooks  []entities.Book          `json:"topLoanedBooks"`
	BooksByLocation []bookrepo.LocationCount `json:"booksByLocation"`
	AllBooks        []entities.Book          `json:"allBooks"`
}

// TrendBucket is one week of loan activity.
type TrendBucket struct {
	Period  string `json:"period"`
	Loans   int    `json:"loans"`
	Returns int    `json:"returns"`
}

// BookLoanCount ranks a book by loans within the report period.
type BookLoanCount struct {
	Title   string `json:"title"`
	Code    string `json:"code"`
	Author  string `json:"author"`
	Loans   int    `json:"loans"`
	Returns int    `json:"returns"`
}

// BorrowerCount ranks a student by loans within the report period.
type BorrowerCount struct {
	Name    string `json:"name"`
	Grade   string `json:"grade"`
	Loans   int    `json:"loans"`
	Returns int    `json:"returns"`
}

// LoansReport is the payload of GET /api/reports/loans.
type LoansReport struct {
	Period         string          `json:"period"`
	TotalLoans     int             `json:"totalLoans"`
	ActiveLoans    int             `json:"activeLoans"`
	ReturnedLoans  int             `json:"returnedLoans"`
	OverdueLoans   int             `json:"overdueLoans"`
	LoanTrends     []TrendBucket   `json:"loanTrends"`
	TopLoanedBooks []BookLoanCount `json:"topLoanedBooks"`
	TopBorrowers   []BorrowerCount `json:"topBorrowers"`
	Loans          []entities.Loan `json:"loans"`
}

// CombinedStats is the payload of GET /api/stats.
type CombinedStats struct {
	Books    *books.Stats    `json:"books"`
	Students *students.Stats `json:"students"`
	Loans    *loans.Stats    `json:"loans"`

	TotalBooks     int64 `json:"totalBooks"`
	AvailableBooks int   `json:"availableBooks"`
	BorrowedBooks  int64 `json:"borrowedBooks"`
	TotalStudents  int64 `json:"totalStudents"`
	ActiveLoans    int64 `json:"activeLoans"`
	OverdueLoans   int64 `json:"overdueLoans"`
}

// DashboardStats is the payload of GET /api/dashboard/stats.
type DashboardStats struct {
	TotalBooks     int64 `json:"totalBooks"`
	AvailableBooks int   `json:"availableBooks"`
	BorrowedBooks  int64 `json:"borrowedBooks"`
	OverdueBooks   int64 `json:"overdueBooks"`
	TotalStudents  int64 `json:"totalStudents"`
	ActiveLoans    int64 `json:"activeLoans"`
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`   // "loan", "book" or "student"
	Action    string         `json:"action"` // "created", "returned" or "updated"
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Notification is one entry of the notifications feed.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "loan" or "overdue"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Service builds reports from the repositories and domain services.
type Service struct {
	bookRepo    *bookrepo.Repository
	studentRepo *studentrepo.Repository
	loanRepo    *loanrepo.Repository
	books       *books.Service
	students    *students.Service
	loans       *loans.Service
}

func NewService(bookRepo *bookrepo.Repository, studentRepo *studentrepo.Repository, loanRepo *loanrepo.Repository, bookSvc *books.Service, studentSvc *students.Service, loanSvc *loans.Service) *Service {
	return &Service{
		bookRepo:    bookRepo,
		studentRepo: studentRepo,
		loanRepo:    loanRepo,
		books:       bookSvc,
		students:    studentSvc,
		loans:       loanSvc,
	}
}

// BooksReport assembles the catalog report, optionally filtered.
func (s *Service) BooksReport(filter bookrepo.Filter) (*BooksReport, error) {
	allBooks, err := s.bookRepo.Find(filter)
	if err != nil {
		return nil, err
	}
	total, err := s.bookRepo.Count()
	if err != nil {
		return nil, err
	}
	available, err := s.bookRepo.SumCurrentQuantity()
	if err != nil {
		return nil, err
	}
	totalQuantity, err := s.bookRepo.SumQuantity()
	if err != nil {
		return nil, err
	}
	byGenre, err := s.bookRepo.CountByGenre()
	if err != nil {
		return nil, err
	}
	topLoaned, err := s.bookRepo.TopLoaned(10)
	if err != nil {
		return nil, err
	}
	byLocation, err := s.bookRepo.CountByLocation()
	if err != nil {
		return nil, err
	}

	return &BooksReport{
		TotalBooks:      total,
		AvailableBooks:  available,
		TotalQuantity:   totalQuantity,
		BorrowedBooks:   totalQuantity - available,
		BooksByGenre:    byGenre,
		TopLoanedBooks:  topLoaned,
		BooksByLocation: byLocation,
		AllBooks:        allBooks,
	}, nil
}

// LoansReport assembles loan statistics for the given period
// ("month", "quarter", "year" or "" for everything).
func (s *Service) LoansReport(period string) (*LoansReport, error) {
	now := time.Now()
	start, ok := loanrepo.PeriodStart(period, now)
	if !ok {
		start = time.Time{}
	}

	periodLoans, err := s.loanRepo.Since(start)
	if err != nil {
		return nil, err
	}

	report := &LoansReport{
		Period:     period,
		TotalLoans: len(periodLoans),
		Loans:      periodLoans,
	}
	for i := range periodLoans {
		loan := &periodLoans[i]
		switch {
		case loan.Status == entities.LoanStatusReturned:
			report.ReturnedLoans++
		case loan.Overdue(now):
			report.ActiveLoans++
			report.OverdueLoans++
		default:
			report.ActiveLoans++
		}
	}

	report.LoanTrends = weeklyTrends(periodLoans, now)
	report.TopLoanedBooks = topLoanedBooks(periodLoans, 5)
	report.TopBorrowers = topBorrowers(periodLoans, 5)

	return report, nil
}

// weeklyTrends buckets loans into the last four weeks.
func weeklyTrends(loans []entities.Loan, now time.Time) []TrendBucket {
	trends := make([]TrendBucket, 0, 4)
	for week := 3; week >= 0; week-- {
		weekEnd := now.AddDate(0, 0, -7*week)
		weekStart := weekEnd.AddDate(0, 0, -7)

		bucket := TrendBucket{Period: fmt.Sprintf("Week %d", 4-week)}
		for i := range loans {
			loan := &loans[i]
			if loan.BorrowedAt.After(weekStart) && !loan.BorrowedAt.After(weekEnd) {
				bucket.Loans++
				if loan.Status == entities.LoanStatusReturned {
					bucket.Returns++
				}
			}
		}
		trends = append(trends, bucket)
	}
	return trends
}

func topLoanedBooks(loans []entities.Loan, limit int) []BookLoanCount {
	byCode := map[string]*BookLoanCount{}
	for i := range loans {
		loan := &loans[i]
		entry, ok := byCode[loan.Book.Code]
		if !ok {
			entry = &BookLoanCount{
				Title:  loan.Book.Title,
				Code:   loan.Book.Code,
				Author: loan.Book.Author,
			}
			byCode[loan.Book.Code] = entry
		}
		entry.Loans++
		if loan.Status == entities.LoanStatusReturned {
			entry.Returns++
		}
	}

	ranked := make([]BookLoanCount, 0, len(byCode))
	for _, entry := range byCode {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Loans != ranked[j].Loans {
			return ranked[i].Loans > ranked[j].Loans
		}
		return ranked[i].Title < ranked[j].Title
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func topBorrowers(loans []entities.Loan, limit int) []BorrowerCount {
	byStudent := map[uint]*BorrowerCount{}
	for i := range loans {
		loan := &loans[i]
		entry, ok := byStudent[loan.StudentID]
		if !ok {
			entry = &BorrowerCount{
				Name:  loan.Student.Name,
				Grade: loan.Student.Grade,
			}
			byStudent[loan.StudentID] = entry
		}
		entry.Loans++
		if loan.Status == entities.LoanStatusReturned {
			entry.Returns++
		}
	}

	ranked := make([]BorrowerCount, 0, len(byStudent))
	for _, entry := range byStudent {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Loans != ranked[j].Loans {
			return ranked[i].Loans > ranked[j].Loans
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// CombinedStats assembles GET /api/stats.
func (s *Service) CombinedStats() (*CombinedStats, error) {
	bookStats, err := s.books.GetStats()
	if err != nil {
		return nil, err
	}
	studentStats, err := s.students.GetStats()
	if err != nil {
		return nil, err
	}
	loanStats, err := s.loans.GetStats()
	if err != nil {
		return nil, err
	}

	return &CombinedStats{
		Books:          bookStats,
		Students:       studentStats,
		Loans:          loanStats,
		TotalBooks:     bookStats.TotalBooks,
		AvailableBooks: bookStats.AvailableBooks,
		BorrowedBooks:  bookStats.BorrowedBooks,
		TotalStudents:  studentStats.TotalStudents,
		ActiveLoans:    loanStats.ActiveLoans,
		OverdueLoans:   loanStats.OverdueLoans,
	}, nil
}

// DashboardStats assembles the flat counters for the dashboard.
func (s *Service) DashboardStats() (*DashboardStats, error) {
	totalBooks, err := s.bookRepo.Count()
	if err != nil {
		return nil, err
	}
	available, err := s.bookRepo.SumCurrentQuantity()
	if err != nil {
		return nil, err
	}
	totalStudents, err := s.studentRepo.Count()
	if err != nil {
		return nil, err
	}
	activeLoans, err := s.loanRepo.CountByStatus(entities.LoanStatusActive)
	if err != nil {
		return nil, err
	}
	overdue, err := s.loanRepo.CountOverdue(time.Now())
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalBooks:     totalBooks,
		AvailableBooks: available,
		BorrowedBooks:  activeLoans,
		OverdueBooks:   overdue,
		TotalStudents:  totalStudents,
		ActiveLoans:    activeLoans,
	}, nil
}

// RecentActivities merges recent loans, book updates and student
// registrations into one feed, newest first.
func (s *Service) RecentActivities(limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	perSource := limit / 3
	if perSource < 1 {
		perSource = 1
	}

	var activities []Activity

	recentLoans, err := s.loanRepo.Recent(perSource)
	if err != nil {
		return nil, err
	}
	for i := range recentLoans {
		loan := &recentLoans[i]
		activity := Activity{
			ID:        fmt.Sprintf("loan-%d", loan.ID),
			Type:      "loan",
			Timestamp: loan.UpdatedAt,
			Data: map[string]any{
				"bookTitle":   loan.Book.Title,
				"bookCode":    loan.Book.Code,
				"studentName": loan.Student.Name,
				"status":      loan.Status,
			},
		}
		if loan.Status == entities.LoanStatusReturned {
			activity.Action = "returned"
			activity.Message = fmt.Sprintf("Book %q returned by %s", loan.Book.Title, loan.Student.Name)
		} else {
			activity.Action = "created"
			activity.Message = fmt.Sprintf("New loan: %q to %s", loan.Book.Title, loan.Student.Name)
		}
		activities = append(activities, activity)
	}

	recentBooks, err := s.bookRepo.RecentlyUpdated(perSource)
	if err != nil {
		return nil, err
	}
	for i := range recentBooks {
		book := &recentBooks[i]
		activities = append(activities, Activity{
			ID:        fmt.Sprintf("book-%d", book.ID),
			Type:      "book",
			Action:    "updated",
			Message:   fmt.Sprintf("Book %q was updated", book.Title),
			Timestamp: book.UpdatedAt,
			Data: map[string]any{
				"bookTitle": book.Title,
				"bookCode":  book.Code,
			},
		})
	}

	recentStudents, err := s.studentRepo.Recent(perSource)
	if err != nil {
		return nil, err
	}
	for i := range recentStudents {
		student := &recentStudents[i]
		activities = append(activities, Activity{
			ID:        fmt.Sprintf("student-%d", student.ID),
			Type:      "student",
			Action:    "created",
			Message:   fmt.Sprintf("New student registered: %s", student.Name),
			Timestamp: student.CreatedAt,
			Data: map[string]any{
				"studentName":  student.Name,
				"studentClass": student.Class,
			},
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

// Notifications merges recent loan events with overdue warnings.
func (s *Service) Notifications(limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	perSource := limit / 2
	if perSource < 1 {
		perSource = 1
	}

	var notifications []Notification

	recentLoans, err := s.loanRepo.Recent(perSource)
	if err != nil {
		return nil, err
	}
	for i := range recentLoans {
		loan := &recentLoans[i]
		notification := Notification{
			ID:        fmt.Sprintf("loan-%d", loan.ID),
			Type:      "loan",
			Timestamp: loan.UpdatedAt,
		}
		if loan.Status == entities.LoanStatusReturned {
			notification.Message = fmt.Sprintf("Book %q returned by %s", loan.Book.Title, loan.Student.Name)
		} else {
			notification.Message = fmt.Sprintf("Book %q borrowed by %s", loan.Book.Title, loan.Student.Name)
		}
		notifications = append(notifications, notification)
	}

	overdue, err := s.loanRepo.Overdue(time.Now())
	if err != nil {
		return nil, err
	}
	for i := range overdue {
		if i >= perSource {
			break
		}
		loan := &overdue[i]
		notifications = append(notifications, Notification{
			ID:        fmt.Sprintf("overdue-%d", loan.ID),
			Type:      "overdue",
			Message:   fmt.Sprintf("Loan of %q to %s is overdue since %s", loan.Book.Title, loan.Student.Name, loan.DueDate.Format("2006-01-02")),
			Timestamp: loan.DueDate,
		})
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].Timestamp.After(notifications[j].Timestamp)
	})
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}
