// Package audit records every book mutation in an append-only log.
package audit

import (
	"fmt"
	"time"

	auditrepo "github.com/schoolshelf/librarian/internal/database/audit"
	"github.com/schoolshelf/librarian/internal/entities"
)

// DefaultDedupWindow is how far back Log looks for an identical entry
// before inserting a new one.
const DefaultDedupWindow = 5 * time.Second

// Entry describes a log entry to be recorded.
type Entry struct {
	BookID      uint
	Action      entities.AuditAction
	FieldName   string
	OldValue    string
	NewValue    string
	Description string
	UserID      uint
}

// Service provides audit logging with duplicate suppression.
type Service struct {
	repo        *auditrepo.Repository
	dedupWindow time.Duration
}

func NewService(repo *auditrepo.Repository, dedupWindow time.Duration) *Service {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	return &Service{repo: repo, dedupWindow: dedupWindow}
}

// Log records an entry. If an identical (book, action, description) entry was
// created within the dedup window, the existing row is returned instead of
// inserting a duplicate. This suppresses rapid repeated calls; it is not a
// strict idempotency guarantee.
func (s *Service) Log(e Entry) (*entities.AuditLog, error) {
	existing, err := s.repo.FindRecentDuplicate(e.BookID, e.Action, e.Description, s.dedupWindow)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	entry := &entities.AuditLog{
		BookID:      e.BookID,
		Action:      e.Action,
		FieldName:   e.FieldName,
		OldValue:    e.OldValue,
		NewValue:    e.NewValue,
		Description: e.Description,
		UserID:      e.UserID,
	}
	if err := s.repo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// LogBookCreation records that a book was added to the catalog.
func (s *Service) LogBookCreation(book *entities.Book, userID uint) (*entities.AuditLog, error) {
	return s.Log(Entry{
		BookID:      book.ID,
		Action:      entities.AuditActionCreate,
		Description: fmt.Sprintf("Book %q (%s) was added to the catalog", book.Title, book.Code),
		UserID:      userID,
	})
}

// LogBookUpdate records a single changed field of a book.
func (s *Service) LogBookUpdate(book *entities.Book, field, oldValue, newValue string, userID uint) (*entities.AuditLog, error) {
	return s.Log(Entry{
		BookID:      book.ID,
		Action:      entities.AuditActionUpdate,
		FieldName:   field,
		OldValue:    oldValue,
		NewValue:    newValue,
		Description: fmt.Sprintf("Field %q of book %q (%s) was changed", field, book.Title, book.Code),
		UserID:      userID,
	})
}

// LogBookDeletion records that a book was removed from the catalog.
func (s *Service) LogBookDeletion(book *entities.Book, userID uint) (*entities.AuditLog, error) {
	return s.Log(Entry{
		BookID:      book.ID,
		Action:      entities.AuditActionDelete,
		Description: fmt.Sprintf("Book %q (%s) was removed from the catalog", book.Title, book.Code),
		UserID:      userID,
	})
}

// LogBookRestoration records that a soft-deleted book was restored.
func (s *Service) LogBookRestoration(book *entities.Book, userID uint) (*entities.AuditLog, error) {
	return s.Log(Entry{
		BookID:      book.ID,
		Action:      entities.AuditActionRestore,
		Description: fmt.Sprintf("Book %q (%s) was restored to the catalog", book.Title, book.Code),
		UserID:      userID,
	})
}

// All returns the most recent entries.
func (s *Service) All(limit int) ([]entities.AuditLog, error) {
	return s.repo.All(limit)
}

// ByBook returns all entries for one book.
func (s *Service) ByBook(bookID uint) ([]entities.AuditLog, error) {
	return s.repo.ByBook(bookID)
}

// ByAction returns entries for one action.
func (s *Service) ByAction(action entities.AuditAction, limit int) ([]entities.AuditLog, error) {
	return s.repo.ByAction(action, limit)
}

// GetStats summarizes the audit log.
func (s *Service) GetStats() (*auditrepo.Stats, error) {
	return s.repo.GetStats()
}

// DeleteOldEntries removes entries older than the retention duration.
func (s *Service) DeleteOldEntries(retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(time.Now().Add(-retention))
}
