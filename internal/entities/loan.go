package entities

import "time"

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "ACTIVE"
	LoanStatusReturned LoanStatus = "RETURNED"
)

type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"index" json:"book_id"`
	StudentID  uint       `gorm:"index" json:"student_id"`
	Status     LoanStatus `gorm:"index;size:20;default:'ACTIVE'" json:"status"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"` // set only when the loan is returned
	Notes      string     `gorm:"size:512" json:"notes,omitempty"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Student    Student    `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Overdue reports whether the loan is active and past its due date.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Status == LoanStatusActive && l.DueDate.Before(now)
}
