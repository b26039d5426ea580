package entities

import (
	"time"

	"gorm.io/gorm"
)

type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Code            string         `gorm:"uniqueIndex;size:20" json:"code"` // e.g., "0001/25-FAN"
	Title           string         `gorm:"index;size:512" json:"title"`
	Author          string         `gorm:"index;size:256" json:"author"`
	Publisher       string         `gorm:"size:256" json:"publisher,omitempty"`
	Genre           string         `gorm:"index;size:100" json:"genre"`
	ISBN            *string        `gorm:"uniqueIndex;size:20" json:"isbn,omitempty"`
	Year            *int           `json:"year,omitempty"`
	Location        string         `gorm:"size:100" json:"location,omitempty"` // shelf location, e.g., "Prateleira A1"
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	EntryDate       time.Time      `json:"entry_date"`
	Quantity        int            `json:"quantity"`         // total copies owned
	CurrentQuantity int            `json:"current_quantity"` // copies currently on the shelf
	LoansCount      int            `json:"loans_count"`      // cumulative loans, never decremented
	Loans           []Loan         `gorm:"foreignKey:BookID" json:"loans,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Available reports whether at least one copy is on the shelf.
func (b *Book) Available() bool {
	return b.CurrentQuantity > 0
}

// BookCodeSequence backs per-year book code generation. One row per
// two-digit year suffix; NextNumber is the next unclaimed sequence number.
type BookCodeSequence struct {
	YearSuffix string `gorm:"primaryKey;size:2"`
	NextNumber int
}

func (BookCodeSequence) TableName() string {
	return "book_code_sequences"
}
