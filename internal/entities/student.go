package entities

import "time"

type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"index;size:256" json:"name"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	Registration string    `gorm:"uniqueIndex;size:50" json:"registration"` // e.g., "2024001"
	Grade        string    `gorm:"index;size:50" json:"grade"`              // e.g., "6º Ano"
	Class        string    `gorm:"size:50" json:"class,omitempty"`          // e.g., "6A"
	Phone        string    `gorm:"size:50" json:"phone,omitempty"`
	Address      string    `gorm:"size:512" json:"address,omitempty"`
	Loans        []Loan    `gorm:"foreignKey:StudentID" json:"loans,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
