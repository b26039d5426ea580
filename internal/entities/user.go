package entities

import "time"

// User is a librarian account. Only relevant when auth mode is "local".
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Username         string     `gorm:"uniqueIndex;size:100" json:"username"`
	Name             string     `gorm:"size:256" json:"name,omitempty"`
	PasswordHash     string     `gorm:"size:100" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	FailedLoginCount int        `json:"-"`
	LockedUntil      *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
