package entities

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionUpdate  AuditAction = "UPDATE"
	AuditActionDelete  AuditAction = "DELETE"
	AuditActionRestore AuditAction = "RESTORE"
)

// AuditLog is an append-only record of a book mutation. Rows are never
// updated or deleted outside of retention cleanup.
type AuditLog struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	BookID      uint        `gorm:"index" json:"book_id"`
	Action      AuditAction `gorm:"index;size:20" json:"action"`
	FieldName   string      `gorm:"size:100" json:"field_name,omitempty"` // only set for UPDATE entries
	OldValue    string      `gorm:"size:512" json:"old_value,omitempty"`
	NewValue    string      `gorm:"size:512" json:"new_value,omitempty"`
	Description string      `gorm:"size:500" json:"description"`
	UserID      uint        `gorm:"index" json:"user_id,omitempty"`
	Book        Book        `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "book_audit_logs"
}
