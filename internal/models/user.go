package models

import "time"

// User is the back-office account notifications are addressed to. Auth lives
// outside this service; only the identity is needed here.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"unique;not null;index" json:"email"`
	Name      string `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notification is persisted for later display; nothing is pushed.
type Notification struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Kind      string `gorm:"not null" json:"kind"` // e.g. "series-completed", "series-failed"
	Title     string `json:"title"`
	Message   string `json:"message"`
	Metadata  string `json:"metadata,omitempty"` // JSON blob, kind-specific
	Read      bool   `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
