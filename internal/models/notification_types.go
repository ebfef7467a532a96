package models

import "time"

// Notification is the model for the 'notifications' table.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Type      string    `json:"type" db:"type"`
	Icon      string    `json:"icon" db:"icon"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

const (
	NotificationTypeGeneral = "general"
	NotificationTypeOrder   = "order"
)
