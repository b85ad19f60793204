package models

import "time"

// User represents a shop account (owner or staff member).
// Email and Phone are nullable so the unique indexes only bite on real
// values; at least one of the two must be present (checked at the API layer).
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:50;not null" json:"name"`
	Email        *string    `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Phone        *string    `gorm:"size:15;uniqueIndex" json:"phone,omitempty"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
