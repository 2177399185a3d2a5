package models

import "time"

// GuestUser is a short-lived session identity for checkout without an account.
type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}
