package domain

import "time"

// User is an account created through the Google OAuth boundary.
type User struct {
	ID                string
	GoogleID          string
	Email             string
	Name              string
	ProfileImageURL   string
	EncryptedRefToken string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
