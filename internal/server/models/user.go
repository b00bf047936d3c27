package models

import "time"

// User never carries a plaintext password, only its bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
