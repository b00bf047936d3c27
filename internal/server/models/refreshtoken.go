package models

import "time"

// RefreshToken is a persisted refresh-token record. TokenHash is a salted
// one-way hash; the token itself is never stored. Records are deleted,
// never updated.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}
