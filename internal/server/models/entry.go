// Package models defines the rows persisted by the server.
package models

import (
	"time"

	"github.com/dmitrijs2005/securevault/internal/gateway"
)

type EntryType string

const (
	EntryTypeNote       EntryType = "note"
	EntryTypeCredential EntryType = "credential"
	EntryTypeCard       EntryType = "card"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeNote, EntryTypeCredential, EntryTypeCard:
		return true
	}
	return false
}

// Entry is a vault row. Content exists only as Payload.
type Entry struct {
	ID        string
	UserID    string
	Title     string
	Type      EntryType
	Payload   gateway.EncryptedPayload
	CreatedAt time.Time
	UpdatedAt time.Time
}
