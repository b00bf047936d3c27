package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/securevault/internal/common"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLength = 72
	MaxEmailLength    = 254
	MaxTitleLength    = 200
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lowercases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return common.NewValidationError("email", "email is required")
	}
	if len(email) > MaxEmailLength || !emailRegex.MatchString(email) {
		return common.NewValidationError("email", "invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return common.NewValidationError("password", "password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return common.NewValidationError("password", "password must be at most 72 bytes")
	}
	return nil
}

func validateEntry(in EntryInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return common.NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return common.NewValidationError("title", "title must be at most 200 characters")
	}
	if !in.Type.Valid() {
		return common.NewValidationError("type", "type must be one of note, credential, card")
	}
	if in.Content == "" {
		return common.NewValidationError("content", "content is required")
	}
	return nil
}
