// Package users declares the persistence contract for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/securevault/internal/server/models"
)

type Repository interface {
	// Create inserts a user and returns it with ID and timestamps set.
	// A duplicate email yields common.ErrorConflict.
	Create(ctx context.Context, email string, passwordHash []byte) (*models.User, error)

	// GetByEmail returns common.ErrorNotFound when no user has email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
