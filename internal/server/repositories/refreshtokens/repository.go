// Package refreshtokens declares the persistence contract for refresh-token
// records. Every lookup and mutation is scoped by user id.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/securevault/internal/server/models"
)

type Repository interface {
	// Create stores a new record holding only the token hash.
	Create(ctx context.Context, userID string, tokenHash []byte, expiresAt time.Time) (*models.RefreshToken, error)

	// ListActiveForUpdate returns the user's records expiring after now and
	// locks them until the surrounding transaction ends.
	ListActiveForUpdate(ctx context.Context, userID string, now time.Time) ([]models.RefreshToken, error)

	// DeleteByID removes one record of userID and reports whether this call
	// deleted it. A record already consumed by a concurrent call yields false.
	DeleteByID(ctx context.Context, id, userID string) (bool, error)

	// DeleteAllForUser removes every record of userID. Deleting nothing is
	// not an error.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes records that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
