// Package entries declares the persistence contract for vault rows. Every
// statement carries the owner id, so a row belonging to someone else is
// indistinguishable from a missing one.
package entries

import (
	"context"

	"github.com/dmitrijs2005/securevault/internal/server/models"
)

type Repository interface {
	// Create inserts e and fills in ID and timestamps.
	Create(ctx context.Context, e *models.Entry) error

	// ListByUser returns the owner's rows, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Entry, error)

	// Update rewrites title, type and payload of the row matching both e.ID
	// and e.UserID. No such row yields common.ErrorNotFound.
	Update(ctx context.Context, e *models.Entry) error

	// Delete removes the row matching id and userID or returns
	// common.ErrorNotFound.
	Delete(ctx context.Context, id, userID string) error
}
