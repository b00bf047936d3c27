// Package services holds the server's business logic: credential storage,
// session tokens, the vault orchestrator and the audit and backup reports
// built on top of it.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/dbx"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor for account passwords.
const PasswordHashCost = 12

// CredentialStore hashes and verifies account passwords.
type CredentialStore struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	cost        int
	dummyHash   []byte
	log         logging.Logger
}

// NewCredentialStore precomputes the dummy hash compared against when a
// login names an unknown user, so both failure paths cost one bcrypt run.
func NewCredentialStore(store dbx.Store, m repomanager.RepositoryManager, log logging.Logger) (*CredentialStore, error) {
	return newCredentialStore(store, m, PasswordHashCost, log)
}

func newCredentialStore(store dbx.Store, m repomanager.RepositoryManager, cost int, log logging.Logger) (*CredentialStore, error) {
	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy hash seed: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(seed), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &CredentialStore{
		store:       store,
		repomanager: m,
		cost:        cost,
		dummyHash:   dummy,
		log:         log.With("module", "credentials"),
	}, nil
}

// Register stores a new user and returns its id. A taken email yields
// common.ErrorConflict.
func (c *CredentialStore) Register(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	user, err := c.repomanager.Users(c.store.Conn()).Create(ctx, NormalizeEmail(email), hash)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return "", common.ErrorConflict
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	c.log.Info(ctx, "user registered", "user_id", user.ID)
	return user.ID, nil
}

// Verify checks a password and returns the matching user. Unknown users
// and wrong passwords both yield common.ErrorUnauthorized.
func (c *CredentialStore) Verify(ctx context.Context, email, password string) (*models.User, error) {
	// bcrypt ignores bytes past 72, so longer passwords could never have
	// been registered and must not match a truncated prefix.
	if len(password) > MaxPasswordLength {
		_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password[:MaxPasswordLength]))
		return nil, common.ErrorUnauthorized
	}

	user, err := c.repomanager.Users(c.store.Conn()).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}
