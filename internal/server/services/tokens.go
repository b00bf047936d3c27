package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/dbx"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/auth"
	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultAccessTokenValidity  = 15 * time.Minute
	DefaultRefreshTokenValidity = 7 * 24 * time.Hour
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

type TokenConfig struct {
	Algorithm            string
	AccessSecret         []byte
	RefreshSecret        []byte
	AccessTokenValidity  time.Duration
	RefreshTokenValidity time.Duration
}

// SessionTokenManager issues token pairs and rotates refresh tokens.
//
// Only a bcrypt hash of each refresh token is stored. A refresh token
// presented after it was rotated matches no record; that is treated as
// theft and every session of the user is revoked.
type SessionTokenManager struct {
	store                dbx.Store
	repomanager          repomanager.RepositoryManager
	access               *auth.Signer
	refresh              *auth.Signer
	accessTokenValidity  time.Duration
	refreshTokenValidity time.Duration
	hashCost             int
	now                  func() time.Time
	log                  logging.Logger
}

func NewSessionTokenManager(store dbx.Store, m repomanager.RepositoryManager, cfg TokenConfig, log logging.Logger) (*SessionTokenManager, error) {
	access, err := auth.NewSigner(cfg.Algorithm, cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("access token signer: %w", err)
	}
	refresh, err := auth.NewSigner(cfg.Algorithm, cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("refresh token signer: %w", err)
	}

	accessValidity := cfg.AccessTokenValidity
	if accessValidity <= 0 {
		accessValidity = DefaultAccessTokenValidity
	}
	refreshValidity := cfg.RefreshTokenValidity
	if refreshValidity <= 0 {
		refreshValidity = DefaultRefreshTokenValidity
	}

	return &SessionTokenManager{
		store:                store,
		repomanager:          m,
		access:               access,
		refresh:              refresh,
		accessTokenValidity:  accessValidity,
		refreshTokenValidity: refreshValidity,
		hashCost:             bcrypt.DefaultCost,
		now:                  time.Now,
		log:                  log.With("module", "tokens"),
	}, nil
}

// Issue mints a new pair and persists the refresh token hash.
func (m *SessionTokenManager) Issue(ctx context.Context, userID, email string) (*TokenPair, error) {
	var pair *TokenPair
	err := m.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		pair, err = m.generateTokenPair(ctx, tx, userID, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The lookup, the
// conditional delete and the insert of the replacement run in one
// transaction.
func (m *SessionTokenManager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := m.refresh.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	digest := tokenDigest(refreshToken)
	reused := false

	var pair *TokenPair
	err = m.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.repomanager.RefreshTokens(tx)

		records, err := repo.ListActiveForUpdate(ctx, claims.UserID, m.now())
		if err != nil {
			return fmt.Errorf("error listing refresh tokens: %w", err)
		}

		if match := findRecord(records, digest); match != nil {
			deleted, err := repo.DeleteByID(ctx, match.ID, claims.UserID)
			if err != nil {
				return fmt.Errorf("error deleting refresh token: %w", err)
			}
			if deleted {
				pair, err = m.generateTokenPair(ctx, tx, claims.UserID, claims.Email)
				return err
			}
		}

		reused = true
		if _, err := repo.DeleteAllForUser(ctx, claims.UserID); err != nil {
			return fmt.Errorf("error revoking refresh tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reused {
		m.log.Warn(ctx, "refresh token reuse detected, all sessions revoked", "user_id", claims.UserID)
		return nil, common.ErrTokenReuseDetected
	}
	return pair, nil
}

// Revoke deletes every refresh token of the user. It is idempotent.
func (m *SessionTokenManager) Revoke(ctx context.Context, userID string) error {
	n, err := m.repomanager.RefreshTokens(m.store.Conn()).DeleteAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	m.log.Info(ctx, "sessions revoked", "user_id", userID, "count", n)
	return nil
}

// VerifyAccess checks an access token's signature, type and expiry.
func (m *SessionTokenManager) VerifyAccess(token string) (*auth.Claims, error) {
	return m.access.Parse(token, auth.AccessToken)
}

// VerifyRefresh checks a refresh token statelessly, without consulting
// the store.
func (m *SessionTokenManager) VerifyRefresh(token string) (*auth.Claims, error) {
	return m.refresh.Parse(token, auth.RefreshToken)
}

// DeleteExpired removes refresh records past their expiry.
func (m *SessionTokenManager) DeleteExpired(ctx context.Context) (int64, error) {
	return m.repomanager.RefreshTokens(m.store.Conn()).DeleteExpired(ctx, m.now())
}

// RunJanitor calls DeleteExpired every interval until ctx is done.
func (m *SessionTokenManager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.DeleteExpired(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					m.log.Error(ctx, "expired token cleanup failed", "error", err)
				}
				continue
			}
			if n > 0 {
				m.log.Debug(ctx, "expired refresh tokens deleted", "count", n)
			}
		}
	}
}

func (m *SessionTokenManager) generateTokenPair(ctx context.Context, tx dbx.DBTX, userID, email string) (*TokenPair, error) {
	access, err := m.access.Sign(userID, email, auth.AccessToken, m.accessTokenValidity)
	if err != nil {
		return nil, fmt.Errorf("error signing access token: %w", err)
	}
	refresh, err := m.refresh.Sign(userID, email, auth.RefreshToken, m.refreshTokenValidity)
	if err != nil {
		return nil, fmt.Errorf("error signing refresh token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword(tokenDigest(refresh), m.hashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing refresh token: %w", err)
	}

	expiresAt := m.now().Add(m.refreshTokenValidity)
	if _, err := m.repomanager.RefreshTokens(tx).Create(ctx, userID, hash, expiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: m.accessTokenValidity}, nil
}

// tokenDigest shortens a JWT to a fixed 64 bytes before bcrypt, which
// would otherwise truncate it at 72 bytes inside the shared header.
func tokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}

func findRecord(records []models.RefreshToken, digest []byte) *models.RefreshToken {
	for i := range records {
		if bcrypt.CompareHashAndPassword(records[i].TokenHash, digest) == nil {
			return &records[i]
		}
	}
	return nil
}
