package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/securevault/internal/breach"
	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/logging"
)

// BreachChecker reports whether a password appears in a breach corpus.
type BreachChecker interface {
	Check(ctx context.Context, password string) (breach.Verdict, error)
}

// AuthService is the account surface: register, login, refresh, logout.
type AuthService struct {
	credentials *CredentialStore
	tokens      *SessionTokenManager
	breach      BreachChecker
	log         logging.Logger
}

// NewAuthService wires the services together. checker may be nil, which
// skips the breach check on registration.
func NewAuthService(credentials *CredentialStore, tokens *SessionTokenManager, checker BreachChecker, log logging.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		tokens:      tokens,
		breach:      checker,
		log:         log.With("module", "auth"),
	}
}

// Register validates input, rejects breached passwords and creates the
// user. An unavailable breach directory does not block registration.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return "", err
	}
	if err := validatePassword(password); err != nil {
		return "", err
	}

	if s.breach != nil {
		v, err := s.breach.Check(ctx, password)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			s.log.Warn(ctx, "breach check unavailable, registration continues", "error", err)
		case v.Compromised:
			return "", common.NewValidationError("password", "password has appeared in a data breach, choose another")
		}
	}

	return s.credentials.Register(ctx, email, password)
}

// Login verifies credentials and issues a new token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if strings.TrimSpace(email) == "" {
		return nil, common.NewValidationError("email", "email is required")
	}
	if password == "" {
		return nil, common.NewValidationError("password", "password is required")
	}

	user, err := s.credentials.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(ctx, user.ID, user.Email)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidToken
	}
	return s.tokens.Refresh(ctx, refreshToken)
}

// Logout revokes every session of the token's owner.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return common.ErrInvalidToken
	}
	return s.tokens.Revoke(ctx, claims.UserID)
}

// CheckBreach runs a standalone breach lookup.
func (s *AuthService) CheckBreach(ctx context.Context, password string) (breach.Verdict, error) {
	if password == "" {
		return breach.Verdict{}, common.NewValidationError("password", "password is required")
	}
	if s.breach == nil {
		return breach.Verdict{}, common.ErrServiceUnavailable
	}
	v, err := s.breach.Check(ctx, password)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return breach.Verdict{}, err
		}
		s.log.Warn(ctx, "breach check failed", "error", err)
		return breach.Verdict{}, common.ErrServiceUnavailable
	}
	return v, nil
}
