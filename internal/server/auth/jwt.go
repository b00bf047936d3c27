// Package auth signs and parses the JWTs handed to clients.
//
// Access and refresh tokens share one claim set and are told apart by the
// typ claim, so a refresh token is never accepted as an access token.
// Each token gets a random jti, which keeps two tokens issued in the same
// second distinct.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"uid"`
	Email  string    `json:"email"`
	Type   TokenType `json:"typ"`
}

type Signer struct {
	method jwt.SigningMethod
	secret []byte
	now    func() time.Time
}

// NewSigner accepts HS256, HS384 or HS512.
func NewSigner(algorithm string, secret []byte) (*Signer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("empty jwt secret")
	}
	return &Signer{method: method, secret: secret, now: time.Now}, nil
}

func (s *Signer) Sign(userID, email string, typ TokenType, validity time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(s.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
		Email:  email,
		Type:   typ,
	})

	return token.SignedString(s.secret)
}

// Parse verifies signature, algorithm, expiry and token type. Every
// failure is reported as common.ErrInvalidToken.
func (s *Signer) Parse(tokenString string, typ TokenType) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Type != typ || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
