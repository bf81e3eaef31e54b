package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL applies when IssueToken is called without a positive ttl
const DefaultTokenTTL = 15 * time.Minute

// TokenManager issues and validates HS256 session tokens
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager creates a TokenManager bound to secret. The slice is copied.
func NewTokenManager(secret []byte) *TokenManager {
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenManager{
		secret: key,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for issuing and validating tokens
func (tm *TokenManager) SetClock(now func() time.Time) {
	tm.now = now
}

// IssueToken signs a token for handle valid for ttl and returns it with its
// expiry as epoch seconds.
func (tm *TokenManager) IssueToken(handle string, ttl time.Duration) (string, int64, error) {
	if handle == "" {
		return "", 0, fmt.Errorf("cannot issue token without subject")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := tm.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))

	claims := &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   handle,
			ExpiresAt: expiresAt,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt.Unix(), nil
}

// ValidateToken verifies signature and expiry and returns the claims.
// Errors are ErrTokenExpired or ErrTokenInvalid.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return tm.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", models.ErrTokenInvalid)
	}

	return claims, nil
}
