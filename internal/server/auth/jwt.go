package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims includes the registered claims and one custom UserID claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenService issues and verifies HS256 access tokens. It holds no state
// besides its configuration and is safe for concurrent use.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewTokenService creates a TokenService. A non-positive validity issues
// tokens without an expiry; a nil clock means time.Now.
func NewTokenService(secret []byte, validity time.Duration, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: secret, validity: validity, now: now}
}

// Issue signs a token for userID.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: userID,
	}
	if s.validity > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.validity))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the token signature and expiry and returns the user id it
// was issued for. Every failure is a common.AuthError.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", tokenError(err)
	}

	if !token.Valid {
		return "", common.AuthError(common.CodeInvalidToken, "invalid token")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", common.AuthError(common.CodeInvalidToken, "jwt missing subject")
	}

	return userID, nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.AuthError(common.CodeInvalidToken, "jwt malformed")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.AuthError(common.CodeInvalidToken, "invalid signature")
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.AuthError(common.CodeTokenExpired, "jwt expired")
	default:
		return common.AuthError(common.CodeInvalidToken, "invalid token")
	}
}
