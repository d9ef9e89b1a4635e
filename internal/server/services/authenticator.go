package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
)

// TokenVerifier checks an access token and returns the user id inside it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserGetter resolves a user by id.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthResult is the outcome of Authenticate: either Authenticated or Rejected.
type AuthResult interface {
	authResult()
}

// Authenticated carries the resolved user and the token they presented.
type Authenticated struct {
	User  *models.User
	Token string
}

// Rejected carries the reason the request may not proceed.
type Rejected struct {
	Err error
}

func (Authenticated) authResult() {}
func (Rejected) authResult()      {}

// Authenticator turns an Authorization header into a user.
type Authenticator struct {
	tokens TokenVerifier
	users  UserGetter
}

func NewAuthenticator(tokens TokenVerifier, users UserGetter) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate never returns nil.
func (a *Authenticator) Authenticate(ctx context.Context, header string) AuthResult {
	if header == "" {
		return Rejected{Err: common.AuthError(common.CodeCredentialsRequired, "No authorization token was found")}
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) || strings.Contains(token, " ") {
		return Rejected{Err: common.AuthError(common.CodeCredentialsBadScheme, "Format is Authorization: Bearer [token]")}
	}

	userID, err := a.tokens.Verify(token)
	if err != nil {
		return Rejected{Err: err}
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Rejected{Err: common.AuthError(common.CodeInvalidToken, "user not found")}
		}
		return Rejected{Err: err}
	}

	return Authenticated{User: user, Token: token}
}
