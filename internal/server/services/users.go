// Package services contains server-side business logic: user registration
// and login, token-based authentication, list item ownership and the
// reading-list operations themselves.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/server/auth"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

const msgInvalidCredentials = "username or password is invalid"

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthenticatedUser is the client-facing view of a user: id, username and
// an access token.
type AuthenticatedUser struct {
	models.User
	Token string `json:"token"`
}

// UserService handles registration and login.
type UserService struct {
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService.
func NewUserService(m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens TokenIssuer, logger logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With("module", "users"),
	}
}

func validateCredentials(username, password string) error {
	if username == "" {
		return common.ValidationError("username can't be blank")
	}
	if password == "" {
		return common.ValidationError("password can't be blank")
	}
	return nil
}

// Register creates a user and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, username, password string) (*AuthenticatedUser, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	if !auth.IsPasswordAllowed(password) {
		return nil, common.ValidationError("password is not strong enough")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, common.ValidationError("password is too long")
	}

	repo := s.repomanager.Users()

	_, err := repo.GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return nil, common.ConflictError("username taken")
	case !errors.Is(err, common.ErrorNotFound):
		return nil, oops.Code("USER_LOOKUP_FAILED").With("username", username).Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}

	user, err := repo.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ConflictError("username taken")
		}
		return nil, oops.Code("USER_CREATE_FAILED").With("username", username).Wrap(err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)

	return s.authenticated(user)
}

// Login checks the credentials and returns the user with a fresh token.
// Unknown usernames and wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (*AuthenticatedUser, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same bcrypt time as a real comparison
			_, _ = s.hasher.Verify(password, s.dummy())
			return nil, common.InvalidCredentialsError(msgInvalidCredentials)
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").With("username", username).Wrap(err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, oops.Code("PASSWORD_VERIFY_FAILED").With("user_id", user.ID).Wrap(err)
	}
	if !ok {
		return nil, common.InvalidCredentialsError(msgInvalidCredentials)
	}

	return s.authenticated(user)
}

// GetByID returns the user with the given id or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").With("user_id", id).Wrap(err)
	}
	return user, nil
}

func (s *UserService) authenticated(user *models.User) (*AuthenticatedUser, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, oops.Code("TOKEN_ISSUE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	return &AuthenticatedUser{User: *user, Token: token}, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}
