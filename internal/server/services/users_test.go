package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/server/auth"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		username string
		password string
		message  string
	}{
		{"blank username", "", "!aBc123", "username can't be blank"},
		{"blank password", "alice", "", "password can't be blank"},
		{"blank both", "", "", "username can't be blank"},
		{"weak password", "alice", "abc123!", "password is not strong enough"},
		{"too long for bcrypt", "alice", "aB1!" + strings.Repeat("x", 80), "password is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Register(context.Background(), tt.username, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestRegister_ThenLoginReturnsSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.users.Register(ctx, "alice", "!aBc123")
	require.NoError(t, err)
	assert.NotEmpty(t, registered.ID)
	assert.Equal(t, "alice", registered.UserName)
	assert.NotEmpty(t, registered.Token)
	assert.NotEqual(t, "!aBc123", registered.PasswordHash)

	loggedIn, err := f.users.Login(ctx, "alice", "!aBc123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Equal(t, registered.UserName, loggedIn.UserName)

	// same user id and clock, same token
	assert.Equal(t, registered.Token, loggedIn.Token)

	userID, err := f.tokens.Verify(loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.users.Register(context.Background(), "alice", "!xYz789")
	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, "username taken", err.Error())
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Login(context.Background(), "", "x")
	assert.Equal(t, "username can't be blank", err.Error())

	_, err = f.users.Login(context.Background(), "alice", "")
	assert.Equal(t, "password can't be blank", err.Error())
}

func TestLogin_SameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, wrongPassword := f.users.Login(context.Background(), "alice", "!aBc124")
	_, unknownUser := f.users.Login(context.Background(), "bob", "!aBc123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.ErrorIs(t, wrongPassword, common.ErrorInvalidCredentials)
	assert.ErrorIs(t, unknownUser, common.ErrorInvalidCredentials)
	assert.Equal(t, "username or password is invalid", wrongPassword.Error())
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")

	got, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)

	_, err = f.users.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUserService_StoreFailureIsWrapped(t *testing.T) {
	s := NewUserService(failingManager{}, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewTokenService([]byte("k"), 0, nil), logging.Nop{})

	_, err := s.Register(context.Background(), "alice", "!aBc123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errStoreDown))
	_, isClassified := common.AsError(err)
	assert.False(t, isClassified)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "USER_LOOKUP_FAILED", oopsErr.Code())

	_, err = s.Login(context.Background(), "alice", "!aBc123")
	assert.ErrorIs(t, err, errStoreDown)

	_, err = s.GetByID(context.Background(), "u1")
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestLogin_OverlongPasswordIsInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.users.Login(context.Background(), "alice", "!aBc123"+strings.Repeat("x", 80))
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
	assert.Equal(t, "username or password is invalid", err.Error())
}
