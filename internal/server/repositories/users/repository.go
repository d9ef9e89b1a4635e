// Package users stores user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/bookshelf/internal/server/models"
)

type Repository interface {
	// Create stores user, assigning an id when it is empty. A duplicate
	// username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
