// Package listitems stores reading-list entries.
package listitems

import (
	"context"

	"github.com/dmitrijs2005/bookshelf/internal/server/models"
)

// Filter selects list items. Empty fields match everything.
type Filter struct {
	OwnerID string
	BookID  string
}

type Repository interface {
	// Create stores item, assigning an id when it is empty. A second item
	// for the same (owner, book) pair yields common.ErrorAlreadyExists.
	Create(ctx context.Context, item *models.ListItem) (*models.ListItem, error)
	GetByID(ctx context.Context, id string) (*models.ListItem, error)
	Query(ctx context.Context, filter Filter) ([]*models.ListItem, error)
	Update(ctx context.Context, id string, patch models.ListItemPatch) (*models.ListItem, error)
	Delete(ctx context.Context, id string) error
}
