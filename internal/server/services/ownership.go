package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/repomanager"
	"github.com/samber/oops"
)

// OwnershipGuard loads a list item and checks that it belongs to the caller.
type OwnershipGuard struct {
	repomanager repomanager.RepositoryManager
}

func NewOwnershipGuard(m repomanager.RepositoryManager) *OwnershipGuard {
	return &OwnershipGuard{repomanager: m}
}

// Authorize returns the item when user owns it. A missing item is reported
// before ownership is considered.
func (g *OwnershipGuard) Authorize(ctx context.Context, user *models.User, itemID string) (*models.ListItem, error) {
	item, err := g.repomanager.ListItems().GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFoundError("No list item was found with the id of %s", itemID)
		}
		return nil, oops.Code("LIST_ITEM_LOOKUP_FAILED").With("list_item_id", itemID).Wrap(err)
	}

	if item.OwnerID != user.ID {
		return nil, common.ForbiddenError("User with id %s is not authorized to access the list item %s", user.ID, itemID)
	}

	return item, nil
}
