package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/listitems"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// ListItemService implements the reading-list operations. Item-scoped
// methods take an item already checked by OwnershipGuard.
type ListItemService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

// NewListItemService constructs a ListItemService. A nil clock means time.Now.
func NewListItemService(m repomanager.RepositoryManager, logger logging.Logger, now func() time.Time) *ListItemService {
	if now == nil {
		now = time.Now
	}
	return &ListItemService{
		repomanager: m,
		logger:      logger.With("module", "listitems"),
		now:         now,
	}
}

func duplicateItemError(ownerID, bookID string) error {
	return common.ValidationError("User %s already has a list item for the book with the ID %s", ownerID, bookID)
}

// Create adds bookID to the owner's list. The duplicate check and the insert
// run as one unit of work.
func (s *ListItemService) Create(ctx context.Context, ownerID, bookID string) (*models.ListItemWithBook, error) {
	if bookID == "" {
		return nil, common.ValidationError("No bookId provided")
	}

	var result *models.ListItemWithBook

	err := s.repomanager.InTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		existing, err := tx.ListItems().Query(ctx, listitems.Filter{OwnerID: ownerID, BookID: bookID})
		if err != nil {
			return oops.Code("LIST_ITEM_QUERY_FAILED").With("owner_id", ownerID).Wrap(err)
		}
		if len(existing) > 0 {
			return duplicateItemError(ownerID, bookID)
		}

		book, err := tx.Books().GetByID(ctx, bookID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ValidationError("No book was found with the id of %s", bookID)
			}
			return oops.Code("BOOK_LOOKUP_FAILED").With("book_id", bookID).Wrap(err)
		}

		// stored timestamps keep microseconds
		start := s.now().UTC().Truncate(time.Microsecond)
		item, err := tx.ListItems().Create(ctx, &models.ListItem{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			BookID:    bookID,
			StartDate: &start,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return duplicateItemError(ownerID, bookID)
			}
			return oops.Code("LIST_ITEM_CREATE_FAILED").With("owner_id", ownerID).With("book_id", bookID).Wrap(err)
		}

		result = &models.ListItemWithBook{ListItem: *item, Book: book}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "list item created", "list_item_id", result.ID, "owner_id", ownerID)

	return result, nil
}

// Read joins item with its book.
func (s *ListItemService) Read(ctx context.Context, item *models.ListItem) (*models.ListItemWithBook, error) {
	return s.withBook(ctx, item)
}

// Update merges the patch into the stored item. Ids and owner never change.
func (s *ListItemService) Update(ctx context.Context, item *models.ListItem, patch models.ListItemPatch) (*models.ListItemWithBook, error) {
	updated, err := s.repomanager.ListItems().Update(ctx, item.ID, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFoundError("No list item was found with the id of %s", item.ID)
		}
		return nil, oops.Code("LIST_ITEM_UPDATE_FAILED").With("list_item_id", item.ID).Wrap(err)
	}

	return s.withBook(ctx, updated)
}

// Remove deletes item.
func (s *ListItemService) Remove(ctx context.Context, item *models.ListItem) error {
	err := s.repomanager.ListItems().Delete(ctx, item.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFoundError("No list item was found with the id of %s", item.ID)
		}
		return oops.Code("LIST_ITEM_DELETE_FAILED").With("list_item_id", item.ID).Wrap(err)
	}

	s.logger.Debug(ctx, "list item removed", "list_item_id", item.ID)
	return nil
}

// List returns every item owned by ownerID, each joined with its book.
// Books are fetched with a single batch lookup.
func (s *ListItemService) List(ctx context.Context, ownerID string) ([]*models.ListItemWithBook, error) {
	items, err := s.repomanager.ListItems().Query(ctx, listitems.Filter{OwnerID: ownerID})
	if err != nil {
		return nil, oops.Code("LIST_ITEM_QUERY_FAILED").With("owner_id", ownerID).Wrap(err)
	}

	result := make([]*models.ListItemWithBook, 0, len(items))
	if len(items) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.BookID]; !ok {
			seen[it.BookID] = struct{}{}
			ids = append(ids, it.BookID)
		}
	}

	books, err := s.repomanager.Books().GetManyByID(ctx, ids)
	if err != nil {
		return nil, oops.Code("BOOK_LOOKUP_FAILED").With("owner_id", ownerID).Wrap(err)
	}

	byID := make(map[string]*models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	for _, it := range items {
		result = append(result, &models.ListItemWithBook{ListItem: *it, Book: byID[it.BookID]})
	}

	return result, nil
}

func (s *ListItemService) withBook(ctx context.Context, item *models.ListItem) (*models.ListItemWithBook, error) {
	book, err := s.repomanager.Books().GetByID(ctx, item.BookID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, oops.Code("BOOK_LOOKUP_FAILED").With("book_id", item.BookID).Wrap(err)
	}

	return &models.ListItemWithBook{ListItem: *item, Book: book}, nil
}
