// Package books stores the book catalogue.
package books

import (
	"context"

	"github.com/dmitrijs2005/bookshelf/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Book, error)
	// GetManyByID returns the books that exist among ids, in no particular
	// order. Unknown ids are skipped.
	GetManyByID(ctx context.Context, ids []string) ([]*models.Book, error)
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
}
