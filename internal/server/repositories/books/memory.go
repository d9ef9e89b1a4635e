package books

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]models.Book
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]models.Book)}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) GetManyByID(ctx context.Context, ids []string) ([]*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	result := make([]*models.Book, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if b, ok := r.byID[id]; ok {
			result = append(result, &b)
		}
	}
	return result, nil
}

func (r *MemoryRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	if _, ok := r.byID[book.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}

	r.byID[book.ID] = *book
	return book, nil
}
