package listitems

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps list items in insertion order and enforces one
// item per (owner, book) pair.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.ListItem
	byOwner map[pairKey]string
	order   []string
}

type pairKey struct {
	ownerID string
	bookID  string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]models.ListItem),
		byOwner: make(map[pairKey]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, item *models.ListItem) (*models.ListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{item.OwnerID, item.BookID}
	if _, ok := r.byOwner[key]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if _, ok := r.byID[item.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}

	r.byID[item.ID] = *item
	r.byOwner[key] = item.ID
	r.order = append(r.order, item.ID)

	return item, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.ListItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &item, nil
}

func (r *MemoryRepository) Query(ctx context.Context, filter Filter) ([]*models.ListItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.ListItem{}
	for _, id := range r.order {
		item := r.byID[id]
		if filter.OwnerID != "" && item.OwnerID != filter.OwnerID {
			continue
		}
		if filter.BookID != "" && item.BookID != filter.BookID {
			continue
		}
		result = append(result, &item)
	}
	return result, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, patch models.ListItemPatch) (*models.ListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	item = patch.Apply(item)
	r.byID[id] = item
	return &item, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}

	delete(r.byID, id)
	delete(r.byOwner, pairKey{item.OwnerID, item.BookID})
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
