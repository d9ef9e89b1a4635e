package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/books"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/listitems"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Units of
// work are serialized against each other but are not rolled back on error.
type MemoryRepositoryManager struct {
	users     *users.MemoryRepository
	books     *books.MemoryRepository
	listItems *listitems.MemoryRepository

	txMu *sync.Mutex
	inTx bool
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:     users.NewMemoryRepository(),
		books:     books.NewMemoryRepository(),
		listItems: listitems.NewMemoryRepository(),
		txMu:      &sync.Mutex{},
	}
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Books() books.Repository {
	return m.books
}

func (m *MemoryRepositoryManager) ListItems() listitems.Repository {
	return m.listItems
}

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := *m
	tx.inTx = true
	return fn(ctx, &tx)
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
