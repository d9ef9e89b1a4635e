package repomanager

import (
	"context"

	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/books"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/listitems"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/users"
)

// RepositoryManager vends the repositories of one storage backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Books() books.Repository
	ListItems() listitems.Repository
	// InTx runs fn as one unit of work. Repositories obtained from the
	// manager passed to fn take part in it. Nested calls join the outer unit.
	InTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error
	Close() error
}
