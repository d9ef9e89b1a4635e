package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/server/auth"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/books"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/listitems"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	testNow      = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	errStoreDown = errors.New("store down")
)

func fixedClock() time.Time { return testNow }

type fixture struct {
	m      *repomanager.MemoryRepositoryManager
	tokens *auth.TokenService
	users  *UserService
	items  *ListItemService
	books  *BookService
	guard  *OwnershipGuard
	authn  *Authenticator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m := repomanager.NewMemoryRepositoryManager()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour, fixedClock)
	us := NewUserService(m, auth.NewBcryptHasher(bcrypt.MinCost), tokens, logging.Nop{})

	f := &fixture{
		m:      m,
		tokens: tokens,
		users:  us,
		items:  NewListItemService(m, logging.Nop{}, fixedClock),
		books:  NewBookService(m, logging.Nop{}),
		guard:  NewOwnershipGuard(m),
		authn:  NewAuthenticator(tokens, us),
	}

	_, err := f.books.Seed(context.Background(), []models.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert"},
		{ID: "b2", Title: "Emma", Author: "Jane Austen"},
		{ID: "b3", Title: "Ulysses", Author: "James Joyce"},
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) register(t *testing.T, username string) *AuthenticatedUser {
	t.Helper()
	u, err := f.users.Register(context.Background(), username, "!aBc123")
	require.NoError(t, err)
	return u
}

// failingManager returns errStoreDown from every repository call.
type failingManager struct{}

func (failingManager) RunMigrations(context.Context) error { return nil }
func (failingManager) Users() users.Repository             { return failingUsers{} }
func (failingManager) Books() books.Repository             { return failingBooks{} }
func (failingManager) ListItems() listitems.Repository     { return failingItems{} }
func (failingManager) Close() error                        { return nil }
func (m failingManager) InTx(ctx context.Context, fn func(context.Context, repomanager.RepositoryManager) error) error {
	return fn(ctx, m)
}

type failingUsers struct{}

func (failingUsers) Create(context.Context, *models.User) (*models.User, error) {
	return nil, errStoreDown
}
func (failingUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}
func (failingUsers) GetByID(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}

type failingBooks struct{}

func (failingBooks) GetByID(context.Context, string) (*models.Book, error) { return nil, errStoreDown }
func (failingBooks) GetManyByID(context.Context, []string) ([]*models.Book, error) {
	return nil, errStoreDown
}
func (failingBooks) Create(context.Context, *models.Book) (*models.Book, error) {
	return nil, errStoreDown
}

type failingItems struct{}

func (failingItems) Create(context.Context, *models.ListItem) (*models.ListItem, error) {
	return nil, errStoreDown
}
func (failingItems) GetByID(context.Context, string) (*models.ListItem, error) {
	return nil, errStoreDown
}
func (failingItems) Query(context.Context, listitems.Filter) ([]*models.ListItem, error) {
	return nil, errStoreDown
}
func (failingItems) Update(context.Context, string, models.ListItemPatch) (*models.ListItem, error) {
	return nil, errStoreDown
}
func (failingItems) Delete(context.Context, string) error { return errStoreDown }
