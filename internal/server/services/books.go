package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/repomanager"
	"github.com/samber/oops"
)

// BookService reads the catalogue and seeds it at startup.
type BookService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewBookService(m repomanager.RepositoryManager, logger logging.Logger) *BookService {
	return &BookService{repomanager: m, logger: logger.With("module", "books")}
}

func (s *BookService) Get(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.repomanager.Books().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFoundError("No book was found with the id of %s", id)
		}
		return nil, oops.Code("BOOK_LOOKUP_FAILED").With("book_id", id).Wrap(err)
	}
	return book, nil
}

// Seed inserts the books that are not in the store yet and returns how many
// were added. Running it twice with the same input adds nothing the second
// time.
func (s *BookService) Seed(ctx context.Context, books []models.Book) (int, error) {
	added := 0
	for i := range books {
		b := books[i]
		if b.ID == "" {
			return added, common.ValidationError("book at position %d has no id", i)
		}

		_, err := s.repomanager.Books().Create(ctx, &b)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				continue
			}
			return added, oops.Code("BOOK_SEED_FAILED").With("book_id", b.ID).Wrap(err)
		}
		added++
	}

	s.logger.Info(ctx, "books seeded", "added", added, "total", len(books))
	return added, nil
}

// DecodeBooks reads a JSON array of books.
func DecodeBooks(r io.Reader) ([]models.Book, error) {
	var books []models.Book
	if err := json.NewDecoder(r).Decode(&books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

// ReadBooksFile reads a JSON array of books from path.
func ReadBooksFile(path string) ([]models.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeBooks(f)
}
