package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/dbx"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/google/uuid"
)

const bookColumns = `id, title, author, cover_image_url, page_count, publisher, synopsis`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (*models.Book, error) {
	b := &models.Book{}
	err := s.Scan(&b.ID, &b.Title, &b.Author, &b.CoverImageURL, &b.PageCount, &b.Publisher, &b.Synopsis)
	return b, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return b, nil
}

func (r *PostgresRepository) GetManyByID(ctx context.Context, ids []string) ([]*models.Book, error) {
	if len(ids) == 0 {
		return []*models.Book{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Book, 0, len(ids))
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO books (` + bookColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.CoverImageURL, book.PageCount, book.Publisher, book.Synopsis)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return book, nil
}
