package listitems

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

const itemColumns = `id, owner_id, book_id, notes, rating, start_date, finish_date`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.ListItem, error) {
	var (
		item       models.ListItem
		rating     sql.NullInt64
		startDate  sql.NullTime
		finishDate sql.NullTime
	)

	if err := s.Scan(&item.ID, &item.OwnerID, &item.BookID, &item.Notes, &rating, &startDate, &finishDate); err != nil {
		return nil, err
	}

	if rating.Valid {
		r := int(rating.Int64)
		item.Rating = &r
	}
	if startDate.Valid {
		d := startDate.Time.UTC()
		item.StartDate = &d
	}
	if finishDate.Valid {
		d := finishDate.Time.UTC()
		item.FinishDate = &d
	}

	return &item, nil
}

// isNotFound also covers ids Postgres cannot cast to the column type.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err)
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.ListItem) (*models.ListItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO list_items (` + itemColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING ` + itemColumns

	stored, err := scanItem(r.db.QueryRowContext(ctx, query,
		item.ID, item.OwnerID, item.BookID, item.Notes, item.Rating, item.StartDate, item.FinishDate))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return stored, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ListItem, error) {
	query := `SELECT ` + itemColumns + ` FROM list_items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) Query(ctx context.Context, filter Filter) ([]*models.ListItem, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.BookID != "" {
		args = append(args, filter.BookID)
		conds = append(conds, fmt.Sprintf("book_id = $%d", len(args)))
	}

	query := `SELECT ` + itemColumns + ` FROM list_items`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.ListItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.ListItemPatch) (*models.ListItem, error) {
	query :=
		`UPDATE list_items SET
		   notes = COALESCE($2, notes),
		   rating = COALESCE($3, rating),
		   start_date = COALESCE($4, start_date),
		   finish_date = COALESCE($5, finish_date)
		 WHERE id = $1
		 RETURNING ` + itemColumns

	item, err := scanItem(r.db.QueryRowContext(ctx, query,
		id, patch.Notes, patch.Rating, patch.StartDate, patch.FinishDate))
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM list_items WHERE id = $1`, id)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
