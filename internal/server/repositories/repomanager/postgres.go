// Package repomanager provides RepositoryManager implementations for
// PostgreSQL and for process memory, wiring together repository
// constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/bookshelf/internal/dbx"
	"github.com/dmitrijs2005/bookshelf/internal/server/migrations"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/books"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/listitems"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories bound
// either to the connection pool or to an open transaction.
type PostgresRepositoryManager struct {
	conn *sql.DB
	db   dbx.DBTX
	inTx bool
}

// NewPostgresRepositoryManager opens a pgx connection pool for dsn and
// checks that the database is reachable.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return newPostgresRepositoryManager(conn), nil
}

func newPostgresRepositoryManager(conn *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{conn: conn, db: conn}
}

// Users returns a users.Repository bound to the manager's DBTX.
func (m *PostgresRepositoryManager) Users() users.Repository {
	return users.NewPostgresRepository(m.db)
}

// Books returns a books.Repository bound to the manager's DBTX.
func (m *PostgresRepositoryManager) Books() books.Repository {
	return books.NewPostgresRepository(m.db)
}

// ListItems returns a listitems.Repository bound to the manager's DBTX.
func (m *PostgresRepositoryManager) ListItems() listitems.Repository {
	return listitems.NewPostgresRepository(m.db)
}

// InTx begins a transaction and hands fn a manager bound to it.
func (m *PostgresRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}

	return dbx.WithTx(ctx, m.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &PostgresRepositoryManager{conn: m.conn, db: tx, inTx: true})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the connection pool.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.conn, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	if m.inTx {
		return nil
	}
	return m.conn.Close()
}
