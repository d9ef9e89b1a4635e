// Package server initializes and runs the bookshelf application server.
// It selects the storage backend, seeds the book catalogue, wires the
// services and runs the HTTP server until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/server/auth"
	"github.com/dmitrijs2005/bookshelf/internal/server/config"
	"github.com/dmitrijs2005/bookshelf/internal/server/metrics"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookshelf/internal/server/rest"
	"github.com/dmitrijs2005/bookshelf/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	metrics     *metrics.Metrics
	services    rest.Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	m, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration, nil)
	users := services.NewUserService(m, auth.NewBcryptHasher(c.BcryptCost), tokens, logger)
	books := services.NewBookService(m, logger)

	if c.BooksSeedFile != "" {
		seed, err := services.ReadBooksFile(c.BooksSeedFile)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("books seed file error: %w", err)
		}
		if _, err := books.Seed(ctx, seed); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("books seed error: %w", err)
		}
	}

	return &App{
		config:      c,
		logger:      logger,
		repomanager: m,
		metrics:     metrics.New(),
		services: rest.Services{
			Users:         users,
			ListItems:     services.NewListItemService(m, logger, nil),
			Books:         books,
			Authenticator: services.NewAuthenticator(tokens, users),
			Ownership:     services.NewOwnershipGuard(m),
		},
	}, nil
}

// openRepositories picks PostgreSQL when a DSN is configured and the
// in-memory store otherwise.
func openRepositories(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "No database DSN configured, using in-memory storage")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	m, err := repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return m, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives, then
// releases the storage backend.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	s := rest.NewServer(app.config.EndpointAddrHTTP, app.logger, app.metrics, app.services)
	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "HTTP server error", "error", runErr)
	}

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")

	return runErr
}
