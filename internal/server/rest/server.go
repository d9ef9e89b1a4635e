// Package rest exposes the bookshelf services over HTTP/JSON using echo.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/server/metrics"
	"github.com/dmitrijs2005/bookshelf/internal/server/services"
	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 10 * time.Second

// Services groups the business services the HTTP layer dispatches to.
type Services struct {
	Users         *services.UserService
	ListItems     *services.ListItemService
	Books         *services.BookService
	Authenticator *services.Authenticator
	Ownership     *services.OwnershipGuard
}

type Server struct {
	address string
	logger  logging.Logger
	metrics *metrics.Metrics
	svc     Services
	echo    *echo.Echo
}

func NewServer(address string, l logging.Logger, m *metrics.Metrics, svc Services) *Server {
	s := &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		metrics: m,
		svc:     svc,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	s.echo = e
	s.routes()

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
