package rest

import (
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/server/metrics"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/dmitrijs2005/bookshelf/internal/server/services"
	"github.com/labstack/echo/v4"
)

const (
	userKey     = "user"
	tokenKey    = "token"
	listItemKey = "listItem"
)

// observe logs and counts every request. Errors are rendered here so that
// the recorded status is the one the client sees.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		if err := next(c); err != nil {
			c.Error(err)
		}

		elapsed := time.Since(start)
		req := c.Request()
		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}

		args := []any{
			"method", req.Method,
			"route", route,
			"status", status,
			"latency", elapsed,
		}
		if u := currentUser(c); u != nil {
			args = append(args, "user_id", u.ID)
		}
		s.logger.Info(req.Context(), "request served", args...)

		if s.metrics != nil {
			s.metrics.ObserveRequest(req.Method, route, status, elapsed)
		}

		return nil
	}
}

// requireAuth resolves the caller from the Authorization header and stores
// the user and the presented token on the context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AuthorizationHeaderName)

		switch res := s.svc.Authenticator.Authenticate(c.Request().Context(), header).(type) {
		case services.Authenticated:
			s.observeAuth(metrics.AuthAccepted, "")
			c.Set(userKey, res.User)
			c.Set(tokenKey, res.Token)
			return next(c)
		case services.Rejected:
			code := ""
			if e, ok := common.AsError(res.Err); ok {
				code = e.Code
			}
			s.observeAuth(metrics.AuthRejected, code)
			return res.Err
		default:
			return echo.ErrUnauthorized
		}
	}
}

// loadListItem authorizes access to the :id list item and stores it on the
// context. Must run after requireAuth.
func (s *Server) loadListItem(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		item, err := s.svc.Ownership.Authorize(c.Request().Context(), currentUser(c), c.Param("id"))
		if err != nil {
			return err
		}
		c.Set(listItemKey, item)
		return next(c)
	}
}

func (s *Server) observeAuth(outcome, code string) {
	if s.metrics != nil {
		s.metrics.ObserveAuth(outcome, code)
	}
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func currentToken(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}

func currentListItem(c echo.Context) *models.ListItem {
	item, _ := c.Get(listItemKey).(*models.ListItem)
	return item
}
