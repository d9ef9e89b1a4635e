package rest

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/labstack/echo/v4"
	"github.com/samber/oops"
)

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// handleError is the only place errors become HTTP responses.
func (s *Server) handleError(err error, c echo.Context) {
	ctx := c.Request().Context()

	if c.Response().Committed {
		s.logger.Warn(ctx, "error after response was sent", "error", err)
		s.echo.DefaultHTTPErrorHandler(err, c)
		return
	}

	status, body := toResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "error", err, "path", c.Request().URL.Path)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Error(ctx, "writing error response", "error", err)
	}
}

func toResponse(err error) (int, errorResponse) {
	if e, ok := common.AsError(err); ok {
		switch {
		case errors.Is(e.Kind, common.ErrorUnauthenticated):
			return http.StatusUnauthorized, errorResponse{Message: e.Message, Code: e.Code}
		case errors.Is(e.Kind, common.ErrorForbidden):
			return http.StatusForbidden, errorResponse{Message: e.Message}
		case errors.Is(e.Kind, common.ErrorNotFound):
			return http.StatusNotFound, errorResponse{Message: e.Message}
		case errors.Is(e.Kind, common.ErrorValidation),
			errors.Is(e.Kind, common.ErrorConflict),
			errors.Is(e.Kind, common.ErrorInvalidCredentials):
			return http.StatusBadRequest, errorResponse{Message: e.Message}
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, errorResponse{Message: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, errorResponse{Message: err.Error(), Stack: stackOf(err)}
}

func stackOf(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Stacktrace()
	}
	return string(debug.Stack())
}
