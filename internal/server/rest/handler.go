package rest

import (
	"net/http"

	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/dmitrijs2005/bookshelf/internal/server/services"
	"github.com/labstack/echo/v4"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createListItemRequest struct {
	BookID string `json:"bookId"`
}

type userResponse struct {
	User *services.AuthenticatedUser `json:"user"`
}

type listItemResponse struct {
	ListItem *models.ListItemWithBook `json:"listItem"`
}

type listItemsResponse struct {
	ListItems []*models.ListItemWithBook `json:"listItems"`
}

type bookResponse struct {
	Book *models.Book `json:"book"`
}

func (s *Server) routes() {
	e := s.echo
	e.Use(s.observe)

	e.GET("/healthz", s.healthz)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	e.POST("/auth/register", s.register)
	e.POST("/auth/login", s.login)
	e.GET("/auth/me", s.me, s.requireAuth)

	items := e.Group("/list-items", s.requireAuth)
	items.GET("", s.listItems)
	items.POST("", s.createListItem)
	items.GET("/:id", s.readListItem, s.loadListItem)
	items.PUT("/:id", s.updateListItem, s.loadListItem)
	items.DELETE("/:id", s.deleteListItem, s.loadListItem)

	e.GET("/books/:id", s.getBook, s.requireAuth)
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := s.svc.Users.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{User: user})
}

func (s *Server) login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := s.svc.Users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{User: user})
}

// me echoes back the token the caller presented.
func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, userResponse{User: &services.AuthenticatedUser{
		User:  *currentUser(c),
		Token: currentToken(c),
	}})
}

func (s *Server) listItems(c echo.Context) error {
	items, err := s.svc.ListItems.List(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listItemsResponse{ListItems: items})
}

func (s *Server) createListItem(c echo.Context) error {
	var req createListItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	item, err := s.svc.ListItems.Create(c.Request().Context(), currentUser(c).ID, req.BookID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listItemResponse{ListItem: item})
}

func (s *Server) readListItem(c echo.Context) error {
	item, err := s.svc.ListItems.Read(c.Request().Context(), currentListItem(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listItemResponse{ListItem: item})
}

func (s *Server) updateListItem(c echo.Context) error {
	var patch models.ListItemPatch
	if err := c.Bind(&patch); err != nil {
		return err
	}

	item, err := s.svc.ListItems.Update(c.Request().Context(), currentListItem(c), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listItemResponse{ListItem: item})
}

func (s *Server) deleteListItem(c echo.Context) error {
	if err := s.svc.ListItems.Remove(c.Request().Context(), currentListItem(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) getBook(c echo.Context) error {
	book, err := s.svc.Books.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookResponse{Book: book})
}
