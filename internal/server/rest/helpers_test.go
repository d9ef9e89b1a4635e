package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/server/auth"
	"github.com/dmitrijs2005/bookshelf/internal/server/metrics"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/dmitrijs2005/bookshelf/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookshelf/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	t       *testing.T
	server  *Server
	metrics *metrics.Metrics
	tokens  *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	m := repomanager.NewMemoryRepositoryManager()
	clock := func() time.Time { return testNow }
	tokens := auth.NewTokenService([]byte(testSecret), time.Hour, clock)
	users := services.NewUserService(m, auth.NewBcryptHasher(bcrypt.MinCost), tokens, logging.Nop{})
	books := services.NewBookService(m, logging.Nop{})

	_, err := books.Seed(context.Background(), []models.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert", PageCount: 412},
		{ID: "b2", Title: "Emma", Author: "Jane Austen"},
	})
	require.NoError(t, err)

	met := metrics.New()
	srv := NewServer("127.0.0.1:0", logging.Nop{}, met, Services{
		Users:         users,
		ListItems:     services.NewListItemService(m, logging.Nop{}, clock),
		Books:         books,
		Authenticator: services.NewAuthenticator(tokens, users),
		Ownership:     services.NewOwnershipGuard(m),
	})

	return &testEnv{t: t, server: srv, metrics: met, tokens: tokens}
}

type response struct {
	Code int
	Body map[string]any
	Raw  string
}

func (e *testEnv) do(method, path, token string, body any) response {
	e.t.Helper()

	var b []byte
	switch v := body.(type) {
	case nil:
	case string:
		b = []byte(v)
	default:
		var err error
		b, err = json.Marshal(v)
		require.NoError(e.t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	res := response{Code: rec.Code, Raw: rec.Body.String()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &res.Body), rec.Body.String())
	}
	return res
}

func (e *testEnv) doHeader(method, path, authorization string) response {
	e.t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	res := response{Code: rec.Code, Raw: rec.Body.String()}
	if rec.Body.Len() > 0 {
		require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &res.Body), rec.Body.String())
	}
	return res
}

// registerUser returns (id, token).
func (e *testEnv) registerUser(username string) (string, string) {
	e.t.Helper()

	res := e.do(http.MethodPost, "/auth/register", "", map[string]string{"username": username, "password": "!aBc123"})
	require.Equal(e.t, http.StatusOK, res.Code, res.Raw)

	user := res.Body["user"].(map[string]any)
	return user["id"].(string), user["token"].(string)
}

func (e *testEnv) createItem(token, bookID string) map[string]any {
	e.t.Helper()

	res := e.do(http.MethodPost, "/list-items", token, map[string]string{"bookId": bookID})
	require.Equal(e.t, http.StatusOK, res.Code, res.Raw)
	return res.Body["listItem"].(map[string]any)
}
