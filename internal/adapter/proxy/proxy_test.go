package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	method, path, query, body, auth, custom string
}

func newBackend(t *testing.T, got *seen) *httptest.Server {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = seen{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   string(body),
			auth:   r.Header.Get("Authorization"),
			custom: r.Header.Get("X-Custom"),
		}
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, `{"data":"raw"}`)
	}))
	t.Cleanup(backend.Close)
	return backend
}

func newProxyServer(t *testing.T, cfg Config) *echo.Echo {
	t.Helper()
	mw, err := Middleware(cfg)
	require.NoError(t, err)

	e := echo.New()
	e.Any(Prefix+"*", func(echo.Context) error { return echo.ErrNotFound }, mw)
	return e
}

func TestMiddleware_ForwardsVerbatim(t *testing.T) {
	var got seen
	backend := newBackend(t, &got)
	e := newProxyServer(t, Config{Target: backend.URL + "/v1"})

	req := httptest.NewRequest(http.MethodPost, "/api/barcodes/export?page=2", strings.NewReader(`{"a":1}`))
	req.Header.Set("Authorization", "Bearer client")
	req.Header.Set("X-Custom", "kept")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, `{"data":"raw"}`, rec.Body.String())
	assert.Equal(t, "yes", rec.Header().Get("X-Upstream"))

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/v1/barcodes/export", got.path)
	assert.Equal(t, "page=2", got.query)
	assert.Equal(t, `{"a":1}`, got.body)
	assert.Equal(t, "Bearer client", got.auth)
	assert.Equal(t, "kept", got.custom)
}

func TestMiddleware_InjectsSessionToken(t *testing.T) {
	var got seen
	backend := newBackend(t, &got)
	e := newProxyServer(t, Config{
		Target: backend.URL,
		Token:  func(echo.Context) (string, bool) { return "from-session", true },
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, "/me", got.path)
	assert.Equal(t, "Bearer from-session", got.auth)
}

func TestMiddleware_ClientHeaderWinsOverSession(t *testing.T) {
	var got seen
	backend := newBackend(t, &got)
	e := newProxyServer(t, Config{
		Target: backend.URL,
		Token:  func(echo.Context) (string, bool) { return "from-session", true },
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer explicit")
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "Bearer explicit", got.auth)
}

func TestMiddleware_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := backend.URL
	backend.Close()

	e := newProxyServer(t, Config{Target: target})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMiddleware_InvalidTarget(t *testing.T) {
	_, err := Middleware(Config{Target: "backend:8080"})
	assert.Error(t, err)
}
