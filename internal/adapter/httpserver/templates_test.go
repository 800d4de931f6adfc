package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/guard"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/config"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/uisession"
)

// newEmbeddedServer renders the real page templates.
func newEmbeddedServer(t *testing.T, app appService) *Server {
	t.Helper()

	guards, err := guard.Default()
	require.NoError(t, err)

	srv, err := NewServer(&config.Config{
		Port:               "0",
		APIBaseURL:         "http://backend.invalid",
		SessionSecret:      "test-secret-key-32-bytes-long!!!",
		SessionMaxAge:      time.Hour,
		LoginRedirectDelay: 1500 * time.Millisecond,
		DisplayTimezone:    "Asia/Jakarta",
	}, Deps{
		App:    app,
		Guards: guards,
		Pages:  uisession.NewRegistry(time.Hour),
	})
	require.NoError(t, err)
	return srv
}

func getPage(t *testing.T, srv *Server, path string, sess *domain.Session) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	if sess != nil {
		req = withSessionCookie(t, srv, req, *sess)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestEmbeddedTemplates_LoginPage(t *testing.T) {
	srv := newEmbeddedServer(t, &mockAppService{})

	rec := getPage(t, srv, "/login", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<title>Login | Barcode Generator</title>`)
	assert.Contains(t, body, `name="csrf_token"`)
	assert.NotContains(t, body, `class="topbar"`, "guests get no user menu")
}

func TestEmbeddedTemplates_BarcodeList(t *testing.T) {
	creator := "root"
	srv := newEmbeddedServer(t, &mockAppService{
		resolveSessionFn: resolveAs(adminSession),
		listBarcodesFn: func(context.Context, int) (*domain.PaginatedResponse[domain.Barcode], error) {
			return &domain.PaginatedResponse[domain.Barcode]{
				Data: []domain.Barcode{
					{ID: 1, Barcode: "ELEC-ACME-0001", ProductName: "Mouse", CreatedAt: "2024-01-15T10:30:00Z", CreatedByUser: &creator},
					{ID: 2, Barcode: "ELEC-ACME-0002", ProductName: "Keyboard"},
				},
				Page: 2, Limit: 10, Total: 25, TotalPage: 3,
			}, nil
		},
	})

	rec := getPage(t, srv, "/?page=2", &adminSession)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ELEC-ACME-0001")
	assert.Contains(t, body, "15 Jan 2024 17:30:00")
	assert.Contains(t, body, `<td>-</td>`, "missing creator shows a dash")
	assert.Contains(t, body, `href="/?page=1"`)
	assert.Contains(t, body, `href="/?page=3"`)
	assert.Contains(t, body, `data-dropdown="user-menu"`)
	assert.Contains(t, body, `href="/suppliers"`, "admins see admin pages")
	assert.Contains(t, body, `action="/logout"`)
}

func TestEmbeddedTemplates_BarcodeForm(t *testing.T) {
	srv := newEmbeddedServer(t, &mockAppService{resolveSessionFn: resolveAs(userSession)})

	rec := getPage(t, srv, "/barcodes/new", &userSession)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, id := range []string{"status_id", "category_id", "supplier_id"} {
		assert.Contains(t, body, `data-dropdown="`+id+`"`)
		assert.Contains(t, body, `name="`+id+`" value=""`)
	}
	assert.Contains(t, body, `data-value="3"`)
	assert.Contains(t, body, "Select status")
	assert.NotContains(t, body, `href="/users"`, "regular users see no admin pages")
}

func TestEmbeddedTemplates_UserEditSubmitsRoleCode(t *testing.T) {
	srv := newEmbeddedServer(t, &mockAppService{
		resolveSessionFn: resolveAs(adminSession),
		getUserFn: func(_ context.Context, id int) (*domain.User, error) {
			return &domain.User{ID: id, Username: "john", Role: "user"}, nil
		},
	})

	rec := getPage(t, srv, "/users/2/edit", &adminSession)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="role" value="user"`)
	assert.Contains(t, body, `data-value="admin"`)
	assert.Contains(t, body, `action="/users/2"`)
}

func TestEmbeddedTemplates_LookupPages(t *testing.T) {
	srv := newEmbeddedServer(t, &mockAppService{
		resolveSessionFn: resolveAs(adminSession),
		listLookupFn: func(context.Context, domain.LookupKind) ([]domain.Option, error) {
			return []domain.Option{{ID: 9, Code: "ACME", Name: "Acme"}}, nil
		},
		getLookupFn: func(_ context.Context, _ domain.LookupKind, id int) (*domain.Option, error) {
			return &domain.Option{ID: id, Code: "ACME", Name: "Acme"}, nil
		},
	})

	rec := getPage(t, srv, "/suppliers", &adminSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/suppliers/9/edit"`)

	rec = getPage(t, srv, "/suppliers/9/edit", &adminSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="ACME" disabled`)

	rec = getPage(t, srv, "/categories/new", &adminSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="code" maxlength="4"`)
}

func TestEmbeddedTemplates_ExpiredPage(t *testing.T) {
	srv := newEmbeddedServer(t, &mockAppService{
		resolveSessionFn: resolveAs(userSession),
		listBarcodesFn: func(context.Context, int) (*domain.PaginatedResponse[domain.Barcode], error) {
			return nil, domain.ErrUnauthorized
		},
	})

	rec := getPage(t, srv, "/", &userSession)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `content="2;url=/login"`)
	assert.Contains(t, body, "1500")
	assert.True(t, clearedCookie(rec))
}

func TestEmbeddedTemplates_StaticScript(t *testing.T) {
	srv := newEmbeddedServer(t, &mockAppService{})

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/dropdowns/")
}
