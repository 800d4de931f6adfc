package httpserver

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/app"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/guard"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/config"
	apperrors "github.com/YonathanKevin20/barcode-generator-fe/internal/platform/errors"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/uisession"
)

// --- Mock implementations ---

type mockAppService struct {
	loginFn              func(ctx context.Context, username, password string) (domain.Session, error)
	resolveSessionFn     func(ctx context.Context, token string) (domain.Session, error)
	listBarcodesFn       func(ctx context.Context, page int) (*domain.PaginatedResponse[domain.Barcode], error)
	loadBarcodeOptionsFn func(ctx context.Context) (*app.BarcodeOptions, error)
	createBarcodeFn      func(ctx context.Context, in domain.BarcodeCreate) error
	listLookupFn         func(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error)
	getLookupFn          func(ctx context.Context, kind domain.LookupKind, id int) (*domain.Option, error)
	createCategoryFn     func(ctx context.Context, in domain.CategoryCreate) error
	updateCategoryFn     func(ctx context.Context, id int, in domain.CategoryEdit) error
	createSupplierFn     func(ctx context.Context, in domain.SupplierCreate) error
	updateSupplierFn     func(ctx context.Context, id int, in domain.SupplierEdit) error
	listUsersFn          func(ctx context.Context) ([]domain.User, error)
	getUserFn            func(ctx context.Context, id int) (*domain.User, error)
	updateUserFn         func(ctx context.Context, id int, in domain.UserEdit) error
}

func (m *mockAppService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return domain.Session{}, errors.New("not implemented")
}

func (m *mockAppService) ResolveSession(ctx context.Context, token string) (domain.Session, error) {
	if m.resolveSessionFn != nil {
		return m.resolveSessionFn(ctx, token)
	}
	return domain.Session{}, errors.New("not implemented")
}

func (m *mockAppService) ListBarcodes(ctx context.Context, page int) (*domain.PaginatedResponse[domain.Barcode], error) {
	if m.listBarcodesFn != nil {
		return m.listBarcodesFn(ctx, page)
	}
	return &domain.PaginatedResponse[domain.Barcode]{Page: 1, Limit: 10, TotalPage: 1}, nil
}

func (m *mockAppService) LoadBarcodeOptions(ctx context.Context) (*app.BarcodeOptions, error) {
	if m.loadBarcodeOptionsFn != nil {
		return m.loadBarcodeOptionsFn(ctx)
	}
	return &app.BarcodeOptions{
		Statuses:   []domain.Option{{ID: 1, Name: "New"}, {ID: 2, Name: "Sold"}},
		Categories: []domain.Option{{ID: 3, Code: "ELEC", Name: "Electronics"}},
		Suppliers:  []domain.Option{{ID: 4, Code: "ACME", Name: "Acme"}},
	}, nil
}

func (m *mockAppService) CreateBarcode(ctx context.Context, in domain.BarcodeCreate) error {
	if m.createBarcodeFn != nil {
		return m.createBarcodeFn(ctx, in)
	}
	return nil
}

func (m *mockAppService) ListLookup(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error) {
	if m.listLookupFn != nil {
		return m.listLookupFn(ctx, kind)
	}
	return nil, nil
}

func (m *mockAppService) GetLookup(ctx context.Context, kind domain.LookupKind, id int) (*domain.Option, error) {
	if m.getLookupFn != nil {
		return m.getLookupFn(ctx, kind, id)
	}
	return nil, errNotFound()
}

func (m *mockAppService) CreateCategory(ctx context.Context, in domain.CategoryCreate) error {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(ctx, in)
	}
	return nil
}

func (m *mockAppService) UpdateCategory(ctx context.Context, id int, in domain.CategoryEdit) error {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(ctx, id, in)
	}
	return nil
}

func (m *mockAppService) CreateSupplier(ctx context.Context, in domain.SupplierCreate) error {
	if m.createSupplierFn != nil {
		return m.createSupplierFn(ctx, in)
	}
	return nil
}

func (m *mockAppService) UpdateSupplier(ctx context.Context, id int, in domain.SupplierEdit) error {
	if m.updateSupplierFn != nil {
		return m.updateSupplierFn(ctx, id, in)
	}
	return nil
}

func (m *mockAppService) ListUsers(ctx context.Context) ([]domain.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockAppService) GetUser(ctx context.Context, id int) (*domain.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, id)
	}
	return nil, errNotFound()
}

func (m *mockAppService) UpdateUser(ctx context.Context, id int, in domain.UserEdit) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, id, in)
	}
	return nil
}

// --- Fixtures ---

// errNotFound matches what the backend client returns for a 404.
func errNotFound() error {
	nf := apperrors.NotFoundError("not found")
	nf.Cause = domain.ErrNotFound
	return nf
}

var (
	adminSession = domain.Session{
		Status: domain.StatusAuthenticated,
		Data:   &domain.SessionData{ID: 1, Username: "root", Role: "admin"},
		Token:  "admin-token",
	}
	userSession = domain.Session{
		Status: domain.StatusAuthenticated,
		Data:   &domain.SessionData{ID: 2, Username: "john", Role: "user"},
		Token:  "user-token",
	}
)

// resolveAs accepts exactly the token of sess.
func resolveAs(sess domain.Session) func(ctx context.Context, token string) (domain.Session, error) {
	return func(_ context.Context, token string) (domain.Session, error) {
		if token != sess.Token {
			return domain.Session{}, domain.ErrUnauthorized
		}
		return sess, nil
	}
}

// --- Test helpers ---

const testCSRFToken = "test-csrf-token"

const fieldErrorsTmpl = `{{range $k, $v := .Errors}} {{$k}}={{$v}}{{end}}`

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	tmpl := template.Must(template.New("login.html").Parse(`Login {{.Message}}` + fieldErrorsTmpl))
	template.Must(tmpl.New("barcodes.html").Parse(`Barcodes page={{.Data.Page}}{{range .Data.Data}} {{.ProductName}}{{end}} menu={{if .Menu}}{{.Menu.Username}}{{end}}`))
	template.Must(tmpl.New("barcode_new.html").Parse(`New status={{.Data.Status.Current}} open={{.Data.Status.Open}} product={{index .Form "product_name"}} {{.Message}}` + fieldErrorsTmpl))
	template.Must(tmpl.New("users.html").Parse(`Users{{range .Data}} {{.Username}}{{end}}`))
	template.Must(tmpl.New("user_edit.html").Parse(`User {{.Data.UserID}} {{index .Form "username"}} role={{.Data.Role.SelectedValue}}` + fieldErrorsTmpl))
	template.Must(tmpl.New("lookups.html").Parse(`{{.Title}}{{range .Data.Items}} {{.Code}}:{{.Name}}{{end}}`))
	template.Must(tmpl.New("lookup_form.html").Parse(`{{.Title}} action={{.Data.Action}} name={{index .Form "name"}} {{.Message}}` + fieldErrorsTmpl))
	template.Must(tmpl.New("expired.html").Parse(`Expired {{.Target}} {{.DelayMillis}}`))
	template.Must(tmpl.New("error.html").Parse(`Error {{.Status}} {{.Message}}`))

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	guards, err := guard.Default()
	require.NoError(t, err)

	cfg := &config.Config{
		APIBaseURL:         "http://backend.invalid",
		SessionMaxAge:      time.Hour,
		LoginRedirectDelay: 500 * time.Millisecond,
	}

	e := echo.New()

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		guards:       guards,
		pages:        uisession.NewRegistry(time.Hour),
		sessionStore: store,
		templates:    tmpl,
		upgrader:     newUpgrader(cfg),
		startTime:    time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withProxy(mw echo.MiddlewareFunc) func(*Server) {
	return func(s *Server) {
		s.proxy = mw
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(srv *Server, handler echo.HandlerFunc, c echo.Context) error {
	return srv.ErrorHandlingMiddleware()(handler)(c)
}

// newContext builds an echo context for a direct handler call with sess
// already resolved.
func newContext(srv *Server, req *http.Request, sess domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set(ctxKeySession, sess)
	return c, rec
}

func newFormRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// withCSRF makes req pass the CSRF middleware.
func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
	req.Header.Set("X-CSRF-Token", testCSRFToken)
	return req
}

// withSessionCookie attaches a login cookie carrying sess.
func withSessionCookie(t *testing.T, srv *Server, req *http.Request, sess domain.Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	session, err := srv.sessionStore.New(httptest.NewRequest(http.MethodGet, "/", nil), sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyToken] = sess.Token
	if sess.Data != nil {
		storeData(session, sess.Data)
	}
	require.NoError(t, session.Save(req, rec))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// clearedCookie reports whether the response expires the login cookie.
func clearedCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName && c.MaxAge < 0 {
			return true
		}
	}
	return false
}
