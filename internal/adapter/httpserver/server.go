package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/metrics"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/proxy"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/app"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/guard"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/config"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/datefmt"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/uisession"
	"github.com/YonathanKevin20/barcode-generator-fe/web"
)

type appService interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	ResolveSession(ctx context.Context, token string) (domain.Session, error)

	ListBarcodes(ctx context.Context, page int) (*domain.PaginatedResponse[domain.Barcode], error)
	LoadBarcodeOptions(ctx context.Context) (*app.BarcodeOptions, error)
	CreateBarcode(ctx context.Context, in domain.BarcodeCreate) error

	ListLookup(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error)
	GetLookup(ctx context.Context, kind domain.LookupKind, id int) (*domain.Option, error)
	CreateCategory(ctx context.Context, in domain.CategoryCreate) error
	UpdateCategory(ctx context.Context, id int, in domain.CategoryEdit) error
	CreateSupplier(ctx context.Context, in domain.SupplierCreate) error
	UpdateSupplier(ctx context.Context, id int, in domain.SupplierEdit) error

	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int) (*domain.User, error)
	UpdateUser(ctx context.Context, id int, in domain.UserEdit) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app     appService
	guards  *guard.Set
	pages   *uisession.Registry
	metrics *metrics.Metrics
	proxy   echo.MiddlewareFunc

	templates    *template.Template
	sessionStore *sessions.CookieStore
	upgrader     websocket.Upgrader
	healthChecks []HealthCheck
	startTime    time.Time
}

// Deps are the collaborators of the server. Metrics and ProxyTransport are
// optional.
type Deps struct {
	App            appService
	Guards         *guard.Set
	Pages          *uisession.Registry
	Metrics        *metrics.Metrics
	ProxyTransport http.RoundTripper
	HealthChecks   []HealthCheck
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	dates, err := datefmt.New(cfg.DisplayTimezone)
	if err != nil {
		return nil, err
	}

	templates, err := template.New("").Funcs(templateFuncs(dates)).ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          deps.App,
		guards:       deps.Guards,
		pages:        deps.Pages,
		metrics:      deps.Metrics,
		templates:    templates,
		sessionStore: setupSessionStore(cfg),
		upgrader:     newUpgrader(cfg),
		healthChecks: deps.HealthChecks,
		startTime:    time.Now(),
	}

	srv.proxy, err = proxy.Middleware(proxy.Config{
		Target:    cfg.APIBaseURL,
		Token:     srv.sessionToken,
		Transport: deps.ProxyTransport,
	})
	if err != nil {
		return nil, err
	}

	srv.registerRoutes()

	return srv, nil
}

func templateFuncs(dates *datefmt.Formatter) template.FuncMap {
	return template.FuncMap{
		"date": dates.Format,
		"inc":  func(n int) int { return n + 1 },
		"dec":  func(n int) int { return n - 1 },
	}
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	return s.renderTemplateStatus(c, http.StatusOK, name, data)
}

func (s *Server) renderTemplateStatus(c echo.Context, code int, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "template", name, "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(code, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
