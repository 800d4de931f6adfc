package httpserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/proxy"
	"github.com/YonathanKevin20/barcode-generator-fe/web"
)

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			slog.ErrorContext(c.Request().Context(), "Recovered from panic",
				"path", c.Request().URL.Path, "error", err, "stack", string(stack))
			return err
		},
	}))
	if s.metrics != nil {
		s.echo.Use(s.metrics.HTTP.Middleware())
	}
	s.echo.Use(s.ErrorHandlingMiddleware())
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         63072000, // 2 years; only sent over HTTPS
		HSTSPreloadEnabled: true,
		ContentSecurityPolicy: "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"connect-src 'self' ws: wss:; " +
			"frame-ancestors 'none'",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}))

	csrfMiddleware := s.setupCSRFMiddleware(pageCSRFLookup)

	s.echo.StaticFS("/static", echo.MustSubFS(web.StaticFiles, "static"))

	s.registerHealthRoutes()
	s.registerAuthRoutes(csrfMiddleware, s.newRateLimiter(loginRatePerSecond, loginBurst))
	s.registerBarcodeRoutes(csrfMiddleware)
	s.registerAdminRoutes(csrfMiddleware)
	s.registerUIRoutes(csrfMiddleware)

	if s.proxy != nil {
		// Proxied bodies must reach the backend unread, so the token only
		// comes from the header here.
		s.echo.Any(proxy.Prefix+"*", apiNotFound, s.setupCSRFMiddleware(apiCSRFLookup), s.proxy)
	}
}

// apiNotFound only runs when the proxy passes the request on, which it never
// does for matched routes.
func apiNotFound(c echo.Context) error {
	return echo.ErrNotFound
}

// pageRoute is the middleware chain of a page: CSRF token, login session and
// the named guards, in that order.
func (s *Server) pageRoute(csrfMiddleware echo.MiddlewareFunc, guards ...string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		csrfMiddleware,
		s.resolveSession,
		s.guards.Middleware(currentSession, guards...),
	}
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/health/") || strings.HasPrefix(c.Path(), "/static")
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}

const (
	pageCSRFLookup = "form:csrf_token,header:X-CSRF-Token"
	apiCSRFLookup  = "header:X-CSRF-Token"
)

func (s *Server) setupCSRFMiddleware(tokenLookup string) echo.MiddlewareFunc {
	maxAge := int(s.config.SessionMaxAge.Seconds())

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    tokenLookup,
		CookieName:     "csrf_token",
		CookiePath:     "/",
		CookieMaxAge:   maxAge,
		CookieHTTPOnly: true,
		CookieSecure:   s.config.IsProduction(),
		CookieSameSite: http.SameSiteStrictMode,
	})
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
