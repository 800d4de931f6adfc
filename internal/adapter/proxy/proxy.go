// Package proxy forwards /api/* requests to the upstream backend.
package proxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/correlation"
)

// Prefix is the path prefix stripped before forwarding.
const Prefix = "/api/"

// TokenSource returns the login token of the request, if any.
type TokenSource func(c echo.Context) (string, bool)

type Config struct {
	// Target is the backend base URL; its path is kept as a prefix.
	Target string
	// Token, when set, supplies a bearer token for requests that arrive
	// without an Authorization header.
	Token     TokenSource
	Transport http.RoundTripper
}

// Middleware forwards the request to Target with Prefix replaced by the
// target path. Method, body, headers and the response pass through as they
// are.
func Middleware(cfg Config) (echo.MiddlewareFunc, error) {
	target, err := url.Parse(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy target must be absolute, got %q", cfg.Target)
	}

	balancer := middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{Name: "backend", URL: target}})

	proxy := middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: balancer,
		Rewrite: map[string]string{
			Prefix + "*": "/$1",
		},
		Transport: cfg.Transport,
		ErrorHandler: func(c echo.Context, err error) error {
			slog.WarnContext(c.Request().Context(), "Proxy request failed",
				"path", c.Request().URL.Path, "error", err)
			return echo.NewHTTPError(http.StatusBadGateway, "backend unavailable").SetInternal(err)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		forward := proxy(next)
		return func(c echo.Context) error {
			req := c.Request()
			if cfg.Token != nil && req.Header.Get(echo.HeaderAuthorization) == "" {
				if token, ok := cfg.Token(c); ok {
					req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
				}
			}
			correlation.Propagate(req)
			return forward(c)
		}
	}, nil
}
