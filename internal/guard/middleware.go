package guard

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
)

// SessionFunc reads the session resolved earlier in the middleware chain.
type SessionFunc func(c echo.Context) domain.Session

// Middleware runs the named guards in order and redirects on the first
// failure. Unknown names panic at route registration.
func (s *Set) Middleware(session SessionFunc, names ...string) echo.MiddlewareFunc {
	for _, name := range names {
		if !s.Has(name) {
			panic("guard: unknown guard " + name)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := session(c)
			for _, name := range names {
				d, err := s.Check(name, sess)
				if err != nil {
					return err
				}
				if !d.Allowed {
					slog.DebugContext(c.Request().Context(), "Route guard redirect",
						"guard", name, "path", c.Path(), "redirect", d.Redirect, "mode", d.Mode)
					return c.Redirect(d.Mode.Status(), d.Redirect)
				}
			}
			return next(c)
		}
	}
}
