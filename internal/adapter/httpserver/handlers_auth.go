package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	apperrors "github.com/YonathanKevin20/barcode-generator-fe/internal/platform/errors"
	v "github.com/YonathanKevin20/barcode-generator-fe/internal/validation"
)

var loginSchema = v.Object(
	v.F("username", v.Required("Please enter your username")),
	v.F("password", v.Required("Please enter your password")),
)

const invalidCredentials = "Invalid username or password"

func (s *Server) registerAuthRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	s.echo.GET("/login", s.handleLoginPage, s.pageRoute(csrfMiddleware, "guest")...)
	s.echo.POST("/login", s.handleLogin, append([]echo.MiddlewareFunc{rateLimiter}, s.pageRoute(csrfMiddleware, "guest")...)...)
	s.echo.POST("/logout", s.handleLogout, s.pageRoute(csrfMiddleware, "auth")...)
}

func (s *Server) loginView(c echo.Context) *pageView {
	return &pageView{Title: "Login", CSRF: csrfToken(c), Form: map[string]string{}}
}

func (s *Server) handleLoginPage(c echo.Context) error {
	return s.renderTemplate(c, "login.html", s.loginView(c))
}

func (s *Server) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := c.FormParams()
	if err != nil {
		return apperrors.ValidationError("invalid form")
	}

	view := s.loginView(c)
	view.Form = formValues(form, "username")

	if fields := loginSchema.Validate(form); fields != nil {
		view.Errors = fields
		return s.renderTemplateStatus(c, http.StatusUnprocessableEntity, "login.html", view)
	}

	username := form.Get("username")
	sess, err := s.app.Login(ctx, username, form.Get("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			slog.InfoContext(ctx, "Login rejected", "username", username)
			view.Message = invalidCredentials
			return s.renderTemplateStatus(c, http.StatusUnprocessableEntity, "login.html", view)
		}
		if fields, msg, ok := formErrors(err); ok {
			view.Errors, view.Message = fields, msg
			if view.Message == "" && len(fields) == 0 {
				view.Message = invalidCredentials
			}
			return s.renderTemplateStatus(c, http.StatusUnprocessableEntity, "login.html", view)
		}
		return err
	}

	if err := s.startSession(c, sess); err != nil {
		return apperrors.InternalError("failed to start session", err)
	}

	if sess.Data != nil {
		slog.InfoContext(ctx, "User logged in", "user_id", sess.Data.ID, "username", sess.Data.Username, "role", sess.Data.Role)
	}

	if err := c.Redirect(http.StatusSeeOther, "/"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	sess := currentSession(c)
	s.clearSession(c)

	if sess.Data != nil {
		slog.InfoContext(c.Request().Context(), "User logged out", "user_id", sess.Data.ID)
	}

	if err := c.Redirect(http.StatusSeeOther, loginPath); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}
