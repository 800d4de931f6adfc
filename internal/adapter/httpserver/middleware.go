package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/correlation"
	apperrors "github.com/YonathanKevin20/barcode-generator-fe/internal/platform/errors"
)

const loginPath = "/login"

// correlationMiddleware reuses a sane incoming X-Request-ID or generates one,
// and echoes it on the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.Header))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}

// ErrorHandlingMiddleware turns returned errors into responses: an HTML page
// for browser navigation, JSON otherwise. An unauthorized error clears the
// login session and sends the browser to the login page after a short delay.
func (s *Server) ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structuredErr := asStructuredError(err)
			logError(c, structuredErr)
			s.countError(structuredErr.Type)

			if c.Response().Committed {
				return nil
			}

			if structuredErr.Type == apperrors.TypeUnauthorized {
				return s.handleUnauthorized(c, structuredErr)
			}

			if wantsHTML(c) {
				return s.renderTemplateStatus(c, structuredErr.HTTPStatus(), "error.html", errorView{
					Status:  structuredErr.HTTPStatus(),
					Message: publicMessage(structuredErr),
				})
			}

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

type errorView struct {
	Status  int
	Message string
}

type expiredView struct {
	Target       string
	DelayMillis  int64
	DelaySeconds int64
}

// handleUnauthorized clears the login session. Browsers get a page that
// redirects to the login page after the configured delay; API clients get
// 401 JSON.
func (s *Server) handleUnauthorized(c echo.Context, err *apperrors.Error) error {
	s.clearSession(c)

	if !wantsHTML(c) {
		if err := c.JSON(http.StatusUnauthorized, err.ToResponse()); err != nil {
			return fmt.Errorf("failed to write error response: %w", err)
		}
		return nil
	}

	delay := s.config.LoginRedirectDelay
	return s.renderTemplateStatus(c, http.StatusUnauthorized, "expired.html", expiredView{
		Target:       loginPath,
		DelayMillis:  delay.Milliseconds(),
		DelaySeconds: int64(math.Ceil(delay.Seconds())),
	})
}

// asStructuredError additionally maps form and upstream validation failures
// to validation errors carrying the field messages.
func asStructuredError(err error) *apperrors.Error {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		return validationWithFields("invalid input", fields)
	}
	var upstream *domain.UpstreamValidationError
	if errors.As(err, &upstream) {
		msg := upstream.Message
		if msg == "" {
			msg = "invalid input"
		}
		return validationWithFields(msg, upstream.Fields)
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		var structured *apperrors.Error
		if errors.As(err, &structured) && structured.Type == apperrors.TypeUnauthorized {
			return structured
		}
		return apperrors.UnauthorizedError("session expired", err)
	}
	return apperrors.AsStructuredError(err)
}

func validationWithFields(msg string, fields domain.FieldErrors) *apperrors.Error {
	e := apperrors.ValidationError(msg)
	for k, v := range fields {
		e.WithField(k, v)
	}
	return e
}

// publicMessage hides internal causes from error pages.
func publicMessage(err *apperrors.Error) string {
	if err.Type == apperrors.TypeInternal {
		return "Something went wrong. Please try again."
	}
	return err.Message
}

// wantsHTML reports whether the request is a browser navigation rather than
// a script call.
func wantsHTML(c echo.Context) bool {
	req := c.Request()
	if req.Header.Get(echo.HeaderXRequestedWith) == "XMLHttpRequest" {
		return false
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func (s *Server) countError(t apperrors.ErrorType) {
	if s.metrics != nil {
		s.metrics.Errors.WithLabelValues(string(t)).Inc()
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if userID := c.Get("userID"); userID != nil {
		attrs = append(attrs, "user_id", userID)
	}

	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeUnauthorized:
		slog.InfoContext(ctx, "Unauthorized", attrs...)
	case apperrors.TypeForbidden, apperrors.TypeConflict:
		slog.WarnContext(ctx, "Request rejected", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Backend error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}
