package httpserver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
)

// Session keys
const (
	sessionName        = "barcode-generator.session"
	sessionKeyToken    = "token"
	sessionKeyUserID   = "user_id"
	sessionKeyUsername = "username"
	sessionKeyRole     = "role"

	ctxKeySession = "session"
)

// currentSession returns the session resolved by resolveSession, or an
// anonymous one when the route does not resolve sessions.
func currentSession(c echo.Context) domain.Session {
	if sess, ok := c.Get(ctxKeySession).(domain.Session); ok {
		return sess
	}
	return domain.Anonymous()
}

// sessionToken is the proxy's token source.
func (s *Server) sessionToken(c echo.Context) (string, bool) {
	if sess, ok := c.Get(ctxKeySession).(domain.Session); ok {
		return sess.Token, sess.Token != ""
	}
	cookie, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return "", false
	}
	token, ok := cookie.Values[sessionKeyToken].(string)
	return token, ok && token != ""
}

// resolveSession reads the login cookie, refreshes the session data through
// the backend and puts the token into the request context for backend calls.
// A token the backend rejects clears the cookie. When the backend cannot be
// reached, the data cached in the cookie is used.
func (s *Server) resolveSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.loadSession(c)
		if err != nil {
			return err
		}

		c.Set(ctxKeySession, sess)
		if sess.Data != nil {
			c.Set("userID", sess.Data.ID)
		}
		if sess.Token != "" {
			ctx := domain.ContextWithToken(c.Request().Context(), sess.Token)
			c.SetRequest(c.Request().WithContext(ctx))
		}
		return next(c)
	}
}

func (s *Server) loadSession(c echo.Context) (domain.Session, error) {
	ctx := c.Request().Context()

	cookie, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// Undecodable cookie, e.g. after a secret rotation.
		slog.DebugContext(ctx, "Discarding unreadable session cookie", "error", err)
		return domain.Anonymous(), nil
	}

	token, _ := cookie.Values[sessionKeyToken].(string)
	if token == "" {
		return domain.Anonymous(), nil
	}

	sess, err := s.app.ResolveSession(ctx, token)
	switch {
	case err == nil:
		if sess.Data != nil && cachedData(cookie) != *sess.Data {
			storeData(cookie, sess.Data)
			if err := cookie.Save(c.Request(), c.Response()); err != nil {
				slog.WarnContext(ctx, "Failed to refresh session cookie", "error", err)
			}
		}
		return sess, nil
	case errors.Is(err, domain.ErrUnauthorized):
		slog.InfoContext(ctx, "Login token rejected, clearing session")
		s.clearSession(c)
		return domain.Anonymous(), nil
	default:
		data := cachedData(cookie)
		slog.WarnContext(ctx, "Could not refresh session, using cached data", "user_id", data.ID, "error", err)
		return domain.Session{Status: domain.StatusAuthenticated, Data: &data, Token: token}, nil
	}
}

func cachedData(cookie *sessions.Session) domain.SessionData {
	var data domain.SessionData
	data.ID, _ = cookie.Values[sessionKeyUserID].(int)
	data.Username, _ = cookie.Values[sessionKeyUsername].(string)
	data.Role, _ = cookie.Values[sessionKeyRole].(string)
	return data
}

func storeData(cookie *sessions.Session, data *domain.SessionData) {
	cookie.Values[sessionKeyUserID] = data.ID
	cookie.Values[sessionKeyUsername] = data.Username
	cookie.Values[sessionKeyRole] = data.Role
}

// startSession replaces any existing login cookie with a fresh one holding
// sess.
func (s *Server) startSession(c echo.Context, sess domain.Session) error {
	// Regenerate the session after login so a pre-login cookie can't be fixated.
	if old, err := s.sessionStore.Get(c.Request(), sessionName); err == nil && !old.IsNew {
		old.Options.MaxAge = -1
		if err := old.Save(c.Request(), c.Response()); err != nil {
			return fmt.Errorf("failed to invalidate old session: %w", err)
		}
	}

	cookie, err := s.sessionStore.New(c.Request(), sessionName)
	if err != nil && cookie == nil {
		return fmt.Errorf("failed to create new session: %w", err)
	}
	cookie.Values = map[any]any{sessionKeyToken: sess.Token}
	if sess.Data != nil {
		storeData(cookie, sess.Data)
	}
	if err := cookie.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Server) clearSession(c echo.Context) {
	cookie, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		cookie, _ = s.sessionStore.New(c.Request(), sessionName)
	}
	if cookie == nil {
		return
	}
	cookie.Options.MaxAge = -1
	cookie.Values = map[any]any{}
	if err := cookie.Save(c.Request(), c.Response()); err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to clear session cookie", "error", err)
	}
	c.Set(ctxKeySession, domain.Anonymous())
}
