package domain

import "context"

type SessionStatus string

const (
	StatusAuthenticated   SessionStatus = "authenticated"
	StatusUnauthenticated SessionStatus = "unauthenticated"
)

const RoleAdmin = "admin"

// SessionData is the payload of GET /me.
type SessionData struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the login state guards read synchronously.
type Session struct {
	Status SessionStatus
	Data   *SessionData
	Token  string
}

func Anonymous() Session {
	return Session{Status: StatusUnauthenticated}
}

func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// Role returns the role of the logged in user, or "" for anonymous sessions.
func (s Session) Role() string {
	if s.Data == nil {
		return ""
	}
	return s.Data.Role
}

func (s Session) IsAdmin() bool {
	return s.Role() == RoleAdmin
}

type tokenKey struct{}

// ContextWithToken attaches the login token that outgoing backend calls
// authenticate with.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
