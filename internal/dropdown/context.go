package dropdown

import (
	"context"
	"errors"
)

// ErrNotProvided is the panic value of MustFromContext when no Manager was
// installed above the caller.
var ErrNotProvided = errors.New("dropdown manager not provided: install one with dropdown.Provide at the root of the page")

type contextKey struct{}

// Provide installs a fresh Manager for everything derived from the returned
// context.
func Provide(ctx context.Context) (context.Context, *Manager) {
	m := New()
	return WithManager(ctx, m), m
}

// WithManager installs an existing Manager, e.g. one owned by a page session
// that outlives a single request.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(contextKey{}).(*Manager)
	return m, ok && m != nil
}

// MustFromContext returns the installed Manager or panics with
// ErrNotProvided. Components use it so a missing installation surfaces at
// the first render instead of as a dropdown that never closes.
func MustFromContext(ctx context.Context) *Manager {
	m, ok := FromContext(ctx)
	if !ok {
		panic(ErrNotProvided)
	}
	return m
}
