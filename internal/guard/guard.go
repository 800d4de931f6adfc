// Package guard decides, per route, whether the current login session may
// see a page and where to send it otherwise.
//
// A guard is an expr-lang condition over the session. The built-in guards
// (admin, guest, auth) can be extended or overridden from a YAML file.
package guard

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
)

// Mode is the navigation mode of a failed guard.
type Mode string

const (
	// Push adds a history entry (302 Found).
	Push Mode = "push"
	// Replace swaps the current history entry (303 See Other).
	Replace Mode = "replace"
)

func (m Mode) Status() int {
	if m == Replace {
		return http.StatusSeeOther
	}
	return http.StatusFound
}

func parseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", Push:
		return Push, nil
	case Replace:
		return Replace, nil
	}
	return "", fmt.Errorf("unknown navigation mode %q", s)
}

// Spec is the declarative form of a guard, as read from YAML.
type Spec struct {
	Name     string `yaml:"name"`
	Allow    string `yaml:"allow"`
	Redirect string `yaml:"redirect"`
	Mode     string `yaml:"mode"`
}

// Builtins returns the admin, guest and auth guards.
func Builtins() []Spec {
	return []Spec{
		{Name: "admin", Allow: `role == "admin"`, Redirect: "/", Mode: string(Replace)},
		{Name: "guest", Allow: `!authenticated`, Redirect: "/", Mode: string(Replace)},
		{Name: "auth", Allow: `authenticated`, Redirect: "/login", Mode: string(Push)},
	}
}

type Guard struct {
	Name     string
	Allow    string
	Redirect string
	Mode     Mode

	program *vm.Program
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed  bool
	Redirect string
	Mode     Mode
}

// Set is an immutable collection of compiled guards keyed by name.
type Set struct {
	guards map[string]*Guard
}

// New compiles specs in order; a later spec replaces an earlier one with
// the same name.
func New(specs ...Spec) (*Set, error) {
	s := &Set{guards: make(map[string]*Guard, len(specs))}
	for _, spec := range specs {
		g, err := compile(spec)
		if err != nil {
			return nil, err
		}
		s.guards[g.Name] = g
	}
	return s, nil
}

// isLocalPath rejects scheme-relative targets such as //host and /\host,
// which browsers resolve to another origin.
func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
		return false
	}
	return !strings.ContainsAny(p, "\r\n")
}

// Default compiles the built-in guards followed by extra.
func Default(extra ...Spec) (*Set, error) {
	return New(append(Builtins(), extra...)...)
}

func compile(spec Spec) (*Guard, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("guard without name")
	}
	if spec.Allow == "" {
		return nil, fmt.Errorf("guard %q: allow expression is required", spec.Name)
	}
	if !isLocalPath(spec.Redirect) {
		return nil, fmt.Errorf("guard %q: redirect must be a local path, got %q", spec.Name, spec.Redirect)
	}
	mode, err := parseMode(spec.Mode)
	if err != nil {
		return nil, fmt.Errorf("guard %q: %w", spec.Name, err)
	}

	program, err := expr.Compile(spec.Allow, expr.Env(environment(domain.Anonymous())), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("guard %q: compile %q: %w", spec.Name, spec.Allow, err)
	}

	return &Guard{
		Name:     spec.Name,
		Allow:    spec.Allow,
		Redirect: spec.Redirect,
		Mode:     mode,
		program:  program,
	}, nil
}

func environment(sess domain.Session) map[string]any {
	env := map[string]any{
		"authenticated": sess.IsAuthenticated(),
		"status":        string(sess.Status),
		"role":          sess.Role(),
		"username":      "",
		"user_id":       0,
	}
	if sess.Data != nil {
		env["username"] = sess.Data.Username
		env["user_id"] = sess.Data.ID
	}
	return env
}

// Check evaluates the named guard against sess.
func (s *Set) Check(name string, sess domain.Session) (Decision, error) {
	g, ok := s.guards[name]
	if !ok {
		return Decision{}, fmt.Errorf("unknown guard %q", name)
	}

	out, err := expr.Run(g.program, environment(sess))
	if err != nil {
		return Decision{}, fmt.Errorf("guard %q: %w", name, err)
	}
	if allowed, _ := out.(bool); allowed {
		return Decision{Allowed: true}, nil
	}
	return Decision{Redirect: g.Redirect, Mode: g.Mode}, nil
}

func (s *Set) Has(name string) bool {
	_, ok := s.guards[name]
	return ok
}

// Guards returns the compiled guards sorted by name.
func (s *Set) Guards() []Guard {
	out := make([]Guard, 0, len(s.guards))
	for _, g := range s.guards {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
