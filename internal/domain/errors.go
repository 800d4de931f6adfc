package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned by every upstream call answered with 401.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNoSession    = errors.New("no login session")
)

// FieldErrors maps a form field name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// UpstreamValidationError carries a 400/422 rejection of the backend.
type UpstreamValidationError struct {
	Message string
	Fields  FieldErrors
}

func (e *UpstreamValidationError) Error() string {
	if e.Message != "" {
		return "upstream rejected input: " + e.Message
	}
	return "upstream rejected input"
}
