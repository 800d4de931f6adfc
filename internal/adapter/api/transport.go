package api

import (
	"io"
	"net/http"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/correlation"
)

// TokenTransport decorates every outgoing request with the JSON Accept
// header and, when the context carries a token, the bearer Authorization
// header. A 401 response is consumed and reported as domain.ErrUnauthorized.
type TokenTransport struct {
	Base http.RoundTripper

	// OnUnauthorized is called once per 401 response.
	OnUnauthorized func(req *http.Request)
}

func (t *TokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("Accept", "application/json")
	if token, ok := domain.TokenFromContext(req.Context()); ok {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	correlation.Propagate(out)

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if t.OnUnauthorized != nil {
			t.OnUnauthorized(req)
		}
		return nil, domain.ErrUnauthorized
	}
	return resp, nil
}

func (t *TokenTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
