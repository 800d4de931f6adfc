package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/metrics"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	apperrors "github.com/YonathanKevin20/barcode-generator-fe/internal/platform/errors"
)

const maxErrorBody = 64 << 10

type Options struct {
	Timeout time.Duration
	// Transport is the network transport below TokenTransport.
	Transport http.RoundTripper
	Breaker   circuitbreaker.CircuitBreaker[any]
	Metrics   *metrics.UpstreamMetrics
	Clock     clockwork.Clock
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker circuitbreaker.CircuitBreaker[any]
	metrics *metrics.UpstreamMetrics
	clock   clockwork.Clock
}

var _ domain.BackendAPI = (*Client)(nil)

func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API base URL must be absolute, got %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		metrics: opts.Metrics,
		clock:   opts.Clock,
		breaker: opts.Breaker,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.breaker == nil {
		c.breaker = NewBreaker(opts.Metrics)
	}

	transport := &TokenTransport{Base: opts.Transport}
	if opts.Metrics != nil {
		transport.OnUnauthorized = func(*http.Request) { opts.Metrics.Unauthorized.Inc() }
	}
	c.http = &http.Client{Transport: transport, Timeout: opts.Timeout}

	return c, nil
}

// NewBreaker opens after 60% failures over at least 5 calls in 10s and
// probes again after 30s.
func NewBreaker(m *metrics.UpstreamMetrics) circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "upstream",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if m != nil {
				m.BreakerTransitions.WithLabelValues(e.NewState.String()).Inc()
				m.BreakerState.Set(stateToFloat(e.NewState))
			}
		}).
		Build()
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// BreakerState exposes the circuit state for health checks.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

func (c *Client) endpoint(p string, query url.Values) string {
	u := *c.baseURL
	u.Path = path.Join("/", c.baseURL.Path, p)
	u.RawQuery = query.Encode()
	return u.String()
}

// do sends one JSON request and decodes a 2xx body into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, p string, query url.Values, in, out any) error {
	if !c.breaker.TryAcquirePermit() {
		c.observe(op, "breaker_open", 0)
		return apperrors.ExternalError("backend temporarily unavailable", circuitbreaker.ErrOpen).
			WithField("operation", op)
	}

	start := c.clock.Now()
	outcome := "ok"
	defer func() { c.observe(op, outcome, c.clock.Since(start)) }()

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			c.breaker.RecordSuccess()
			outcome = "encode_error"
			return apperrors.InternalError("failed to encode request", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p, query), body)
	if err != nil {
		c.breaker.RecordSuccess()
		outcome = "encode_error"
		return apperrors.InternalError("failed to build request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.breaker.RecordSuccess()
			outcome = "unauthorized"
			return apperrors.UnauthorizedError("session expired", domain.ErrUnauthorized)
		}
		if ctx.Err() != nil {
			c.breaker.RecordSuccess()
			outcome = "canceled"
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
		c.breaker.RecordError(err)
		outcome = "network_error"
		return apperrors.ExternalError("backend unreachable", err).WithField("operation", op)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		upstreamErr := fmt.Errorf("%s %s: status %d", method, p, resp.StatusCode)
		c.breaker.RecordError(upstreamErr)
		outcome = "server_error"
		return apperrors.ExternalError("backend error", upstreamErr).
			WithField("operation", op).
			WithField("upstream_status", resp.StatusCode)
	}
	c.breaker.RecordSuccess()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome = "not_found"
		nf := apperrors.NotFoundError(op + ": not found")
		nf.Cause = domain.ErrNotFound
		return nf
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		outcome = "rejected"
		return decodeValidationError(resp.Body)
	case resp.StatusCode == http.StatusForbidden:
		outcome = "forbidden"
		return apperrors.ForbiddenError("not allowed")
	case resp.StatusCode == http.StatusConflict:
		outcome = "conflict"
		return apperrors.ConflictError("already exists")
	case resp.StatusCode == http.StatusTooManyRequests:
		outcome = "rate_limited"
		return apperrors.ExternalError("backend busy, try again shortly", ErrRateLimited).
			WithField("operation", op)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		outcome = "unexpected_status"
		return apperrors.ExternalError("unexpected backend response", fmt.Errorf("status %d", resp.StatusCode)).
			WithField("operation", op)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = "decode_error"
		return apperrors.ExternalError("malformed backend response", err).WithField("operation", op)
	}
	return nil
}

func (c *Client) observe(op, outcome string, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestsTotal.WithLabelValues(op, outcome).Inc()
	if outcome != "breaker_open" {
		c.metrics.RequestDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}

// errorBody covers the shapes the backend uses for rejected input: a
// message plus either one message or a list of messages per field.
type errorBody struct {
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func decodeValidationError(r io.Reader) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&body)

	ve := &domain.UpstreamValidationError{Message: body.Message}
	if ve.Message == "" {
		ve.Message = body.Error
	}
	for field, raw := range body.Errors {
		var one string
		if json.Unmarshal(raw, &one) == nil {
			addField(ve, field, one)
			continue
		}
		var many []string
		if json.Unmarshal(raw, &many) == nil && len(many) > 0 {
			addField(ve, field, many[0])
		}
	}
	return ve
}

func addField(ve *domain.UpstreamValidationError, field, msg string) {
	if ve.Fields == nil {
		ve.Fields = make(domain.FieldErrors)
	}
	ve.Fields[field] = msg
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func itoa(id int) string { return strconv.Itoa(id) }
