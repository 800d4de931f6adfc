package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	apperrors "github.com/YonathanKevin20/barcode-generator-fe/internal/platform/errors"
)

// ErrRateLimited is the cause of errors for requests the backend throttled.
var ErrRateLimited = errors.New("backend rate limited")

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token. Wrong credentials are reported by
// the backend as 401 and surface as domain.ErrUnauthorized.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out envelope[loginResponse]
	if err := c.do(ctx, "login", http.MethodPost, "/login", nil, loginRequest{username, password}, &out); err != nil {
		return "", err
	}
	if out.Data.Token == "" {
		return "", apperrors.ExternalError("login response without token", errors.New("empty data.token"))
	}
	return out.Data.Token, nil
}

func (c *Client) Me(ctx context.Context) (*domain.SessionData, error) {
	var out envelope[domain.SessionData]
	if err := c.do(ctx, "me", http.MethodGet, "/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) ListBarcodes(ctx context.Context, page, limit int) (*domain.PaginatedResponse[domain.Barcode], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out domain.PaginatedResponse[domain.Barcode]
	if err := c.do(ctx, "list_barcodes", http.MethodGet, "/barcodes", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBarcode(ctx context.Context, in domain.BarcodeCreate) error {
	return c.do(ctx, "create_barcode", http.MethodPost, "/barcodes", nil, in, nil)
}

func (c *Client) ListLookup(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error) {
	var out envelope[[]domain.Option]
	if err := c.do(ctx, "list_"+string(kind), http.MethodGet, "/"+string(kind), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetLookup(ctx context.Context, kind domain.LookupKind, id int) (*domain.Option, error) {
	var out envelope[domain.Option]
	if err := c.do(ctx, "get_"+string(kind), http.MethodGet, "/"+string(kind)+"/"+itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryCreate) error {
	return c.do(ctx, "create_category", http.MethodPost, "/categories", nil, in, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, id int, in domain.CategoryEdit) error {
	return c.do(ctx, "update_category", http.MethodPut, "/categories/"+itoa(id), nil, in, nil)
}

func (c *Client) CreateSupplier(ctx context.Context, in domain.SupplierCreate) error {
	return c.do(ctx, "create_supplier", http.MethodPost, "/suppliers", nil, in, nil)
}

func (c *Client) UpdateSupplier(ctx context.Context, id int, in domain.SupplierEdit) error {
	return c.do(ctx, "update_supplier", http.MethodPut, "/suppliers/"+itoa(id), nil, in, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out envelope[[]domain.User]
	if err := c.do(ctx, "list_users", http.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (*domain.User, error) {
	var out envelope[domain.User]
	if err := c.do(ctx, "get_user", http.MethodGet, "/users/"+itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, in domain.UserEdit) error {
	return c.do(ctx, "update_user", http.MethodPut, "/users/"+itoa(id), nil, in, nil)
}

// Ping checks that the backend answers at all. Any status below 500,
// including 401 and 404, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/", nil), nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil
		}
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
