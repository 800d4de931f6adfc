package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
)

const DefaultPageSize = 10

// Service is the application layer. It is the only component that talks to
// both the backend and the lookup cache.
type Service struct {
	api      domain.BackendAPI
	lookups  domain.Lookups
	pageSize int
}

func NewService(api domain.BackendAPI, lookups domain.Lookups) *Service {
	return &Service{api: api, lookups: lookups, pageSize: DefaultPageSize}
}

// Login exchanges credentials for a token and loads the matching session.
func (s *Service) Login(ctx context.Context, username, password string) (domain.Session, error) {
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}
	return s.ResolveSession(ctx, token)
}

// ResolveSession turns a stored token into a session. An empty token is an
// anonymous session; an expired one surfaces domain.ErrUnauthorized.
func (s *Service) ResolveSession(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Anonymous(), nil
	}

	data, err := s.api.Me(domain.ContextWithToken(ctx, token))
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Status: domain.StatusAuthenticated, Data: data, Token: token}, nil
}

func (s *Service) ListBarcodes(ctx context.Context, page int) (*domain.PaginatedResponse[domain.Barcode], error) {
	if page < 1 {
		page = 1
	}
	return s.api.ListBarcodes(ctx, page, s.pageSize)
}

// BarcodeOptions holds the three lookup lists of the barcode form.
type BarcodeOptions struct {
	Statuses   []domain.Option
	Categories []domain.Option
	Suppliers  []domain.Option
}

// LoadBarcodeOptions fetches the form's lookup lists concurrently.
func (s *Service) LoadBarcodeOptions(ctx context.Context) (*BarcodeOptions, error) {
	var out BarcodeOptions
	g, gctx := errgroup.WithContext(ctx)

	load := func(kind domain.LookupKind, dst *[]domain.Option) {
		g.Go(func() error {
			opts, err := s.lookups.Lookup(gctx, kind)
			if err != nil {
				return err
			}
			*dst = opts
			return nil
		})
	}
	load(domain.LookupStatuses, &out.Statuses)
	load(domain.LookupCategories, &out.Categories)
	load(domain.LookupSuppliers, &out.Suppliers)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) CreateBarcode(ctx context.Context, in domain.BarcodeCreate) error {
	return s.api.CreateBarcode(ctx, in)
}

func (s *Service) ListLookup(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error) {
	return s.lookups.Lookup(ctx, kind)
}

func (s *Service) GetLookup(ctx context.Context, kind domain.LookupKind, id int) (*domain.Option, error) {
	return s.api.GetLookup(ctx, kind, id)
}

func (s *Service) CreateCategory(ctx context.Context, in domain.CategoryCreate) error {
	return s.afterWrite(ctx, domain.LookupCategories, s.api.CreateCategory(ctx, in))
}

func (s *Service) UpdateCategory(ctx context.Context, id int, in domain.CategoryEdit) error {
	return s.afterWrite(ctx, domain.LookupCategories, s.api.UpdateCategory(ctx, id, in))
}

func (s *Service) CreateSupplier(ctx context.Context, in domain.SupplierCreate) error {
	return s.afterWrite(ctx, domain.LookupSuppliers, s.api.CreateSupplier(ctx, in))
}

func (s *Service) UpdateSupplier(ctx context.Context, id int, in domain.SupplierEdit) error {
	return s.afterWrite(ctx, domain.LookupSuppliers, s.api.UpdateSupplier(ctx, id, in))
}

// afterWrite drops the cached list once the backend accepted a write. A
// failed invalidation is logged only: the entry still expires by TTL.
func (s *Service) afterWrite(ctx context.Context, kind domain.LookupKind, writeErr error) error {
	if writeErr != nil {
		return writeErr
	}
	if err := s.lookups.Invalidate(ctx, kind); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate lookup cache", "kind", kind, "error", err)
	}
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.api.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int) (*domain.User, error) {
	return s.api.GetUser(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id int, in domain.UserEdit) error {
	return s.api.UpdateUser(ctx, id, in)
}

// CheckBackend is the readiness check of the backend.
func (s *Service) CheckBackend(ctx context.Context) error {
	if err := s.api.Ping(ctx); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	return nil
}

// IsUnauthorized reports whether err means the stored token is no longer
// accepted.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
