package app

import (
	"context"
	"errors"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
)

// --- Mock implementations ---

type mockBackend struct {
	loginFn          func(ctx context.Context, username, password string) (string, error)
	meFn             func(ctx context.Context) (*domain.SessionData, error)
	listBarcodesFn   func(ctx context.Context, page, limit int) (*domain.PaginatedResponse[domain.Barcode], error)
	createBarcodeFn  func(ctx context.Context, in domain.BarcodeCreate) error
	listLookupFn     func(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error)
	getLookupFn      func(ctx context.Context, kind domain.LookupKind, id int) (*domain.Option, error)
	createCategoryFn func(ctx context.Context, in domain.CategoryCreate) error
	updateCategoryFn func(ctx context.Context, id int, in domain.CategoryEdit) error
	createSupplierFn func(ctx context.Context, in domain.SupplierCreate) error
	updateSupplierFn func(ctx context.Context, id int, in domain.SupplierEdit) error
	listUsersFn      func(ctx context.Context) ([]domain.User, error)
	getUserFn        func(ctx context.Context, id int) (*domain.User, error)
	updateUserFn     func(ctx context.Context, id int, in domain.UserEdit) error
	pingFn           func(ctx context.Context) error
}

var errNotImplemented = errors.New("not implemented")

func (m *mockBackend) Login(ctx context.Context, username, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return "", errNotImplemented
}

func (m *mockBackend) Me(ctx context.Context) (*domain.SessionData, error) {
	if m.meFn != nil {
		return m.meFn(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) ListBarcodes(ctx context.Context, page, limit int) (*domain.PaginatedResponse[domain.Barcode], error) {
	if m.listBarcodesFn != nil {
		return m.listBarcodesFn(ctx, page, limit)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) CreateBarcode(ctx context.Context, in domain.BarcodeCreate) error {
	if m.createBarcodeFn != nil {
		return m.createBarcodeFn(ctx, in)
	}
	return nil
}

func (m *mockBackend) ListLookup(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error) {
	if m.listLookupFn != nil {
		return m.listLookupFn(ctx, kind)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) GetLookup(ctx context.Context, kind domain.LookupKind, id int) (*domain.Option, error) {
	if m.getLookupFn != nil {
		return m.getLookupFn(ctx, kind, id)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) CreateCategory(ctx context.Context, in domain.CategoryCreate) error {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(ctx, in)
	}
	return nil
}

func (m *mockBackend) UpdateCategory(ctx context.Context, id int, in domain.CategoryEdit) error {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(ctx, id, in)
	}
	return nil
}

func (m *mockBackend) CreateSupplier(ctx context.Context, in domain.SupplierCreate) error {
	if m.createSupplierFn != nil {
		return m.createSupplierFn(ctx, in)
	}
	return nil
}

func (m *mockBackend) UpdateSupplier(ctx context.Context, id int, in domain.SupplierEdit) error {
	if m.updateSupplierFn != nil {
		return m.updateSupplierFn(ctx, id, in)
	}
	return nil
}

func (m *mockBackend) ListUsers(ctx context.Context) ([]domain.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) GetUser(ctx context.Context, id int) (*domain.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) UpdateUser(ctx context.Context, id int, in domain.UserEdit) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, id, in)
	}
	return nil
}

func (m *mockBackend) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

type mockLookups struct {
	lookupFn     func(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error)
	invalidateFn func(ctx context.Context, kind domain.LookupKind) error
	invalidated  []domain.LookupKind
}

func (m *mockLookups) Lookup(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, kind)
	}
	return []domain.Option{{ID: 1, Name: string(kind)}}, nil
}

func (m *mockLookups) Invalidate(ctx context.Context, kind domain.LookupKind) error {
	m.invalidated = append(m.invalidated, kind)
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, kind)
	}
	return nil
}
