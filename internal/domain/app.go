package domain

import "context"

// BackendAPI is the typed surface of the upstream REST backend. The bearer
// token travels in the context (see ContextWithToken).
type BackendAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (*SessionData, error)

	ListBarcodes(ctx context.Context, page, limit int) (*PaginatedResponse[Barcode], error)
	CreateBarcode(ctx context.Context, in BarcodeCreate) error

	ListLookup(ctx context.Context, kind LookupKind) ([]Option, error)
	GetLookup(ctx context.Context, kind LookupKind, id int) (*Option, error)
	CreateCategory(ctx context.Context, in CategoryCreate) error
	UpdateCategory(ctx context.Context, id int, in CategoryEdit) error
	CreateSupplier(ctx context.Context, in SupplierCreate) error
	UpdateSupplier(ctx context.Context, id int, in SupplierEdit) error

	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int) (*User, error)
	UpdateUser(ctx context.Context, id int, in UserEdit) error

	Ping(ctx context.Context) error
}

// LookupSource loads a lookup list from the system of record.
type LookupSource interface {
	ListLookup(ctx context.Context, kind LookupKind) ([]Option, error)
}

// Lookups serves cached lookup lists shared by all sessions.
type Lookups interface {
	Lookup(ctx context.Context, kind LookupKind) ([]Option, error)
	Invalidate(ctx context.Context, kind LookupKind) error
}
