package domain

type Barcode struct {
	ID            int     `json:"id"`
	CreatedAt     string  `json:"created_at"`
	CreatedByUser *string `json:"created_by_user"`
	StatusName    string  `json:"status_name"`
	CategoryName  string  `json:"category_name"`
	SupplierName  string  `json:"supplier_name"`
	ProductName   string  `json:"product_name"`
	Barcode       string  `json:"barcode"`
}

// CreatedBy returns the creator name or "-" when the backend has none.
func (b Barcode) CreatedBy() string {
	if b.CreatedByUser == nil || *b.CreatedByUser == "" {
		return "-"
	}
	return *b.CreatedByUser
}

type BarcodeCreate struct {
	StatusID    int    `json:"status_id"`
	CategoryID  int    `json:"category_id"`
	SupplierID  int    `json:"supplier_id"`
	ProductName string `json:"product_name"`
}

type PaginatedResponse[T any] struct {
	Data      []T `json:"data"`
	Limit     int `json:"limit"`
	Page      int `json:"page"`
	Total     int `json:"total"`
	TotalPage int `json:"total_page"`
}

func (p PaginatedResponse[T]) HasPrev() bool { return p.Page > 1 }
func (p PaginatedResponse[T]) HasNext() bool { return p.Page < p.TotalPage }
