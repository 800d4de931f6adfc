// Package schemas holds the form schemas of the admin pages and decodes
// validated input into domain types.
package schemas

import (
	"regexp"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	v "github.com/YonathanKevin20/barcode-generator-fe/internal/validation"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var (
	BarcodeCreate = v.Object(
		v.F("status_id", v.PositiveInt("Please select a status")),
		v.F("category_id", v.PositiveInt("Please select a category")),
		v.F("supplier_id", v.PositiveInt("Please select a supplier")),
		v.F("product_name", v.Required("Please enter a name of product")),
	)

	CategoryCreate = v.Object(
		v.F("code", v.Length(4, "Please enter a 4 character code")),
		v.F("name", v.Required("Please enter a name of category")),
	)

	CategoryEdit = v.Object(
		v.F("name", v.Required("Please enter a name of category")),
	)

	SupplierCreate = v.Object(
		v.F("code", v.Length(4, "Please enter a 4 character code")),
		v.F("name", v.Required("Please enter a name of supplier")),
	)

	SupplierEdit = v.Object(
		v.F("name", v.Required("Please enter a name of supplier")),
	)

	UserEdit = v.Object(
		v.F("username",
			v.Required("Please enter a username"),
			v.Matches(usernamePattern, "Username must not contain whitespaces"),
		),
		v.F("role", v.Required("Please select a role")),
		v.F("new_password", v.OrEmpty(v.MinLength(8, "Password must be at least 8 characters long"))),
	)
)

// ParseBarcodeCreate returns domain.FieldErrors as the error when in is invalid.
func ParseBarcodeCreate(in v.Values) (domain.BarcodeCreate, error) {
	if errs := BarcodeCreate.Validate(in); errs != nil {
		return domain.BarcodeCreate{}, errs
	}
	return domain.BarcodeCreate{
		StatusID:    v.Int(in, "status_id"),
		CategoryID:  v.Int(in, "category_id"),
		SupplierID:  v.Int(in, "supplier_id"),
		ProductName: in.Get("product_name"),
	}, nil
}

func ParseCategoryCreate(in v.Values) (domain.CategoryCreate, error) {
	if errs := CategoryCreate.Validate(in); errs != nil {
		return domain.CategoryCreate{}, errs
	}
	return domain.CategoryCreate{Code: in.Get("code"), Name: in.Get("name")}, nil
}

func ParseCategoryEdit(in v.Values) (domain.CategoryEdit, error) {
	if errs := CategoryEdit.Validate(in); errs != nil {
		return domain.CategoryEdit{}, errs
	}
	return domain.CategoryEdit{Name: in.Get("name")}, nil
}

func ParseSupplierCreate(in v.Values) (domain.SupplierCreate, error) {
	if errs := SupplierCreate.Validate(in); errs != nil {
		return domain.SupplierCreate{}, errs
	}
	return domain.SupplierCreate{Code: in.Get("code"), Name: in.Get("name")}, nil
}

func ParseSupplierEdit(in v.Values) (domain.SupplierEdit, error) {
	if errs := SupplierEdit.Validate(in); errs != nil {
		return domain.SupplierEdit{}, errs
	}
	return domain.SupplierEdit{Name: in.Get("name")}, nil
}

func ParseUserEdit(in v.Values) (domain.UserEdit, error) {
	if errs := UserEdit.Validate(in); errs != nil {
		return domain.UserEdit{}, errs
	}
	return domain.UserEdit{
		Username:    in.Get("username"),
		Role:        in.Get("role"),
		NewPassword: in.Get("new_password"),
	}, nil
}
