package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/app"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/schemas"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/ui"
	v "github.com/YonathanKevin20/barcode-generator-fe/internal/validation"
)

func (s *Server) registerBarcodeRoutes(csrfMiddleware echo.MiddlewareFunc) {
	auth := s.pageRoute(csrfMiddleware, "auth")

	s.echo.GET("/", s.handleBarcodeList, auth...)
	s.echo.GET("/barcodes/new", s.handleBarcodeNew, auth...)
	s.echo.POST("/barcodes", s.handleBarcodeCreate, auth...)
}

func (s *Server) handleBarcodeList(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))

	list, err := s.app.ListBarcodes(c.Request().Context(), page)
	if err != nil {
		return err
	}

	view := s.newView(c, "barcodes", "Barcodes")
	view.Data = list
	return s.renderTemplate(c, "barcodes.html", view)
}

// barcodeForm holds the three coordinated dropdowns of the barcode form.
type barcodeForm struct {
	Status   ui.Dropdown
	Category ui.Dropdown
	Supplier ui.Dropdown
}

func (s *Server) handleBarcodeNew(c echo.Context) error {
	return s.renderBarcodeForm(c, http.StatusOK, url.Values{}, nil, "")
}

func (s *Server) handleBarcodeCreate(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return s.renderBarcodeForm(c, http.StatusUnprocessableEntity, url.Values{}, nil, "Invalid form")
	}

	in, err := schemas.ParseBarcodeCreate(form)
	if err == nil {
		err = s.app.CreateBarcode(c.Request().Context(), in)
	}
	if err != nil {
		if fields, msg, ok := formErrors(err); ok {
			return s.renderBarcodeForm(c, http.StatusUnprocessableEntity, form, fields, msg)
		}
		return err
	}

	slog.InfoContext(c.Request().Context(), "Barcode created",
		"product_name", in.ProductName, "status_id", in.StatusID, "category_id", in.CategoryID, "supplier_id", in.SupplierID)

	if err := c.Redirect(http.StatusSeeOther, "/"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) renderBarcodeForm(c echo.Context, code int, form url.Values, fields map[string]string, message string) error {
	opts, err := s.app.LoadBarcodeOptions(c.Request().Context())
	if err != nil {
		return err
	}

	view := s.newView(c, "barcode_new", "New barcode")
	view.Errors = fields
	view.Message = message
	view.Form = formValues(form, "product_name")
	view.Data = newBarcodeForm(c, opts, form, fields)
	return s.renderTemplateStatus(c, code, "barcode_new.html", view)
}

func newBarcodeForm(c echo.Context, opts *app.BarcodeOptions, form url.Values, fields map[string]string) barcodeForm {
	ctx := c.Request().Context()
	return barcodeForm{
		Status:   ui.NewDropdown(ctx, "status_id", "status", opts.Statuses, v.Int(form, "status_id")).WithError(fields["status_id"]),
		Category: ui.NewDropdown(ctx, "category_id", "category", opts.Categories, v.Int(form, "category_id")).WithError(fields["category_id"]),
		Supplier: ui.NewDropdown(ctx, "supplier_id", "supplier", opts.Suppliers, v.Int(form, "supplier_id")).WithError(fields["supplier_id"]),
	}
}
