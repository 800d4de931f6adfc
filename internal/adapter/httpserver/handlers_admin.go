package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/schemas"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/ui"
)

func (s *Server) registerAdminRoutes(csrfMiddleware echo.MiddlewareFunc) {
	admin := s.pageRoute(csrfMiddleware, "auth", "admin")

	s.echo.GET("/users", s.handleUserList, admin...)
	s.echo.GET("/users/:id/edit", s.handleUserEdit, admin...)
	s.echo.POST("/users/:id", s.handleUserUpdate, admin...)

	for _, p := range s.lookupPages() {
		s.echo.GET(p.BasePath, s.handleLookupList(p), admin...)
		s.echo.GET(p.BasePath+"/new", s.handleLookupNew(p), admin...)
		s.echo.POST(p.BasePath, s.handleLookupCreate(p), admin...)
		s.echo.GET(p.BasePath+"/:id/edit", s.handleLookupEdit(p), admin...)
		s.echo.POST(p.BasePath+"/:id", s.handleLookupUpdate(p), admin...)
	}
}

// --- Users ---

type userForm struct {
	UserID int
	Role   ui.Dropdown
}

func (s *Server) handleUserList(c echo.Context) error {
	users, err := s.app.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	view := s.newView(c, "users", "Users")
	view.Data = users
	return s.renderTemplate(c, "users.html", view)
}

func (s *Server) handleUserEdit(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	user, err := s.app.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}

	form := url.Values{"username": {user.Username}, "role": {user.Role}}
	return s.renderUserForm(c, http.StatusOK, id, form, nil, "")
}

func (s *Server) handleUserUpdate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	form, err := c.FormParams()
	if err != nil {
		return s.renderUserForm(c, http.StatusUnprocessableEntity, id, url.Values{}, nil, "Invalid form")
	}

	in, err := schemas.ParseUserEdit(form)
	if err == nil {
		err = s.app.UpdateUser(c.Request().Context(), id, in)
	}
	if err != nil {
		if fields, msg, ok := formErrors(err); ok {
			return s.renderUserForm(c, http.StatusUnprocessableEntity, id, form, fields, msg)
		}
		return err
	}

	slog.InfoContext(c.Request().Context(), "User updated",
		"target_user_id", id, "role", in.Role, "password_changed", in.NewPassword != "")

	if err := c.Redirect(http.StatusSeeOther, "/users"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) renderUserForm(c echo.Context, code, id int, form url.Values, fields domain.FieldErrors, message string) error {
	view := s.newView(c, "user_edit", "Edit user")
	view.Errors = fields
	view.Message = message
	view.Form = formValues(form, "username")
	view.Data = userForm{
		UserID: id,
		Role: ui.NewDropdown(c.Request().Context(), "role", "role", domain.Roles, 0).
			SelectCode(form.Get("role")).
			WithError(fields["role"]),
	}
	return s.renderTemplateStatus(c, code, "user_edit.html", view)
}

// --- Categories and suppliers ---

// lookupPage describes the admin pages of one editable lookup list.
type lookupPage struct {
	Kind     domain.LookupKind
	Title    string
	Singular string
	BasePath string

	create func(ctx context.Context, form url.Values) error
	update func(ctx context.Context, id int, form url.Values) error
}

func (s *Server) lookupPages() []lookupPage {
	return []lookupPage{
		{
			Kind:     domain.LookupCategories,
			Title:    "Categories",
			Singular: "category",
			BasePath: "/categories",
			create: func(ctx context.Context, form url.Values) error {
				in, err := schemas.ParseCategoryCreate(form)
				if err != nil {
					return err
				}
				return s.app.CreateCategory(ctx, in)
			},
			update: func(ctx context.Context, id int, form url.Values) error {
				in, err := schemas.ParseCategoryEdit(form)
				if err != nil {
					return err
				}
				return s.app.UpdateCategory(ctx, id, in)
			},
		},
		{
			Kind:     domain.LookupSuppliers,
			Title:    "Suppliers",
			Singular: "supplier",
			BasePath: "/suppliers",
			create: func(ctx context.Context, form url.Values) error {
				in, err := schemas.ParseSupplierCreate(form)
				if err != nil {
					return err
				}
				return s.app.CreateSupplier(ctx, in)
			},
			update: func(ctx context.Context, id int, form url.Values) error {
				in, err := schemas.ParseSupplierEdit(form)
				if err != nil {
					return err
				}
				return s.app.UpdateSupplier(ctx, id, in)
			},
		},
	}
}

type lookupList struct {
	BasePath string
	Singular string
	Items    []domain.Option
}

type lookupForm struct {
	BasePath string
	Action   string
	Editing  bool
}

func (s *Server) handleLookupList(p lookupPage) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := s.app.ListLookup(c.Request().Context(), p.Kind)
		if err != nil {
			return err
		}

		view := s.newView(c, string(p.Kind), p.Title)
		view.Data = lookupList{BasePath: p.BasePath, Singular: p.Singular, Items: items}
		return s.renderTemplate(c, "lookups.html", view)
	}
}

func (s *Server) handleLookupNew(p lookupPage) echo.HandlerFunc {
	return func(c echo.Context) error {
		return s.renderLookupForm(c, p, http.StatusOK, 0, url.Values{}, nil, "")
	}
}

func (s *Server) handleLookupCreate(p lookupPage) echo.HandlerFunc {
	return func(c echo.Context) error {
		form, err := c.FormParams()
		if err != nil {
			return s.renderLookupForm(c, p, http.StatusUnprocessableEntity, 0, url.Values{}, nil, "Invalid form")
		}

		if err := p.create(c.Request().Context(), form); err != nil {
			if fields, msg, ok := formErrors(err); ok {
				return s.renderLookupForm(c, p, http.StatusUnprocessableEntity, 0, form, fields, msg)
			}
			return err
		}

		slog.InfoContext(c.Request().Context(), "Lookup entry created", "kind", p.Kind, "code", form.Get("code"))
		return s.redirectTo(c, p.BasePath)
	}
}

func (s *Server) handleLookupEdit(p lookupPage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}

		item, err := s.app.GetLookup(c.Request().Context(), p.Kind, id)
		if err != nil {
			return err
		}

		form := url.Values{"code": {item.Code}, "name": {item.Name}}
		return s.renderLookupForm(c, p, http.StatusOK, id, form, nil, "")
	}
}

func (s *Server) handleLookupUpdate(p lookupPage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}

		form, err := c.FormParams()
		if err != nil {
			return s.renderLookupForm(c, p, http.StatusUnprocessableEntity, id, url.Values{}, nil, "Invalid form")
		}

		if err := p.update(c.Request().Context(), id, form); err != nil {
			if fields, msg, ok := formErrors(err); ok {
				return s.renderLookupForm(c, p, http.StatusUnprocessableEntity, id, form, fields, msg)
			}
			return err
		}

		slog.InfoContext(c.Request().Context(), "Lookup entry updated", "kind", p.Kind, "id", id)
		return s.redirectTo(c, p.BasePath)
	}
}

// renderLookupForm renders the create form when id is 0 and the edit form
// otherwise.
func (s *Server) renderLookupForm(c echo.Context, p lookupPage, code, id int, form url.Values, fields domain.FieldErrors, message string) error {
	title := "New " + p.Singular
	data := lookupForm{BasePath: p.BasePath, Action: p.BasePath}
	if id > 0 {
		title = "Edit " + p.Singular
		data.Action = p.BasePath + "/" + strconv.Itoa(id)
		data.Editing = true
	}

	view := s.newView(c, string(p.Kind)+"_form", title)
	view.Errors = fields
	view.Message = message
	view.Form = formValues(form, "code", "name")
	view.Data = data
	return s.renderTemplateStatus(c, code, "lookup_form.html", view)
}

func (s *Server) redirectTo(c echo.Context, target string) error {
	if err := c.Redirect(http.StatusSeeOther, target); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}
