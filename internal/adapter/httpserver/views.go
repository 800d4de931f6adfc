package httpserver

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	apperrors "github.com/YonathanKevin20/barcode-generator-fe/internal/platform/errors"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/ui"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/uisession"
)

// pageView is the data every page template receives.
type pageView struct {
	Title   string
	PageID  string
	CSRF    string
	Menu    *ui.Menu
	Message string
	Errors  domain.FieldErrors
	Form    map[string]string
	Data    any
}

// openPage starts a page session for the request and installs its dropdown
// coordinator into the request context, so components built afterwards
// share it.
func (s *Server) openPage(c echo.Context, name string) *uisession.Page {
	page := s.pages.Open(name)
	c.SetRequest(c.Request().WithContext(page.Context(c.Request().Context())))
	return page
}

// newView opens a page session and fills the common page fields.
func (s *Server) newView(c echo.Context, name, title string) *pageView {
	page := s.openPage(c, name)
	view := &pageView{
		Title:  title,
		PageID: page.ID,
		CSRF:   csrfToken(c),
		Form:   map[string]string{},
	}
	if sess := currentSession(c); sess.IsAuthenticated() {
		menu := ui.UserMenu(c.Request().Context(), sess)
		view.Menu = &menu
	}
	return view
}

// formValues copies the submitted fields named by keys, for re-rendering.
func formValues(form url.Values, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = form.Get(k)
	}
	return out
}

// formErrors splits a failed submission into field messages and a general
// message. ok is false for any other error.
func formErrors(err error) (fields domain.FieldErrors, message string, ok bool) {
	if errors.As(err, &fields) {
		return fields, "", true
	}
	var upstream *domain.UpstreamValidationError
	if errors.As(err, &upstream) {
		return upstream.Fields, upstream.Message, true
	}
	return nil, "", false
}

func paramID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, apperrors.NotFoundError("page not found")
	}
	return id, nil
}
