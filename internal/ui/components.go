// Package ui builds the view models of server-rendered components that take
// part in dropdown coordination. Every constructor reads the coordinator
// installed for the page and panics when there is none.
package ui

import (
	"context"
	"strconv"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/dropdown"
)

// Dropdown is a select-like component.
type Dropdown struct {
	ID       string
	Name     string
	Label    string
	Options  []domain.Option
	Selected int
	Open     bool
	Error    string
	// ByCode submits the option code instead of its id (role select).
	ByCode bool
}

// NewDropdown registers id with the page coordinator. Open mirrors whether
// id is the active dropdown at render time.
func NewDropdown(ctx context.Context, id, label string, options []domain.Option, selected int) Dropdown {
	m := dropdown.MustFromContext(ctx)
	m.Register(id)
	return Dropdown{
		ID:       id,
		Name:     id,
		Label:    label,
		Options:  options,
		Selected: selected,
		Open:     m.IsActive(id),
	}
}

// WithError returns a copy carrying a field validation message.
func (d Dropdown) WithError(msg string) Dropdown {
	d.Error = msg
	return d
}

// Current is the text shown on the closed dropdown.
func (d Dropdown) Current() string {
	for _, o := range d.Options {
		if o.ID == d.Selected {
			return o.Name
		}
	}
	return "Select " + d.Label
}

func (d Dropdown) IsSelected(o domain.Option) bool {
	return o.ID == d.Selected
}

// SelectCode marks the option with the given code as selected and switches
// the dropdown to submit codes.
func (d Dropdown) SelectCode(code string) Dropdown {
	d.ByCode = true
	d.Selected = 0
	for _, o := range d.Options {
		if o.Code == code {
			d.Selected = o.ID
		}
	}
	return d
}

// Value is the form value submitted for o.
func (d Dropdown) Value(o domain.Option) string {
	if d.ByCode {
		return o.Code
	}
	return strconv.Itoa(o.ID)
}

// SelectedValue is the form value of the current selection, "" if none.
func (d Dropdown) SelectedValue() string {
	if d.Selected <= 0 {
		return ""
	}
	if d.ByCode {
		for _, o := range d.Options {
			if o.ID == d.Selected {
				return o.Code
			}
		}
		return ""
	}
	return strconv.Itoa(d.Selected)
}

type MenuItem struct {
	Label string
	Href  string
	// Post marks items submitted as a form (logout).
	Post bool
}

// Menu is the user menu in the page header.
type Menu struct {
	ID       string
	Username string
	Role     string
	Items    []MenuItem
	Open     bool
}

const UserMenuID = "user-menu"

// UserMenu builds the header menu for sess. Admin pages are listed for
// admins only.
func UserMenu(ctx context.Context, sess domain.Session) Menu {
	m := dropdown.MustFromContext(ctx)
	m.Register(UserMenuID)

	menu := Menu{
		ID:   UserMenuID,
		Open: m.IsActive(UserMenuID),
		Items: []MenuItem{
			{Label: "Barcodes", Href: "/"},
			{Label: "New barcode", Href: "/barcodes/new"},
		},
	}
	if sess.Data != nil {
		menu.Username = sess.Data.Username
		menu.Role = sess.Data.Role
	}
	if sess.IsAdmin() {
		menu.Items = append(menu.Items,
			MenuItem{Label: "Users", Href: "/users"},
			MenuItem{Label: "Categories", Href: "/categories"},
			MenuItem{Label: "Suppliers", Href: "/suppliers"},
		)
	}
	menu.Items = append(menu.Items, MenuItem{Label: "Logout", Href: "/logout", Post: true})
	return menu
}
