package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/dropdown"
)

var statuses = []domain.Option{{ID: 1, Name: "New"}, {ID: 2, Name: "Sold"}}

func TestNewDropdown_OpenFollowsCoordinator(t *testing.T) {
	ctx, m := dropdown.Provide(context.Background())

	closed := NewDropdown(ctx, "status_id", "status", statuses, 0)
	assert.False(t, closed.Open)

	m.SetActive("status_id")
	open := NewDropdown(ctx, "status_id", "status", statuses, 0)
	other := NewDropdown(ctx, "category_id", "category", nil, 0)
	assert.True(t, open.Open)
	assert.False(t, other.Open, "only one dropdown can be open")
}

func TestNewDropdown_PanicsWithoutCoordinator(t *testing.T) {
	assert.PanicsWithValue(t, dropdown.ErrNotProvided, func() {
		NewDropdown(context.Background(), "status_id", "status", statuses, 0)
	})
}

func TestDropdown_Current(t *testing.T) {
	ctx, _ := dropdown.Provide(context.Background())

	assert.Equal(t, "Select status", NewDropdown(ctx, "s", "status", statuses, 0).Current())
	assert.Equal(t, "Sold", NewDropdown(ctx, "s", "status", statuses, 2).Current())
	assert.Equal(t, "2", NewDropdown(ctx, "s", "status", statuses, 2).SelectedValue())
	assert.Empty(t, NewDropdown(ctx, "s", "status", statuses, 0).SelectedValue())
}

func TestDropdown_WithError(t *testing.T) {
	ctx, _ := dropdown.Provide(context.Background())
	d := NewDropdown(ctx, "s", "status", statuses, 0).WithError("Please select a status")
	assert.Equal(t, "Please select a status", d.Error)
}

func TestUserMenu(t *testing.T) {
	ctx, m := dropdown.Provide(context.Background())
	admin := domain.Session{Status: domain.StatusAuthenticated, Data: &domain.SessionData{ID: 1, Username: "root", Role: "admin"}}
	user := domain.Session{Status: domain.StatusAuthenticated, Data: &domain.SessionData{ID: 2, Username: "john", Role: "user"}}

	adminMenu := UserMenu(ctx, admin)
	userMenu := UserMenu(ctx, user)

	assert.Equal(t, "root", adminMenu.Username)
	assert.Len(t, adminMenu.Items, 6)
	assert.Len(t, userMenu.Items, 3)
	assert.True(t, userMenu.Items[len(userMenu.Items)-1].Post)
	assert.False(t, adminMenu.Open)

	m.SetActive(UserMenuID)
	assert.True(t, UserMenu(ctx, user).Open)
}

func TestUserMenu_PanicsWithoutCoordinator(t *testing.T) {
	assert.Panics(t, func() { UserMenu(context.Background(), domain.Anonymous()) })
}

func TestDropdown_SelectCode(t *testing.T) {
	ctx, _ := dropdown.Provide(context.Background())

	d := NewDropdown(ctx, "role", "role", domain.Roles, 0).SelectCode("user")
	assert.Equal(t, "User", d.Current())
	assert.Equal(t, "user", d.SelectedValue())
	assert.Equal(t, "admin", d.Value(domain.Roles[0]))

	none := NewDropdown(ctx, "role", "role", domain.Roles, 0).SelectCode("owner")
	assert.Empty(t, none.SelectedValue())
	assert.Equal(t, "Select role", none.Current())
}
