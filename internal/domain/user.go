package domain

type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// UserEdit is the admin edit form. An empty NewPassword keeps the old one.
type UserEdit struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	NewPassword string `json:"new_password,omitempty"`
}

// Roles lists the values offered by the role select.
var Roles = []Option{
	{ID: 1, Code: "admin", Name: "Admin"},
	{ID: 2, Code: "user", Name: "User"},
}
