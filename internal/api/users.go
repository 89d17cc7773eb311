package api

import (
	"context"
	"net/http"
	"net/url"
)

// User is an account as the admin endpoints report it.
type User struct {
	ID          ID       `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Address     string   `json:"address"`
	PhoneNumber string   `json:"phoneNumber"`
	Roles       []string `json:"roles"`
}

// Users lists all accounts (admin).
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.doAuthed(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserByID fetches one account (admin).
func (c *Client) UserByID(ctx context.Context, id string) (User, error) {
	var out User
	if err := c.doAuthed(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// UserUpdate carries editable account fields (admin).
type UserUpdate struct {
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// UpdateUser edits an account (admin).
func (c *Client) UpdateUser(ctx context.Context, id string, in UserUpdate) (User, error) {
	var out User
	if err := c.doAuthed(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), in, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// DeleteUser removes an account (admin).
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doAuthed(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
}

// UpdateUserRoles replaces an account's role set (admin).
func (c *Client) UpdateUserRoles(ctx context.Context, id string, roles []string) (User, error) {
	body := struct {
		Roles []string `json:"roles"`
	}{Roles: roles}

	var out User
	path := "/api/users/" + url.PathEscape(id) + "/roles"
	if err := c.doAuthed(ctx, http.MethodPut, path, body, &out); err != nil {
		return User{}, err
	}
	return out, nil
}
