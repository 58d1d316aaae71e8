package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/freshplate/freshplate/internal/handler/dto"
)

func userPath(id string) string {
	return "/api/users/" + url.PathEscape(id)
}

// GetUser reads a profile.
func (c *Client) GetUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	return c.userCall(ctx, http.MethodGet, userPath(id), nil)
}

// ListUsers lists every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var resp dto.UserListResponse
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// UpdateUser changes profile fields. Updating the signed-in user's own
// profile refreshes the session copy.
func (c *Client) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := c.userCall(ctx, http.MethodPut, userPath(id), req)
	if err != nil {
		return nil, err
	}
	if current, ok := c.session.User(); ok && current.ID == user.ID {
		c.session.Set(c.session.Token(), *user)
	}
	return user, nil
}

// DeleteUser removes an account. Deleting the signed-in user clears the
// session.
func (c *Client) DeleteUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := c.userCall(ctx, http.MethodDelete, userPath(id), nil)
	if err != nil {
		return nil, err
	}
	if current, ok := c.session.User(); ok && current.ID == user.ID {
		c.session.Clear()
	}
	return user, nil
}

// SetAdmin grants or revokes admin rights. Admin only.
func (c *Client) SetAdmin(ctx context.Context, id string, isAdmin bool) (*dto.UserResponse, error) {
	return c.userCall(ctx, http.MethodPut, userPath(id)+"/admin", dto.SetAdminRequest{IsAdmin: &isAdmin})
}

// UpdatePassword replaces a password.
func (c *Client) UpdatePassword(ctx context.Context, id, password string) (*dto.UserResponse, error) {
	return c.userCall(ctx, http.MethodPut, userPath(id)+"/password", dto.UpdatePasswordRequest{Password: password})
}

// UpdateSecurity replaces the security question and answer.
func (c *Client) UpdateSecurity(ctx context.Context, id, question, answer string) (*dto.UserResponse, error) {
	return c.userCall(ctx, http.MethodPut, userPath(id)+"/security", dto.UpdateSecurityRequest{
		SecurityQuestion: question,
		SecurityAnswer:   answer,
	})
}

func (c *Client) userCall(ctx context.Context, method, path string, in any) (*dto.UserResponse, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var user dto.UserResponse
	if err := c.do(ctx, method, path, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
