package mabarin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mabarin/mabarin-web/internal/model"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"c_password"`
	PhoneNumber     string `json:"phone_number"`
	Role            string `json:"role"`
}

// UpdateUserRequest is sent to /update-user/{id}.  Password fields are only
// included for a password change.
type UpdateUserRequest struct {
	Name            string `json:"name"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"c_password,omitempty"`
}

// Login exchanges credentials for a user carrying a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (model.User, error) {
	var u model.User
	if err := c.fetch(ctx, call{method: http.MethodPost, path: "/login", body: req}, &u); err != nil {
		return model.User{}, err
	}
	if u.Token == "" {
		return model.User{}, &DecodeError{Endpoint: "POST /login", Err: errMissingToken}
	}
	return u, nil
}

// Register creates an account.  The API does not log the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if req.Role == "" {
		req.Role = "user"
	}
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/register", body: req})
	return err
}

// Logout revokes token upstream and returns the API's message.
func (c *Client) Logout(ctx context.Context, token string) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, path: "/logout", token: token})
	return env.Message, err
}

// Me returns the profile behind token.
func (c *Client) Me(ctx context.Context, token string) (model.User, error) {
	var u model.User
	err := c.fetch(ctx, call{method: http.MethodGet, path: "/me", token: token}, &u)
	return u, err
}

// UpdateUser edits the profile of user id and returns the API's message.
func (c *Client) UpdateUser(ctx context.Context, token, id string, req UpdateUserRequest) (string, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/update-user/" + url.PathEscape(id),
		body:   req,
		token:  token,
	})
	return env.Message, err
}
