package client

import (
	"context"
	"net/http"

	"github.com/freshplate/freshplate/internal/handler/dto"
)

// SignUp registers a new account. It does not sign in.
func (c *Client) SignUp(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignIn authenticates and stores the session token. A failed sign-in
// leaves the session untouched.
func (c *Client) SignIn(ctx context.Context, email, password string) (*dto.UserResponse, error) {
	var resp dto.SignInResponse
	err := c.do(ctx, http.MethodPost, "/auth/signin", dto.SignInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.session.Set(resp.Token, resp.User)
	return &resp.User, nil
}

// SignOut tells the server and clears the session. The session is cleared
// even if the server cannot be reached.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.session.Clear()
	return c.do(ctx, http.MethodGet, "/auth/signout", nil, nil)
}

// ForgotPassword starts recovery and returns the security question.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*dto.RecoveryResponse, error) {
	var resp dto.RecoveryResponse
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", dto.ForgotPasswordRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifySecurityAnswer answers the question with the token from
// ForgotPassword.
func (c *Client) VerifySecurityAnswer(ctx context.Context, recoveryToken, email, answer string) (*dto.RecoveryResponse, error) {
	var resp dto.RecoveryResponse
	req := dto.VerifyAnswerRequest{Email: email, SecurityAnswer: answer, RecoveryToken: recoveryToken}
	if err := c.do(ctx, http.MethodPost, "/auth/verify-security-answer", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword completes recovery with the token from VerifySecurityAnswer.
func (c *Client) ResetPassword(ctx context.Context, recoveryToken, email, newPassword string) (*dto.RecoveryResponse, error) {
	var resp dto.RecoveryResponse
	req := dto.ResetPasswordRequest{Email: email, NewPassword: newPassword, RecoveryToken: recoveryToken}
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
