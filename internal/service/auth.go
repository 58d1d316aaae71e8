package service

import (
	"context"
	"errors"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/model"
)

// AuthService signs users in.
type AuthService struct {
	users   *UserService
	tokens  *auth.TokenIssuer
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, tokens *auth.TokenIssuer, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{users: users, tokens: tokens, metrics: recorder}
}

// SignInResult is a session token with the user it identifies.
type SignInResult struct {
	Token string
	User  *model.User
}

// SignIn checks credentials and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.IncSignin("invalid")
		} else {
			s.metrics.IncSignin("error")
		}
		return nil, err
	}

	token, err := s.tokens.IssueSession(user)
	if err != nil {
		s.metrics.IncSignin("error")
		return nil, err
	}

	s.metrics.IncSignin("success")
	return &SignInResult{Token: token, User: user}, nil
}
