package client

import (
	"sync"

	"github.com/freshplate/freshplate/internal/handler/dto"
)

// Session holds the signed-in identity of one client. The zero value is a
// signed-out session. It is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *dto.UserResponse
}

// NewSession returns a signed-out session.
func NewSession() *Session {
	return &Session{}
}

// Set records a successful sign-in.
func (s *Session) Set(token string, user dto.UserResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
}

// Clear signs the session out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user.
func (s *Session) User() (dto.UserResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return dto.UserResponse{}, false
	}
	return *s.user, true
}

// SignedIn reports whether the session holds a token.
func (s *Session) SignedIn() bool {
	return s.Token() != ""
}
