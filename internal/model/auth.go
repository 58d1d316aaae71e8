package model

// AuthContext holds the verified identity of the caller.
// This is injected into the request context by the authentication middleware
// and consumed by the authorization policy.
type AuthContext struct {
	UserID  string
	Name    string
	Email   string
	IsAdmin bool
	// TokenID is the jti of the session token that authenticated the request.
	TokenID string
}

// IsSelf reports whether the caller is the given user.
func (a *AuthContext) IsSelf(userID string) bool {
	return a != nil && a.UserID == userID
}
