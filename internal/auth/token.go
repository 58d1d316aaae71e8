package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/freshplate/freshplate/internal/model"
)

// DefaultRecoveryTTL is how long a password recovery token stays valid.
const DefaultRecoveryTTL = time.Hour

var (
	// ErrInvalidToken indicates a malformed, forged or wrongly typed token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenType distinguishes session tokens from recovery tokens.
type TokenType string

// Token types.
const (
	TokenSession  TokenType = "session"
	TokenRecovery TokenType = "recovery"
)

// RecoveryStage is the recovery step a recovery token authorizes.
type RecoveryStage string

// Recovery stages.
const (
	StageVerifyAnswer  RecoveryStage = "verify_answer"
	StageResetPassword RecoveryStage = "reset_password"
)

// Claims are the signed contents of every token the service issues.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string        `json:"uid"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	IsAdmin   bool          `json:"admin"`
	TokenType TokenType     `json:"token_type"`
	Stage     RecoveryStage `json:"stage,omitempty"`
}

// AuthContext converts session claims into the request identity.
func (c *Claims) AuthContext() *model.AuthContext {
	return &model.AuthContext{
		UserID:  c.UserID,
		Name:    c.Name,
		Email:   c.Email,
		IsAdmin: c.IsAdmin,
		TokenID: c.ID,
	}
}

// TokenConfig configures a TokenIssuer.
type TokenConfig struct {
	Secret []byte
	// SessionTTL of zero issues session tokens without an expiry.
	SessionTTL time.Duration
	// RecoveryTTL defaults to DefaultRecoveryTTL.
	RecoveryTTL time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret      []byte
	sessionTTL  time.Duration
	recoveryTTL time.Duration
	now         func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	if cfg.RecoveryTTL <= 0 {
		cfg.RecoveryTTL = DefaultRecoveryTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenIssuer{
		secret:      cfg.Secret,
		sessionTTL:  cfg.SessionTTL,
		recoveryTTL: cfg.RecoveryTTL,
		now:         cfg.Now,
	}
}

// RecoveryTTL returns the lifetime of recovery tokens.
func (i *TokenIssuer) RecoveryTTL() time.Duration {
	return i.recoveryTTL
}

// IssueSession returns a session token for user.
func (i *TokenIssuer) IssueSession(user *model.User) (string, error) {
	return i.sign(user, TokenSession, "", i.sessionTTL)
}

// IssueRecovery returns a recovery token that authorizes one recovery stage.
func (i *TokenIssuer) IssueRecovery(user *model.User, stage RecoveryStage) (string, error) {
	return i.sign(user, TokenRecovery, stage, i.recoveryTTL)
}

func (i *TokenIssuer) sign(user *model.User, typ TokenType, stage RecoveryStage, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		TokenType: typ,
		Stage:     stage,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, structure and expiry and returns the claims.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifySession verifies tokenString and requires it to be a session token.
func (i *TokenIssuer) VerifySession(tokenString string) (*Claims, error) {
	claims, err := i.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenSession {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRecovery verifies tokenString and requires it to be a recovery token
// for the given stage.
func (i *TokenIssuer) VerifyRecovery(tokenString string, stage RecoveryStage) (*Claims, error) {
	claims, err := i.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenRecovery || claims.Stage != stage {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
