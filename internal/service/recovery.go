package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/model"
)

// DefaultSecurityQuestion is returned for accounts that never registered one.
const DefaultSecurityQuestion = "No security question registered."

// RecoveryState is the position of a password recovery in its state machine.
type RecoveryState string

// Recovery states.
const (
	RecoveryIdle                   RecoveryState = "idle"
	RecoveryAwaitingSecurityAnswer RecoveryState = "awaiting_security_answer"
	RecoveryAwaitingNewPassword    RecoveryState = "awaiting_new_password"
	RecoveryCompleted              RecoveryState = "completed"
)

// Recovery step names, used for metrics.
const (
	stepForgot = "forgot_password"
	stepVerify = "verify_answer"
	stepReset  = "reset_password"
)

// RecoveryChallenge is returned by the first two recovery steps. Token
// authorizes exactly the next step.
type RecoveryChallenge struct {
	Question string
	Token    string
	State    RecoveryState
}

// TokenConsumer marks a token id as used. ConsumeOnce returns true only for
// the first call with a given id within ttl; Release undoes a consume.
type TokenConsumer interface {
	ConsumeOnce(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id string) error
}

// RecoveryService runs the forgot-password flow. Each step must present the
// step-scoped recovery token issued by the previous one; the reset token can
// be used once.
type RecoveryService struct {
	users    *UserService
	tokens   *auth.TokenIssuer
	consumer TokenConsumer
	metrics  metrics.Recorder
}

// NewRecoveryService creates a new RecoveryService.
func NewRecoveryService(users *UserService, tokens *auth.TokenIssuer, consumer TokenConsumer, recorder metrics.Recorder) *RecoveryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecoveryService{
		users:    users,
		tokens:   tokens,
		consumer: consumer,
		metrics:  recorder,
	}
}

// ForgotPassword starts recovery for email. It returns the stored security
// question and a token for VerifyAnswer. Unknown emails fail with
// ErrUserNotFound.
func (s *RecoveryService) ForgotPassword(ctx context.Context, email string) (*RecoveryChallenge, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.IncRecoveryStep(stepForgot, "error")
		return nil, err
	}
	if user == nil {
		s.metrics.IncRecoveryStep(stepForgot, "not_found")
		return nil, ErrUserNotFound
	}

	token, err := s.tokens.IssueRecovery(user, auth.StageVerifyAnswer)
	if err != nil {
		s.metrics.IncRecoveryStep(stepForgot, "error")
		return nil, err
	}

	question := user.SecurityQuestion
	if question == "" || !user.HasSecurityAnswer() {
		question = DefaultSecurityQuestion
	}

	s.metrics.IncRecoveryStep(stepForgot, "success")
	return &RecoveryChallenge{
		Question: question,
		Token:    token,
		State:    RecoveryAwaitingSecurityAnswer,
	}, nil
}

// VerifyAnswer checks the security answer. A wrong answer returns
// ErrInvalidAnswer and leaves the verify token usable. A correct answer
// returns a token for ResetPassword.
func (s *RecoveryService) VerifyAnswer(ctx context.Context, token, email, answer string) (*RecoveryChallenge, error) {
	user, err := s.userForToken(ctx, token, email, auth.StageVerifyAnswer)
	if err != nil {
		s.metrics.IncRecoveryStep(stepVerify, "rejected")
		return nil, err
	}

	if !user.HasSecurityAnswer() || !s.users.hasher.VerifyAnswer(answer, user.SecurityAnswerSalt, user.SecurityAnswerHash) {
		s.metrics.IncRecoveryStep(stepVerify, "invalid_answer")
		return nil, ErrInvalidAnswer
	}

	next, err := s.tokens.IssueRecovery(user, auth.StageResetPassword)
	if err != nil {
		s.metrics.IncRecoveryStep(stepVerify, "error")
		return nil, err
	}

	s.metrics.IncRecoveryStep(stepVerify, "success")
	return &RecoveryChallenge{
		Question: user.SecurityQuestion,
		Token:    next,
		State:    RecoveryAwaitingNewPassword,
	}, nil
}

// ResetPassword sets a new password. The token is consumed only after the
// password passes validation and is released again if the store write
// fails, so both can be retried.
func (s *RecoveryService) ResetPassword(ctx context.Context, token, email, newPassword string) (RecoveryState, error) {
	claims, user, err := s.claimsAndUser(ctx, token, email, auth.StageResetPassword)
	if err != nil {
		s.metrics.IncRecoveryStep(stepReset, "rejected")
		return RecoveryAwaitingNewPassword, err
	}

	if err := validatePassword(newPassword); err != nil {
		s.metrics.IncRecoveryStep(stepReset, "invalid")
		return RecoveryAwaitingNewPassword, err
	}

	first, err := s.consumer.ConsumeOnce(ctx, claims.ID, s.tokens.RecoveryTTL())
	if err != nil {
		s.metrics.IncRecoveryStep(stepReset, "error")
		return RecoveryAwaitingNewPassword, fmt.Errorf("consume recovery token: %w", err)
	}
	if !first {
		s.metrics.IncRecoveryStep(stepReset, "replayed")
		return RecoveryAwaitingNewPassword, ErrInvalidToken
	}

	if _, err := s.users.update(ctx, user.ID, UpdateUserFields{Password: &newPassword}); err != nil {
		s.metrics.IncRecoveryStep(stepReset, "error")
		if rerr := s.consumer.Release(ctx, claims.ID); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return RecoveryAwaitingNewPassword, err
	}

	s.metrics.IncRecoveryStep(stepReset, "success")
	return RecoveryCompleted, nil
}

func (s *RecoveryService) userForToken(ctx context.Context, token, email string, stage auth.RecoveryStage) (*model.User, error) {
	_, user, err := s.claimsAndUser(ctx, token, email, stage)
	return user, err
}

// claimsAndUser verifies a recovery token for stage and loads its user. The
// token must belong to the account registered under email.
func (s *RecoveryService) claimsAndUser(ctx context.Context, token, email string, stage auth.RecoveryStage) (*auth.Claims, *model.User, error) {
	claims, err := s.tokens.VerifyRecovery(token, stage)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if user.Email != normalizeEmail(email) {
		return nil, nil, ErrInvalidToken
	}
	return claims, user, nil
}
