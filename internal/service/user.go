// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/model"
	"github.com/freshplate/freshplate/internal/repository"
)

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// UserService is the credential store: it owns user records and the secrets
// derived for them.
type UserService struct {
	store   UserStore
	hasher  *auth.Hasher
	metrics metrics.Recorder
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, hasher *auth.Hasher, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		hasher:  hasher,
		metrics: recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewUser is the sign-up input. Password and answer are plaintext and are
// never stored.
type NewUser struct {
	Name             string
	Email            string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
}

// UpdateUserFields lists every field a profile update may change.
// Nil fields are left untouched.
type UpdateUserFields struct {
	Name             *string
	Email            *string
	Password         *string
	SecurityQuestion *string
	SecurityAnswer   *string
}

// Create validates input, derives credentials and persists a new user.
func (s *UserService) Create(ctx context.Context, in NewUser) (*model.User, error) {
	user, err := s.create(ctx, in, false)
	if err != nil {
		if _, ok := AsValidationError(err); ok {
			s.metrics.IncSignup("invalid")
		} else {
			s.metrics.IncSignup("error")
		}
		return nil, err
	}
	s.metrics.IncSignup("success")
	return user, nil
}

// CreateAdmin is Create with the admin flag set. It is reserved for operator
// tooling and never reachable from the HTTP surface.
func (s *UserService) CreateAdmin(ctx context.Context, in NewUser) (*model.User, error) {
	return s.create(ctx, in, true)
}

func (s *UserService) create(ctx context.Context, in NewUser, isAdmin bool) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateSecurity(in.SecurityQuestion, in.SecurityAnswer); err != nil {
		return nil, err
	}

	password, err := s.hasher.Derive(in.Password)
	if err != nil {
		return nil, err
	}
	answer, err := s.hasher.DeriveAnswer(in.SecurityAnswer)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:                 ulid.Make().String(),
		Name:               name,
		Email:              email,
		PasswordHash:       password.Hash,
		PasswordSalt:       password.Salt,
		SecurityQuestion:   strings.TrimSpace(in.SecurityQuestion),
		SecurityAnswerHash: answer.Hash,
		SecurityAnswerSalt: answer.Salt,
		IsAdmin:            isAdmin,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, newValidationError("email", msgEmailExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// FindByEmail returns the user registered under email, or nil when there is
// none.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// FindByID returns the user with id or ErrUserNotFound.
func (s *UserService) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// LoadAccount returns the stored user for id, or nil when the account has
// been deleted.
func (s *UserService) LoadAccount(ctx context.Context, id string) (*model.User, error) {
	user, err := s.FindByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

// current re-reads the caller's account so that policy checks use the
// stored admin flag. A caller whose account is gone is treated as signed out.
func (s *UserService) current(ctx context.Context, caller *model.AuthContext) (*model.AuthContext, error) {
	if caller == nil {
		return nil, nil
	}
	user, err := s.LoadAccount(ctx, caller.UserID)
	if err != nil || user == nil {
		return nil, err
	}
	fresh := *caller
	fresh.IsAdmin = user.IsAdmin
	return &fresh, nil
}

// Get reads a profile on behalf of any signed-in caller.
func (s *UserService) Get(ctx context.Context, caller *model.AuthContext, id string) (*model.User, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	return s.FindByID(ctx, id)
}

// List returns every user. Admin only.
func (s *UserService) List(ctx context.Context, caller *model.AuthContext) ([]*model.User, error) {
	caller, err := s.current(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(AdminOnly(caller)); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update applies fields to the caller's own account, or any account for an
// admin.
func (s *UserService) Update(ctx context.Context, caller *model.AuthContext, id string, fields UpdateUserFields) (*model.User, error) {
	caller, err := s.current(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(SelfOrAdmin(caller, id)); err != nil {
		return nil, err
	}
	return s.update(ctx, id, fields)
}

// UpdatePassword replaces the password of the caller's own account, or any
// account for an admin.
func (s *UserService) UpdatePassword(ctx context.Context, caller *model.AuthContext, id, password string) (*model.User, error) {
	caller, err := s.current(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(SelfOrAdmin(caller, id)); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return s.update(ctx, id, UpdateUserFields{Password: &password})
}

// UpdateSecurity replaces the security question and answer. Both are
// required. Admins may reset another user's pair.
func (s *UserService) UpdateSecurity(ctx context.Context, caller *model.AuthContext, id, question, answer string) (*model.User, error) {
	caller, err := s.current(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(SelfOrAdmin(caller, id)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, newValidationError("security", msgSecurityPair)
	}
	return s.update(ctx, id, UpdateUserFields{SecurityQuestion: &question, SecurityAnswer: &answer})
}

// update merges fields onto the stored record without an authorization
// check. Callers authorize first.
func (s *UserService) update(ctx context.Context, id string, fields UpdateUserFields) (*model.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		user.Name = name
	}

	if fields.Email != nil {
		email := normalizeEmail(*fields.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if fields.Password != nil {
		if err := validatePassword(*fields.Password); err != nil {
			return nil, err
		}
		cred, err := s.hasher.Derive(*fields.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash, user.PasswordSalt = cred.Hash, cred.Salt
	}

	if fields.SecurityQuestion != nil || fields.SecurityAnswer != nil {
		if fields.SecurityQuestion == nil || fields.SecurityAnswer == nil {
			return nil, newValidationError("security", msgSecurityPair)
		}
		if err := validateSecurity(*fields.SecurityQuestion, *fields.SecurityAnswer); err != nil {
			return nil, err
		}
		cred, err := s.hasher.DeriveAnswer(*fields.SecurityAnswer)
		if err != nil {
			return nil, err
		}
		user.SecurityQuestion = strings.TrimSpace(*fields.SecurityQuestion)
		user.SecurityAnswerHash, user.SecurityAnswerSalt = cred.Hash, cred.Salt
	}

	user.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, s.translateStoreError(err, "update user")
	}
	return user, nil
}

// Delete permanently removes the caller's own account, or any account for an
// admin. Recipes are not touched; see RecipeService.ReassignRecipes.
func (s *UserService) Delete(ctx context.Context, caller *model.AuthContext, id string) (*model.User, error) {
	caller, err := s.current(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(SelfOrAdmin(caller, id)); err != nil {
		return nil, err
	}
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return nil, s.translateStoreError(err, "delete user")
	}
	return user, nil
}

// SetAdmin grants or revokes admin rights. Admin only.
func (s *UserService) SetAdmin(ctx context.Context, caller *model.AuthContext, id string, flag bool) (*model.User, error) {
	caller, err := s.current(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(AdminOnly(caller)); err != nil {
		return nil, err
	}
	return s.setAdmin(ctx, id, flag)
}

func (s *UserService) setAdmin(ctx context.Context, id string, flag bool) (*model.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsAdmin = flag
	user.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, s.translateStoreError(err, "set admin")
	}
	return user, nil
}

// PromoteByEmail sets the admin flag without a caller. It is reserved for
// operator tooling.
func (s *UserService) PromoteByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsAdmin {
		return user, nil
	}
	return s.setAdmin(ctx, user.ID, true)
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords fail identically with ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn comparable work so response time does not reveal whether the
		// account exists.
		_ = s.hasher.Hash(password, "unknown-account")
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) authorize(err error) error {
	return recordDenial(s.metrics, err)
}

func (s *UserService) translateStoreError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrEmailExists):
		return newValidationError("email", msgEmailExists)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
