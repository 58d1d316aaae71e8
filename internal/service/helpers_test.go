package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/model"
	"github.com/freshplate/freshplate/internal/repository/memory"
)

type testEnv struct {
	store    *memory.Store
	once     *memory.OnceSet
	tokens   *auth.TokenIssuer
	metrics  *metrics.InMemoryRecorder
	users    *UserService
	auth     *AuthService
	recovery *RecoveryService
	recipes  *RecipeService
	clock    *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := &testEnv{
		store:   memory.New(),
		once:    memory.NewOnceSet(),
		metrics: metrics.NewInMemory(),
		clock:   &now,
	}
	env.tokens = auth.NewTokenIssuer(auth.TokenConfig{
		Secret: []byte("test-secret-0123456789"),
		Now:    func() time.Time { return *env.clock },
	})
	hasher := auth.NewHasher(auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1})

	env.users = NewUserService(env.store, hasher, env.metrics)
	env.auth = NewAuthService(env.users, env.tokens, env.metrics)
	env.recovery = NewRecoveryService(env.users, env.tokens, env.once, env.metrics)
	env.recipes = NewRecipeService(env.store, env.metrics)
	return env
}

func (e *testEnv) advance(d time.Duration) {
	*e.clock = e.clock.Add(d)
}

func (e *testEnv) signUp(t *testing.T, name, email string) *model.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), NewUser{
		Name:             name,
		Email:            email,
		Password:         "secret123",
		SecurityQuestion: "First pet?",
		SecurityAnswer:   "Fluffy",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) signUpAdmin(t *testing.T, name, email string) *model.User {
	t.Helper()
	user, err := e.users.CreateAdmin(context.Background(), NewUser{
		Name:             name,
		Email:            email,
		Password:         "secret123",
		SecurityQuestion: "First pet?",
		SecurityAnswer:   "Rex",
	})
	require.NoError(t, err)
	return user
}

func callerFor(u *model.User) *model.AuthContext {
	return &model.AuthContext{UserID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}
