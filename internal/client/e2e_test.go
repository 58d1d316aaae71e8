//go:build e2e

package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/handler/dto"
	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/repository"
	"github.com/freshplate/freshplate/internal/service"
)

// The e2e suite drives a running server. DATABASE_URL must point at the
// server's database so an admin can be bootstrapped out of band.

const e2ePassword = "e2e-password-1"

func e2eBaseURL() string {
	if v := os.Getenv("FRESHPLATE_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@e2e.freshplate.test", prefix, time.Now().UnixNano())
}

// bootstrapAdmin creates an admin account directly in the database, the way
// the bootstrap-admin script does.
func bootstrapAdmin(t *testing.T) string {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	require.NoError(t, err, "connect db")
	defer repo.Close()

	// Default hash cost, matching the server defaults.
	users := service.NewUserService(repo, auth.NewHasher(auth.Params{}), metrics.NewNoop())
	email := uniqueEmail("admin")
	_, err = users.CreateAdmin(ctx, service.NewUser{
		Name:             "E2E Admin",
		Email:            email,
		Password:         e2ePassword,
		SecurityQuestion: "Favourite pan?",
		SecurityAnswer:   "cast iron",
	})
	require.NoError(t, err, "create admin")
	return email
}

func signUpAndIn(t *testing.T, ctx context.Context, c *Client, name string) dto.UserResponse {
	t.Helper()
	email := uniqueEmail(strings.ToLower(name))
	_, err := c.SignUp(ctx, dto.CreateUserRequest{
		Name:             name,
		Email:            email,
		Password:         e2ePassword,
		SecurityQuestion: "First dish?",
		SecurityAnswer:   "Omelette",
	})
	require.NoError(t, err, "sign up %s", name)
	user, err := c.SignIn(ctx, email, e2ePassword)
	require.NoError(t, err, "sign in %s", name)
	return *user
}

func TestE2ESmoke(t *testing.T) {
	ctx := context.Background()
	base := e2eBaseURL()

	cook := New(base, nil, nil)
	me := signUpAndIn(t, ctx, cook, "Cook")

	servings := 2
	recipe, err := cook.CreateRecipe(ctx, dto.CreateRecipeRequest{
		Title:        "E2E Shakshuka",
		Ingredients:  []string{"Eggs", "Tomato", "Cumin"},
		Instructions: "Simmer, crack, cover.",
		Servings:     &servings,
	})
	require.NoError(t, err)
	assert.Equal(t, me.ID, recipe.CreatorID)

	guest := New(base, nil, nil)
	found, err := guest.ListRecipes(ctx, RecipeQuery{Ingredients: []string{"cumin"}, CreatorID: me.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = guest.GetRecipe(ctx, recipe.ID)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	critic := New(base, nil, nil)
	signUpAndIn(t, ctx, critic, "Critic")
	withComment, err := critic.AddComment(ctx, recipe.ID, "Great", 5)
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)

	err = critic.DeleteRecipe(ctx, recipe.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	adminEmail := bootstrapAdmin(t)
	admin := New(base, nil, nil)
	_, err = admin.SignIn(ctx, adminEmail, e2ePassword)
	require.NoError(t, err)

	moved, err := admin.TransferRecipes(ctx, me.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, moved)

	require.NoError(t, admin.DeleteRecipe(ctx, recipe.ID))
}

func TestE2EPasswordRecovery(t *testing.T) {
	ctx := context.Background()
	c := New(e2eBaseURL(), nil, nil)
	me := signUpAndIn(t, ctx, c, "Forgetful")
	require.NoError(t, c.SignOut(ctx))

	challenge, err := c.ForgotPassword(ctx, me.Email)
	require.NoError(t, err)
	assert.Equal(t, "First dish?", challenge.SecurityQuestion)

	_, err = c.VerifySecurityAnswer(ctx, challenge.RecoveryToken, me.Email, "pancake")
	require.ErrorIs(t, err, ErrInvalidAnswer)

	verified, err := c.VerifySecurityAnswer(ctx, challenge.RecoveryToken, me.Email, "  omelette ")
	require.NoError(t, err)

	_, err = c.ResetPassword(ctx, verified.RecoveryToken, me.Email, "brand-new-pass")
	require.NoError(t, err)

	_, err = c.ResetPassword(ctx, verified.RecoveryToken, me.Email, "another-pass-1")
	assert.ErrorIs(t, err, ErrUnauthorized, "reset token must be single use")

	_, err = c.SignIn(ctx, me.Email, "brand-new-pass")
	require.NoError(t, err)
}

// TestE2ERateLimiting expects the server's default sign-in limit.
func TestE2ERateLimiting(t *testing.T) {
	ctx := context.Background()
	c := New(e2eBaseURL(), nil, nil)
	email := uniqueEmail("nobody")

	for i := 0; i < 100; i++ {
		_, err := c.SignIn(ctx, email, "wrong-password")
		if errors.Is(err, ErrRateLimited) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, 429, apiErr.Status)
			return
		}
		require.ErrorIs(t, err, ErrUnauthorized)
	}
	t.Fatalf("expected sign-in to be rate limited within 100 attempts")
}
