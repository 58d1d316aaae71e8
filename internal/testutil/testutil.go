// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/freshplate/freshplate/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// PostgresURL returns DATABASE_URL when set. Otherwise it starts one
// PostgreSQL container for the whole test binary and returns its DSN. The
// test is skipped when neither is available.
func PostgresURL(t testing.TB) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	containerOnce.Do(func() {
		containerURL, containerErr = startPostgres(context.Background())
	})
	if containerErr != nil {
		t.Skipf("PostgreSQL unavailable: %v", containerErr)
	}
	return containerURL
}

// startPostgres runs a disposable PostgreSQL container. It is reaped by the
// testcontainers reaper when the test process exits.
func startPostgres(ctx context.Context) (string, error) {
	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return "", fmt.Errorf("docker not available: %w", err)
	}
	_ = provider.Close()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("freshplate_test"),
		postgres.WithUsername("freshplate"),
		postgres.WithPassword("freshplate_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}
	return container.ConnectionString(ctx, "sslmode=disable")
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// appTables lists every application table, children first.
var appTables = []string{"recipe_comments", "recipes", "users"}

// TruncateAll empties every application table.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	query := "TRUNCATE " + strings.Join(appTables, ", ") + " CASCADE"
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user record with placeholder credentials. The
// digests are not valid for any password; use the service layer when a
// sign-in is needed.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		ID:                 ulid.Make().String(),
		Name:               "Test " + email,
		Email:              strings.ToLower(email),
		PasswordHash:       "hash-" + email,
		PasswordSalt:       "salt-" + email,
		SecurityQuestion:   "First pet?",
		SecurityAnswerHash: "answer-hash",
		SecurityAnswerSalt: "answer-salt",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// NewTestRecipe creates a recipe authored by creator.
func NewTestRecipe(t testing.TB, creator *model.User, title string, ingredients ...string) *model.Recipe {
	t.Helper()
	if len(ingredients) == 0 {
		ingredients = []string{"water"}
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Recipe{
		ID:           ulid.Make().String(),
		Title:        title,
		Ingredients:  ingredients,
		Instructions: "Cook it.",
		CreatorID:    creator.ID,
		CreatorName:  creator.Name,
		Category:     model.DefaultRecipeCategory,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestComment creates a comment by author on recipe.
func NewTestComment(t testing.TB, recipe *model.Recipe, author *model.User, text string, rating int) *model.Comment {
	t.Helper()
	return &model.Comment{
		ID:          ulid.Make().String(),
		RecipeID:    recipe.ID,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		Text:        text,
		Rating:      rating,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}
