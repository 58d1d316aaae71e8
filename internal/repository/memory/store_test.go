package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshplate/freshplate/internal/model"
	"github.com/freshplate/freshplate/internal/repository"
)

func newUser(id, email string) *model.User {
	now := time.Now().UTC()
	return &model.User{ID: id, Name: id, Email: email, CreatedAt: now, UpdatedAt: now}
}

func TestStore_UserEmailUniqueIgnoringCase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, newUser("u1", "ada@example.com")))
	err := s.CreateUser(ctx, newUser("u2", "ADA@example.com"))
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	require.NoError(t, s.CreateUser(ctx, newUser("u2", "bob@example.com")))
	bob, err := s.GetUserByID(ctx, "u2")
	require.NoError(t, err)
	bob.Email = "Ada@Example.com"
	assert.ErrorIs(t, s.UpdateUser(ctx, bob), repository.ErrEmailExists)

	got, err := s.GetUserByEmail(ctx, "ADA@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}

func TestStore_UserNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	_, err := s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.ErrorIs(t, s.UpdateUser(ctx, newUser("missing", "m@example.com")), repository.ErrUserNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, "missing"), repository.ErrUserNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, newUser("u1", "ada@example.com")))
	got, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	got.IsAdmin = true

	again, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, again.IsAdmin, "mutating a returned user must not change the store")
}

func TestStore_RecipeFiltersAndCascade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	now := time.Now().UTC()

	require.NoError(t, s.CreateRecipe(ctx, &model.Recipe{
		ID: "r1", Title: "Pancakes", Ingredients: []string{"Flour", "Eggs"},
		CreatorID: "u1", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.CreateRecipe(ctx, &model.Recipe{
		ID: "r2", Title: "Salad", Ingredients: []string{"Lettuce", "Tomato"},
		CreatorID: "u2", CreatedAt: now.Add(time.Second), UpdatedAt: now,
	}))

	all, err := s.ListRecipes(ctx, model.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r2", all[0].ID, "newest first")

	byIngredient, err := s.ListRecipes(ctx, model.RecipeFilter{Ingredients: []string{"egg", "basil"}})
	require.NoError(t, err)
	require.Len(t, byIngredient, 1)
	assert.Equal(t, "r1", byIngredient[0].ID)

	byCreator, err := s.ListRecipes(ctx, model.RecipeFilter{CreatorID: "u2"})
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	assert.Equal(t, "r2", byCreator[0].ID)

	require.NoError(t, s.AddComment(ctx, &model.Comment{ID: "c1", RecipeID: "r1", AuthorID: "u2", Text: "yum", CreatedAt: now}))
	assert.ErrorIs(t, s.AddComment(ctx, &model.Comment{ID: "c2", RecipeID: "nope"}), repository.ErrRecipeNotFound)

	r1, err := s.GetRecipe(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, r1.Comments, 1)

	n, err := s.DeleteRecipesByCreator(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetComment(ctx, "r1", "c1")
	assert.ErrorIs(t, err, repository.ErrCommentNotFound)
	comments, err := s.ListCommentsByAuthor(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestStore_ReassignRecipes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	for _, id := range []string{"r1", "r2"} {
		require.NoError(t, s.CreateRecipe(ctx, &model.Recipe{ID: id, CreatorID: "u1", CreatorName: "Old"}))
	}

	n, err := s.ReassignRecipes(ctx, "u1", "admin", "Admin User")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	recipes, err := s.ListRecipes(ctx, model.RecipeFilter{CreatorID: "admin"})
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Admin User", recipes[0].CreatorName)
}

func TestOnceSet_ConsumeOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	o := NewOnceSet()

	first, err := o.ConsumeOnce(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := o.ConsumeOnce(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	other, err := o.ConsumeOnce(ctx, "jti-2", time.Hour)
	require.NoError(t, err)
	assert.True(t, other)

	o.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	expired, err := o.ConsumeOnce(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, expired, "an expired entry may be consumed again")
}

func TestOnceSet_EmptyIDAndRelease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	o := NewOnceSet()

	empty, err := o.ConsumeOnce(ctx, "", time.Hour)
	require.NoError(t, err)
	assert.False(t, empty, "an empty id is never accepted, matching the Redis store")

	first, err := o.ConsumeOnce(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	require.True(t, first)

	require.NoError(t, o.Release(ctx, "jti-1"))
	again, err := o.ConsumeOnce(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, again, "a released id can be consumed again")
}
