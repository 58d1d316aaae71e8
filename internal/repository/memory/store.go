// Package memory provides an in-process store with the same semantics as the
// PostgreSQL repository. It backs unit tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/freshplate/freshplate/internal/model"
	"github.com/freshplate/freshplate/internal/repository"
)

// Store holds users, recipes and comments in memory.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*model.User
	recipes  map[string]*model.Recipe
	comments map[string]*model.Comment
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]*model.User),
		recipes:  make(map[string]*model.Recipe),
		comments: make(map[string]*model.Comment),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// CreateUser inserts a new user. Emails are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(user.Email, "") {
		return repository.ErrEmailExists
	}
	s.users[user.ID] = user.Clone()
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user.Clone(), nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user.Clone(), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// ListUsers returns every user, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Clone())
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// UpdateUser overwrites an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if s.emailTakenLocked(user.Email, user.ID) {
		return repository.ErrEmailExists
	}
	updated := user.Clone()
	updated.CreatedAt = existing.CreatedAt
	s.users[user.ID] = updated
	return nil
}

// DeleteUser permanently removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) emailTakenLocked(email, exceptID string) bool {
	for id, user := range s.users {
		if id != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

// CreateRecipe inserts a new recipe.
func (s *Store) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipes[recipe.ID] = cloneRecipe(recipe)
	return nil
}

// GetRecipe retrieves a recipe together with its comments.
func (s *Store) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return nil, repository.ErrRecipeNotFound
	}
	return s.withCommentsLocked(recipe), nil
}

// ListRecipes returns recipes matching filter, newest first.
func (s *Store) ListRecipes(ctx context.Context, filter model.RecipeFilter) ([]*model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := make([]*model.Recipe, 0)
	for _, recipe := range s.recipes {
		if filter.CreatorID != "" && recipe.CreatorID != filter.CreatorID {
			continue
		}
		if len(filter.Ingredients) > 0 && !matchesAnyIngredient(recipe.Ingredients, filter.Ingredients) {
			continue
		}
		recipes = append(recipes, s.withCommentsLocked(recipe))
	}
	sort.Slice(recipes, func(i, j int) bool {
		if recipes[i].CreatedAt.Equal(recipes[j].CreatedAt) {
			return recipes[i].ID > recipes[j].ID
		}
		return recipes[i].CreatedAt.After(recipes[j].CreatedAt)
	})
	return recipes, nil
}

// UpdateRecipe overwrites an existing recipe.
func (s *Store) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.recipes[recipe.ID]
	if !ok {
		return repository.ErrRecipeNotFound
	}
	updated := cloneRecipe(recipe)
	updated.CreatedAt = existing.CreatedAt
	s.recipes[recipe.ID] = updated
	return nil
}

// DeleteRecipe removes a recipe and its comments.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return repository.ErrRecipeNotFound
	}
	s.deleteRecipeLocked(id)
	return nil
}

// ReassignRecipes moves every recipe of one creator to another.
func (s *Store) ReassignRecipes(ctx context.Context, fromID, toID, toName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := time.Now().UTC()
	for _, recipe := range s.recipes {
		if recipe.CreatorID == fromID {
			recipe.CreatorID = toID
			recipe.CreatorName = toName
			recipe.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// RenameCreator refreshes the denormalized creator name on a user's recipes.
func (s *Store) RenameCreator(ctx context.Context, creatorID, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, recipe := range s.recipes {
		if recipe.CreatorID == creatorID && recipe.CreatorName != name {
			recipe.CreatorName = name
			n++
		}
	}
	return n, nil
}

// DeleteRecipesByCreator removes every recipe of a creator.
func (s *Store) DeleteRecipesByCreator(ctx context.Context, creatorID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, recipe := range s.recipes {
		if recipe.CreatorID == creatorID {
			s.deleteRecipeLocked(id)
			n++
		}
	}
	return n, nil
}

func (s *Store) deleteRecipeLocked(id string) {
	delete(s.recipes, id)
	for cid, comment := range s.comments {
		if comment.RecipeID == id {
			delete(s.comments, cid)
		}
	}
}

// AddComment attaches a comment to an existing recipe.
func (s *Store) AddComment(ctx context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[comment.RecipeID]; !ok {
		return repository.ErrRecipeNotFound
	}
	c := *comment
	s.comments[comment.ID] = &c
	return nil
}

// GetComment retrieves one comment of a recipe.
func (s *Store) GetComment(ctx context.Context, recipeID, commentID string) (*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[commentID]
	if !ok || comment.RecipeID != recipeID {
		return nil, repository.ErrCommentNotFound
	}
	c := *comment
	return &c, nil
}

// UpdateComment overwrites the text and rating of a comment.
func (s *Store) UpdateComment(ctx context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.comments[comment.ID]
	if !ok || existing.RecipeID != comment.RecipeID {
		return repository.ErrCommentNotFound
	}
	existing.Text = comment.Text
	existing.Rating = comment.Rating
	return nil
}

// DeleteComment removes one comment of a recipe.
func (s *Store) DeleteComment(ctx context.Context, recipeID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[commentID]
	if !ok || comment.RecipeID != recipeID {
		return repository.ErrCommentNotFound
	}
	delete(s.comments, commentID)
	return nil
}

// ListCommentsByAuthor returns every comment written by a user, newest first.
func (s *Store) ListCommentsByAuthor(ctx context.Context, authorID string) ([]*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]*model.Comment, 0)
	for _, comment := range s.comments {
		if comment.AuthorID == authorID {
			c := *comment
			comments = append(comments, &c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *Store) withCommentsLocked(recipe *model.Recipe) *model.Recipe {
	out := cloneRecipe(recipe)
	out.Comments = make([]model.Comment, 0)
	for _, comment := range s.comments {
		if comment.RecipeID == recipe.ID {
			out.Comments = append(out.Comments, *comment)
		}
	}
	sort.Slice(out.Comments, func(i, j int) bool {
		if out.Comments[i].CreatedAt.Equal(out.Comments[j].CreatedAt) {
			return out.Comments[i].ID < out.Comments[j].ID
		}
		return out.Comments[i].CreatedAt.Before(out.Comments[j].CreatedAt)
	})
	return out
}

func cloneRecipe(recipe *model.Recipe) *model.Recipe {
	c := *recipe
	c.Ingredients = append([]string(nil), recipe.Ingredients...)
	c.Comments = nil
	return &c
}

func matchesAnyIngredient(ingredients, terms []string) bool {
	for _, ing := range ingredients {
		lower := strings.ToLower(ing)
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				return true
			}
		}
	}
	return false
}
