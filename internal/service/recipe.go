package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/model"
	"github.com/freshplate/freshplate/internal/repository"
)

// Recipe validation messages.
const (
	msgTitleRequired        = "Title is required"
	msgIngredientsRequired  = "At least one ingredient is required"
	msgInstructionsRequired = "Instructions are required"
	msgCommentText          = "Invalid comment data: text is required"
	msgCommentRating        = "Invalid comment data: rating must be between 0 and 5"
)

// Rating bounds for comments. Zero means unrated.
const (
	MinRating = 0
	MaxRating = 5
)

// RecipeStore persists recipes and their comments.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) error
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	ListRecipes(ctx context.Context, filter model.RecipeFilter) ([]*model.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, id string) error
	ReassignRecipes(ctx context.Context, fromID, toID, toName string) (int64, error)
	RenameCreator(ctx context.Context, creatorID, name string) (int64, error)
	DeleteRecipesByCreator(ctx context.Context, creatorID string) (int64, error)

	AddComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, recipeID, commentID string) (*model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, recipeID, commentID string) error
	ListCommentsByAuthor(ctx context.Context, authorID string) ([]*model.Comment, error)
}

// RecipeService handles recipe and comment operations.
type RecipeService struct {
	store   RecipeStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(store RecipeStore, recorder metrics.Recorder) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecipeService{
		store:   store,
		metrics: recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewRecipe is the input for Create.
type NewRecipe struct {
	Title        string
	Ingredients  []string
	Instructions string
	PrepTime     *int
	CookTime     *int
	Servings     *int
	Category     string
}

// OptionalInt distinguishes "leave unchanged" from "clear" in an update.
// Set with a nil Value clears the field.
type OptionalInt struct {
	Set   bool
	Value *int
}

// UpdateRecipeFields lists every recipe field an update may change.
type UpdateRecipeFields struct {
	Title        *string
	Ingredients  *[]string
	Instructions *string
	Category     *string
	PrepTime     OptionalInt
	CookTime     OptionalInt
	Servings     OptionalInt
}

// Create stores a new recipe authored by caller.
func (s *RecipeService) Create(ctx context.Context, caller *model.AuthContext, in NewRecipe) (*model.Recipe, error) {
	if caller == nil {
		return nil, recordDenial(s.metrics, ErrUnauthorized)
	}

	recipe := &model.Recipe{
		Title:        strings.TrimSpace(in.Title),
		Ingredients:  cleanIngredients(in.Ingredients),
		Instructions: strings.TrimSpace(in.Instructions),
		CreatorID:    caller.UserID,
		CreatorName:  caller.Name,
		PrepTime:     in.PrepTime,
		CookTime:     in.CookTime,
		Servings:     in.Servings,
		Category:     strings.TrimSpace(in.Category),
	}
	if recipe.Category == "" {
		recipe.Category = model.DefaultRecipeCategory
	}
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}

	now := s.now()
	recipe.ID = ulid.Make().String()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	recipe.Comments = []model.Comment{}

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return recipe, nil
}

// Get returns a recipe with its comments.
func (s *RecipeService) Get(ctx context.Context, id string) (*model.Recipe, error) {
	recipe, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return nil, translateRecipeError(err, "get recipe")
	}
	return recipe, nil
}

// List returns recipes matching filter, newest first.
func (s *RecipeService) List(ctx context.Context, filter model.RecipeFilter) ([]*model.Recipe, error) {
	filter.Ingredients = cleanIngredients(filter.Ingredients)
	recipes, err := s.store.ListRecipes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Update changes a recipe. Only its creator or an admin may do so.
func (s *RecipeService) Update(ctx context.Context, caller *model.AuthContext, id string, fields UpdateRecipeFields) (*model.Recipe, error) {
	if caller == nil {
		return nil, recordDenial(s.metrics, ErrUnauthorized)
	}
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := recordDenial(s.metrics, OwnerOrAdmin(caller, recipe.CreatorID)); err != nil {
		return nil, err
	}

	if fields.Title != nil {
		recipe.Title = strings.TrimSpace(*fields.Title)
	}
	if fields.Ingredients != nil {
		recipe.Ingredients = cleanIngredients(*fields.Ingredients)
	}
	if fields.Instructions != nil {
		recipe.Instructions = strings.TrimSpace(*fields.Instructions)
	}
	if fields.Category != nil {
		recipe.Category = strings.TrimSpace(*fields.Category)
		if recipe.Category == "" {
			recipe.Category = model.DefaultRecipeCategory
		}
	}
	if fields.PrepTime.Set {
		recipe.PrepTime = fields.PrepTime.Value
	}
	if fields.CookTime.Set {
		recipe.CookTime = fields.CookTime.Value
	}
	if fields.Servings.Set {
		recipe.Servings = fields.Servings.Value
	}
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}

	recipe.UpdatedAt = s.now()
	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		return nil, translateRecipeError(err, "update recipe")
	}
	return recipe, nil
}

// Delete removes a recipe and its comments. Only its creator or an admin may
// do so.
func (s *RecipeService) Delete(ctx context.Context, caller *model.AuthContext, id string) error {
	if caller == nil {
		return recordDenial(s.metrics, ErrUnauthorized)
	}
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := recordDenial(s.metrics, OwnerOrAdmin(caller, recipe.CreatorID)); err != nil {
		return err
	}
	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		return translateRecipeError(err, "delete recipe")
	}
	return nil
}

// AddComment attaches a comment by caller and returns the updated recipe.
func (s *RecipeService) AddComment(ctx context.Context, caller *model.AuthContext, recipeID, text string, rating int) (*model.Recipe, error) {
	if caller == nil {
		return nil, recordDenial(s.metrics, ErrUnauthorized)
	}
	text = strings.TrimSpace(text)
	if err := validateComment(text, rating); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:          ulid.Make().String(),
		RecipeID:    recipeID,
		AuthorID:    caller.UserID,
		AuthorName:  caller.Name,
		AuthorEmail: caller.Email,
		Text:        text,
		Rating:      rating,
		CreatedAt:   s.now(),
	}
	if err := s.store.AddComment(ctx, comment); err != nil {
		return nil, translateRecipeError(err, "add comment")
	}
	return s.Get(ctx, recipeID)
}

// UpdateComment changes a comment's text and rating. Only its author or an
// admin may do so.
func (s *RecipeService) UpdateComment(ctx context.Context, caller *model.AuthContext, recipeID, commentID, text string, rating int) (*model.Recipe, error) {
	if caller == nil {
		return nil, recordDenial(s.metrics, ErrUnauthorized)
	}
	text = strings.TrimSpace(text)
	if err := validateComment(text, rating); err != nil {
		return nil, err
	}

	comment, err := s.comment(ctx, recipeID, commentID)
	if err != nil {
		return nil, err
	}
	if err := recordDenial(s.metrics, OwnerOrAdmin(caller, comment.AuthorID)); err != nil {
		return nil, err
	}

	comment.Text = text
	comment.Rating = rating
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, translateRecipeError(err, "update comment")
	}
	return s.Get(ctx, recipeID)
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func (s *RecipeService) DeleteComment(ctx context.Context, caller *model.AuthContext, recipeID, commentID string) (*model.Recipe, error) {
	if caller == nil {
		return nil, recordDenial(s.metrics, ErrUnauthorized)
	}
	comment, err := s.comment(ctx, recipeID, commentID)
	if err != nil {
		return nil, err
	}
	if err := recordDenial(s.metrics, OwnerOrAdmin(caller, comment.AuthorID)); err != nil {
		return nil, err
	}
	if err := s.store.DeleteComment(ctx, recipeID, commentID); err != nil {
		return nil, translateRecipeError(err, "delete comment")
	}
	return s.Get(ctx, recipeID)
}

// CommentsByUser lists every comment written by userID.
func (s *RecipeService) CommentsByUser(ctx context.Context, caller *model.AuthContext, userID string) ([]*model.Comment, error) {
	if caller == nil {
		return nil, recordDenial(s.metrics, ErrUnauthorized)
	}
	comments, err := s.store.ListCommentsByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// ReassignRecipes moves every recipe of fromUserID to the calling admin.
func (s *RecipeService) ReassignRecipes(ctx context.Context, caller *model.AuthContext, fromUserID string) (int64, error) {
	if err := recordDenial(s.metrics, AdminOnly(caller)); err != nil {
		return 0, err
	}
	n, err := s.store.ReassignRecipes(ctx, fromUserID, caller.UserID, caller.Name)
	if err != nil {
		return 0, fmt.Errorf("reassign recipes: %w", err)
	}
	return n, nil
}

// DeleteRecipesByCreator removes every recipe of userID. Users may clear
// their own recipes; admins may clear anyone's.
func (s *RecipeService) DeleteRecipesByCreator(ctx context.Context, caller *model.AuthContext, userID string) (int64, error) {
	if err := recordDenial(s.metrics, SelfOrAdmin(caller, userID)); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteRecipesByCreator(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete recipes: %w", err)
	}
	return n, nil
}

// SyncCreatorName refreshes the creator name shown on userID's recipes after
// a profile rename.
func (s *RecipeService) SyncCreatorName(ctx context.Context, userID, name string) error {
	if _, err := s.store.RenameCreator(ctx, userID, name); err != nil {
		return fmt.Errorf("rename creator: %w", err)
	}
	return nil
}

func (s *RecipeService) comment(ctx context.Context, recipeID, commentID string) (*model.Comment, error) {
	if _, err := s.Get(ctx, recipeID); err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, recipeID, commentID)
	if err != nil {
		return nil, translateRecipeError(err, "get comment")
	}
	return comment, nil
}

func validateRecipe(r *model.Recipe) error {
	if r.Title == "" {
		return newValidationError("title", msgTitleRequired)
	}
	if len(r.Ingredients) == 0 {
		return newValidationError("ingredients", msgIngredientsRequired)
	}
	if r.Instructions == "" {
		return newValidationError("instructions", msgInstructionsRequired)
	}
	return nil
}

func validateComment(text string, rating int) error {
	if text == "" {
		return newValidationError("text", msgCommentText)
	}
	if rating < MinRating || rating > MaxRating {
		return newValidationError("rating", msgCommentRating)
	}
	return nil
}

// cleanIngredients trims entries and drops empty ones.
func cleanIngredients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ing := range in {
		if ing = strings.TrimSpace(ing); ing != "" {
			out = append(out, ing)
		}
	}
	return out
}

func translateRecipeError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrRecipeNotFound):
		return ErrRecipeNotFound
	case errors.Is(err, repository.ErrCommentNotFound):
		return ErrCommentNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
