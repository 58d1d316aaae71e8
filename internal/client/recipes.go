package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/freshplate/freshplate/internal/handler/dto"
)

// RecipeQuery narrows ListRecipes.
type RecipeQuery struct {
	Ingredients []string
	CreatorID   string
}

func recipePath(id string) string {
	return "/api/recipes/" + url.PathEscape(id)
}

// ListRecipes lists recipes. It works signed out.
func (c *Client) ListRecipes(ctx context.Context, q RecipeQuery) ([]dto.RecipeResponse, error) {
	values := url.Values{}
	if len(q.Ingredients) > 0 {
		values.Set("ingredients", strings.Join(q.Ingredients, ","))
	}
	if q.CreatorID != "" {
		values.Set("creator", q.CreatorID)
	}
	path := "/api/recipes"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var resp dto.RecipeListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recipes, nil
}

// CreateRecipe stores a recipe authored by the signed-in user.
func (c *Client) CreateRecipe(ctx context.Context, req dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	return c.recipeCall(ctx, http.MethodPost, "/api/recipes", req)
}

// GetRecipe reads one recipe with its comments.
func (c *Client) GetRecipe(ctx context.Context, id string) (*dto.RecipeResponse, error) {
	return c.recipeCall(ctx, http.MethodGet, recipePath(id), nil)
}

// UpdateRecipe changes a recipe. Owner or admin only.
func (c *Client) UpdateRecipe(ctx context.Context, id string, req dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	return c.recipeCall(ctx, http.MethodPut, recipePath(id), req)
}

// DeleteRecipe removes a recipe. Owner or admin only.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, recipePath(id), nil, nil)
}

// AddComment comments on a recipe and returns the updated recipe.
func (c *Client) AddComment(ctx context.Context, recipeID, text string, rating int) (*dto.RecipeResponse, error) {
	return c.recipeCall(ctx, http.MethodPost, recipePath(recipeID)+"/comments", dto.CommentRequest{Text: text, Rating: rating})
}

// UpdateComment edits a comment. Author or admin only.
func (c *Client) UpdateComment(ctx context.Context, recipeID, commentID, text string, rating int) (*dto.RecipeResponse, error) {
	path := recipePath(recipeID) + "/comments/" + url.PathEscape(commentID)
	return c.recipeCall(ctx, http.MethodPut, path, dto.CommentRequest{Text: text, Rating: rating})
}

// DeleteComment removes a comment. Author or admin only.
func (c *Client) DeleteComment(ctx context.Context, recipeID, commentID string) (*dto.RecipeResponse, error) {
	path := recipePath(recipeID) + "/comments/" + url.PathEscape(commentID)
	return c.recipeCall(ctx, http.MethodDelete, path, nil)
}

// CommentsByUser lists every comment written by userID.
func (c *Client) CommentsByUser(ctx context.Context, userID string) ([]dto.CommentResponse, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var resp dto.CommentListResponse
	if err := c.do(ctx, http.MethodGet, "/api/comments/byuser/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// TransferRecipes moves every recipe of userID to the signed-in admin.
func (c *Client) TransferRecipes(ctx context.Context, userID string) (int64, error) {
	return c.bulk(ctx, http.MethodPut, "/api/recipes/transfer/"+url.PathEscape(userID))
}

// DeleteRecipesByUser removes every recipe of userID. Admin only.
func (c *Client) DeleteRecipesByUser(ctx context.Context, userID string) (int64, error) {
	return c.bulk(ctx, http.MethodDelete, "/api/recipes/user/"+url.PathEscape(userID))
}

func (c *Client) recipeCall(ctx context.Context, method, path string, in any) (*dto.RecipeResponse, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var recipe dto.RecipeResponse
	if err := c.do(ctx, method, path, in, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *Client) bulk(ctx context.Context, method, path string) (int64, error) {
	if err := c.requireSession(); err != nil {
		return 0, err
	}
	var resp dto.BulkResponse
	if err := c.do(ctx, method, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Affected, nil
}
