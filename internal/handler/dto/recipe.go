package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/freshplate/freshplate/internal/model"
)

// CreateRecipeRequest is the body for POST /api/recipes.
type CreateRecipeRequest struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	PrepTime     *int     `json:"prep_time,omitempty"`
	CookTime     *int     `json:"cook_time,omitempty"`
	Servings     *int     `json:"servings,omitempty"`
	Category     string   `json:"category,omitempty"`
}

// NullableInt records whether a field was present in the body and whether it
// was null.
type NullableInt struct {
	Set   bool
	Value *int
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableInt) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler. Pair it with omitzero so an unset
// value is left out.
func (n NullableInt) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// SetInt returns a NullableInt holding v.
func SetInt(v int) NullableInt {
	return NullableInt{Set: true, Value: &v}
}

// ClearInt returns a NullableInt that clears the field.
func ClearInt() NullableInt {
	return NullableInt{Set: true}
}

// UpdateRecipeRequest is a partial recipe update. A null time or servings
// clears the field.
type UpdateRecipeRequest struct {
	Title        *string     `json:"title,omitempty"`
	Ingredients  *[]string   `json:"ingredients,omitempty"`
	Instructions *string     `json:"instructions,omitempty"`
	Category     *string     `json:"category,omitempty"`
	PrepTime     NullableInt `json:"prep_time,omitzero"`
	CookTime     NullableInt `json:"cook_time,omitzero"`
	Servings     NullableInt `json:"servings,omitzero"`
}

// CommentRequest is the body for adding or editing a comment. A missing
// rating means unrated.
type CommentRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	RecipeID   string    `json:"recipe_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecipeResponse is the public view of a recipe with its comments.
type RecipeResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Ingredients  []string          `json:"ingredients"`
	Instructions string            `json:"instructions"`
	CreatorID    string            `json:"creator_id"`
	CreatorName  string            `json:"creator_name"`
	PrepTime     *int              `json:"prep_time,omitempty"`
	CookTime     *int              `json:"cook_time,omitempty"`
	Servings     *int              `json:"servings,omitempty"`
	Category     string            `json:"category"`
	Comments     []CommentResponse `json:"comments"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// RecipeListResponse wraps a list of recipes.
type RecipeListResponse struct {
	Recipes []RecipeResponse `json:"recipes"`
	Count   int              `json:"count"`
}

// CommentListResponse wraps a list of comments.
type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Count    int               `json:"count"`
}

// BulkResponse reports how many recipes a bulk operation touched.
type BulkResponse struct {
	Affected int64 `json:"affected"`
}

// ToCommentResponse converts a Comment model to CommentResponse DTO.
func ToCommentResponse(c *model.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		RecipeID:   c.RecipeID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		Rating:     c.Rating,
		CreatedAt:  c.CreatedAt,
	}
}

// ToRecipeResponse converts a Recipe model to RecipeResponse DTO.
func ToRecipeResponse(r *model.Recipe) RecipeResponse {
	comments := make([]CommentResponse, len(r.Comments))
	for i := range r.Comments {
		comments[i] = ToCommentResponse(&r.Comments[i])
	}
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return RecipeResponse{
		ID:           r.ID,
		Title:        r.Title,
		Ingredients:  ingredients,
		Instructions: r.Instructions,
		CreatorID:    r.CreatorID,
		CreatorName:  r.CreatorName,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Category:     r.Category,
		Comments:     comments,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToRecipeListResponse converts recipes to a RecipeListResponse.
func ToRecipeListResponse(recipes []*model.Recipe) RecipeListResponse {
	out := make([]RecipeResponse, len(recipes))
	for i, r := range recipes {
		out[i] = ToRecipeResponse(r)
	}
	return RecipeListResponse{Recipes: out, Count: len(out)}
}

// ToCommentListResponse converts comments to a CommentListResponse.
func ToCommentListResponse(comments []*model.Comment) CommentListResponse {
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = ToCommentResponse(c)
	}
	return CommentListResponse{Comments: out, Count: len(out)}
}
