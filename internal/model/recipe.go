package model

import "time"

// DefaultRecipeCategory is assigned when a recipe is created without one.
const DefaultRecipeCategory = "Miscellaneous"

// Recipe is a user-authored recipe.
type Recipe struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Ingredients  []string  `json:"ingredients"`
	Instructions string    `json:"instructions"`
	CreatorID    string    `json:"creator_id"`
	CreatorName  string    `json:"creator_name"`
	PrepTime     *int      `json:"prep_time,omitempty"`
	CookTime     *int      `json:"cook_time,omitempty"`
	Servings     *int      `json:"servings,omitempty"`
	Category     string    `json:"category"`
	Comments     []Comment `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Comment is feedback left on a recipe.
type Comment struct {
	ID          string    `json:"id"`
	RecipeID    string    `json:"recipe_id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Text        string    `json:"text"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecipeFilter narrows recipe listings. Empty fields match everything.
type RecipeFilter struct {
	// Ingredients matches recipes with an ingredient containing any of the
	// terms, ignoring case.
	Ingredients []string
	// CreatorID matches recipes authored by the given user.
	CreatorID string
}
