package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/freshplate/freshplate/internal/model"
)

const recipeColumns = `
	id, title, ingredients, instructions, creator_id, creator_name,
	prep_time, cook_time, servings, category, created_at, updated_at
`

// CreateRecipe inserts a new recipe. Comments are stored separately.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.Title,
		pq.Array(recipe.Ingredients),
		recipe.Instructions,
		recipe.CreatorID,
		recipe.CreatorName,
		recipe.PrepTime,
		recipe.CookTime,
		recipe.Servings,
		recipe.Category,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// GetRecipe retrieves a recipe together with its comments.
func (r *Repository) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := r.attachComments(ctx, []*model.Recipe{recipe}); err != nil {
		return nil, err
	}
	return recipe, nil
}

// ListRecipes returns recipes matching filter, newest first.
// An ingredient term matches any ingredient containing it, ignoring case;
// a recipe matches when at least one term does.
func (r *Repository) ListRecipes(ctx context.Context, filter model.RecipeFilter) ([]*model.Recipe, error) {
	var (
		conds []string
		args  []any
	)

	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		conds = append(conds, fmt.Sprintf("creator_id = $%d", len(args)))
	}
	if len(filter.Ingredients) > 0 {
		patterns := make([]string, 0, len(filter.Ingredients))
		for _, term := range filter.Ingredients {
			patterns = append(patterns, "%"+escapeLike(term)+"%")
		}
		args = append(args, pq.Array(patterns))
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM unnest(ingredients) AS ing, unnest($%d::text[]) AS pat
			WHERE ing ILIKE pat
		)`, len(args)))
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]*model.Recipe, 0)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	if err := r.attachComments(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// UpdateRecipe overwrites the mutable columns of a recipe.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		UPDATE recipes SET
			title = $2,
			ingredients = $3,
			instructions = $4,
			creator_id = $5,
			creator_name = $6,
			prep_time = $7,
			cook_time = $8,
			servings = $9,
			category = $10,
			updated_at = $11
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.Title,
		pq.Array(recipe.Ingredients),
		recipe.Instructions,
		recipe.CreatorID,
		recipe.CreatorName,
		recipe.PrepTime,
		recipe.CookTime,
		recipe.Servings,
		recipe.Category,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// DeleteRecipe removes a recipe and, by cascade, its comments.
func (r *Repository) DeleteRecipe(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// ReassignRecipes moves every recipe of one creator to another.
func (r *Repository) ReassignRecipes(ctx context.Context, fromID, toID, toName string) (int64, error) {
	query := `
		UPDATE recipes
		SET creator_id = $2, creator_name = $3, updated_at = now()
		WHERE creator_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, fromID, toID, toName)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign recipes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RenameCreator refreshes the denormalized creator name on a user's recipes.
func (r *Repository) RenameCreator(ctx context.Context, creatorID, name string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE recipes SET creator_name = $2 WHERE creator_id = $1 AND creator_name <> $2`,
		creatorID, name,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to rename recipe creator: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteRecipesByCreator removes every recipe of a creator.
func (r *Repository) DeleteRecipesByCreator(ctx context.Context, creatorID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE creator_id = $1`, creatorID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete recipes by creator: %w", err)
	}
	return tag.RowsAffected(), nil
}

// attachComments loads comments for all recipes in one query.
func (r *Repository) attachComments(ctx context.Context, recipes []*model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[string]*model.Recipe, len(recipes))
	ids := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		recipe.Comments = make([]model.Comment, 0)
		byID[recipe.ID] = recipe
		ids = append(ids, recipe.ID)
	}

	query := `SELECT ` + commentColumns + ` FROM recipe_comments
		WHERE recipe_id = ANY($1::text[])
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		if recipe, ok := byID[comment.RecipeID]; ok {
			recipe.Comments = append(recipe.Comments, *comment)
		}
	}
	return rows.Err()
}

func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	var ingredients []string

	err := row.Scan(
		&recipe.ID,
		&recipe.Title,
		pq.Array(&ingredients),
		&recipe.Instructions,
		&recipe.CreatorID,
		&recipe.CreatorName,
		&recipe.PrepTime,
		&recipe.CookTime,
		&recipe.Servings,
		&recipe.Category,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	recipe.Ingredients = ingredients
	return &recipe, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
