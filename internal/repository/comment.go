package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/freshplate/freshplate/internal/model"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for foreign_key_violation.
const foreignKeyViolation = "23503"

const commentColumns = `
	id, recipe_id, author_id, author_name, author_email, text, rating, created_at
`

// AddComment attaches a comment to an existing recipe.
func (r *Repository) AddComment(ctx context.Context, comment *model.Comment) error {
	query := `
		INSERT INTO recipe_comments (` + commentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.RecipeID,
		comment.AuthorID,
		comment.AuthorName,
		comment.AuthorEmail,
		comment.Text,
		comment.Rating,
		comment.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// GetComment retrieves one comment of a recipe.
func (r *Repository) GetComment(ctx context.Context, recipeID, commentID string) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM recipe_comments WHERE recipe_id = $1 AND id = $2`

	comment, err := scanComment(r.pool.QueryRow(ctx, query, recipeID, commentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// UpdateComment overwrites the text and rating of a comment.
func (r *Repository) UpdateComment(ctx context.Context, comment *model.Comment) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE recipe_comments SET text = $3, rating = $4 WHERE recipe_id = $1 AND id = $2`,
		comment.RecipeID, comment.ID, comment.Text, comment.Rating,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteComment removes one comment of a recipe.
func (r *Repository) DeleteComment(ctx context.Context, recipeID, commentID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM recipe_comments WHERE recipe_id = $1 AND id = $2`,
		recipeID, commentID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListCommentsByAuthor returns every comment written by a user, newest first.
func (r *Repository) ListCommentsByAuthor(ctx context.Context, authorID string) ([]*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM recipe_comments
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

func scanComment(row pgx.Row) (*model.Comment, error) {
	var comment model.Comment
	err := row.Scan(
		&comment.ID,
		&comment.RecipeID,
		&comment.AuthorID,
		&comment.AuthorName,
		&comment.AuthorEmail,
		&comment.Text,
		&comment.Rating,
		&comment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
