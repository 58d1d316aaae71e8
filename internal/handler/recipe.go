package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/handler/dto"
	"github.com/freshplate/freshplate/internal/model"
	"github.com/freshplate/freshplate/internal/service"
)

// RecipeHandler handles recipe and comment endpoints.
type RecipeHandler struct {
	svc    *service.RecipeService
	logger *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{svc: svc, logger: logger}
}

// List handles GET /api/recipes?ingredients=a,b&creator=id.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.RecipeFilter{CreatorID: query.Get("creator")}
	if ingredients := query.Get("ingredients"); ingredients != "" {
		filter.Ingredients = strings.Split(ingredients, ",")
	}

	recipes, err := h.svc.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRecipeListResponse(recipes))
}

// Create handles POST /api/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	recipe, err := h.svc.Create(r.Context(), auth.AuthFromContext(r.Context()), service.NewRecipe{
		Title:        req.Title,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		Category:     req.Category,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("recipe_created",
		"recipe_id", recipe.ID,
		"creator_id", recipe.CreatorID,
	)
	writeJSON(w, http.StatusCreated, dto.ToRecipeResponse(recipe))
}

// Get handles GET /api/recipes/{recipeID}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.svc.Get(r.Context(), chi.URLParam(r, "recipeID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe))
}

// Update handles PUT /api/recipes/{recipeID}.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	recipe, err := h.svc.Update(r.Context(), auth.AuthFromContext(r.Context()), chi.URLParam(r, "recipeID"),
		service.UpdateRecipeFields{
			Title:        req.Title,
			Ingredients:  req.Ingredients,
			Instructions: req.Instructions,
			Category:     req.Category,
			PrepTime:     service.OptionalInt{Set: req.PrepTime.Set, Value: req.PrepTime.Value},
			CookTime:     service.OptionalInt{Set: req.CookTime.Set, Value: req.CookTime.Value},
			Servings:     service.OptionalInt{Set: req.Servings.Set, Value: req.Servings.Value},
		})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("recipe_updated", "recipe_id", recipe.ID)
	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe))
}

// Delete handles DELETE /api/recipes/{recipeID}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recipeID")
	if err := h.svc.Delete(r.Context(), auth.AuthFromContext(r.Context()), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("recipe_deleted", "recipe_id", id)
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Recipe deleted"})
}

// AddComment handles POST /api/recipes/{recipeID}/comments.
func (h *RecipeHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req dto.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	recipe, err := h.svc.AddComment(r.Context(), auth.AuthFromContext(r.Context()),
		chi.URLParam(r, "recipeID"), req.Text, req.Rating)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToRecipeResponse(recipe))
}

// UpdateComment handles PUT /api/recipes/{recipeID}/comments/{commentID}.
func (h *RecipeHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req dto.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	recipe, err := h.svc.UpdateComment(r.Context(), auth.AuthFromContext(r.Context()),
		chi.URLParam(r, "recipeID"), chi.URLParam(r, "commentID"), req.Text, req.Rating)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe))
}

// DeleteComment handles DELETE /api/recipes/{recipeID}/comments/{commentID}.
func (h *RecipeHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.svc.DeleteComment(r.Context(), auth.AuthFromContext(r.Context()),
		chi.URLParam(r, "recipeID"), chi.URLParam(r, "commentID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe))
}

// CommentsByUser handles GET /api/comments/byuser/{userID}.
func (h *RecipeHandler) CommentsByUser(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.CommentsByUser(r.Context(), auth.AuthFromContext(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToCommentListResponse(comments))
}

// Transfer handles PUT /api/recipes/transfer/{userID}.
func (h *RecipeHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	caller := auth.AuthFromContext(r.Context())
	from := chi.URLParam(r, "userID")

	n, err := h.svc.ReassignRecipes(r.Context(), caller, from)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("recipes_transferred", "from_user_id", from, "to_user_id", caller.UserID, "count", n)
	writeJSON(w, http.StatusOK, dto.BulkResponse{Affected: n})
}

// DeleteByUser handles DELETE /api/recipes/user/{userID}.
func (h *RecipeHandler) DeleteByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	n, err := h.svc.DeleteRecipesByCreator(r.Context(), auth.AuthFromContext(r.Context()), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("recipes_deleted", "creator_id", userID, "count", n)
	writeJSON(w, http.StatusOK, dto.BulkResponse{Affected: n})
}
