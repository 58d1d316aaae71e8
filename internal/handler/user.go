package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/handler/dto"
	"github.com/freshplate/freshplate/internal/service"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	users   *service.UserService
	recipes *service.RecipeService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, recipes *service.RecipeService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, recipes: recipes, logger: logger}
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), service.NewUser{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_created", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), auth.AuthFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Get handles GET /api/users/{userID}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), auth.AuthFromContext(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Update handles PUT /api/users/{userID}. A name change is copied to the
// user's recipes.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "userID")
	user, err := h.users.Update(ctx, auth.AuthFromContext(ctx), id, service.UpdateUserFields{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	if req.Name != nil {
		if err := h.recipes.SyncCreatorName(ctx, user.ID, user.Name); err != nil {
			h.logger.Error("creator_rename_failed", "user_id", user.ID, "error", err)
		}
	}

	h.logger.Info("user_updated", "user_id", user.ID)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/users/{userID}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Delete(r.Context(), auth.AuthFromContext(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", user.ID)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// SetAdmin handles PUT /api/users/{userID}/admin.
func (h *UserHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	var req dto.SetAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.IsAdmin == nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: dto.ErrorBody{
			Code:    "VALIDATION_ERROR",
			Message: "is_admin is required",
			Field:   "is_admin",
		}})
		return
	}

	caller := auth.AuthFromContext(r.Context())
	user, err := h.users.SetAdmin(r.Context(), caller, chi.URLParam(r, "userID"), *req.IsAdmin)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin_flag_changed",
		"user_id", user.ID,
		"is_admin", user.IsAdmin,
		"by", caller.UserID,
	)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdateSecurity handles PUT /api/users/{userID}/security.
func (h *UserHandler) UpdateSecurity(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSecurityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.users.UpdateSecurity(r.Context(), auth.AuthFromContext(r.Context()),
		chi.URLParam(r, "userID"), req.SecurityQuestion, req.SecurityAnswer)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdatePassword handles PUT /api/users/{userID}/password.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.users.UpdatePassword(r.Context(), auth.AuthFromContext(r.Context()),
		chi.URLParam(r, "userID"), req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("password_changed", "user_id", user.ID)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
