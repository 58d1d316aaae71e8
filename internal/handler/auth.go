package handler

import (
	"log/slog"
	"net/http"

	"github.com/freshplate/freshplate/internal/handler/dto"
	"github.com/freshplate/freshplate/internal/service"
)

// AuthHandler handles sign-in, sign-out and password recovery.
type AuthHandler struct {
	auth     *service.AuthService
	recovery *service.RecoveryService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, recovery *service.RecoveryService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, recovery: recovery, logger: logger}
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	result, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_signed_in", "user_id", result.User.ID)
	writeJSON(w, http.StatusOK, dto.SignInResponse{
		Token: result.Token,
		User:  dto.ToUserResponse(result.User),
	})
}

// SignOut handles GET /auth/signout. Sessions are stateless; the client
// discards its token.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "signed out"})
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	challenge, err := h.recovery.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecoveryResponse{
		SecurityQuestion: challenge.Question,
		RecoveryToken:    challenge.Token,
		State:            string(challenge.State),
	})
}

// VerifySecurityAnswer handles POST /auth/verify-security-answer.
func (h *AuthHandler) VerifySecurityAnswer(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	challenge, err := h.recovery.VerifyAnswer(r.Context(), req.RecoveryToken, req.Email, req.SecurityAnswer)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecoveryResponse{
		RecoveryToken: challenge.Token,
		State:         string(challenge.State),
		Message:       "Security answer verified",
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	state, err := h.recovery.ResetPassword(r.Context(), req.RecoveryToken, req.Email, req.NewPassword)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("password_reset")
	writeJSON(w, http.StatusOK, dto.RecoveryResponse{
		State:   string(state),
		Message: "Password has been reset",
	})
}
