package dto

import (
	"time"

	"github.com/freshplate/freshplate/internal/model"
)

// CreateUserRequest is the sign-up body.
type CreateUserRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

// UpdateUserRequest is a partial profile update. Absent fields are left
// unchanged.
type UpdateUserRequest struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Password         *string `json:"password,omitempty"`
	SecurityQuestion *string `json:"security_question,omitempty"`
	SecurityAnswer   *string `json:"security_answer,omitempty"`
}

// SetAdminRequest grants or revokes admin rights.
type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

// UpdateSecurityRequest replaces the security question and answer.
type UpdateSecurityRequest struct {
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

// UpdatePasswordRequest replaces the password.
type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

// UserResponse is the public view of a user. It never carries credential
// material.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse wraps a list of users.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToUserListResponse converts users to a UserListResponse.
func ToUserListResponse(users []*model.User) UserListResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return UserListResponse{Users: out, Count: len(out)}
}
