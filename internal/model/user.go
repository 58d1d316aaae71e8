// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account.
// Credential material never leaves the service layer: every secret-bearing
// field is excluded from JSON encoding.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	PasswordHash string `json:"-"`
	PasswordSalt string `json:"-"`

	SecurityQuestion   string `json:"security_question,omitempty"`
	SecurityAnswerHash string `json:"-"`
	SecurityAnswerSalt string `json:"-"`

	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasSecurityAnswer reports whether a security answer was ever registered.
func (u *User) HasSecurityAnswer() bool {
	return u.SecurityAnswerHash != ""
}

// Clone returns a copy safe to mutate without touching the original.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
