package dto

// SignInRequest is the sign-in body.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse returns the session token with the signed-in user.
type SignInResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ForgotPasswordRequest starts password recovery.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyAnswerRequest answers the security question.
type VerifyAnswerRequest struct {
	Email          string `json:"email"`
	SecurityAnswer string `json:"security_answer"`
	RecoveryToken  string `json:"recovery_token"`
}

// ResetPasswordRequest completes recovery.
type ResetPasswordRequest struct {
	Email         string `json:"email"`
	NewPassword   string `json:"new_password"`
	RecoveryToken string `json:"recovery_token"`
}

// RecoveryResponse reports the next recovery step. RecoveryToken authorizes
// exactly that step.
type RecoveryResponse struct {
	SecurityQuestion string `json:"security_question,omitempty"`
	RecoveryToken    string `json:"recovery_token,omitempty"`
	State            string `json:"state"`
	Message          string `json:"message,omitempty"`
}
