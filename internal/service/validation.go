package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted anywhere.
const MinPasswordLength = 6

// Field validation messages.
const (
	msgNameRequired     = "Name is required"
	msgEmailRequired    = "Email is required"
	msgEmailInvalid     = "Please fill a valid email address"
	msgEmailExists      = "Email already exists"
	msgPasswordRequired = "Password is required"
	msgPasswordShort    = "Password must be at least 6 characters."
	msgQuestionRequired = "Security question is required"
	msgAnswerRequired   = "Security answer is required"
	msgSecurityPair     = "Security question and answer are required."
)

var emailRegex = regexp.MustCompile(`^.+@.+\..+$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return newValidationError("name", msgNameRequired)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return newValidationError("email", msgEmailRequired)
	}
	if !emailRegex.MatchString(email) {
		return newValidationError("email", msgEmailInvalid)
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return newValidationError("password", msgPasswordRequired)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return newValidationError("password", msgPasswordShort)
	}
	return nil
}

func validateSecurity(question, answer string) error {
	if strings.TrimSpace(question) == "" {
		return newValidationError("security_question", msgQuestionRequired)
	}
	if strings.TrimSpace(answer) == "" {
		return newValidationError("security_answer", msgAnswerRequired)
	}
	return nil
}
