package services

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/policylogs/internal/client/models"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

func validateRegistration(r models.Registration) error {
	if strings.TrimSpace(r.Username) == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil || strings.ContainsAny(r.Email, "<> ") {
			return &ValidationError{Field: "email", Message: "enter a valid email address"}
		}
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if r.Password != r.PasswordConfirm {
		return &ValidationError{Field: "password_confirm", Message: "passwords don't match"}
	}
	return nil
}

func validateNewLog(l models.NewLog) error {
	if strings.TrimSpace(l.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(l.Description) == "" {
		return &ValidationError{Field: "description", Message: "description is required"}
	}
	if !l.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(l.Status)}
	}
	return nil
}

func validateComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "comment cannot be empty"}
	}
	return nil
}
