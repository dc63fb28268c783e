package models

import "strings"

// User is the authenticated identity returned by the server.
// Values are replaced wholesale, never patched field by field.
//
// Optional fields are pointers so that "absent" and "empty" stay distinct
// through a store round trip.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email,omitempty"`
	FirstName  *string   `json:"first_name,omitempty"`
	LastName   *string   `json:"last_name,omitempty"`
	DateJoined Timestamp `json:"date_joined"`
}

// DisplayName returns "First Last" when either part is present,
// otherwise the username.
func (u User) DisplayName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Username
	}
	return strings.Join(parts, " ")
}

// UserProfile is the auth/profile payload: the user plus optional extras.
type UserProfile struct {
	User        User    `json:"user"`
	Avatar      *string `json:"avatar,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Department  *string `json:"department,omitempty"`
}

// LoginResult is the auth/login payload.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Registration is the auth/register request body. PasswordConfirm is sent
// as-is; the server checks it again.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Credentials is the auth/login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StringPtr is a small helper for building optional fields.
func StringPtr(s string) *string { return &s }
