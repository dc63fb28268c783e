// Package common contains shared constants and small helpers used across
// the policy-log client components.
package common

const (
	// AuthHeaderName is the HTTP header carrying the session token on
	// authenticated calls.
	AuthHeaderName = "Authorization"

	// AuthScheme prefixes the token value: "Authorization: Token <token>".
	AuthScheme = "Token"

	// RequestIDHeaderName correlates client log lines with server logs.
	RequestIDHeaderName = "X-Request-ID"
)

// Secure store keys. No other state is persisted.
const (
	TokenKey = "auth_token"
	UserKey  = "current_user"
)
