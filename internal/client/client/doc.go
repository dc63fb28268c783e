// Package client is the policy-log REST API as seen from the client.
//
// # Overview
//
// Client lists the ten calls the session and sync engines depend on:
// login, register, logout, profile, list/get/create logs, add comment,
// my logs and tags. RESTClient implements them over a transport.Transport;
// paths keep the server's trailing slash.
//
// # Error Handling
//
// Every failure is an *Error whose Kind matches one of the sentinels with
// errors.Is: ErrNetwork, ErrAuth, ErrValidation, ErrNotFound, ErrDecode,
// ErrUnauthorized, ErrServer. 4xx answers from auth/login and auth/register
// are ErrAuth. Error() returns the server's own message when the body
// carries one (detail, non_field_errors or the first field error).
//
// # Contexts
//
// Authenticated calls read the Authorization value from ctx; RESTClient
// holds no session state and is safe for concurrent use.
package client
